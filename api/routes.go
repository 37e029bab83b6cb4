package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the HTML pages and the JSON API. Every route runs
// behind the session middleware.
func SetupRoutes(r *gin.Engine, h *Handlers, sessions gin.HandlerFunc) {
	pages := r.Group("/", sessions)

	pages.GET("/", RedirectToLists)

	// Lists
	pages.GET("/lists", h.GetLists)
	pages.GET("/lists/new", h.NewListForm)
	pages.POST("/lists", h.CreateList)
	pages.GET("/lists/:todoListId", h.GetList)
	pages.GET("/lists/:todoListId/edit", h.EditListForm)
	pages.POST("/lists/:todoListId/edit", h.UpdateList)
	pages.POST("/lists/:todoListId/destroy", h.DeleteList)
	pages.POST("/lists/:todoListId/complete_all", h.CompleteAll)

	// Todos
	pages.POST("/lists/:todoListId/todos", h.CreateTodo)
	pages.POST("/lists/:todoListId/todos/:todoId/toggle", h.ToggleTodo)
	pages.POST("/lists/:todoListId/todos/:todoId/destroy", h.DeleteTodo)

	api := r.Group("/api", sessions)

	api.GET("/lists", h.APIGetLists)
	api.POST("/lists", h.APICreateList)
	api.GET("/lists/:id", h.APIGetList)
	api.PUT("/lists/:id", h.APIUpdateList)
	api.DELETE("/lists/:id", h.APIDeleteList)
	api.POST("/lists/:id/complete_all", h.APICompleteAll)
	api.POST("/lists/:id/todos", h.APICreateTodo)
	api.POST("/lists/:id/todos/:todoId/toggle", h.APIToggleTodo)
	api.DELETE("/lists/:id/todos/:todoId", h.APIDeleteTodo)

	// Notifications (SSE)
	api.GET("/events", h.EventStream)
}
