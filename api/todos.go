package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/session"
	"github.com/xiaoyuanzhu-com/todos/views"
)

// CreateTodo handles POST /lists/:todoListId/todos
func (h *Handlers) CreateTodo(c *gin.Context) {
	s := sessionStore(c)
	list, ok := loadList(c, s)
	if !ok {
		notFound(c)
		return
	}

	title, problems := validateTitle(c.PostForm(todoTitleMessages.Field), todoTitleMessages)
	if len(problems) > 0 {
		flashErrors(c, problems)
		render(c, http.StatusOK, views.PageList, listPage(s, list, title))
		return
	}

	if !s.CreateTodo(list.ID, title) {
		notFound(c)
		return
	}

	flash(c, session.FlashSuccess, "The todo has been created.")
	h.listChanged(c, list.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/lists/%d", list.ID))
}

// ToggleTodo handles POST /lists/:todoListId/todos/:todoId/toggle
func (h *Handlers) ToggleTodo(c *gin.Context) {
	s := sessionStore(c)
	listID, todoID, ok := todoParams(c)
	if !ok || !s.ToggleDoneTodo(listID, todoID) {
		notFound(c)
		return
	}

	// Read the todo back so the message reflects its new state
	todo, _ := s.LoadTodo(listID, todoID)
	if todo.Done {
		flash(c, session.FlashSuccess, fmt.Sprintf(`"%s" marked done.`, todo.Title))
	} else {
		flash(c, session.FlashSuccess, fmt.Sprintf(`"%s" marked as NOT done!`, todo.Title))
	}

	h.listChanged(c, listID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/lists/%d", listID))
}

// DeleteTodo handles POST /lists/:todoListId/todos/:todoId/destroy
func (h *Handlers) DeleteTodo(c *gin.Context) {
	s := sessionStore(c)
	listID, todoID, ok := todoParams(c)
	if !ok || !s.DeleteTodo(listID, todoID) {
		notFound(c)
		return
	}

	flash(c, session.FlashSuccess, "The todo has been deleted.")
	h.listChanged(c, listID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/lists/%d", listID))
}

func todoParams(c *gin.Context) (listID, todoID int, ok bool) {
	if listID, ok = paramID(c, "todoListId"); !ok {
		return 0, 0, false
	}
	if todoID, ok = paramID(c, "todoId"); !ok {
		return 0, 0, false
	}
	return listID, todoID, true
}
