package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/models"
	"github.com/xiaoyuanzhu-com/todos/store"
)

// TodoListSummary is one row of GET /api/lists
type TodoListSummary struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	CountAll  int    `json:"countAll"`
	CountDone int    `json:"countDone"`
	IsDone    bool   `json:"isDone"`
}

// TodoListDetail is a list with its todos in display order
type TodoListDetail struct {
	TodoListSummary
	HasUndone bool           `json:"hasUndone"`
	Todos     []*models.Todo `json:"todos"`
}

// TitleRequest is the body of create and rename requests
type TitleRequest struct {
	Title string `json:"title"`
}

func listDetail(s *store.SessionStore, list *models.TodoList) TodoListDetail {
	return TodoListDetail{
		TodoListSummary: TodoListSummary{
			ID:        list.ID,
			Title:     list.Title,
			CountAll:  list.CountAll(),
			CountDone: list.CountDone(),
			IsDone:    s.IsDoneTodoList(list),
		},
		HasUndone: s.HasUndoneTodos(list),
		Todos:     s.SortedTodos(list),
	}
}

func bindTitle(c *gin.Context) (string, bool) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return "", false
	}
	return req.Title, true
}

func titleDetails(problems []string) []ErrorDetail {
	details := make([]ErrorDetail, len(problems))
	for i, msg := range problems {
		details[i] = ErrorDetail{Field: "title", Message: msg}
	}
	return details
}

func apiList(c *gin.Context, s *store.SessionStore) (*models.TodoList, bool) {
	listID, ok := paramID(c, "id")
	if ok {
		if list, found := s.LoadTodoList(listID); found {
			return list, true
		}
	}
	RespondNotFound(c, "Todo list not found")
	return nil, false
}

// APIGetLists handles GET /api/lists
func (h *Handlers) APIGetLists(c *gin.Context) {
	s := sessionStore(c)
	infos := s.TodoListInfos()

	lists := make([]TodoListSummary, len(infos))
	for i, info := range infos {
		lists[i] = TodoListSummary{
			ID:        info.List.ID,
			Title:     info.List.Title,
			CountAll:  info.CountAll,
			CountDone: info.CountDone,
			IsDone:    info.IsDone,
		}
	}
	RespondList(c, lists)
}

// APICreateList handles POST /api/lists
func (h *Handlers) APICreateList(c *gin.Context) {
	raw, ok := bindTitle(c)
	if !ok {
		return
	}

	s := sessionStore(c)
	title, problems := validateTitle(raw, listTitleMessages)
	if len(problems) > 0 {
		RespondValidationError(c, "Invalid list title", titleDetails(problems))
		return
	}

	list, err := s.CreateTodoList(title)
	if errors.Is(err, store.ErrDuplicateTitle) {
		RespondConflict(c, listTitleMessages.Unique)
		return
	}
	if err != nil {
		listsLogger.Error().Err(err).Msg("failed to create todo list")
		RespondInternalError(c, "Failed to create todo list")
		return
	}

	h.listsChanged(c)
	RespondCreated(c, listDetail(s, list), fmt.Sprintf("/api/lists/%d", list.ID))
}

// APIGetList handles GET /api/lists/:id
func (h *Handlers) APIGetList(c *gin.Context) {
	s := sessionStore(c)
	list, ok := apiList(c, s)
	if !ok {
		return
	}
	RespondData(c, listDetail(s, list))
}

// APIUpdateList handles PUT /api/lists/:id
func (h *Handlers) APIUpdateList(c *gin.Context) {
	s := sessionStore(c)
	list, ok := apiList(c, s)
	if !ok {
		return
	}
	raw, ok := bindTitle(c)
	if !ok {
		return
	}

	title, problems := validateTitle(raw, listTitleMessages)
	if len(problems) > 0 {
		RespondValidationError(c, "Invalid list title", titleDetails(problems))
		return
	}

	switch err := s.SetTodoListTitle(list.ID, title); {
	case errors.Is(err, store.ErrDuplicateTitle):
		RespondConflict(c, listTitleMessages.Unique)
		return
	case errors.Is(err, store.ErrNotFound):
		RespondNotFound(c, "Todo list not found")
		return
	}

	h.listsChanged(c)
	h.listChanged(c, list.ID)
	RespondData(c, listDetail(s, list))
}

// APIDeleteList handles DELETE /api/lists/:id
func (h *Handlers) APIDeleteList(c *gin.Context) {
	s := sessionStore(c)
	listID, ok := paramID(c, "id")
	if !ok || !s.DeleteTodoList(listID) {
		RespondNotFound(c, "Todo list not found")
		return
	}

	h.listsChanged(c)
	RespondNoContent(c)
}

// APICompleteAll handles POST /api/lists/:id/complete_all
func (h *Handlers) APICompleteAll(c *gin.Context) {
	s := sessionStore(c)
	list, ok := apiList(c, s)
	if !ok {
		return
	}
	s.CompleteAllTodos(list.ID)

	h.listChanged(c, list.ID)
	RespondData(c, listDetail(s, list))
}

// APICreateTodo handles POST /api/lists/:id/todos
func (h *Handlers) APICreateTodo(c *gin.Context) {
	s := sessionStore(c)
	list, ok := apiList(c, s)
	if !ok {
		return
	}
	raw, ok := bindTitle(c)
	if !ok {
		return
	}

	title, problems := validateTitle(raw, todoTitleMessages)
	if len(problems) > 0 {
		RespondValidationError(c, "Invalid todo title", titleDetails(problems))
		return
	}
	s.CreateTodo(list.ID, title)
	todo := list.Todos[len(list.Todos)-1]

	h.listChanged(c, list.ID)
	RespondCreated(c, todo, fmt.Sprintf("/api/lists/%d/todos/%d", list.ID, todo.ID))
}

// APIToggleTodo handles POST /api/lists/:id/todos/:todoId/toggle
func (h *Handlers) APIToggleTodo(c *gin.Context) {
	s := sessionStore(c)
	listID, okList := paramID(c, "id")
	todoID, okTodo := paramID(c, "todoId")
	if !okList || !okTodo || !s.ToggleDoneTodo(listID, todoID) {
		RespondNotFound(c, "Todo not found")
		return
	}

	todo, _ := s.LoadTodo(listID, todoID)
	h.listChanged(c, listID)
	RespondData(c, todo)
}

// APIDeleteTodo handles DELETE /api/lists/:id/todos/:todoId
func (h *Handlers) APIDeleteTodo(c *gin.Context) {
	s := sessionStore(c)
	listID, okList := paramID(c, "id")
	todoID, okTodo := paramID(c, "todoId")
	if !okList || !okTodo || !s.DeleteTodo(listID, todoID) {
		RespondNotFound(c, "Todo not found")
		return
	}

	h.listChanged(c, listID)
	RespondNoContent(c)
}
