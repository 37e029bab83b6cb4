package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/log"
	"github.com/xiaoyuanzhu-com/todos/models"
	"github.com/xiaoyuanzhu-com/todos/session"
	"github.com/xiaoyuanzhu-com/todos/store"
	"github.com/xiaoyuanzhu-com/todos/views"
)

var listsLogger = log.GetLogger("ApiLists")

// RedirectToLists handles GET /
func RedirectToLists(c *gin.Context) {
	c.Redirect(http.StatusFound, "/lists")
}

// GetLists handles GET /lists
func (h *Handlers) GetLists(c *gin.Context) {
	s := sessionStore(c)
	render(c, http.StatusOK, views.PageLists, gin.H{
		"todoLists": s.TodoListInfos(),
	})
}

// NewListForm handles GET /lists/new
func (h *Handlers) NewListForm(c *gin.Context) {
	render(c, http.StatusOK, views.PageNewList, nil)
}

// CreateList handles POST /lists
func (h *Handlers) CreateList(c *gin.Context) {
	s := sessionStore(c)

	title, problems := validateListTitle(s, c.PostForm(listTitleMessages.Field), 0)
	if len(problems) == 0 {
		if _, err := s.CreateTodoList(title); err != nil {
			problems = append(problems, listTitleMessages.Unique)
		}
	}
	if len(problems) > 0 {
		flashErrors(c, problems)
		render(c, http.StatusOK, views.PageNewList, gin.H{
			"todoListTitle": title,
		})
		return
	}

	listsLogger.Info().Str("title", title).Msg("todo list created")
	flash(c, session.FlashSuccess, "The todo list has been created.")
	h.listsChanged(c)
	c.Redirect(http.StatusFound, "/lists")
}

// GetList handles GET /lists/:todoListId
func (h *Handlers) GetList(c *gin.Context) {
	s := sessionStore(c)
	list, ok := loadList(c, s)
	if !ok {
		notFound(c)
		return
	}
	render(c, http.StatusOK, views.PageList, listPage(s, list, ""))
}

// EditListForm handles GET /lists/:todoListId/edit
func (h *Handlers) EditListForm(c *gin.Context) {
	s := sessionStore(c)
	list, ok := loadList(c, s)
	if !ok {
		notFound(c)
		return
	}
	render(c, http.StatusOK, views.PageEditList, gin.H{
		"todoList": list,
	})
}

// UpdateList handles POST /lists/:todoListId/edit
func (h *Handlers) UpdateList(c *gin.Context) {
	s := sessionStore(c)
	list, ok := loadList(c, s)
	if !ok {
		notFound(c)
		return
	}

	title, problems := validateListTitle(s, c.PostForm(listTitleMessages.Field), list.ID)
	if len(problems) == 0 {
		err := s.SetTodoListTitle(list.ID, title)
		switch {
		case errors.Is(err, store.ErrDuplicateTitle):
			problems = append(problems, listTitleMessages.Unique)
		case err != nil:
			notFound(c)
			return
		}
	}
	if len(problems) > 0 {
		flashErrors(c, problems)
		render(c, http.StatusOK, views.PageEditList, gin.H{
			"todoList":      list,
			"todoListTitle": title,
		})
		return
	}

	flash(c, session.FlashSuccess, "Todo list updated.")
	h.listsChanged(c)
	h.listChanged(c, list.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/lists/%d", list.ID))
}

// DeleteList handles POST /lists/:todoListId/destroy
func (h *Handlers) DeleteList(c *gin.Context) {
	s := sessionStore(c)
	listID, ok := paramID(c, "todoListId")
	if !ok || !s.DeleteTodoList(listID) {
		notFound(c)
		return
	}

	listsLogger.Info().Int("listId", listID).Msg("todo list deleted")
	flash(c, session.FlashSuccess, "Todo list deleted.")
	h.listsChanged(c)
	c.Redirect(http.StatusFound, "/lists")
}

// CompleteAll handles POST /lists/:todoListId/complete_all
func (h *Handlers) CompleteAll(c *gin.Context) {
	s := sessionStore(c)
	listID, ok := paramID(c, "todoListId")
	if !ok || !s.CompleteAllTodos(listID) {
		notFound(c)
		return
	}

	flash(c, session.FlashSuccess, "All todos have been marked as done.")
	h.listChanged(c, listID)
	c.Redirect(http.StatusFound, fmt.Sprintf("/lists/%d", listID))
}

func loadList(c *gin.Context, s *store.SessionStore) (*models.TodoList, bool) {
	listID, ok := paramID(c, "todoListId")
	if !ok {
		return nil, false
	}
	return s.LoadTodoList(listID)
}

// listPage is the template data of a single list
func listPage(s *store.SessionStore, list *models.TodoList, todoTitle string) gin.H {
	return gin.H{
		"todoList":       list,
		"todos":          s.SortedTodos(list),
		"isDoneTodoList": s.IsDoneTodoList(list),
		"hasUndoneTodos": s.HasUndoneTodos(list),
		"todoTitle":      todoTitle,
	}
}

// validateListTitle runs the form rules and, when they pass, the
// uniqueness check. excludeID is the list being renamed, or 0.
func validateListTitle(s *store.SessionStore, raw string, excludeID int) (string, []string) {
	title, problems := validateTitle(raw, listTitleMessages)
	if len(problems) == 0 && !s.IsUniqueTitle(title, excludeID) {
		problems = append(problems, listTitleMessages.Unique)
	}
	return title, problems
}

func flashErrors(c *gin.Context, problems []string) {
	for _, msg := range problems {
		flash(c, session.FlashError, msg)
	}
}
