// Package store is the only way request handlers read or change the todo
// lists held in a session. It works on the session's data in place and
// never does I/O; the session middleware persists whatever it leaves behind.
package store

import (
	"errors"
	"slices"

	"github.com/xiaoyuanzhu-com/todos/models"
	"github.com/xiaoyuanzhu-com/todos/session"
)

var (
	// ErrNotFound means the requested list or todo is not in the session
	ErrNotFound = errors.New("not found")
	// ErrDuplicateTitle means another list in the session already has the title
	ErrDuplicateTitle = errors.New("duplicate list title")
)

// SessionStore wraps one session's todo lists
type SessionStore struct {
	data *session.Data
}

// TodoListInfo is a list with the counts shown on the "all lists" page
type TodoListInfo struct {
	List      *models.TodoList
	CountAll  int
	CountDone int
	IsDone    bool
}

// New wraps the session data, giving it an empty list collection if it
// has none yet
func New(data *session.Data) *SessionStore {
	if data.TodoLists == nil {
		data.TodoLists = []*models.TodoList{}
	}
	return &SessionStore{data: data}
}

// SortedTodoLists returns all lists, open ones first, by title
func (s *SessionStore) SortedTodoLists() []*models.TodoList {
	return models.SortTodoLists(s.data.TodoLists)
}

// TodoListInfos returns the sorted lists with their display counts
func (s *SessionStore) TodoListInfos() []TodoListInfo {
	lists := s.SortedTodoLists()
	infos := make([]TodoListInfo, len(lists))
	for i, list := range lists {
		infos[i] = TodoListInfo{
			List:      list,
			CountAll:  list.CountAll(),
			CountDone: list.CountDone(),
			IsDone:    list.IsDone(),
		}
	}
	return infos
}

// SortedTodos returns the list's todos, open ones first, by title
func (s *SessionStore) SortedTodos(list *models.TodoList) []*models.Todo {
	return list.SortedTodos()
}

// LoadTodoList finds a list by id
func (s *SessionStore) LoadTodoList(listID int) (*models.TodoList, bool) {
	for _, list := range s.data.TodoLists {
		if list.ID == listID {
			return list, true
		}
	}
	return nil, false
}

// LoadTodo finds a todo by list id and todo id
func (s *SessionStore) LoadTodo(listID, todoID int) (*models.Todo, bool) {
	list, ok := s.LoadTodoList(listID)
	if !ok {
		return nil, false
	}
	return list.FindByID(todoID)
}

// IsDoneTodoList reports whether the list has todos and all are done
func (s *SessionStore) IsDoneTodoList(list *models.TodoList) bool {
	return list.IsDone()
}

// HasUndoneTodos reports whether the list has any open todo
func (s *SessionStore) HasUndoneTodos(list *models.TodoList) bool {
	return list.HasUndone()
}

// ToggleDoneTodo flips a todo's done flag and reports whether it was found
func (s *SessionStore) ToggleDoneTodo(listID, todoID int) bool {
	todo, ok := s.LoadTodo(listID, todoID)
	if !ok {
		return false
	}
	todo.ToggleDone()
	return true
}

// DeleteTodo removes a todo and reports whether it was found
func (s *SessionStore) DeleteTodo(listID, todoID int) bool {
	list, ok := s.LoadTodoList(listID)
	if !ok {
		return false
	}
	return list.RemoveByID(todoID)
}

// CompleteAllTodos marks every todo in the list done and reports whether
// the list was found
func (s *SessionStore) CompleteAllTodos(listID int) bool {
	list, ok := s.LoadTodoList(listID)
	if !ok {
		return false
	}
	list.MarkAllDone()
	return true
}

// CreateTodo adds a todo to the list and reports whether the list was found
func (s *SessionStore) CreateTodo(listID int, title string) bool {
	list, ok := s.LoadTodoList(listID)
	if !ok {
		return false
	}
	list.NewTodo(title)
	return true
}

// IsUniqueTitle reports whether no list other than excludeID uses title.
// Pass 0 as excludeID when creating.
func (s *SessionStore) IsUniqueTitle(title string, excludeID int) bool {
	return !slices.ContainsFunc(s.data.TodoLists, func(list *models.TodoList) bool {
		return list.ID != excludeID && list.Title == title
	})
}

// CreateTodoList adds a new list with the next session-wide id
func (s *SessionStore) CreateTodoList(title string) (*models.TodoList, error) {
	if !s.IsUniqueTitle(title, 0) {
		return nil, ErrDuplicateTitle
	}

	s.data.LastListID++
	list := models.NewTodoList(s.data.LastListID, title)
	s.data.TodoLists = append(s.data.TodoLists, list)
	return list, nil
}

// DeleteTodoList removes a list and all its todos, and reports whether it
// was found
func (s *SessionStore) DeleteTodoList(listID int) bool {
	idx := slices.IndexFunc(s.data.TodoLists, func(list *models.TodoList) bool {
		return list.ID == listID
	})
	if idx == -1 {
		return false
	}
	s.data.TodoLists = slices.Delete(s.data.TodoLists, idx, idx+1)
	return true
}

// SetTodoListTitle renames a list. Keeping the current title is allowed.
func (s *SessionStore) SetTodoListTitle(listID int, title string) error {
	list, ok := s.LoadTodoList(listID)
	if !ok {
		return ErrNotFound
	}
	if !s.IsUniqueTitle(title, listID) {
		return ErrDuplicateTitle
	}
	list.SetTitle(title)
	return nil
}
