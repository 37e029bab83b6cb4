package models

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"
)

// Todo is a single item in a todo list
type Todo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// MarkDone marks the todo as done
func (t *Todo) MarkDone() {
	t.Done = true
}

// MarkUndone marks the todo as not done
func (t *Todo) MarkUndone() {
	t.Done = false
}

// ToggleDone flips the todo's done flag
func (t *Todo) ToggleDone() {
	t.Done = !t.Done
}

// TodoList is a titled, ordered collection of todos.
// Todos keeps creation order; views sort copies of it.
type TodoList struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Todos []*Todo `json:"todos"`

	// LastTodoID is the highest todo id ever handed out in this list.
	// It only grows, so ids of deleted todos are never reused.
	LastTodoID int `json:"lastTodoId"`
}

// NewTodoList creates an empty list
func NewTodoList(id int, title string) *TodoList {
	return &TodoList{
		ID:    id,
		Title: title,
		Todos: []*Todo{},
	}
}

// NewTodo creates a todo with the next id and appends it to the list
func (l *TodoList) NewTodo(title string) *Todo {
	l.LastTodoID++
	todo := &Todo{ID: l.LastTodoID, Title: title}
	l.Todos = append(l.Todos, todo)
	return todo
}

// Add appends an existing todo. A todo whose id is not above every id the
// list has handed out (zero, taken, or once deleted) gets the next id.
func (l *TodoList) Add(todo *Todo) {
	if todo.ID <= l.LastTodoID {
		todo.ID = l.LastTodoID + 1
	}
	l.LastTodoID = todo.ID
	l.Todos = append(l.Todos, todo)
}

// FindByID returns the todo with the given id
func (l *TodoList) FindByID(id int) (*Todo, bool) {
	for _, todo := range l.Todos {
		if todo.ID == id {
			return todo, true
		}
	}
	return nil, false
}

// RemoveByID removes the todo with the given id and reports whether it existed
func (l *TodoList) RemoveByID(id int) bool {
	idx := slices.IndexFunc(l.Todos, func(todo *Todo) bool { return todo.ID == id })
	if idx == -1 {
		return false
	}
	l.Todos = slices.Delete(l.Todos, idx, idx+1)
	return true
}

// IsDone reports whether the list has todos and all of them are done.
// An empty list is not done.
func (l *TodoList) IsDone() bool {
	return len(l.Todos) > 0 && !l.HasUndone()
}

// HasUndone reports whether any todo is still open
func (l *TodoList) HasUndone() bool {
	return slices.ContainsFunc(l.Todos, func(todo *Todo) bool { return !todo.Done })
}

// MarkAllDone marks every todo as done
func (l *TodoList) MarkAllDone() {
	for _, todo := range l.Todos {
		todo.MarkDone()
	}
}

// SetTitle renames the list
func (l *TodoList) SetTitle(title string) {
	l.Title = title
}

// CountAll returns the number of todos
func (l *TodoList) CountAll() int {
	return len(l.Todos)
}

// CountDone returns the number of done todos
func (l *TodoList) CountDone() int {
	n := 0
	for _, todo := range l.Todos {
		if todo.Done {
			n++
		}
	}
	return n
}

// SortedTodos returns the todos with open ones first, each group ordered by
// title ignoring case. The stored order is left untouched.
func (l *TodoList) SortedTodos() []*Todo {
	return sortByDoneThenTitle(l.Todos,
		func(todo *Todo) bool { return todo.Done },
		func(todo *Todo) string { return todo.Title },
	)
}

// SortTodoLists returns lists with open todos first and finished (or empty)
// lists after, each group ordered by title ignoring case. The input slice is
// not modified.
func SortTodoLists(lists []*TodoList) []*TodoList {
	return sortByDoneThenTitle(lists,
		func(list *TodoList) bool { return !list.HasUndone() },
		func(list *TodoList) string { return list.Title },
	)
}

// sortByDoneThenTitle is a stable sort, so equal keys keep insertion order
func sortByDoneThenTitle[T any](items []T, done func(T) bool, title func(T) string) []T {
	type keyed struct {
		item T
		done bool
		key  string
	}

	fold := cases.Fold()
	entries := make([]keyed, len(items))
	for i, item := range items {
		entries[i] = keyed{item: item, done: done(item), key: fold.String(title(item))}
	}

	slices.SortStableFunc(entries, func(a, b keyed) int {
		if a.done != b.done {
			if a.done {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.key, b.key)
	})

	sorted := make([]T, len(entries))
	for i, e := range entries {
		sorted[i] = e.item
	}
	return sorted
}
