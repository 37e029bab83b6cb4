package session

import "github.com/xiaoyuanzhu-com/todos/models"

// DataVersion is the current layout of the serialized session
const DataVersion = 1

// Flash message kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Data is everything a session holds between requests
type Data struct {
	Version int `json:"version"`

	// TodoLists is owned by the session; the store package reads and
	// writes it in place.
	TodoLists []*models.TodoList `json:"todoLists"`

	// LastListID is the highest list id ever handed out in this session
	LastListID int `json:"lastListId"`

	// Flash holds one-shot messages keyed by kind
	Flash map[string][]string `json:"flash,omitempty"`
}

// NewData returns state for a session seen for the first time
func NewData() *Data {
	return &Data{
		Version:   DataVersion,
		TodoLists: []*models.TodoList{},
	}
}

// AddFlash queues a message to show on the next rendered page
func (d *Data) AddFlash(kind, message string) {
	if d.Flash == nil {
		d.Flash = make(map[string][]string)
	}
	d.Flash[kind] = append(d.Flash[kind], message)
}

// TakeFlash returns the queued messages and clears them
func (d *Data) TakeFlash() map[string][]string {
	flash := d.Flash
	d.Flash = nil
	if flash == nil {
		return map[string][]string{}
	}
	return flash
}
