package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/notifications"
	"github.com/xiaoyuanzhu-com/todos/session"
	"github.com/xiaoyuanzhu-com/todos/store"
)

var errNotFound = errors.New("list or todo not found")

// Handlers holds the services request handlers share
type Handlers struct {
	notif *notifications.Service
}

// NewHandlers creates a new Handlers instance
func NewHandlers(notif *notifications.Service) *Handlers {
	return &Handlers{notif: notif}
}

// sessionStore wraps the request's session data
func sessionStore(c *gin.Context) *store.SessionStore {
	return store.New(session.Get(c))
}

// paramID parses a numeric route parameter
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, false
	}
	return id, true
}

// render shows a page along with any flash messages queued in the session
func render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["flash"] = session.Get(c).TakeFlash()
	c.HTML(status, page, data)
}

// notFound answers HTML routes whose list or todo does not exist
func notFound(c *gin.Context) {
	_ = c.Error(errNotFound)
	c.String(http.StatusNotFound, "Not found.")
}

func flash(c *gin.Context, kind, message string) {
	session.Get(c).AddFlash(kind, message)
}

func (h *Handlers) listsChanged(c *gin.Context) {
	h.notif.NotifyListsChanged(session.ID(c))
}

func (h *Handlers) listChanged(c *gin.Context, listID int) {
	h.notif.NotifyListChanged(session.ID(c), listID)
}
