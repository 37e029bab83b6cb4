package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/log"
	"github.com/xiaoyuanzhu-com/todos/notifications"
	"github.com/xiaoyuanzhu-com/todos/session"
)

var eventsLogger = log.GetLogger("ApiEvents")

const heartbeatInterval = 30 * time.Second

// EventStream handles GET /api/events (SSE).
// Events are scoped to the caller's session.
func (h *Handlers) EventStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	events, unsubscribe := h.notif.Subscribe(session.ID(c))
	defer unsubscribe()

	c.SSEvent("message", notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UnixMilli(),
	})
	c.Writer.Flush()

	eventsLogger.Debug().Msg("client connected to event stream")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("message", event)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			eventsLogger.Debug().Msg("client disconnected from event stream")
			return
		}
	}
}
