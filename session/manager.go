package session

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xiaoyuanzhu-com/todos/db"
	"github.com/xiaoyuanzhu-com/todos/log"
)

var logger = log.GetLogger("Session")

const contextKeyState = "session_state"

// Backend persists serialized sessions
type Backend interface {
	CreateSession(id string, data []byte, ttl time.Duration) (*db.Session, error)
	GetSession(id string) (*db.Session, error)
	SaveSessionData(id string, data []byte, ttl time.Duration) error
	TouchSession(id string, ttl time.Duration) error
}

// Config holds session transport settings
type Config struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Manager loads a session for every request and writes it back afterwards
type Manager struct {
	cfg     Config
	backend Backend
}

// state is one request's view of its session
type state struct {
	id       string
	data     *Data
	original []byte
}

// NewManager creates a session manager
func NewManager(cfg Config, backend Backend) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "todos-session-id"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 31 * 24 * time.Hour
	}
	return &Manager{cfg: cfg, backend: backend}
}

// Middleware attaches the session to the request and saves it when the
// handler chain returns. Requests in the same session are not serialized;
// the last save wins.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := m.load(c)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load session")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(contextKeyState, st)
		c.Set(log.ContextKeySessionID, st.id)

		// The cookie has to go out before the handler writes the response
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cfg.CookieName, st.id, int(m.cfg.MaxAge.Seconds()), "/", "", m.cfg.Secure, true)

		c.Next()

		if err := m.save(st); err != nil {
			logger.Error().Err(err).Str("session", shortID(st.id)).Msg("failed to save session")
		}
	}
}

func (m *Manager) load(c *gin.Context) (*state, error) {
	if id, err := c.Cookie(m.cfg.CookieName); err == nil && id != "" {
		stored, err := m.backend.GetSession(id)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if stored != nil {
			data, err := Decode(stored.Data)
			if err == nil {
				return &state{id: id, data: data, original: stored.Data}, nil
			}
			// Keep the id, start over with empty state; the next save overwrites the row
			logger.Warn().Err(err).Msg("discarding unreadable session data")
			return &state{id: id, data: NewData()}, nil
		}
	}

	id := uuid.New().String()
	data := NewData()
	encoded, err := Encode(data)
	if err != nil {
		return nil, err
	}
	if _, err := m.backend.CreateSession(id, encoded, m.cfg.MaxAge); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger.Debug().Str("session", shortID(id)).Msg("session created")
	return &state{id: id, data: data, original: encoded}, nil
}

func (m *Manager) save(st *state) error {
	encoded, err := Encode(st.data)
	if err != nil {
		return err
	}
	if bytes.Equal(encoded, st.original) {
		return m.backend.TouchSession(st.id, m.cfg.MaxAge)
	}
	return m.backend.SaveSessionData(st.id, encoded, m.cfg.MaxAge)
}

// Get returns the request's session data. The session middleware must have run.
func Get(c *gin.Context) *Data {
	return c.MustGet(contextKeyState).(*state).data
}

// ID returns the request's session id
func ID(c *gin.Context) string {
	return c.MustGet(contextKeyState).(*state).id
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
