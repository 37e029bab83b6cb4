package notifications

import (
	"sync"
	"time"
)

// EventType represents the type of notification event
type EventType string

const (
	EventConnected    EventType = "connected"
	EventListsChanged EventType = "lists-changed"
	EventListChanged  EventType = "list-changed"
)

// Event represents a notification event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	ListID    int       `json:"listId,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Service fans events out to the open pages of a session, so one tab sees
// what another tab changed
type Service struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	closed      bool
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe creates a subscription for one session.
// Returns the event channel and an unsubscribe function.
func (s *Service) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	subs := s.subscribers[sessionID]
	if subs == nil {
		subs = make(map[chan Event]struct{})
		s.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Only close if the channel is still subscribed
		subs := s.subscribers[sessionID]
		if _, exists := subs[ch]; exists {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(s.subscribers, sessionID)
			}
		}
	}

	return ch, unsubscribe
}

// Notify sends an event to every subscriber of the session
func (s *Service) Notify(sessionID string, event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers[sessionID] {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// NotifyListsChanged signals that lists were created, renamed or deleted
func (s *Service) NotifyListsChanged(sessionID string) {
	s.Notify(sessionID, Event{Type: EventListsChanged})
}

// NotifyListChanged signals that todos of one list changed
func (s *Service) NotifyListChanged(sessionID string, listID int) {
	s.Notify(sessionID, Event{Type: EventListChanged, ListID: listID})
}

// Shutdown closes all subscriber channels
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for _, subs := range s.subscribers {
		for ch := range subs {
			close(ch)
		}
	}
	s.subscribers = make(map[string]map[chan Event]struct{})
}

// SubscriberCount returns the number of active subscribers across sessions
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, subs := range s.subscribers {
		n += len(subs)
	}
	return n
}
