package agent

import (
	"sync"

	"lcgwalk/domain/core"
	"lcgwalk/domain/motion"
	"lcgwalk/domain/sequence"
)

// EventKind names a walker lifecycle signal.
type EventKind string

const (
	EventSequenceReady     EventKind = "sequence_ready"
	EventSequenceExhausted EventKind = "sequence_exhausted"
	EventDirectionChanged  EventKind = "direction_changed"
)

// Event is delivered to observers synchronously on the walker's goroutine.
type Event struct {
	Kind    EventKind
	Agent   core.AgentID
	Intent  motion.Intent
	Session *sequence.Session
}

// Observer receives walker events.
type Observer func(Event)

// Subscription is returned by Subscribe. Owners must call Unsubscribe when
// they are torn down.
type Subscription struct {
	signals *Signals
	id      int
	once    sync.Once
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.signals.remove(s.id)
	})
}

// Signals is an explicit observer registry.
type Signals struct {
	mu        sync.Mutex
	next      int
	observers map[int]Observer
	order     []int
}

// NewSignals creates an empty registry.
func NewSignals() *Signals {
	return &Signals{observers: make(map[int]Observer)}
}

// Subscribe registers obs and returns its subscription.
func (s *Signals) Subscribe(obs Observer) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.observers[s.next] = obs
	s.order = append(s.order, s.next)
	return &Subscription{signals: s, id: s.next}
}

// Len returns the number of registered observers.
func (s *Signals) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Emit delivers ev to every observer in registration order.
func (s *Signals) Emit(ev Event) {
	s.mu.Lock()
	targets := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		targets = append(targets, s.observers[id])
	}
	s.mu.Unlock()

	for _, obs := range targets {
		obs(ev)
	}
}

// Clear drops every observer.
func (s *Signals) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = make(map[int]Observer)
	s.order = nil
}

func (s *Signals) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.observers[id]; !ok {
		return
	}
	delete(s.observers, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
