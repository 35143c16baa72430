package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
)

// ErrUnknownEventType means an outbox row names a type nothing registered.
// The processor marks such entries failed rather than dropping them.
var ErrUnknownEventType = errors.New("unknown event type")

// EventSerializer turns events into outbox payloads and back. Decoding needs
// the concrete type, so every type the outbox may carry has a constructor here.
type EventSerializer struct {
	mu    sync.RWMutex
	ctors map[string]func() shared.DomainEvent
}

func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{ctors: make(map[string]func() shared.DomainEvent)}
	RegisterAllEvents(s)
	return s
}

// RegisterType binds eventType to *E. Registering a type twice replaces the
// earlier binding.
func RegisterType[E any, P interface {
	*E
	shared.DomainEvent
}](s *EventSerializer, eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctors[eventType] = func() shared.DomainEvent { return P(new(E)) }
}

func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	return data, nil
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	ctor, ok := s.ctors[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}

	event := ctor()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventType, err)
	}
	return event, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ctors[eventType]
	return ok
}

// RegisteredTypes lists the known event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	types := make([]string, 0, len(s.ctors))
	for t := range s.ctors {
		types = append(types, t)
	}
	s.mu.RUnlock()
	slices.Sort(types)
	return types
}
