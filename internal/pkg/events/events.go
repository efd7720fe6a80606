package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind names a portfolio state transition
type Kind string

const (
	KindSubmitted     Kind = "submitted"
	KindApproved      Kind = "approved"
	KindForwarded     Kind = "forwarded"
	KindRejected      Kind = "rejected"
	KindAdminApproved Kind = "admin_approved"
	KindAdminRejected Kind = "admin_rejected"
	KindPDFGenerated  Kind = "pdf_generated"
)

// Event describes a committed transition of one student's portfolio
type Event struct {
	Kind        Kind      `json:"kind"`
	StudentID   string    `json:"studentId"`
	PortfolioID string    `json:"portfolioId"`
	Status      string    `json:"status"`
	Remark      string    `json:"remark,omitempty"`
	PDFURL      string    `json:"pdfUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher receives events after the transition they describe has been stored.
// Implementations must not block the caller.
type Publisher interface {
	Publish(Event)
}

// Observer is a callback registered with OnTransition
type Observer func(Event)

// Bus dispatches events to registered observers in registration order.
// A panicking observer is logged and skipped; it never reaches the publisher.
type Bus struct {
	mu        sync.RWMutex
	observers []*observerEntry
	logger    zerolog.Logger
}

type observerEntry struct {
	fn Observer
}

// NewBus creates an empty Bus
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{logger: logger}
}

// OnTransition registers fn and returns a function that removes it again
func (b *Bus) OnTransition(fn Observer) (unsubscribe func()) {
	entry := &observerEntry{fn: fn}

	b.mu.Lock()
	b.observers = append(b.observers, entry)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.observers {
			if e == entry {
				b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every observer registered at call time
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	observers := make([]*observerEntry, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, o := range observers {
		b.deliver(o.fn, ev)
	}
}

func (b *Bus) deliver(fn Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("kind", string(ev.Kind)).
				Str("studentId", ev.StudentID).
				Msg("Transition observer panicked")
		}
	}()
	fn(ev)
}

// Len returns the number of registered observers
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(Event) {}
