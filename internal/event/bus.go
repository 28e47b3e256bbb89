// Package event provides a synchronous publish/subscribe bus used to
// decouple the engine's components from observers such as scripts,
// metrics, and logging.
package event

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrInvalidTopic is returned for empty or malformed topic patterns.
	ErrInvalidTopic = errors.New("invalid topic pattern")
	// ErrNotFound is returned when unsubscribing an unknown ID.
	ErrNotFound = errors.New("subscription not found")
)

// Envelope wraps a published payload with routing metadata.
type Envelope struct {
	ID      string
	Topic   string
	Time    time.Time
	Payload any
}

// Handler receives published envelopes. Handlers run synchronously on
// the publisher's goroutine; a panicking handler is contained and
// counted, and does not stop delivery to other subscribers.
type Handler func(Envelope)

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id      string
	pattern string
	handler Handler
	active  atomic.Bool
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

// Pattern returns the topic pattern the subscription matches.
func (s *Subscription) Pattern() string { return s.pattern }

// Stats is a point-in-time snapshot of bus activity.
type Stats struct {
	Published   uint64
	Delivered   uint64
	Panics      uint64
	Subscribers int
}

// Bus routes envelopes from publishers to pattern-matched subscribers.
// All methods are safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*Subscription

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]*Subscription)}
}

// Subscribe registers handler for topics matching pattern. A pattern is
// either an exact topic, a prefix ending in "*" ("render.*"), or "*"
// for everything.
func (b *Bus) Subscribe(pattern string, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !validPattern(pattern) {
		return nil, ErrInvalidTopic
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: handler,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes the subscription with the given ID.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[id]
	if !ok {
		return ErrNotFound
	}
	sub.active.Store(false)
	delete(b.subs, id)
	return nil
}

// Publish delivers payload to every subscriber matching topic, in
// stable (pattern, id) order. Delivery is synchronous.
func (b *Bus) Publish(topic string, payload any) error {
	if !validTopic(topic) {
		return ErrInvalidTopic
	}
	b.published.Add(1)

	env := Envelope{
		ID:      uuid.NewString(),
		Topic:   topic,
		Time:    time.Now(),
		Payload: payload,
	}

	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if topicMatches(sub.pattern, topic) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].pattern != matched[j].pattern {
			return matched[i].pattern < matched[j].pattern
		}
		return matched[i].id < matched[j].id
	})

	for _, sub := range matched {
		if sub.active.Load() {
			b.deliver(sub, env)
		}
	}
	return nil
}

// deliver invokes one handler, containing panics.
func (b *Bus) deliver(sub *Subscription, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
		}
	}()
	sub.handler(env)
	b.delivered.Add(1)
}

// Stats returns a snapshot of bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:   b.published.Load(),
		Delivered:   b.delivered.Load(),
		Panics:      b.panics.Load(),
		Subscribers: n,
	}
}

func validTopic(topic string) bool {
	return topic != "" && !strings.Contains(topic, "*")
}

func validPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	if i := strings.Index(pattern, "*"); i >= 0 && i != len(pattern)-1 {
		return false
	}
	return true
}

// topicMatches reports whether pattern matches topic. "*" matches
// everything; a trailing "*" matches by prefix.
func topicMatches(pattern, topic string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(topic, pattern[:len(pattern)-1])
	}
	return pattern == topic
}
