package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrBusClosed is returned when operating on a closed bus
	ErrBusClosed = errors.New("sink: bus closed")
	// ErrSubscriberExists is returned when a subscriber ID is taken
	ErrSubscriberExists = errors.New("sink: subscriber already exists")
	// ErrSubscriberNotFound is returned when unsubscribing an unknown ID
	ErrSubscriberNotFound = errors.New("sink: subscriber not found")
)

// SubscriberStats tracks event distribution for one subscriber.
type SubscriberStats struct {
	Sent    uint64
	Dropped uint64
	Errors  uint64
}

// BusStats is a snapshot of bus-wide distribution counters.
type BusStats struct {
	TotalPublished uint64
	TotalSent      uint64
	TotalDropped   uint64
	Subscribers    map[string]SubscriberStats
}

// Bus distributes scan events to multiple sinks, non-blocking.
//
// Publish never blocks: each subscriber has a small buffer and a delivery
// goroutine; when the buffer is full the event is dropped for that
// subscriber and counted. Scan events are sparse (debounced upstream), so a
// drop here means a genuinely stuck sink, not ordinary load.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]*subscriber
	closed bool

	published uint64
}

type subscriber struct {
	id     string
	sink   Sink
	ch     chan Event
	done   chan struct{}
	cancel context.CancelFunc

	mu    sync.Mutex
	stats SubscriberStats
}

// subscriberBuffer bounds how many undelivered events one sink may hold.
const subscriberBuffer = 16

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]*subscriber)}
}

// Subscribe registers a sink under a unique id and starts its delivery
// goroutine.
func (b *Bus) Subscribe(id string, s Sink) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	if _, ok := b.subs[id]; ok {
		return ErrSubscriberExists
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscriber{
		id:     id,
		sink:   s,
		ch:     make(chan Event, subscriberBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	b.subs[id] = sub
	go sub.deliver(ctx)
	return nil
}

// Unsubscribe removes a subscriber and waits for its delivery goroutine to
// finish, so no OnScan call for it runs after Unsubscribe returns.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()
	if !ok {
		return ErrSubscriberNotFound
	}
	sub.cancel()
	close(sub.ch)
	<-sub.done
	return nil
}

// Publish fans an event out to all subscribers. Never blocks; full
// subscribers drop the event. No-op on a closed bus.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.published++

	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			sub.mu.Lock()
			sub.stats.Dropped++
			sub.mu.Unlock()
			slog.Warn("sink: dropping event, subscriber stuck",
				"subscriber", sub.id,
				"event_id", ev.ID,
			)
		}
	}
}

// Close shuts the bus down: all subscribers are unsubscribed and their
// delivery goroutines drained. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[string]*subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
		close(sub.ch)
		<-sub.done
	}
}

// Stats returns a snapshot of distribution counters.
func (b *Bus) Stats() BusStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := BusStats{
		TotalPublished: b.published,
		Subscribers:    make(map[string]SubscriberStats, len(b.subs)),
	}
	for id, sub := range b.subs {
		sub.mu.Lock()
		st := sub.stats
		sub.mu.Unlock()
		out.Subscribers[id] = st
		out.TotalSent += st.Sent
		out.TotalDropped += st.Dropped
	}
	return out
}

func (s *subscriber) deliver(ctx context.Context) {
	defer close(s.done)
	for ev := range s.ch {
		if err := s.sink.OnScan(ctx, ev); err != nil {
			s.mu.Lock()
			s.stats.Errors++
			s.mu.Unlock()
			slog.Warn("sink: subscriber error",
				"subscriber", s.id,
				"event_id", ev.ID,
				"error", err,
			)
			continue
		}
		s.mu.Lock()
		s.stats.Sent++
		s.mu.Unlock()
	}
}
