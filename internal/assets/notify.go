package assets

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
)

// Action is the kind of mutation that produced an Event.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event tells subscribers that cached data for Kind is stale.
type Event struct {
	Kind   models.Kind
	ID     uuid.UUID
	Action Action
}

// Subscriber reacts to an Event. Errors are logged by the Notifier and
// never reach the caller of the mutation.
type Subscriber func(ctx context.Context, ev Event) error

type subscription struct {
	name string
	fn   Subscriber
}

// Notifier fans mutation events out to named subscribers registered per
// asset kind. Publish runs subscribers synchronously in registration order.
type Notifier struct {
	mu   sync.RWMutex
	subs map[models.Kind][]subscription

	// gens counts publishes per kind. A list load that saw an older
	// generation must not fill the cache.
	genMu sync.Mutex
	gens  map[models.Kind]uint64
}

// NewNotifier returns a Notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[models.Kind][]subscription),
		gens: make(map[models.Kind]uint64),
	}
}

// Subscribe registers fn under name for the given kinds, or for every
// kind when none are given.
func (n *Notifier) Subscribe(name string, fn Subscriber, kinds ...models.Kind) {
	if len(kinds) == 0 {
		kinds = models.Kinds
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, k := range kinds {
		n.subs[k] = append(n.subs[k], subscription{name: name, fn: fn})
	}
}

// Subscribers returns the names subscribed to kind.
func (n *Notifier) Subscribers(kind models.Kind) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.subs[kind]))
	for _, s := range n.subs[kind] {
		names = append(names, s.name)
	}
	return names
}

// Publish delivers ev to every subscriber of ev.Kind.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	if n == nil {
		return
	}
	n.genMu.Lock()
	for _, k := range staleKinds(ev.Kind) {
		n.gens[k]++
	}
	n.genMu.Unlock()

	n.mu.RLock()
	subs := append([]subscription(nil), n.subs[ev.Kind]...)
	n.mu.RUnlock()

	for _, s := range subs {
		if err := s.fn(ctx, ev); err != nil {
			slog.Warn("invalidation subscriber failed",
				"subscriber", s.name,
				"kind", ev.Kind,
				"id", ev.ID,
				"action", ev.Action,
				"error", err,
			)
		}
	}
}

// generation returns the number of events published so far that made
// lists of kind stale.
func (n *Notifier) generation(kind models.Kind) uint64 {
	if n == nil {
		return 0
	}
	n.genMu.Lock()
	defer n.genMu.Unlock()
	return n.gens[kind]
}

// fillIfCurrent runs fill only while kind is still at generation gen.
// Publish bumps the generation before subscribers drop cached lists, so a
// fill either lands before the drop or is skipped.
func (n *Notifier) fillIfCurrent(kind models.Kind, gen uint64, fill func()) {
	if n == nil {
		fill()
		return
	}
	n.genMu.Lock()
	defer n.genMu.Unlock()
	if n.gens[kind] == gen {
		fill()
	}
}

// staleKinds lists the kinds whose cached lists an event of kind makes
// stale. Photo and video rows carry their category's name.
func staleKinds(kind models.Kind) []models.Kind {
	if kind == models.KindCategory {
		return []models.Kind{kind, models.KindPhoto, models.KindVideo}
	}
	return []models.Kind{kind}
}

// CacheLogger records invalidation events, see store.CacheLogStore.
type CacheLogger interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string) error
}

// InvalidateLists returns a subscriber that drops cached lists of the
// event's kind. A category change drops photo and video lists as well.
func InvalidateLists(cache ListCache) Subscriber {
	return func(ctx context.Context, ev Event) error {
		for _, k := range staleKinds(ev.Kind) {
			if err := cache.InvalidateKind(ctx, string(k)); err != nil {
				return err
			}
		}
		return nil
	}
}

// AuditLog returns a subscriber that records each event through logger.
func AuditLog(logger CacheLogger) Subscriber {
	return func(ctx context.Context, ev Event) error {
		return logger.Log(ctx, string(ev.Kind), ev.ID, string(ev.Action))
	}
}
