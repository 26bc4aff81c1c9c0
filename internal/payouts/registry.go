package payouts

import (
	"PayoutDesk/internal/core/ports"
	"sync"

	"github.com/rs/zerolog"
)

// Desks keeps one Desk per operator chat, created on first use.
type Desks struct {
	api        ports.PayoutAPI
	bus        ports.EventBus
	opts       Options
	baseLogger *zerolog.Logger

	mu    sync.RWMutex
	desks map[int64]*Desk
}

// NewDesks creates an empty registry; desks are created on first contact.
func NewDesks(api ports.PayoutAPI, bus ports.EventBus, opts Options, baseLogger *zerolog.Logger) *Desks {
	return &Desks{
		api:        api,
		bus:        bus,
		opts:       opts,
		baseLogger: baseLogger,
		desks:      make(map[int64]*Desk),
	}
}

// Get returns the desk of chatID, creating it when needed. The bool reports
// whether it was just created and still needs a Load.
func (r *Desks) Get(chatID int64) (*Desk, bool) {
	r.mu.RLock()
	d, ok := r.desks[chatID]
	r.mu.RUnlock()
	if ok {
		return d, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.desks[chatID]; ok {
		return d, false
	}
	d = NewDesk(chatID, r.api, r.bus, r.opts, r.baseLogger)
	r.desks[chatID] = d
	return d, true
}

// Lookup returns an existing desk only.
func (r *Desks) Lookup(chatID int64) (*Desk, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.desks[chatID]
	return d, ok
}

// All returns every live desk.
func (r *Desks) All() []*Desk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Desk, 0, len(r.desks))
	for _, d := range r.desks {
		out = append(out, d)
	}
	return out
}

// Drop closes and forgets the desk of chatID.
func (r *Desks) Drop(chatID int64) {
	r.mu.Lock()
	d, ok := r.desks[chatID]
	delete(r.desks, chatID)
	r.mu.Unlock()
	if ok {
		d.Close()
	}
}
