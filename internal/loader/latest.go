// Package loader coordinates fetches so that only the most recently requested
// result for a collection is ever applied.
package loader

import (
	"context"
	"sync"
)

// Common keys. Any string works; these are the ones the controllers use.
const (
	KeyCampaigns = "campaigns"
	KeyDetail    = "campaign-detail"
	KeySchedules = "schedules"
)

// Latest tracks one in-flight request per key. Starting a new request for a
// key cancels the previous one, and a superseded request can no longer apply
// its result even if it completes anyway.
type Latest struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]*Ticket
}

func New() *Latest {
	return &Latest{inflight: map[string]*Ticket{}}
}

// Ticket identifies one request. Call Done when the request is finished.
type Ticket struct {
	l      *Latest
	key    string
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a request for key and returns the context it must run under.
func (l *Latest) Begin(parent context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	l.seq++
	t := &Ticket{l: l, key: key, seq: l.seq, cancel: cancel}
	prev := l.inflight[key]
	l.inflight[key] = t
	l.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}
	return ctx, t
}

func (t *Ticket) Seq() uint64 { return t.seq }

func (t *Ticket) Key() string { return t.key }

// Current reports whether no newer request for the same key has begun.
func (t *Ticket) Current() bool {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	return t.currentLocked()
}

func (t *Ticket) currentLocked() bool {
	cur, ok := t.l.inflight[t.key]
	return ok && cur == t
}

// Apply runs fn only if the ticket is still the newest for its key, and
// reports whether it ran. fn must not call Begin on the same Latest.
func (t *Ticket) Apply(fn func()) bool {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if !t.currentLocked() {
		return false
	}
	fn()
	return true
}

// Done releases the ticket's context. The key stops reporting Loading once
// its newest ticket is done.
func (t *Ticket) Done() {
	t.l.mu.Lock()
	if t.currentLocked() {
		delete(t.l.inflight, t.key)
	}
	t.l.mu.Unlock()
	t.cancel()
}

func (l *Latest) Loading(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.inflight[key]
	return ok
}

// Cancel abandons the in-flight request for key, if any.
func (l *Latest) Cancel(key string) {
	l.mu.Lock()
	t := l.inflight[key]
	delete(l.inflight, key)
	l.mu.Unlock()
	if t != nil {
		t.cancel()
	}
}

func (l *Latest) CancelAll() {
	l.mu.Lock()
	ts := make([]*Ticket, 0, len(l.inflight))
	for k, t := range l.inflight {
		ts = append(ts, t)
		delete(l.inflight, k)
	}
	l.mu.Unlock()
	for _, t := range ts {
		t.cancel()
	}
}
