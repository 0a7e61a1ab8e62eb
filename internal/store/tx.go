package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"mops-cli/internal/model"
)

type TxState int

const (
	TxPending TxState = iota
	TxConfirmed
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tx is an optimistic local change awaiting confirmation from the backend.
// A failed Tx reverts its change exactly once.
type Tx struct {
	id     uint64
	label  string
	store  *Store
	revert func(*Store)

	mu    sync.Mutex
	state TxState
	err   error
}

// Begin applies a local change immediately and returns the pending Tx.
// apply must return the function that undoes exactly what it did.
func (s *Store) Begin(label string, apply func(*Store) (revert func(*Store))) *Tx {
	s.mu.Lock()
	s.nextTx++
	id := s.nextTx
	s.pending[id] = label
	s.mu.Unlock()

	tx := &Tx{id: id, label: label, store: s}
	tx.revert = apply(s)
	return tx
}

func (t *Tx) Label() string { return t.label }

func (t *Tx) State() TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tx) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Confirm settles the Tx, keeping the local change. It reports false if the Tx
// was already settled.
func (t *Tx) Confirm() bool {
	t.mu.Lock()
	if t.state != TxPending {
		t.mu.Unlock()
		return false
	}
	t.state = TxConfirmed
	t.mu.Unlock()
	t.store.settle(t.id)
	return true
}

// Fail settles the Tx and reverts the local change. It reports false if the
// Tx was already settled.
func (t *Tx) Fail(err error) bool {
	t.mu.Lock()
	if t.state != TxPending {
		t.mu.Unlock()
		return false
	}
	t.state = TxFailed
	t.err = err
	t.mu.Unlock()
	if t.revert != nil {
		t.revert(t.store)
	}
	t.store.settle(t.id)
	return true
}

func (s *Store) settle(id uint64) {
	s.mutate(func() bool {
		delete(s.pending, id)
		return true
	})
}

// Pending returns the labels of unsettled transactions.
func (s *Store) Pending() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.pending[id])
	}
	return out
}

// BeginTaskPatch optimistically patches a task. Failing the Tx reverts each
// patched field to its old value, but only while the task still holds the
// value this patch wrote; a later change to the same field wins.
func (s *Store) BeginTaskPatch(id string, p TaskPatch) (*Tx, bool) {
	id = strings.TrimSpace(id)
	if _, ok := s.Task(id); !ok {
		return nil, false
	}
	tx := s.Begin("update task "+id, func(st *Store) func(*Store) {
		prev, after, ok := st.patchTask(id, p)
		if !ok {
			return nil
		}
		return func(st *Store) { st.revertTaskPatch(id, p, prev, after) }
	})
	return tx, true
}

func (s *Store) patchTask(id string, p TaskPatch) (prev, after model.Task, ok bool) {
	s.mutate(func() bool {
		t, found := s.tasks[id]
		if !found {
			return false
		}
		prev = cloneTask(t)
		p.apply(&t)
		s.tasks[id] = t
		after = cloneTask(t)
		ok = true
		return true
	})
	return prev, after, ok
}

func (s *Store) revertTaskPatch(id string, p TaskPatch, prev, after model.Task) bool {
	return s.mutate(func() bool {
		t, ok := s.tasks[id]
		if !ok {
			return false
		}
		if p.Title != nil && t.Title == after.Title {
			t.Title = prev.Title
		}
		if p.Description != nil && t.Description == after.Description {
			t.Description = prev.Description
		}
		if p.Status != nil && t.Status == after.Status {
			t.Status = prev.Status
		}
		if p.Priority != nil && t.Priority == after.Priority {
			t.Priority = prev.Priority
		}
		if (p.Assignee != nil || p.ClearAssignee) && sameUser(t.Assignee, after.Assignee) {
			t.Assignee = copyUser(prev.Assignee)
		}
		if (p.DueDate != nil || p.ClearDueDate) && sameTime(t.DueDate, after.DueDate) {
			t.DueDate = copyTime(prev.DueDate)
		}
		if p.EstimatedHours != nil && sameFloat(t.EstimatedHours, after.EstimatedHours) {
			t.EstimatedHours = copyFloat(prev.EstimatedHours)
		}
		s.tasks[id] = t
		return true
	})
}

// BeginCampaignPatch optimistically patches a campaign. Rollback follows the
// same per-field rule as BeginTaskPatch.
func (s *Store) BeginCampaignPatch(id string, p CampaignPatch) (*Tx, bool) {
	id = strings.TrimSpace(id)
	if _, ok := s.Campaign(id); !ok {
		return nil, false
	}
	tx := s.Begin("update campaign "+id, func(st *Store) func(*Store) {
		prev, after, ok := st.patchCampaign(id, p)
		if !ok {
			return nil
		}
		return func(st *Store) { st.revertCampaignPatch(id, p, prev, after) }
	})
	return tx, true
}

func (s *Store) patchCampaign(id string, p CampaignPatch) (prev, after model.Campaign, ok bool) {
	s.mutate(func() bool {
		i := s.campaignIndex(id)
		if i < 0 {
			return false
		}
		prev = cloneCampaign(s.campaigns[i])
		p.apply(&s.campaigns[i])
		s.campaigns[i].UpdatedAt = time.Now().UTC()
		after = cloneCampaign(s.campaigns[i])
		ok = true
		return true
	})
	return prev, after, ok
}

func (s *Store) revertCampaignPatch(id string, p CampaignPatch, prev, after model.Campaign) bool {
	return s.mutate(func() bool {
		i := s.campaignIndex(id)
		if i < 0 {
			return false
		}
		c := &s.campaigns[i]
		if p.Name != nil && c.Name == after.Name {
			c.Name = prev.Name
		}
		if p.Summary != nil && c.Summary == after.Summary {
			c.Summary = prev.Summary
		}
		if p.Description != nil && c.Description == after.Description {
			c.Description = prev.Description
		}
		if p.Status != nil && c.Status == after.Status {
			c.Status = prev.Status
		}
		if p.Health != nil && c.Health == after.Health {
			c.Health = prev.Health
		}
		if p.Priority != nil && c.Priority == after.Priority {
			c.Priority = prev.Priority
		}
		if (p.StartDate != nil || p.ClearStartDate) && sameTime(c.StartDate, after.StartDate) {
			c.StartDate = copyTime(prev.StartDate)
		}
		if (p.TargetDate != nil || p.ClearTargetDate) && sameTime(c.TargetDate, after.TargetDate) {
			c.TargetDate = copyTime(prev.TargetDate)
		}
		if (p.Lead != nil || p.ClearLead) && sameUser(c.Lead, after.Lead) {
			c.Lead = copyUser(prev.Lead)
		}
		if c.UpdatedAt.Equal(after.UpdatedAt) {
			c.UpdatedAt = prev.UpdatedAt
		}
		return true
	})
}

func sameUser(a, b *model.UserRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyUser(u *model.UserRef) *model.UserRef {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// BeginScheduleAdd optimistically inserts a placeholder schedule. Failing the
// Tx removes it; on success callers swap in the backend copy with ReplaceSchedule.
func (s *Store) BeginScheduleAdd(placeholder model.Schedule) *Tx {
	return s.Begin("schedule "+placeholder.ContentID, func(st *Store) func(*Store) {
		st.AddSchedule(placeholder)
		return func(st *Store) { st.RemoveSchedule(placeholder.ID) }
	})
}
