// Package dnd turns drag gestures on the board and calendar into mutations.
//
// A Handler runs the per-board state machine:
//
//	idle --DragStart--> dragging
//	dragging --Drop(same column)--> idle (no mutation)
//	dragging --Drop(valid target)--> idle + one mutation
//	dragging --Cancel--> idle
//
// The handler never touches the store. It hands the mutation to an Emitter,
// which owns persistence and rollback.
package dnd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mops-cli/internal/model"
)

// Payload is the thing being dragged.
type Payload interface{ isPayload() }

type TaskPayload struct {
	TaskID string
	Status model.TaskStatus
}

type ContentPayload struct {
	ContentID  string
	CampaignID string
	Title      string
}

func (TaskPayload) isPayload()    {}
func (ContentPayload) isPayload() {}

// Target is where the payload was released.
type Target interface{ isTarget() }

type ColumnTarget struct {
	Status model.TaskStatus
}

type CalendarView string

const (
	ViewDay   CalendarView = "day"
	ViewWeek  CalendarView = "week"
	ViewMonth CalendarView = "month"
)

func ParseCalendarView(s string) (CalendarView, error) {
	switch CalendarView(strings.ToLower(strings.TrimSpace(s))) {
	case ViewDay:
		return ViewDay, nil
	case ViewWeek, "":
		return ViewWeek, nil
	case ViewMonth:
		return ViewMonth, nil
	default:
		return "", fmt.Errorf("invalid calendar view %q", s)
	}
}

// SlotTarget is a calendar cell. Hour and Minute are ignored on the month view.
type SlotTarget struct {
	Day    time.Time
	View   CalendarView
	Hour   int
	Minute int
}

func (ColumnTarget) isTarget() {}
func (SlotTarget) isTarget()   {}

// Mutation is the single change a valid drop produces.
type Mutation interface{ isMutation() }

type StatusChange struct {
	TaskID string
	From   model.TaskStatus
	To     model.TaskStatus
}

type ScheduleCreate struct {
	ContentID  string
	CampaignID string
	Title      string
	At         time.Time
}

func (StatusChange) isMutation()   {}
func (ScheduleCreate) isMutation() {}

// Emitter receives each mutation exactly once.
type Emitter interface {
	Emit(Mutation)
}

type EmitterFunc func(Mutation)

func (f EmitterFunc) Emit(m Mutation) { f(m) }

const (
	// MonthDropHour is used for drops on month cells, which have no time axis.
	MonthDropHour = 9
	SlotMinutes   = 15
)

// Resolve decides what a drop means without any state. The second result is
// false for no-op and invalid drops.
func Resolve(p Payload, t Target) (Mutation, bool) {
	switch p := p.(type) {
	case TaskPayload:
		col, ok := t.(ColumnTarget)
		if !ok || !col.Status.Valid() || col.Status == p.Status {
			return nil, false
		}
		return StatusChange{TaskID: p.TaskID, From: p.Status, To: col.Status}, true
	case ContentPayload:
		slot, ok := t.(SlotTarget)
		if !ok || slot.Day.IsZero() {
			return nil, false
		}
		return ScheduleCreate{
			ContentID:  p.ContentID,
			CampaignID: p.CampaignID,
			Title:      p.Title,
			At:         slot.At(),
		}, true
	default:
		return nil, false
	}
}

// At returns the timestamp a drop on this slot schedules for.
func (s SlotTarget) At() time.Time {
	y, m, d := s.Day.Date()
	if s.View == ViewMonth {
		return time.Date(y, m, d, MonthDropHour, 0, 0, 0, s.Day.Location())
	}
	hour := clamp(s.Hour, 0, 23)
	minute := clamp(s.Minute, 0, 59) / SlotMinutes * SlotMinutes
	return time.Date(y, m, d, hour, minute, 0, 0, s.Day.Location())
}

// SlotAt maps a vertical pointer offset inside a day column to a slot, with
// one row per hour starting at midnight.
func SlotAt(dayStart time.Time, view CalendarView, offsetY, rowHeight float64) SlotTarget {
	slot := SlotTarget{Day: dayStart, View: view}
	if view == ViewMonth {
		slot.Hour = MonthDropHour
		return slot
	}
	if rowHeight <= 0 || offsetY < 0 {
		return slot
	}
	hours := offsetY / rowHeight
	h := int(hours)
	if h > 23 {
		slot.Hour, slot.Minute = 23, 60-SlotMinutes
		return slot
	}
	slot.Hour = h
	slot.Minute = int((hours-float64(h))*60) / SlotMinutes * SlotMinutes
	return slot
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

var (
	ErrAlreadyDragging = errors.New("drag already in progress")
	ErrInvalidPayload  = errors.New("invalid drag payload")
)

// Handler is the drag state machine for one board or calendar.
type Handler struct {
	emit    Emitter
	state   State
	payload Payload
}

func NewHandler(emit Emitter) *Handler {
	return &Handler{emit: emit}
}

func (h *Handler) State() State { return h.state }

// Payload returns what is being dragged, if anything.
func (h *Handler) Payload() (Payload, bool) {
	if h.state != Dragging {
		return nil, false
	}
	return h.payload, true
}

func (h *Handler) DragStart(p Payload) error {
	if h.state == Dragging {
		return ErrAlreadyDragging
	}
	switch p := p.(type) {
	case TaskPayload:
		if strings.TrimSpace(p.TaskID) == "" {
			return fmt.Errorf("%w: missing task id", ErrInvalidPayload)
		}
	case ContentPayload:
		if strings.TrimSpace(p.ContentID) == "" {
			return fmt.Errorf("%w: missing content id", ErrInvalidPayload)
		}
	default:
		return ErrInvalidPayload
	}
	h.state, h.payload = Dragging, p
	return nil
}

// Drop ends the drag. A valid drop is emitted once and returned; same-column,
// invalid and idle drops return false and emit nothing.
func (h *Handler) Drop(t Target) (Mutation, bool) {
	if h.state != Dragging {
		return nil, false
	}
	p := h.payload
	h.state, h.payload = Idle, nil

	m, ok := Resolve(p, t)
	if !ok {
		return nil, false
	}
	if h.emit != nil {
		h.emit.Emit(m)
	}
	return m, true
}

func (h *Handler) Cancel() {
	h.state, h.payload = Idle, nil
}
