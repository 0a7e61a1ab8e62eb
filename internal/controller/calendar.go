package controller

import (
	"context"
	"strings"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/dnd"
	"mops-cli/internal/loader"
	"mops-cli/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TempIDPrefix marks schedules that exist only locally until the backend confirms them.
const TempIDPrefix = "tmp-"

// Calendar drives the content calendar. Dropping content on a slot inserts a
// placeholder schedule at once; Flush swaps in the backend copy or removes it.
type Calendar struct {
	Deps
	drag *dnd.Handler
	q    queue
}

func NewCalendar(d Deps) *Calendar {
	c := &Calendar{Deps: d.withDefaults()}
	c.drag = dnd.NewHandler(c)
	return c
}

func (c *Calendar) Drag() *dnd.Handler { return c.drag }

func IsTempID(id string) bool { return strings.HasPrefix(id, TempIDPrefix) }

// Emit implements dnd.Emitter.
func (c *Calendar) Emit(m dnd.Mutation) {
	sc, ok := m.(dnd.ScheduleCreate)
	if !ok {
		c.Logger.Debug("calendar ignored mutation", zap.Any("mutation", m))
		return
	}
	placeholder := model.Schedule{
		ID:          TempIDPrefix + uuid.NewString(),
		ContentID:   sc.ContentID,
		CampaignID:  sc.CampaignID,
		Title:       sc.Title,
		ScheduledAt: sc.At,
		Status:      model.ScheduleScheduled,
	}
	tx := c.Store.BeginScheduleAdd(placeholder)
	c.q.push(pendingOp{
		label: "schedule content",
		tx:    tx,
		persist: func(ctx context.Context) error {
			saved, err := c.API.CreateSchedule(ctx, api.ScheduleInput{
				ContentID:   sc.ContentID,
				CampaignID:  sc.CampaignID,
				ScheduledAt: sc.At,
			})
			if err != nil {
				return err
			}
			if saved.Title == "" {
				saved.Title = placeholder.Title
			}
			c.Store.ReplaceSchedule(placeholder.ID, saved)
			return nil
		},
	})
}

func (c *Calendar) Pending() int { return c.q.len() }

func (c *Calendar) Flush(ctx context.Context) error {
	return c.flush(ctx, &c.q)
}

// Schedule places content at a time as if it had been dropped on the matching
// slot of view, then persists it.
func (c *Calendar) Schedule(ctx context.Context, content dnd.ContentPayload, at time.Time, view dnd.CalendarView) error {
	if strings.TrimSpace(content.ContentID) == "" {
		return c.report("schedule content", ValidationError{Field: "contentId", Message: "must not be empty"})
	}
	if at.IsZero() {
		return c.report("schedule content", ValidationError{Field: "scheduledAt", Message: "must be set"})
	}
	c.drag.Cancel()
	if err := c.drag.DragStart(content); err != nil {
		return c.report("schedule content", err)
	}
	slot := dnd.SlotTarget{Day: at, View: view, Hour: at.Hour(), Minute: at.Minute()}
	if _, ok := c.drag.Drop(slot); !ok {
		return nil
	}
	return c.Flush(ctx)
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// LoadWeek loads the seven days starting at from's midnight. When weeks are
// requested in quick succession only the last one requested is applied.
func (c *Calendar) LoadWeek(ctx context.Context, from time.Time) error {
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	return c.LoadRange(ctx, start, start.AddDate(0, 0, 7))
}

// LoadMonth loads the calendar month containing t.
func (c *Calendar) LoadMonth(ctx context.Context, t time.Time) error {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return c.LoadRange(ctx, start, start.AddDate(0, 1, 0))
}

func (c *Calendar) LoadRange(ctx context.Context, from, to time.Time) error {
	ctx, tk := c.Loader.Begin(ctx, loader.KeySchedules)
	defer tk.Done()
	got, err := c.API.ListSchedules(ctx, from, to)
	if err != nil {
		if !tk.Current() {
			return nil
		}
		return c.report("load calendar", err)
	}
	tk.Apply(func() {
		// Keep placeholders whose create call is still in flight.
		for _, s := range c.Store.Schedules() {
			if IsTempID(s.ID) {
				got = append(got, s)
			}
		}
		c.Store.SetSchedules(got)
	})
	return nil
}
