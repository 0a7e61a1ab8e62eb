package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mops-cli/internal/controller"
	"mops-cli/internal/dnd"
	"mops-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// calState is the calendar cursor: a focused day plus a time of day, and the
// view that decides how much of the calendar is on screen.
type calState struct {
	view dnd.CalendarView
	day  time.Time // midnight of the focused day
	// minutes since midnight; ignored on the month view
	minutes int
}

func newCalState(view dnd.CalendarView, now time.Time) calState {
	y, m, d := now.Date()
	return calState{
		view:    view,
		day:     time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		minutes: dnd.MonthDropHour * 60,
	}
}

// period returns the [from, to) range the view shows.
func (c calState) period() (time.Time, time.Time) {
	switch c.view {
	case dnd.ViewDay:
		return c.day, c.day.AddDate(0, 0, 1)
	case dnd.ViewMonth:
		start := time.Date(c.day.Year(), c.day.Month(), 1, 0, 0, 0, 0, c.day.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		start := controller.WeekStart(c.day)
		return start, start.AddDate(0, 0, 7)
	}
}

// step is the cursor's vertical step in minutes.
func (c calState) step() int {
	if c.view == dnd.ViewDay {
		return dnd.SlotMinutes
	}
	return 60
}

func (c calState) move(days, slots int) calState {
	if c.view == dnd.ViewMonth {
		// Month cells are days; vertical moves jump a week.
		c.day = c.day.AddDate(0, 0, days+7*slots)
		return c
	}
	c.day = c.day.AddDate(0, 0, days)
	c.minutes = min(max(c.minutes+slots*c.step(), 0), 24*60-dnd.SlotMinutes)
	return c
}

// shift moves a whole period forward (dir > 0) or back.
func (c calState) shift(dir int) calState {
	switch c.view {
	case dnd.ViewDay:
		c.day = c.day.AddDate(0, 0, dir)
	case dnd.ViewMonth:
		c.day = c.day.AddDate(0, dir, 0)
	default:
		c.day = c.day.AddDate(0, 0, 7*dir)
	}
	return c
}

func (c calState) cycleView() calState {
	switch c.view {
	case dnd.ViewDay:
		c.view = dnd.ViewWeek
	case dnd.ViewWeek:
		c.view = dnd.ViewMonth
	default:
		c.view = dnd.ViewDay
	}
	return c
}

// slot is the drop target under the cursor.
func (c calState) slot() dnd.SlotTarget {
	return dnd.SlotTarget{Day: c.day, View: c.view, Hour: c.minutes / 60, Minute: c.minutes % 60}
}

func schedulesIn(ss []model.Schedule, from, to time.Time) []model.Schedule {
	out := make([]model.Schedule, 0, len(ss))
	for _, s := range ss {
		at := s.ScheduledAt.In(from.Location())
		if !at.Before(from) && at.Before(to) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func scheduleLabel(s model.Schedule, loc *time.Location) string {
	title := s.Title
	if title == "" {
		title = s.ContentID
	}
	label := s.ScheduledAt.In(loc).Format("15:04") + " " + title
	if controller.IsTempID(s.ID) {
		label += " …"
	}
	return label
}

func renderCalendar(c calState, schedules []model.Schedule, dragging bool, width, height int) string {
	switch c.view {
	case dnd.ViewMonth:
		return renderMonth(c, schedules, dragging, width, height)
	default:
		return renderDays(c, schedules, dragging, width, height)
	}
}

// renderDays draws the day and week views: one column per day, one row per
// visible cursor step, scrolled so the cursor stays on screen.
func renderDays(c calState, schedules []model.Schedule, dragging bool, width, height int) string {
	from, to := c.period()
	days := int(to.Sub(from).Hours()/24 + 0.5)
	if days < 1 {
		days = 1
	}
	gap := 1
	timeW := 6
	colW := max((width-timeW-gap*days)/days, 8)
	rows := max(height-1, 1)
	step := c.step()
	first := min(max(c.minutes/step-rows/2, 0), max(24*60/step-rows, 0))

	cursor := styleSelected()
	if dragging {
		cursor = lipgloss.NewStyle().Bold(true).Foreground(colors.AccentFg).Background(colors.Accent)
	}

	header := strings.Repeat(" ", timeW)
	for d := 0; d < days; d++ {
		day := from.AddDate(0, 0, d)
		hs := styleHeader()
		if sameDay(day, c.day) {
			hs = styleSelected()
		}
		header += strings.Repeat(" ", gap) + hs.Width(colW).Render(truncateText(day.Format("Mon 2"), colW))
	}

	lines := []string{header}
	for r := 0; r < rows; r++ {
		slotMin := (first + r) * step
		if slotMin >= 24*60 {
			break
		}
		line := styleMuted().Render(fmt.Sprintf("%02d:%02d ", slotMin/60, slotMin%60))
		for d := 0; d < days; d++ {
			day := from.AddDate(0, 0, d)
			cellFrom := day.Add(time.Duration(slotMin) * time.Minute)
			cellTo := cellFrom.Add(time.Duration(step) * time.Minute)
			in := schedulesIn(schedules, cellFrom, cellTo)
			text := ""
			if len(in) > 0 {
				text = scheduleLabel(in[0], day.Location())
				if len(in) > 1 {
					text += fmt.Sprintf(" +%d", len(in)-1)
				}
			}
			cell := normalizePane(truncateText(text, colW), colW, 0)
			if sameDay(day, c.day) && slotMin == c.minutes/step*step {
				cell = cursor.Render(cell)
			}
			line += strings.Repeat(" ", gap) + cell
		}
		lines = append(lines, line)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func renderMonth(c calState, schedules []model.Schedule, dragging bool, width, height int) string {
	from, to := c.period()
	gridStart := controller.WeekStart(from)
	weeks := 0
	for d := gridStart; d.Before(to); d = d.AddDate(0, 0, 7) {
		weeks++
	}
	colW := max((width-6)/7, 6)
	cellH := max((height-2)/max(weeks, 1), 2)

	cursor := styleSelected()
	if dragging {
		cursor = lipgloss.NewStyle().Bold(true).Foreground(colors.AccentFg).Background(colors.Accent)
	}

	head := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		head = append(head, styleHeader().Width(colW).Render(gridStart.AddDate(0, 0, i).Format("Mon")))
	}
	lines := []string{styleAccent().Render(from.Format("January 2006")), joinColumns(head, 1)}

	for w := 0; w < weeks; w++ {
		cells := make([]string, 0, 7)
		for i := 0; i < 7; i++ {
			day := gridStart.AddDate(0, 0, 7*w+i)
			in := schedulesIn(schedules, day, day.AddDate(0, 0, 1))
			body := []string{fmt.Sprintf("%2d", day.Day())}
			for k, s := range in {
				if k == cellH-2 && len(in) > cellH-1 {
					body = append(body, fmt.Sprintf("+%d more", len(in)-k))
					break
				}
				body = append(body, scheduleLabel(s, day.Location()))
			}
			cell := normalizePane(strings.Join(body, "\n"), colW, cellH)
			switch {
			case sameDay(day, c.day):
				cell = cursor.Render(cell)
			case day.Month() != from.Month():
				cell = styleMuted().Render(cell)
			}
			cells = append(cells, cell)
		}
		lines = append(lines, joinColumns(cells, 1))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func renderContentList(contents []model.Content, sel int, focused bool, width, height int) string {
	lines := []string{styleHeader().Width(width).Render("Content")}
	if len(contents) == 0 {
		lines = append(lines, styleMuted().Render("(no content)"))
	}
	for i, ct := range contents {
		row := truncateText(fmt.Sprintf("%s %s", glyphBullet(), ct.Title), width)
		if i == sel && focused {
			row = styleSelected().Render(normalizePane(row, width, 0))
		}
		lines = append(lines, row)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
