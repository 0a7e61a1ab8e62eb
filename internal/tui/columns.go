package tui

import (
	"fmt"
	"strings"

	"mops-cli/internal/filter"
	"mops-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

type boardSelection struct {
	Col  int
	Item int
	// TaskID is the stable selected task id (preferred over the Item index for
	// tracking focus across re-sorts and status changes).
	TaskID string
}

type boardCol struct {
	status model.TaskStatus
	label  string
	tasks  []model.Task
}

type taskBoard struct {
	cols []boardCol
}

// buildTaskBoard lays top-level tasks into one column per status, keeping
// the order they arrive in. Subtasks show up as a count on their parent.
func buildTaskBoard(tasks []model.Task) taskBoard {
	top := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsSubtask() {
			top = append(top, t)
		}
	}
	groups := filter.GroupByStatus(top)
	cols := make([]boardCol, 0, len(model.TaskStatuses()))
	for _, st := range model.TaskStatuses() {
		cols = append(cols, boardCol{status: st, label: st.Label(), tasks: groups[st]})
	}
	return taskBoard{cols: cols}
}

func (b taskBoard) indexOfTask(id string) (int, int, bool) {
	if id == "" {
		return 0, 0, false
	}
	for ci := range b.cols {
		for ii := range b.cols[ci].tasks {
			if b.cols[ci].tasks[ii].ID == id {
				return ci, ii, true
			}
		}
	}
	return 0, 0, false
}

func (b taskBoard) clamp(sel boardSelection) boardSelection {
	if len(b.cols) == 0 {
		return boardSelection{Col: 0, Item: -1}
	}
	if ci, ii, ok := b.indexOfTask(sel.TaskID); ok {
		sel.Col, sel.Item = ci, ii
	} else {
		sel.TaskID = ""
	}
	sel.Col = min(max(sel.Col, 0), len(b.cols)-1)

	n := len(b.cols[sel.Col].tasks)
	if n == 0 {
		sel.Item = -1
		return sel
	}
	sel.Item = min(max(sel.Item, 0), n-1)
	sel.TaskID = b.cols[sel.Col].tasks[sel.Item].ID
	return sel
}

func (b taskBoard) selected(sel boardSelection) (model.Task, bool) {
	sel = b.clamp(sel)
	if len(b.cols) == 0 || sel.Item < 0 {
		return model.Task{}, false
	}
	return b.cols[sel.Col].tasks[sel.Item], true
}

// moveSelection steps the selection by dc columns and di items.
func (b taskBoard) moveSelection(sel boardSelection, dc, di int) boardSelection {
	sel = b.clamp(sel)
	sel.TaskID = ""
	sel.Col += dc
	sel.Item += di
	if dc != 0 {
		sel.Item = max(sel.Item, 0)
	}
	return b.clamp(sel)
}

// boardDrag describes an in-progress keyboard drag for rendering.
type boardDrag struct {
	active    bool
	taskID    string
	targetCol int
}

func renderTaskBoard(board taskBoard, sel boardSelection, drag boardDrag, width, height int) string {
	n := len(board.cols)
	if n == 0 || width <= 0 {
		return normalizePane("", width, height)
	}
	sel = board.clamp(sel)

	gap := 2
	colW := max((width-gap*(n-1))/n, 10)
	innerW := max(colW-2, 0)

	muted := styleMuted()
	itemStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	itemSelectedStyle := itemStyle.Foreground(colors.SelectedFg).Background(colors.SelectedBg).Bold(true)

	renderMeta := func(t model.Task) string {
		parts := make([]string, 0, 4)
		if t.Priority != model.PriorityNone && t.Priority != "" {
			parts = append(parts, priorityStyle(t.Priority).Render(t.Priority.Label()))
		}
		if t.Assignee != nil {
			who := t.Assignee.Name
			if who == "" {
				who = t.Assignee.ID
			}
			parts = append(parts, "@"+who)
		}
		if t.DueDate != nil {
			parts = append(parts, "due "+t.DueDate.Format("Jan 2"))
		}
		if n := max(t.Count.Subtasks, len(t.Subtasks)); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", glyphSubtasks(), n))
		}
		return truncateText(strings.Join(parts, " "), innerW)
	}

	renderCard := func(st model.TaskStatus, t model.Task, selected bool) string {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = "(untitled)"
		}
		if drag.active && drag.taskID == t.ID {
			title = glyphDrag() + " " + title
		}
		titleStyle := lipgloss.NewStyle().Bold(true)
		if !selected && (st == model.TaskDone || st == model.TaskCancelled) {
			titleStyle = faintIfDark(lipgloss.NewStyle()).Foreground(colors.Muted).Strikethrough(true)
		}
		content := make([]string, 0, 3)
		for _, ln := range wrapWords(title, innerW) {
			content = append(content, titleStyle.Render(ln))
		}
		if meta := renderMeta(t); meta != "" {
			content = append(content, meta)
		}
		inner := normalizePane(strings.Join(content, "\n"), innerW, 0)
		if selected {
			return itemSelectedStyle.Render(inner)
		}
		return itemStyle.Render(inner)
	}

	renderCol := func(ci int, c boardCol) string {
		head := truncateText(fmt.Sprintf("%s (%d)", c.label, len(c.tasks)), colW)
		hs := styleHeader()
		switch {
		case drag.active && ci == drag.targetCol:
			hs = lipgloss.NewStyle().Bold(true).Foreground(colors.AccentFg).Background(colors.Accent)
		case ci == sel.Col:
			hs = styleSelected()
		}
		lines := []string{hs.Width(colW).Render(head)}
		if len(c.tasks) == 0 {
			lines = append(lines, muted.Render("(empty)"))
			return normalizePane(strings.Join(lines, "\n"), colW, height)
		}
		lines = append(lines, "")
		for i, t := range c.tasks {
			card := renderCard(c.status, t, ci == sel.Col && i == sel.Item)
			lines = append(lines, strings.Split(card, "\n")...)
			if i < len(c.tasks)-1 {
				lines = append(lines, muted.Render(" "+strings.Repeat(glyphHRule(), max(colW-2, 0))+" "))
			}
		}
		return normalizePane(strings.Join(lines, "\n"), colW, height)
	}

	rendered := make([]string, 0, n)
	for i, c := range board.cols {
		rendered = append(rendered, renderCol(i, c))
	}
	return normalizePane(joinColumns(rendered, gap), width, height)
}

// renderTaskList is the board's list mode: one line per task, subtasks indented.
func renderTaskList(tasks []model.Task, selectedID string, width, height int) string {
	if len(tasks) == 0 {
		return normalizePane(styleMuted().Render("No tasks match the current filter."), width, height)
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		indent := ""
		if t.IsSubtask() {
			indent = "  "
		}
		row := fmt.Sprintf("%s%-12s %-8s %s", indent, t.Status.Label(), t.Priority.Label(), t.Title)
		row = truncateText(row, width)
		if t.ID == selectedID {
			row = styleSelected().Render(normalizePane(row, width, 0))
		}
		lines = append(lines, row)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

// renderAnalytics summarizes the current campaign's tasks by status.
func renderAnalytics(tasks []model.Task, width, height int) string {
	groups := filter.GroupByStatus(tasks)
	total := len(tasks)
	barW := max(width-24, 10)
	lines := []string{styleAccent().Render(fmt.Sprintf("%d tasks", total)), ""}
	for _, st := range model.TaskStatuses() {
		n := len(groups[st])
		fill := 0
		if total > 0 {
			fill = n * barW / total
		}
		bar := strings.Repeat("█", fill) + styleMuted().Render(strings.Repeat("░", barW-fill))
		lines = append(lines, fmt.Sprintf("%-12s %4d %s", st.Label(), n, bar))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}
