package tui

import (
	"fmt"
	"strconv"
	"strings"

	"mops-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func detailField(label, value string) string {
	return styleMuted().Render(fmt.Sprintf("%-10s", label)) + " " + value
}

func userName(u *model.UserRef) string {
	if u == nil {
		return "-"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}

func renderTaskDetail(t model.Task, width, height int) string {
	w := max(width-2, 10)
	lines := []string{lipgloss.NewStyle().Bold(true).Render(truncateText(t.Title, w)), ""}
	lines = append(lines,
		detailField("Status", t.Status.Label()),
		detailField("Priority", priorityStyle(t.Priority).Render(t.Priority.Label())),
		detailField("Assignee", userName(t.Assignee)),
	)
	if t.DueDate != nil {
		lines = append(lines, detailField("Due", t.DueDate.Format("Mon Jan 2, 2006")))
	}
	if t.EstimatedHours != nil {
		lines = append(lines, detailField("Estimate", strconv.FormatFloat(*t.EstimatedHours, 'f', -1, 64)+"h"))
	}
	if len(t.Subtasks) > 0 {
		lines = append(lines, "", styleAccent().Render(fmt.Sprintf("Subtasks (%d)", len(t.Subtasks))))
		for _, st := range t.Subtasks {
			lines = append(lines, truncateText(fmt.Sprintf("%s %s  %s", glyphBullet(), st.Title, styleMuted().Render(st.Status.Label())), w))
		}
	}
	if md := renderMarkdown(t.Description, w); md != "" {
		lines = append(lines, "", md)
	}
	return detailPane(strings.Join(lines, "\n"), width, height)
}

func renderCampaignDetail(c model.Campaign, width, height int) string {
	w := max(width-2, 10)
	lines := []string{lipgloss.NewStyle().Bold(true).Render(truncateText(c.Name, w))}
	if c.Summary != "" {
		lines = append(lines, styleMuted().Render(truncateText(c.Summary, w)))
	}
	lines = append(lines, "",
		detailField("Status", c.Status.Label()),
		detailField("Health", healthStyle(c.Health).Render(c.Health.Label())),
		detailField("Priority", priorityStyle(c.Priority).Render(c.Priority.Label())),
		detailField("Lead", userName(c.Lead)),
	)
	if c.StartDate != nil || c.TargetDate != nil {
		span := "?"
		if c.StartDate != nil {
			span = c.StartDate.Format("Jan 2")
		}
		span += " " + glyphArrow() + " "
		if c.TargetDate != nil {
			span += c.TargetDate.Format("Jan 2, 2006")
		} else {
			span += "?"
		}
		lines = append(lines, detailField("Dates", span))
	}
	lines = append(lines,
		detailField("Tasks", strconv.Itoa(c.TaskCount())),
		detailField("Members", strconv.Itoa(max(c.Count.Members, len(c.Members)))),
		detailField("Content", strconv.Itoa(max(c.Count.Contents, len(c.Contents)))),
	)
	if md := renderMarkdown(c.Description, w); md != "" {
		lines = append(lines, "", md)
	}
	return detailPane(strings.Join(lines, "\n"), width, height)
}

func detailPane(body string, width, height int) string {
	inner := normalizePane(body, max(width-2, 0), height)
	return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1).Render(inner)
}
