package tui

import (
	"fmt"
	"strings"

	"mops-cli/internal/filter"
	"mops-cli/internal/model"
	"mops-cli/internal/viewstate"

	"github.com/charmbracelet/lipgloss"
)

func renderCampaigns(mode viewstate.Mode, cs []model.Campaign, sel, width, height int) string {
	if len(cs) == 0 {
		return normalizePane(styleMuted().Render("No campaigns match the current filter."), width, height)
	}
	switch mode {
	case viewstate.ModeGrid:
		return renderCampaignGrid(cs, sel, width, height)
	case viewstate.ModeCompact:
		return renderCampaignCompact(cs, sel, width, height)
	default:
		return renderCampaignTable(cs, sel, width, height)
	}
}

// scrollWindow returns the first visible row so that sel stays on screen.
func scrollWindow(sel, n, rows int) int {
	if rows <= 0 || n <= rows {
		return 0
	}
	return min(max(sel-rows+1, 0), n-rows)
}

func cell(s string, w int) string {
	return normalizePane(truncateText(s, w), w, 0)
}

func renderCampaignTable(cs []model.Campaign, sel, width, height int) string {
	const (
		statusW   = 12
		healthW   = 10
		priorityW = 11
		tasksW    = 6
		targetW   = 8
	)
	nameW := max(width-statusW-healthW-priorityW-tasksW-targetW-5, 10)
	row := func(name, status, health, priority, tasks, target string) string {
		return strings.Join([]string{
			cell(name, nameW), cell(status, statusW), cell(health, healthW),
			cell(priority, priorityW), cell(tasks, tasksW), cell(target, targetW),
		}, " ")
	}

	lines := []string{styleHeader().Render(normalizePane(row("Name", "Status", "Health", "Priority", "Tasks", "Target"), width, 0))}
	rows := max(height-1, 1)
	first := scrollWindow(sel, len(cs), rows)
	for i := first; i < len(cs) && i < first+rows; i++ {
		c := cs[i]
		target := ""
		if c.TargetDate != nil {
			target = c.TargetDate.Format("Jan 2")
		}
		tasks := fmt.Sprint(c.TaskCount())
		if i == sel {
			line := row(c.Name, c.Status.Label(), c.Health.Label(), c.Priority.Label(), tasks, target)
			lines = append(lines, styleSelected().Render(normalizePane(line, width, 0)))
			continue
		}
		lines = append(lines, row(c.Name, c.Status.Label(),
			healthStyle(c.Health).Render(cell(c.Health.Label(), healthW)),
			priorityStyle(c.Priority).Render(cell(c.Priority.Label(), priorityW)),
			tasks, target))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func renderCampaignCompact(cs []model.Campaign, sel, width, height int) string {
	lines := make([]string, 0, len(cs))
	first := scrollWindow(sel, len(cs), height)
	for i := first; i < len(cs) && (height <= 0 || i < first+height); i++ {
		c := cs[i]
		line := truncateText(fmt.Sprintf("%s %s  %s", glyphBullet(), c.Name, styleMuted().Render(c.Status.Label())), width)
		if i == sel {
			line = styleSelected().Render(normalizePane(truncateText(fmt.Sprintf("%s %s  %s", glyphBullet(), c.Name, c.Status.Label()), width), width, 0))
		}
		lines = append(lines, line)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

const (
	cardW   = 30
	cardH   = 4
	cardGap = 1
)

func renderCampaignGrid(cs []model.Campaign, sel, width, height int) string {
	perRow := max((width+cardGap)/(cardW+cardGap), 1)
	rows := max(height/(cardH+2), 1)
	firstRow := scrollWindow(sel/perRow, (len(cs)+perRow-1)/perRow, rows)

	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colors.Muted).Width(cardW - 2)
	boxSel := box.BorderForeground(colors.Accent)

	var out []string
	for r := firstRow; r < firstRow+rows; r++ {
		var cards []string
		for k := 0; k < perRow; k++ {
			i := r*perRow + k
			if i >= len(cs) {
				break
			}
			c := cs[i]
			inner := cardW - 2
			lead := "no lead"
			if c.Lead != nil {
				lead = "@" + userName(c.Lead)
			}
			body := normalizePane(strings.Join([]string{
				lipgloss.NewStyle().Bold(true).Render(truncateText(c.Name, inner)),
				truncateText(c.Status.Label()+" "+glyphBullet()+" "+healthStyle(c.Health).Render(c.Health.Label()), inner),
				truncateText(fmt.Sprintf("%d tasks %s %d members", c.TaskCount(), glyphBullet(), c.Count.Members), inner),
				styleMuted().Render(truncateText(lead, inner)),
			}, "\n"), inner, cardH)
			if i == sel {
				cards = append(cards, boxSel.Render(body))
			} else {
				cards = append(cards, box.Render(body))
			}
		}
		if len(cards) == 0 {
			break
		}
		out = append(out, joinColumns(cards, cardGap))
	}
	return normalizePane(strings.Join(out, "\n"), width, height)
}

// campaignStatusLine summarizes paging and the active filter for the footer.
func campaignStatusLine(view viewstate.State, f filter.CampaignFilter, by filter.Sort) string {
	p := view.Page
	parts := []string{fmt.Sprintf("Page %d/%d", p.Page, max(p.TotalPages, 1)), fmt.Sprintf("%d campaigns", p.Total)}
	if len(f.Statuses) > 0 {
		labels := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			labels = append(labels, s.Label())
		}
		parts = append(parts, "status: "+strings.Join(labels, ","))
	}
	if by == filter.SortNone {
		by = filter.SortNewest
	}
	parts = append(parts, "sort: "+sortLabel(by))
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	parts = append(parts, string(view.Mode))
	return strings.Join(parts, " "+glyphBullet()+" ")
}

func taskStatusLine(mode viewstate.Mode, f filter.TaskFilter, by filter.Sort, shown int) string {
	parts := []string{fmt.Sprintf("%d tasks", shown)}
	if len(f.Statuses) > 0 {
		labels := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			labels = append(labels, s.Label())
		}
		parts = append(parts, "status: "+strings.Join(labels, ","))
	}
	parts = append(parts, "sort: "+sortLabel(by))
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	parts = append(parts, string(mode))
	return strings.Join(parts, " "+glyphBullet()+" ")
}
