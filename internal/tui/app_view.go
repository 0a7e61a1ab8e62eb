package tui

import (
	"fmt"
	"strings"

	"mops-cli/internal/dnd"
	"mops-cli/internal/model"
	"mops-cli/internal/viewstate"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	defaultWidth   = 100
	defaultHeight  = 30
	sidebarWidth   = 28
	detailMinWidth = 32
)

func (m appModel) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m appModel) View() string {
	w, h := m.size()
	header := m.viewHeader(w)
	footer := m.viewFooter(w)
	bodyH := max(h-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	var body string
	if m.screen == screenCampaigns {
		body = m.viewCampaigns(w, bodyH)
	} else {
		body = m.viewCampaign(w, bodyH)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) viewHeader(width int) string {
	crumbs := []string{"mops", "Campaigns"}
	if m.screen == screenCampaign {
		name := "…"
		if c, ok := m.st.CurrentCampaign(); ok {
			name = c.Name
		}
		crumbs = []string{"mops", name, modeTitle(m.campaignMode(), m.cal.view)}
	}
	left := styleAccent().Render(strings.Join(crumbs, " "+glyphArrow()+" "))
	right := ""
	if m.busy() {
		right = m.spin.View() + " "
	}
	gap := max(width-xansi.StringWidth(left)-xansi.StringWidth(right), 1)
	return normalizePane(left+strings.Repeat(" ", gap)+right, width, 1)
}

func modeTitle(mode viewstate.Mode, view dnd.CalendarView) string {
	switch mode {
	case viewstate.ModeList:
		return "List"
	case viewstate.ModeCalendar:
		return "Calendar (" + string(view) + ")"
	case viewstate.ModeAnalytics:
		return "Analytics"
	default:
		return "Board"
	}
}

func (m appModel) viewFooter(width int) string {
	var lines []string
	if m.searching {
		lines = append(lines, m.search.View())
	}
	if s := m.dragLine(); s != "" {
		lines = append(lines, styleAccent().Render(truncateText(s, width)))
	}
	lines = append(lines, styleMuted().Render(truncateText(m.statusLine(), width)))
	if m.hasFlash {
		lines = append(lines, notificationStyle(m.flash.Level).Render(truncateText(m.flash.Message, width)))
	} else {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) statusLine() string {
	if m.screen == screenCampaigns {
		f, by := m.st.CampaignFilter()
		return campaignStatusLine(m.st.View(viewstate.ScreenCampaigns), f, by)
	}
	f, by := m.st.TaskFilter()
	if m.campaignMode() == viewstate.ModeCalendar {
		from, to := m.cal.period()
		return fmt.Sprintf("%s %s %s %s %d scheduled", from.Format("Jan 2"), glyphArrow(),
			to.AddDate(0, 0, -1).Format("Jan 2, 2006"), glyphBullet(), len(schedulesIn(m.st.Schedules(), from, to)))
	}
	return taskStatusLine(m.campaignMode(), f, by, len(m.st.GetFilteredTasks()))
}

func (m appModel) dragLine() string {
	if m.boardDrag.active {
		title := m.boardDrag.taskID
		if t, ok := m.st.Task(title); ok {
			title = t.Title
		}
		to := ""
		if cols := model.TaskStatuses(); m.boardDrag.targetCol < len(cols) {
			to = cols[m.boardDrag.targetCol].Label()
		}
		return fmt.Sprintf("%s Moving %q %s %s  (enter drop, esc cancel)", glyphDrag(), title, glyphArrow(), to)
	}
	if p, ok := m.calendar.Drag().Payload(); ok {
		if cp, ok := p.(dnd.ContentPayload); ok {
			at := m.cal.slot().At()
			return fmt.Sprintf("%s Scheduling %q %s %s  (enter drop, esc cancel)", glyphDrag(), cp.Title, glyphArrow(), at.Format("Mon Jan 2 15:04"))
		}
	}
	return ""
}

func (m appModel) viewCampaigns(width, height int) string {
	cs := m.st.GetFilteredCampaigns()
	view := m.st.View(viewstate.ScreenCampaigns)
	sel := clampIndex(m.campaignIdx, len(cs))

	mainW := width
	var detail string
	if view.DetailPanelOpen && len(cs) > 0 && width >= detailMinWidth*2 {
		detailW := max(width/3, detailMinWidth)
		mainW = width - detailW - 1
		if c, ok := m.st.Campaign(view.SelectedID); ok {
			detail = renderCampaignDetail(c, detailW, height)
		}
	}
	main := renderCampaigns(view.Mode, cs, sel, mainW, height)
	if detail == "" {
		return main
	}
	return joinColumns([]string{main, detail}, 1)
}

func (m appModel) viewCampaign(width, height int) string {
	view := m.st.View(viewstate.ScreenCampaign)
	if view.Mode == viewstate.ModeCalendar {
		return m.viewCalendar(width, height)
	}

	mainW := width
	var detail string
	if view.DetailPanelOpen && width >= detailMinWidth*2 {
		detailW := max(width/3, detailMinWidth)
		if t, ok := m.st.Task(view.SelectedID); ok {
			mainW = width - detailW - 1
			detail = renderTaskDetail(t, detailW, height)
		}
	}

	var main string
	switch view.Mode {
	case viewstate.ModeList:
		tasks := nestedOrder(m.st.GetFilteredTasks())
		selID := ""
		if len(tasks) > 0 {
			selID = tasks[clampIndex(m.listIdx, len(tasks))].ID
		}
		main = renderTaskList(tasks, selID, mainW, height)
	case viewstate.ModeAnalytics:
		main = renderAnalytics(m.st.TopLevelTasks(), mainW, height)
	default:
		board := buildTaskBoard(m.st.GetFilteredTasks())
		main = renderTaskBoard(board, m.boardSel, m.boardDrag, mainW, height)
	}
	if detail == "" {
		return main
	}
	return joinColumns([]string{main, detail}, 1)
}

func (m appModel) viewCalendar(width, height int) string {
	contents := m.currentContents()
	side := renderContentList(contents, clampIndex(m.contentIdx, len(contents)), m.calSidebar, sidebarWidth, height)
	dragging := m.calendar.Drag().State() == dnd.Dragging
	grid := renderCalendar(m.cal, m.st.Schedules(), dragging, max(width-sidebarWidth-1, 20), height)
	return joinColumns([]string{side, grid}, 1)
}
