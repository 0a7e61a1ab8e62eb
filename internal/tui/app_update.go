package tui

import (
	"strings"

	"mops-cli/internal/dnd"
	"mops-cli/internal/filter"
	"mops-cli/internal/model"
	"mops-cli/internal/viewstate"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) startSearch() (appModel, tea.Cmd) {
	if m.screen == screenCampaigns {
		f, _ := m.st.CampaignFilter()
		m.search.SetValue(f.Search)
	} else {
		f, _ := m.st.TaskFilter()
		m.search.SetValue(f.Search)
	}
	m.search.CursorEnd()
	m.searching = true
	cmd := m.search.Focus()
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		q := strings.TrimSpace(m.search.Value())
		if m.screen == screenCampaigns {
			f, by := m.st.CampaignFilter()
			f.Search = q
			m.st.SetCampaignFilter(f, by)
			m.campaignIdx = 0
			return m, m.loadCampaigns()
		}
		f, by := m.st.TaskFilter()
		f.Search = q
		m.st.SetTaskFilter(f, by)
		m.listIdx = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m appModel) updateCampaigns(msg tea.KeyMsg) (appModel, tea.Cmd) {
	cs := m.st.GetFilteredCampaigns()
	view := m.st.View(viewstate.ScreenCampaigns)

	switch {
	case key.Matches(msg, m.keys.Up):
		m.campaignIdx = clampIndex(m.campaignIdx-1, len(cs))
	case key.Matches(msg, m.keys.Down):
		m.campaignIdx = clampIndex(m.campaignIdx+1, len(cs))
	case key.Matches(msg, m.keys.Left) && view.Mode == viewstate.ModeGrid:
		m.campaignIdx = clampIndex(m.campaignIdx-1, len(cs))
	case key.Matches(msg, m.keys.Right) && view.Mode == viewstate.ModeGrid:
		m.campaignIdx = clampIndex(m.campaignIdx+1, len(cs))

	case key.Matches(msg, m.keys.Open):
		if len(cs) == 0 {
			return m, nil
		}
		id := cs[clampIndex(m.campaignIdx, len(cs))].ID
		m.st.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State { return v.Select(id) })
		return m, m.openCampaign(id)

	case key.Matches(msg, m.keys.Detail):
		if len(cs) == 0 {
			return m, nil
		}
		id := cs[clampIndex(m.campaignIdx, len(cs))].ID
		m.st.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State {
			if v.DetailPanelOpen {
				return v.CloseDetail()
			}
			return v.OpenDetail(id)
		})

	case key.Matches(msg, m.keys.NextPage):
		if view.Page.HasNextPage() {
			m.campaignIdx = 0
			return m, m.goToPage(view.Page.Page + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if view.Page.HasPrevPage() {
			m.campaignIdx = 0
			return m, m.goToPage(view.Page.Page - 1)
		}

	case key.Matches(msg, m.keys.Search):
		return m.startSearch()

	case key.Matches(msg, m.keys.Status):
		f, by := m.st.CampaignFilter()
		f.Statuses = nextOf(model.CampaignStatuses(), f.Statuses)
		m.st.SetCampaignFilter(f, by)
		m.campaignIdx = 0
		return m, m.loadCampaigns()

	case key.Matches(msg, m.keys.Sort):
		f, by := m.st.CampaignFilter()
		if by == filter.SortNone {
			by = filter.SortNewest
		}
		m.st.SetCampaignFilter(f, nextSort(campaignSorts, by))
		return m, m.loadCampaigns()

	case key.Matches(msg, m.keys.Mode):
		m.st.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State { return v.CycleMode() })

	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCampaigns()

	case key.Matches(msg, m.keys.Back):
		m.st.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State { return v.CloseDetail() })
	}
	return m, nil
}

func (m appModel) updateCampaign(msg tea.KeyMsg) (appModel, tea.Cmd) {
	mode := m.campaignMode()

	// Keys shared by every mode, unless a drag owns them.
	if !m.dragging() {
		switch {
		case key.Matches(msg, m.keys.Mode):
			m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State { return v.CycleMode() })
			if m.campaignMode() == viewstate.ModeCalendar {
				return m, m.loadSchedules()
			}
			return m, nil
		case key.Matches(msg, m.keys.Calendar):
			if mode == viewstate.ModeCalendar {
				return m, nil
			}
			m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State {
				return v.SetMode(viewstate.ModeCalendar)
			})
			return m, m.loadSchedules()
		case key.Matches(msg, m.keys.Reload):
			cmds := []tea.Cmd{m.reloadCampaign()}
			if mode == viewstate.ModeCalendar {
				cmds = append(cmds, m.loadSchedules())
			}
			return m, tea.Batch(cmds...)
		case key.Matches(msg, m.keys.Search) && mode != viewstate.ModeCalendar:
			return m.startSearch()
		case key.Matches(msg, m.keys.Status) && mode != viewstate.ModeCalendar:
			f, by := m.st.TaskFilter()
			f.Statuses = nextOf(model.TaskStatuses(), f.Statuses)
			m.st.SetTaskFilter(f, by)
			return m, nil
		case key.Matches(msg, m.keys.Sort) && mode != viewstate.ModeCalendar:
			f, by := m.st.TaskFilter()
			m.st.SetTaskFilter(f, nextSort(taskSorts, by))
			return m, nil
		}
	}

	switch mode {
	case viewstate.ModeCalendar:
		return m.updateCalendar(msg)
	case viewstate.ModeList:
		return m.updateTaskList(msg)
	case viewstate.ModeAnalytics:
		if key.Matches(msg, m.keys.Back) {
			return m.leaveCampaign(), nil
		}
		return m, nil
	default:
		return m.updateBoard(msg)
	}
}

func (m appModel) leaveCampaign() appModel {
	m.screen = screenCampaigns
	m.ui.Screen = string(viewstate.ScreenCampaigns)
	m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State { return v.CloseDetail() })
	return m
}

func (m appModel) toggleTaskDetail(id string) {
	m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State {
		if v.DetailPanelOpen && v.SelectedID == id {
			return v.CloseDetail()
		}
		return v.OpenDetail(id)
	})
}

func (m appModel) updateBoard(msg tea.KeyMsg) (appModel, tea.Cmd) {
	board := buildTaskBoard(m.st.GetFilteredTasks())
	m.boardSel = board.clamp(m.boardSel)

	if m.boardDrag.active {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.boardDrag.targetCol = max(m.boardDrag.targetCol-1, 0)
		case key.Matches(msg, m.keys.Right):
			m.boardDrag.targetCol = min(m.boardDrag.targetCol+1, len(board.cols)-1)
		case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Open):
			return m.dropOnColumn(board, m.boardDrag.targetCol)
		case key.Matches(msg, m.keys.Back):
			m.board.Drag().Cancel()
			m.boardDrag = boardDrag{}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.boardSel = board.moveSelection(m.boardSel, 0, -1)
	case key.Matches(msg, m.keys.Down):
		m.boardSel = board.moveSelection(m.boardSel, 0, 1)
	case key.Matches(msg, m.keys.Left):
		m.boardSel = board.moveSelection(m.boardSel, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.boardSel = board.moveSelection(m.boardSel, 1, 0)

	case key.Matches(msg, m.keys.Grab):
		m.grabTask(board)
	case key.Matches(msg, m.keys.MoveL), key.Matches(msg, m.keys.MoveR):
		dir := 1
		if key.Matches(msg, m.keys.MoveL) {
			dir = -1
		}
		target := m.boardSel.Col + dir
		if target < 0 || target >= len(board.cols) || !m.grabTask(board) {
			return m, nil
		}
		return m.dropOnColumn(board, target)

	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Detail):
		if t, ok := board.selected(m.boardSel); ok {
			m.toggleTaskDetail(t.ID)
		}
	case key.Matches(msg, m.keys.Back):
		if m.st.View(viewstate.ScreenCampaign).DetailPanelOpen {
			m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State { return v.CloseDetail() })
			return m, nil
		}
		return m.leaveCampaign(), nil
	}
	return m, nil
}

// grabTask starts dragging the selected card.
func (m *appModel) grabTask(board taskBoard) bool {
	t, ok := board.selected(m.boardSel)
	if !ok {
		return false
	}
	if err := m.board.Drag().DragStart(dnd.TaskPayload{TaskID: t.ID, Status: t.Status}); err != nil {
		m.log.Debug("drag start refused")
		return false
	}
	m.boardDrag = boardDrag{active: true, taskID: t.ID, targetCol: m.boardSel.Col}
	return true
}

// dropOnColumn ends the drag on column col. The store changes before this
// returns; the backend call runs in the returned command.
func (m appModel) dropOnColumn(board taskBoard, col int) (appModel, tea.Cmd) {
	taskID := m.boardDrag.taskID
	m.boardDrag = boardDrag{}
	if col < 0 || col >= len(board.cols) {
		m.board.Drag().Cancel()
		return m, nil
	}
	if _, ok := m.board.Drag().Drop(dnd.ColumnTarget{Status: board.cols[col].status}); !ok {
		return m, nil
	}
	m.boardSel = boardSelection{Col: col, TaskID: taskID}
	cmd := m.flushBoard()
	return m, cmd
}

func (m appModel) updateTaskList(msg tea.KeyMsg) (appModel, tea.Cmd) {
	tasks := nestedOrder(m.st.GetFilteredTasks())
	m.listIdx = clampIndex(m.listIdx, len(tasks))
	switch {
	case key.Matches(msg, m.keys.Up):
		m.listIdx = clampIndex(m.listIdx-1, len(tasks))
	case key.Matches(msg, m.keys.Down):
		m.listIdx = clampIndex(m.listIdx+1, len(tasks))
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Detail):
		if len(tasks) > 0 {
			m.toggleTaskDetail(tasks[m.listIdx].ID)
		}
	case key.Matches(msg, m.keys.Back):
		if m.st.View(viewstate.ScreenCampaign).DetailPanelOpen {
			m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State { return v.CloseDetail() })
			return m, nil
		}
		return m.leaveCampaign(), nil
	}
	return m, nil
}

func (m appModel) currentContents() []model.Content {
	c, ok := m.st.CurrentCampaign()
	if !ok {
		return nil
	}
	return c.Contents
}

func (m appModel) updateCalendar(msg tea.KeyMsg) (appModel, tea.Cmd) {
	drag := m.calendar.Drag()
	contents := m.currentContents()
	m.contentIdx = clampIndex(m.contentIdx, len(contents))

	if m.calSidebar && drag.State() != dnd.Dragging {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.contentIdx = clampIndex(m.contentIdx-1, len(contents))
		case key.Matches(msg, m.keys.Down):
			m.contentIdx = clampIndex(m.contentIdx+1, len(contents))
		case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Open):
			if len(contents) == 0 {
				return m, nil
			}
			ct := contents[m.contentIdx]
			err := drag.DragStart(dnd.ContentPayload{ContentID: ct.ID, CampaignID: ct.CampaignID, Title: ct.Title})
			if err == nil {
				m.calSidebar = false
			}
		case key.Matches(msg, m.keys.Focus):
			m.calSidebar = false
		case key.Matches(msg, m.keys.Back):
			return m.leaveCampaign(), nil
		}
		return m, nil
	}

	prevFrom, _ := m.cal.period()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.cal = m.cal.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.cal = m.cal.move(1, 0)
	case key.Matches(msg, m.keys.Up):
		m.cal = m.cal.move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.cal = m.cal.move(0, 1)

	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Open):
		if drag.State() != dnd.Dragging {
			return m, nil
		}
		if _, ok := drag.Drop(m.cal.slot()); !ok {
			return m, nil
		}
		cmd := m.flushCalendar()
		return m, cmd

	case key.Matches(msg, m.keys.Focus) && drag.State() != dnd.Dragging:
		m.calSidebar = true
	case key.Matches(msg, m.keys.Back):
		if drag.State() == dnd.Dragging {
			drag.Cancel()
			return m, nil
		}
		return m.leaveCampaign(), nil

	case key.Matches(msg, m.keys.NextPage), key.Matches(msg, m.keys.PrevPage):
		dir := 1
		if key.Matches(msg, m.keys.PrevPage) {
			dir = -1
		}
		m.cal = m.cal.shift(dir)
		return m, m.loadSchedules()
	case key.Matches(msg, m.keys.CalView):
		m.cal = m.cal.cycleView()
		m.ui.CalendarView = string(m.cal.view)
		return m, m.loadSchedules()
	}

	// Moving the cursor across a period boundary needs the new range.
	if from, _ := m.cal.period(); !from.Equal(prevFrom) {
		return m, m.loadSchedules()
	}
	return m, nil
}
