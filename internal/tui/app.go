package tui

import (
	"context"
	"time"

	"mops-cli/internal/config"
	"mops-cli/internal/controller"
	"mops-cli/internal/dnd"
	"mops-cli/internal/loader"
	"mops-cli/internal/notify"
	"mops-cli/internal/store"
	"mops-cli/internal/viewstate"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const flashDuration = 4 * time.Second

type appModel struct {
	ctx   context.Context
	st    *store.Store
	loads *loader.Latest
	notes *notify.Notifier
	log   *zap.Logger
	now   func() time.Time

	campaigns *controller.Campaigns
	board     *controller.Board
	calendar  *controller.Calendar

	keys      keyMap
	help      help.Model
	spin      spinner.Model
	search    textinput.Model
	searching bool

	width  int
	height int
	screen screen

	campaignIdx int

	boardSel  boardSelection
	boardDrag boardDrag
	listIdx   int

	cal        calState
	calSidebar bool
	contentIdx int

	// flushing counts Flush commands still running.
	flushing int

	flash    notify.Notification
	hasFlash bool
	flashSeq int

	ui config.UIState
}

func newAppModel(ctx context.Context, opts Options) appModel {
	opts = opts.withDefaults()
	deps := controller.Deps{
		Store:  opts.Store,
		API:    opts.API,
		Loader: opts.Loader,
		Notify: opts.Notify,
		Logger: opts.Logger,
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styleAccent()

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search"
	in.CharLimit = 200

	m := appModel{
		ctx:       ctx,
		st:        opts.Store,
		loads:     opts.Loader,
		notes:     opts.Notify,
		log:       opts.Logger,
		now:       opts.Now,
		campaigns: controller.NewCampaigns(deps),
		board:     controller.NewBoard(deps),
		calendar:  controller.NewCalendar(deps),
		keys:      defaultKeyMap(),
		help:      help.New(),
		spin:      sp,
		search:    in,
		cal:       newCalState(opts.CalendarView, opts.Now()),
		ui:        opts.State,
	}
	if v, err := dnd.ParseCalendarView(m.ui.CalendarView); err == nil && m.ui.CalendarView != "" {
		m.cal.view = v
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.loadCampaigns()}
	if m.ui.Screen == string(viewstate.ScreenCampaign) && m.ui.CampaignID != "" {
		cmds = append(cmds, m.openCampaign(m.ui.CampaignID))
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.hasFlash = false
		}
		return m, nil

	case campaignsLoadedMsg:
		m.campaignIdx = clampIndex(m.campaignIdx, len(m.st.GetFilteredCampaigns()))
		return m.withFlash()

	case campaignOpenedMsg:
		if msg.err == nil && m.st.CurrentCampaignID() == msg.id {
			m.screen = screenCampaign
			m.boardSel = boardSelection{}
			m.boardDrag = boardDrag{}
			m.listIdx = 0
			m.contentIdx = 0
			m.ui.Screen = string(viewstate.ScreenCampaign)
			m.ui.Touch(msg.id)
			f, by := m.st.TaskFilter()
			f.CampaignID = msg.id
			m.st.SetTaskFilter(f, by)
			if m.campaignMode() == viewstate.ModeCalendar {
				return m.withFlash(m.loadSchedules())
			}
		}
		return m.withFlash()

	case flushDoneMsg:
		m.flushing = max(m.flushing-1, 0)
		if msg.err == nil {
			m.notes.Success(msg.label)
		}
		return m.withFlash()

	case schedulesLoadedMsg:
		return m.withFlash()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit) && !m.dragging():
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		var cmd tea.Cmd
		if m.screen == screenCampaigns {
			m, cmd = m.updateCampaigns(msg)
		} else {
			m, cmd = m.updateCampaign(msg)
		}
		return m.withFlash(cmd)
	}
	return m, nil
}

func (m appModel) dragging() bool {
	return m.board.Drag().State() == dnd.Dragging || m.calendar.Drag().State() == dnd.Dragging
}

func (m appModel) busy() bool {
	return m.flushing > 0 ||
		m.loads.Loading(loader.KeyCampaigns) ||
		m.loads.Loading(loader.KeyDetail) ||
		m.loads.Loading(loader.KeySchedules)
}

func (m appModel) campaignMode() viewstate.Mode {
	return m.st.View(viewstate.ScreenCampaign).Mode
}

func (m appModel) withFlash(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	flash := m.pullFlash()
	return m, tea.Batch(append(cmds, flash)...)
}

// pullFlash moves the newest queued notification into the footer and
// schedules its removal.
func (m *appModel) pullFlash() tea.Cmd {
	drained := m.notes.Drain()
	if len(drained) == 0 {
		return nil
	}
	m.flash = drained[len(drained)-1]
	m.hasFlash = true
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

func (m appModel) loadCampaigns() tea.Cmd {
	ctx, c := m.ctx, m.campaigns
	return func() tea.Msg { return campaignsLoadedMsg{err: c.Load(ctx)} }
}

func (m appModel) goToPage(n int) tea.Cmd {
	ctx, c := m.ctx, m.campaigns
	return func() tea.Msg { return campaignsLoadedMsg{err: c.GoToPage(ctx, n)} }
}

func (m appModel) openCampaign(id string) tea.Cmd {
	ctx, c := m.ctx, m.campaigns
	return func() tea.Msg { return campaignOpenedMsg{id: id, err: c.Open(ctx, id)} }
}

func (m appModel) reloadCampaign() tea.Cmd {
	ctx, b := m.ctx, m.board
	id := m.st.CurrentCampaignID()
	return func() tea.Msg { return campaignOpenedMsg{id: id, err: b.Reload(ctx)} }
}

func (m appModel) loadSchedules() tea.Cmd {
	ctx, c := m.ctx, m.calendar
	from, to := m.cal.period()
	return func() tea.Msg { return schedulesLoadedMsg{err: c.LoadRange(ctx, from, to)} }
}

func (m *appModel) flushBoard() tea.Cmd {
	m.flushing++
	ctx, b := m.ctx, m.board
	return func() tea.Msg { return flushDoneMsg{label: "Task moved", err: b.Flush(ctx)} }
}

func (m *appModel) flushCalendar() tea.Cmd {
	m.flushing++
	ctx, c := m.ctx, m.calendar
	return func() tea.Msg { return flushDoneMsg{label: "Content scheduled", err: c.Flush(ctx)} }
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
