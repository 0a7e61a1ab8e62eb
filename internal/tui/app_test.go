package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/controller"
	"mops-cli/internal/model"
	"mops-cli/internal/notify"
	"mops-cli/internal/store"
	"mops-cli/internal/viewstate"

	tea "github.com/charmbracelet/bubbletea"
)

// stubAPI serves fixed data and records what the TUI sent.
type stubAPI struct {
	mu        sync.Mutex
	queries   []api.CampaignQuery
	updates   []api.TaskUpdate
	schedules []api.ScheduleInput
	updateErr error
}

func (s *stubAPI) GetCampaign(ctx context.Context, id string) (model.Campaign, error) {
	return model.Campaign{ID: id, Name: "Spring launch"}, nil
}

func (s *stubAPI) ListTasks(ctx context.Context, id string) ([]model.Task, error) { return nil, nil }

func (s *stubAPI) ListMembers(ctx context.Context, id string) ([]model.Member, error) {
	return nil, nil
}

func (s *stubAPI) ListLabels(ctx context.Context, id string) ([]model.Label, error) { return nil, nil }

func (s *stubAPI) ListMilestones(ctx context.Context, id string) ([]model.Milestone, error) {
	return nil, nil
}

func (s *stubAPI) ListCampaigns(ctx context.Context, q api.CampaignQuery) (api.CampaignPage, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	return api.CampaignPage{Campaigns: []model.Campaign{{ID: "c1", Name: "Spring launch", Status: model.CampaignDraft}}}, nil
}

func (s *stubAPI) CreateCampaign(ctx context.Context, in api.CampaignInput) (model.Campaign, error) {
	return model.Campaign{}, errors.New("unused")
}

func (s *stubAPI) UpdateCampaign(ctx context.Context, id string, in api.CampaignUpdate) (model.Campaign, error) {
	return model.Campaign{}, errors.New("unused")
}

func (s *stubAPI) DeleteCampaign(ctx context.Context, id string) error { return errors.New("unused") }

func (s *stubAPI) CreateTask(ctx context.Context, campaignID string, in api.TaskInput) (model.Task, error) {
	return model.Task{}, errors.New("unused")
}

func (s *stubAPI) UpdateTask(ctx context.Context, campaignID, taskID string, in api.TaskUpdate) (model.Task, error) {
	s.mu.Lock()
	s.updates = append(s.updates, in)
	err := s.updateErr
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{ID: taskID, CampaignID: campaignID, Title: "Write copy", Status: *in.Status}, nil
}

func (s *stubAPI) DeleteTask(ctx context.Context, campaignID, taskID string) error {
	return errors.New("unused")
}

func (s *stubAPI) ListSchedules(ctx context.Context, from, to time.Time) ([]model.Schedule, error) {
	return nil, nil
}

func (s *stubAPI) CreateSchedule(ctx context.Context, in api.ScheduleInput) (model.Schedule, error) {
	s.mu.Lock()
	s.schedules = append(s.schedules, in)
	s.mu.Unlock()
	return model.Schedule{ID: "sch-1", ContentID: in.ContentID, CampaignID: in.CampaignID, ScheduledAt: in.ScheduledAt}, nil
}

var testNow = time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC) // a Wednesday

func newTestModel(t *testing.T, stub *stubAPI) appModel {
	t.Helper()
	st := store.New()
	st.SetCampaigns([]model.Campaign{{
		ID:     "c1",
		Name:   "Spring launch",
		Status: model.CampaignDraft,
		Contents: []model.Content{
			{ID: "cnt-1", CampaignID: "c1", Title: "Launch post", Type: model.ContentArticle},
		},
	}})
	st.SetCurrentCampaign("c1")
	st.SetTasks([]model.Task{
		{ID: "t1", CampaignID: "c1", Title: "Write copy", Status: model.TaskTodo},
		{ID: "t2", CampaignID: "c1", Title: "Book ads", Status: model.TaskInProgress},
	})
	m := newAppModel(context.Background(), Options{
		API:   stub,
		Store: st,
		Now:   func() time.Time { return testNow },
	})
	mAny, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return mAny.(appModel)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m appModel, keys ...string) (appModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var mAny tea.Model
		mAny, cmd = m.Update(keyMsg(k))
		var ok bool
		m, ok = mAny.(appModel)
		if !ok {
			t.Fatalf("Update returned %T", mAny)
		}
	}
	return m, cmd
}

// runCmd executes cmd and any batch it expands to. Only use it on commands
// that do not sleep.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestBoard_KeyboardDragMovesTaskBeforeBackendAnswers(t *testing.T) {
	stub := &stubAPI{}
	m := newTestModel(t, stub)
	m.screen = screenCampaign

	m, cmd := press(t, m, " ", "l", "enter")

	got, _ := m.st.Task("t1")
	if got.Status != model.TaskInProgress {
		t.Fatalf("expected optimistic move to In progress, got %s", got.Status)
	}
	if m.boardDrag.active || m.dragging() {
		t.Fatalf("expected drag to be finished after drop")
	}
	if n := m.board.Pending(); n != 1 {
		t.Fatalf("expected 1 pending move, got %d", n)
	}
	if len(stub.updates) != 0 {
		t.Fatalf("backend must not be called inside Update")
	}

	for _, msg := range runCmd(cmd) {
		mAny, _ := m.Update(msg)
		m = mAny.(appModel)
	}
	if len(stub.updates) != 1 || *stub.updates[0].Status != model.TaskInProgress {
		t.Fatalf("expected one status update to IN_PROGRESS, got %+v", stub.updates)
	}
	if !m.hasFlash || m.flash.Level != notify.Success {
		t.Fatalf("expected success flash, got %+v", m.flash)
	}
}

func TestBoard_FailedMoveRollsBackAndFlashesError(t *testing.T) {
	stub := &stubAPI{updateErr: &api.Error{Status: 500, Message: "boom"}}
	m := newTestModel(t, stub)
	m.screen = screenCampaign

	m, cmd := press(t, m, "L")
	if got, _ := m.st.Task("t1"); got.Status != model.TaskInProgress {
		t.Fatalf("expected quick move to apply at once, got %s", got.Status)
	}

	for _, msg := range runCmd(cmd) {
		mAny, _ := m.Update(msg)
		m = mAny.(appModel)
	}
	if got, _ := m.st.Task("t1"); got.Status != model.TaskTodo {
		t.Fatalf("expected rollback to Todo, got %s", got.Status)
	}
	if !m.hasFlash || m.flash.Level != notify.Error {
		t.Fatalf("expected error flash, got %+v", m.flash)
	}
}

func TestBoard_EscCancelsDrag(t *testing.T) {
	m := newTestModel(t, &stubAPI{})
	m.screen = screenCampaign

	m, _ = press(t, m, " ", "l", "esc")
	if m.dragging() {
		t.Fatalf("expected esc to cancel the drag")
	}
	if got, _ := m.st.Task("t1"); got.Status != model.TaskTodo {
		t.Fatalf("expected no change after cancel, got %s", got.Status)
	}
	if m.screen != screenCampaign {
		t.Fatalf("expected esc during drag to stay on the board")
	}
	if m.board.Pending() != 0 {
		t.Fatalf("expected nothing queued")
	}
}

func TestCalendar_DropInsertsPlaceholderThenConfirms(t *testing.T) {
	stub := &stubAPI{}
	m := newTestModel(t, stub)
	m.screen = screenCampaign
	m.st.UpdateView(viewstate.ScreenCampaign, func(v viewstate.State) viewstate.State {
		return v.SetMode(viewstate.ModeCalendar)
	})

	// Cursor starts at 09:00; one step down is 10:00 on the week view.
	m, _ = press(t, m, "j", "tab", " ")
	if !m.dragging() {
		t.Fatalf("expected content drag to start from the sidebar")
	}
	m, cmd := press(t, m, " ")

	ss := m.st.Schedules()
	if len(ss) != 1 || !controller.IsTempID(ss[0].ID) {
		t.Fatalf("expected one placeholder schedule, got %+v", ss)
	}
	want := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	if !ss[0].ScheduledAt.Equal(want) {
		t.Fatalf("scheduledAt = %s, want %s", ss[0].ScheduledAt, want)
	}

	for _, msg := range runCmd(cmd) {
		mAny, _ := m.Update(msg)
		m = mAny.(appModel)
	}
	ss = m.st.Schedules()
	if len(ss) != 1 || ss[0].ID != "sch-1" {
		t.Fatalf("expected placeholder replaced by backend copy, got %+v", ss)
	}
	if ss[0].Title != "Launch post" {
		t.Fatalf("expected title carried over, got %q", ss[0].Title)
	}
}

func TestCampaigns_StatusKeyFiltersAndReloads(t *testing.T) {
	stub := &stubAPI{}
	m := newTestModel(t, stub)

	m, cmd := press(t, m, "s")
	f, _ := m.st.CampaignFilter()
	if len(f.Statuses) != 1 || f.Statuses[0] != model.CampaignStatuses()[0] {
		t.Fatalf("expected first status selected, got %v", f.Statuses)
	}
	runCmd(cmd)
	if len(stub.queries) != 1 || len(stub.queries[0].Statuses) != 1 {
		t.Fatalf("expected reload with status filter, got %+v", stub.queries)
	}
	if stub.queries[0].Page != 1 {
		t.Fatalf("expected filter change to reset to page 1, got %d", stub.queries[0].Page)
	}
}

func TestCampaigns_ModeCyclesAndRenders(t *testing.T) {
	m := newTestModel(t, &stubAPI{})

	out := m.View()
	if !strings.Contains(out, "Spring launch") || !strings.Contains(out, "Page 1/1") {
		t.Fatalf("expected table view with campaign and paging, got=%q", out)
	}

	m, _ = press(t, m, "v")
	if got := m.st.View(viewstate.ScreenCampaigns).Mode; got != viewstate.ModeGrid {
		t.Fatalf("mode = %s, want grid", got)
	}
	if out := m.View(); !strings.Contains(out, "Spring launch") {
		t.Fatalf("expected grid card for campaign, got=%q", out)
	}
}

func TestCampaign_OpenedMessageSwitchesScreen(t *testing.T) {
	m := newTestModel(t, &stubAPI{})

	mAny, _ := m.Update(campaignOpenedMsg{id: "c1"})
	m = mAny.(appModel)
	if m.screen != screenCampaign {
		t.Fatalf("expected campaign screen")
	}
	if m.ui.CampaignID != "c1" || len(m.ui.RecentCampaignIDs) != 1 {
		t.Fatalf("expected session state to remember c1, got %+v", m.ui)
	}
	if out := m.View(); !strings.Contains(out, "Todo (1)") || !strings.Contains(out, "In progress (1)") {
		t.Fatalf("expected board columns, got=%q", out)
	}

	// A stale open for another campaign does not switch.
	m.screen = screenCampaigns
	mAny, _ = m.Update(campaignOpenedMsg{id: "other"})
	if mAny.(appModel).screen != screenCampaigns {
		t.Fatalf("expected superseded open to be ignored")
	}
}
