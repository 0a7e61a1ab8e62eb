package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/dnd"
	"mops-cli/internal/model"
	"mops-cli/internal/notify"
	"mops-cli/internal/store"
	"mops-cli/internal/viewstate"

	"github.com/google/go-cmp/cmp"
)

type taskUpdateCall struct {
	CampaignID string
	TaskID     string
	Update     api.TaskUpdate
}

// fakeAPI records calls. Unset hooks succeed with an echo of the input.
type fakeAPI struct {
	mu          sync.Mutex
	calls       []string
	taskUpdates []taskUpdateCall

	listCampaigns  func(api.CampaignQuery) (api.CampaignPage, error)
	updateTask     func(campaignID, taskID string, in api.TaskUpdate) (model.Task, error)
	createSchedule func(api.ScheduleInput) (model.Schedule, error)
	listSchedules  func(ctx context.Context, from, to time.Time) ([]model.Schedule, error)
	deleteCampaign func(id string) error
	listLabels     func(id string) ([]model.Label, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) GetCampaign(ctx context.Context, id string) (model.Campaign, error) {
	f.record("GetCampaign")
	return model.Campaign{ID: id, Name: "Launch"}, nil
}

func (f *fakeAPI) ListTasks(ctx context.Context, id string) ([]model.Task, error) {
	f.record("ListTasks")
	return []model.Task{{ID: "t1", CampaignID: id, Status: model.TaskTodo}}, nil
}

func (f *fakeAPI) ListMembers(ctx context.Context, id string) ([]model.Member, error) {
	f.record("ListMembers")
	return nil, nil
}

func (f *fakeAPI) ListLabels(ctx context.Context, id string) ([]model.Label, error) {
	f.record("ListLabels")
	if f.listLabels != nil {
		return f.listLabels(id)
	}
	return nil, nil
}

func (f *fakeAPI) ListMilestones(ctx context.Context, id string) ([]model.Milestone, error) {
	f.record("ListMilestones")
	return nil, nil
}

func (f *fakeAPI) ListCampaigns(ctx context.Context, q api.CampaignQuery) (api.CampaignPage, error) {
	f.record("ListCampaigns")
	if f.listCampaigns != nil {
		return f.listCampaigns(q)
	}
	return api.CampaignPage{}, nil
}

func (f *fakeAPI) CreateCampaign(ctx context.Context, in api.CampaignInput) (model.Campaign, error) {
	f.record("CreateCampaign")
	return model.Campaign{ID: "new", Name: in.Name, Status: model.CampaignDraft}, nil
}

func (f *fakeAPI) UpdateCampaign(ctx context.Context, id string, in api.CampaignUpdate) (model.Campaign, error) {
	f.record("UpdateCampaign")
	return model.Campaign{}, errors.New("not implemented")
}

func (f *fakeAPI) DeleteCampaign(ctx context.Context, id string) error {
	f.record("DeleteCampaign")
	if f.deleteCampaign != nil {
		return f.deleteCampaign(id)
	}
	return nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, campaignID string, in api.TaskInput) (model.Task, error) {
	f.record("CreateTask")
	return model.Task{ID: "new-task", CampaignID: campaignID, Title: in.Title, ParentTaskID: in.ParentTaskID}, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, campaignID, taskID string, in api.TaskUpdate) (model.Task, error) {
	f.record("UpdateTask")
	f.mu.Lock()
	f.taskUpdates = append(f.taskUpdates, taskUpdateCall{CampaignID: campaignID, TaskID: taskID, Update: in})
	f.mu.Unlock()
	if f.updateTask != nil {
		return f.updateTask(campaignID, taskID, in)
	}
	t := model.Task{ID: taskID, CampaignID: campaignID, Title: "Write copy"}
	if in.Status != nil {
		t.Status = *in.Status
	}
	return t, nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, campaignID, taskID string) error {
	f.record("DeleteTask")
	return nil
}

func (f *fakeAPI) ListSchedules(ctx context.Context, from, to time.Time) ([]model.Schedule, error) {
	f.record("ListSchedules")
	if f.listSchedules != nil {
		return f.listSchedules(ctx, from, to)
	}
	return nil, nil
}

func (f *fakeAPI) CreateSchedule(ctx context.Context, in api.ScheduleInput) (model.Schedule, error) {
	f.record("CreateSchedule")
	if f.createSchedule != nil {
		return f.createSchedule(in)
	}
	return model.Schedule{ID: "sch-1", ContentID: in.ContentID, CampaignID: in.CampaignID, ScheduledAt: in.ScheduledAt, Status: model.ScheduleScheduled}, nil
}

func newDeps(f *fakeAPI) Deps {
	return Deps{Store: store.New(), API: f, Notify: notify.New(8, nil)}.withDefaults()
}

func TestBoard_MoveTaskIssuesExactlyOneUpdate(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	d.Store.SetTasks([]model.Task{{ID: "t1", CampaignID: "c1", Title: "Write copy", Status: model.TaskTodo}})
	b := NewBoard(d)

	if err := b.MoveTask(context.Background(), "t1", model.TaskInProgress); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	status := model.TaskInProgress
	want := []taskUpdateCall{{CampaignID: "c1", TaskID: "t1", Update: api.TaskUpdate{Status: &status}}}
	if diff := cmp.Diff(want, f.taskUpdates); diff != "" {
		t.Fatalf("updates (-want +got):\n%s", diff)
	}
	got, _ := d.Store.Task("t1")
	if got.Status != model.TaskInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", got.Status)
	}
	if len(d.Store.Pending()) != 0 || b.Pending() != 0 {
		t.Fatalf("nothing should be pending after flush")
	}
}

func TestBoard_SameColumnDropTouchesNothing(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	d.Store.SetTasks([]model.Task{{ID: "t1", CampaignID: "c1", Status: model.TaskReview}})
	before := d.Store.Snapshot()
	b := NewBoard(d)

	if err := b.Drag().DragStart(dnd.TaskPayload{TaskID: "t1", Status: model.TaskReview}); err != nil {
		t.Fatalf("DragStart: %v", err)
	}
	if _, ok := b.Drag().Drop(dnd.ColumnTarget{Status: model.TaskReview}); ok {
		t.Fatalf("same-column drop must be a no-op")
	}
	if err := b.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if calls := f.Calls(); len(calls) != 0 {
		t.Fatalf("expected no API calls, got %v", calls)
	}
	if diff := cmp.Diff(before, d.Store.Snapshot()); diff != "" {
		t.Fatalf("store changed (-before +after):\n%s", diff)
	}
}

func TestBoard_DropIsOptimisticAndRollsBackOnFailure(t *testing.T) {
	f := &fakeAPI{updateTask: func(string, string, api.TaskUpdate) (model.Task, error) {
		return model.Task{}, &api.Error{Status: 500, Message: "boom"}
	}}
	d := newDeps(f)
	d.Store.SetTasks([]model.Task{{ID: "t1", CampaignID: "c1", Status: model.TaskTodo}})
	before := d.Store.Snapshot()
	b := NewBoard(d)

	if err := b.Drag().DragStart(dnd.TaskPayload{TaskID: "t1", Status: model.TaskTodo}); err != nil {
		t.Fatalf("DragStart: %v", err)
	}
	if _, ok := b.Drag().Drop(dnd.ColumnTarget{Status: model.TaskDone}); !ok {
		t.Fatalf("expected a mutation")
	}
	if got, _ := d.Store.Task("t1"); got.Status != model.TaskDone {
		t.Fatalf("drop must update the store before the backend answers")
	}
	if b.Pending() != 1 {
		t.Fatalf("expected one queued op, got %d", b.Pending())
	}

	err := b.Flush(context.Background())
	var ae *api.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected api error, got %v", err)
	}
	if diff := cmp.Diff(before, d.Store.Snapshot()); diff != "" {
		t.Fatalf("rollback incomplete (-before +after):\n%s", diff)
	}
	n, ok := d.Notify.Latest()
	if !ok || n.Level != notify.Error || !strings.Contains(n.Message, "move task") {
		t.Fatalf("expected an error notification, got %+v", n)
	}
}

func TestBoard_OlderFailedDropDoesNotUndoNewerConfirmedDrop(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu       sync.Mutex
		accepted []model.TaskStatus
		n        int
	)
	f := &fakeAPI{updateTask: func(campaignID, taskID string, in api.TaskUpdate) (model.Task, error) {
		mu.Lock()
		n++
		first := n == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
			return model.Task{}, &api.Error{Status: 503, Message: "unavailable"}
		}
		mu.Lock()
		accepted = append(accepted, *in.Status)
		mu.Unlock()
		return model.Task{ID: taskID, CampaignID: campaignID, Status: *in.Status}, nil
	}}
	d := newDeps(f)
	d.Store.SetTasks([]model.Task{{ID: "t1", CampaignID: "c1", Status: model.TaskTodo}})
	b := NewBoard(d)

	drop := func(from, to model.TaskStatus) {
		t.Helper()
		if err := b.Drag().DragStart(dnd.TaskPayload{TaskID: "t1", Status: from}); err != nil {
			t.Fatalf("DragStart: %v", err)
		}
		if _, ok := b.Drag().Drop(dnd.ColumnTarget{Status: to}); !ok {
			t.Fatalf("expected a mutation for %s -> %s", from, to)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	drop(model.TaskTodo, model.TaskInProgress)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = b.Flush(context.Background())
	}()
	<-started

	drop(model.TaskInProgress, model.TaskDone)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = b.Flush(context.Background())
	}()
	close(release)
	wg.Wait()

	if errs[0] == nil || errs[1] != nil {
		t.Fatalf("expected only the first flush to fail, got %v / %v", errs[0], errs[1])
	}
	if diff := cmp.Diff([]model.TaskStatus{model.TaskDone}, accepted); diff != "" {
		t.Fatalf("backend writes (-want +got):\n%s", diff)
	}
	got, _ := d.Store.Task("t1")
	if got.Status != model.TaskDone {
		t.Fatalf("store diverged from backend: %s", got.Status)
	}
	if len(d.Store.Pending()) != 0 || b.Pending() != 0 {
		t.Fatalf("nothing should be pending")
	}
}

func TestBoard_MoveUnknownTaskIsSilent(t *testing.T) {
	f := &fakeAPI{}
	b := NewBoard(newDeps(f))
	if err := b.MoveTask(context.Background(), "ghost", model.TaskDone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Calls()) != 0 || b.Notify.Len() != 0 {
		t.Fatalf("unknown task must be a silent no-op")
	}
	if err := b.MoveTask(context.Background(), "ghost", "ARCHIVED"); !IsValidation(err) {
		t.Fatalf("invalid status must be a validation error, got %v", err)
	}
}

func TestBoard_AddSubtask(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	parent := "p"
	d.Store.SetTasks([]model.Task{{ID: "p", CampaignID: "c1"}, {ID: "s", CampaignID: "c1", ParentTaskID: &parent}})
	b := NewBoard(d)

	if _, err := b.AddSubtask(context.Background(), "s", api.TaskInput{Title: "too deep"}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := b.AddSubtask(context.Background(), "p", api.TaskInput{Title: "  "}); !IsValidation(err) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
	if len(f.Calls()) != 0 {
		t.Fatalf("validation failures must not reach the API: %v", f.Calls())
	}

	created, err := b.AddSubtask(context.Background(), "p", api.TaskInput{Title: "Outline"})
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if created.ParentTaskID == nil || *created.ParentTaskID != "p" {
		t.Fatalf("parent not sent: %+v", created)
	}
	p, _ := d.Store.Task("p")
	if p.Count.Subtasks != 2 || len(p.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got count=%d len=%d", p.Count.Subtasks, len(p.Subtasks))
	}
}

func TestCampaigns_CreateValidatesBeforeAnything(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	c := NewCampaigns(d)
	before := d.Store.Snapshot()

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	bad := []api.CampaignInput{
		{Name: ""},
		{Name: "ok", Status: "ARCHIVED"},
		{Name: "ok", StartDate: &start, TargetDate: &end},
	}
	for _, in := range bad {
		if _, err := c.Create(context.Background(), in); !IsValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
	if len(f.Calls()) != 0 {
		t.Fatalf("API must not be called: %v", f.Calls())
	}
	if diff := cmp.Diff(before, d.Store.Snapshot()); diff != "" {
		t.Fatalf("store changed (-before +after):\n%s", diff)
	}

	got, err := c.Create(context.Background(), api.CampaignInput{Name: "Spring"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if list := d.Store.Campaigns(); len(list) != 1 || list[0].ID != got.ID {
		t.Fatalf("created campaign not stored: %+v", list)
	}
}

func TestCampaigns_UpdateRollsBack(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	d.Store.SetCampaigns([]model.Campaign{{ID: "c1", Name: "Spring"}})
	c := NewCampaigns(d)

	name := "Summer"
	if err := c.Update(context.Background(), "c1", store.CampaignPatch{Name: &name}); err == nil {
		t.Fatalf("expected update error")
	}
	got, _ := d.Store.Campaign("c1")
	if got.Name != "Spring" {
		t.Fatalf("expected rollback to Spring, got %q", got.Name)
	}
	if err := c.Update(context.Background(), "missing", store.CampaignPatch{Name: &name}); err != nil {
		t.Fatalf("unknown id must be a no-op, got %v", err)
	}
}

func TestCampaigns_UpdateRejectsUnknownHealth(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	d.Store.SetCampaigns([]model.Campaign{{ID: "c1", Name: "Spring", Health: model.HealthOnTrack}})
	before := d.Store.Snapshot()

	green := model.Health("GREEN")
	err := NewCampaigns(d).Update(context.Background(), "c1", store.CampaignPatch{Health: &green})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls := f.Calls(); len(calls) != 0 {
		t.Fatalf("expected no API calls, got %v", calls)
	}
	if diff := cmp.Diff(before, d.Store.Snapshot()); diff != "" {
		t.Fatalf("store changed (-before +after):\n%s", diff)
	}
}

func TestUpdates_SendClears(t *testing.T) {
	empty := ""
	gotCampaign := campaignUpdate(store.CampaignPatch{ClearStartDate: true, ClearTargetDate: true, ClearLead: true})
	wantCampaign := api.CampaignUpdate{ClearStartDate: true, ClearTargetDate: true, LeadID: &empty}
	if diff := cmp.Diff(wantCampaign, gotCampaign); diff != "" {
		t.Fatalf("campaign update (-want +got):\n%s", diff)
	}

	gotTask := taskUpdate(store.TaskPatch{ClearDueDate: true, ClearAssignee: true})
	wantTask := api.TaskUpdate{ClearDueDate: true, AssigneeID: &empty}
	if diff := cmp.Diff(wantTask, gotTask); diff != "" {
		t.Fatalf("task update (-want +got):\n%s", diff)
	}
}

func TestCampaigns_LoadAppliesPagination(t *testing.T) {
	f := &fakeAPI{listCampaigns: func(q api.CampaignQuery) (api.CampaignPage, error) {
		meta := model.NewPagination(q.Page, q.Limit, 45)
		return api.CampaignPage{Campaigns: []model.Campaign{{ID: "c1"}}, Meta: &meta}, nil
	}}
	d := newDeps(f)
	c := NewCampaigns(d)
	if err := c.GoToPage(context.Background(), 3); err != nil {
		t.Fatalf("GoToPage: %v", err)
	}
	v := d.Store.View(viewstate.ScreenCampaigns)
	if v.Page.Page != 3 || v.Page.TotalPages != 3 || v.Page.HasNextPage() || !v.Page.HasPrevPage() {
		t.Fatalf("unexpected pagination %+v", v.Page)
	}
	if len(d.Store.Campaigns()) != 1 {
		t.Fatalf("campaigns not applied")
	}
}

func TestCampaigns_DeleteClearsSelectionAndTreatsNotFoundAsDone(t *testing.T) {
	f := &fakeAPI{deleteCampaign: func(string) error { return &api.Error{Status: 404, Message: "gone"} }}
	d := newDeps(f)
	d.Store.SetCampaigns([]model.Campaign{{ID: "x"}})
	d.Store.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State { return v.OpenDetail("x") })
	c := NewCampaigns(d)

	if err := c.Delete(context.Background(), "x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	v := d.Store.View(viewstate.ScreenCampaigns)
	if v.SelectedID != "" || v.DetailPanelOpen || len(d.Store.Campaigns()) != 0 {
		t.Fatalf("campaign not removed cleanly: %+v", v)
	}
}

func TestCampaigns_OpenAppliesNothingOnPartialFailure(t *testing.T) {
	f := &fakeAPI{listLabels: func(string) ([]model.Label, error) { return nil, errors.New("labels down") }}
	d := newDeps(f)
	before := d.Store.Snapshot()
	c := NewCampaigns(d)
	if err := c.Open(context.Background(), "c1"); err == nil {
		t.Fatalf("expected error")
	}
	if diff := cmp.Diff(before, d.Store.Snapshot()); diff != "" {
		t.Fatalf("partial detail applied (-before +after):\n%s", diff)
	}

	f.listLabels = nil
	if err := c.Open(context.Background(), "c1"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if cur, ok := d.Store.CurrentCampaign(); !ok || cur.ID != "c1" {
		t.Fatalf("expected c1 current")
	}
	if len(d.Store.Tasks()) != 1 {
		t.Fatalf("tasks not applied")
	}
}

func TestCalendar_ScheduleReplacesPlaceholder(t *testing.T) {
	f := &fakeAPI{}
	d := newDeps(f)
	cal := NewCalendar(d)
	at := time.Date(2026, 1, 6, 14, 40, 0, 0, time.UTC)

	err := cal.Schedule(context.Background(), dnd.ContentPayload{ContentID: "ct1", CampaignID: "c1", Title: "Teaser"}, at, dnd.ViewWeek)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	got := d.Store.Schedules()
	if len(got) != 1 || got[0].ID != "sch-1" || got[0].Title != "Teaser" {
		t.Fatalf("expected confirmed schedule, got %+v", got)
	}
	if want := time.Date(2026, 1, 6, 14, 30, 0, 0, time.UTC); !got[0].ScheduledAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got[0].ScheduledAt)
	}
}

func TestCalendar_FailedScheduleRemovesPlaceholder(t *testing.T) {
	f := &fakeAPI{createSchedule: func(api.ScheduleInput) (model.Schedule, error) {
		return model.Schedule{}, &api.Error{Status: 409, Message: "slot taken"}
	}}
	d := newDeps(f)
	cal := NewCalendar(d)
	day := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)

	if err := cal.Drag().DragStart(dnd.ContentPayload{ContentID: "ct1"}); err != nil {
		t.Fatalf("DragStart: %v", err)
	}
	if _, ok := cal.Drag().Drop(dnd.SlotTarget{Day: day, View: dnd.ViewMonth}); !ok {
		t.Fatalf("expected a mutation")
	}
	pending := d.Store.Schedules()
	if len(pending) != 1 || !IsTempID(pending[0].ID) || pending[0].ScheduledAt.Hour() != dnd.MonthDropHour {
		t.Fatalf("expected a 09:00 placeholder, got %+v", pending)
	}
	if err := cal.Flush(context.Background()); err == nil {
		t.Fatalf("expected flush error")
	}
	if got := d.Store.Schedules(); len(got) != 0 {
		t.Fatalf("placeholder must be removed, got %+v", got)
	}
	if n, ok := d.Notify.Latest(); !ok || !strings.Contains(n.Message, "slot taken") {
		t.Fatalf("expected notification, got %+v", n)
	}
}

func TestCalendar_LoadWeekLastRequestedWins(t *testing.T) {
	weekA := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	weekB := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	f := &fakeAPI{listSchedules: func(ctx context.Context, from, to time.Time) ([]model.Schedule, error) {
		if from.Equal(weekA) {
			close(startedA)
			<-releaseA // resolves late and ignores cancellation
		}
		return []model.Schedule{{ID: from.Format("2006-01-02"), ScheduledAt: from}}, nil
	}}
	d := newDeps(f)
	cal := NewCalendar(d)

	errA := make(chan error, 1)
	go func() { errA <- cal.LoadWeek(context.Background(), weekA) }()
	<-startedA
	if err := cal.LoadWeek(context.Background(), weekB); err != nil {
		t.Fatalf("LoadWeek B: %v", err)
	}
	close(releaseA)
	if err := <-errA; err != nil {
		t.Fatalf("LoadWeek A: %v", err)
	}

	got := d.Store.Schedules()
	if len(got) != 1 || got[0].ID != "2026-01-08" {
		t.Fatalf("expected week of Jan 8, got %+v", got)
	}
}

func TestWeekStart(t *testing.T) {
	thu := time.Date(2026, 1, 8, 15, 0, 0, 0, time.UTC)
	if got := WeekStart(thu); !got.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", got)
	}
	sun := time.Date(2026, 1, 11, 1, 0, 0, 0, time.UTC)
	if got := WeekStart(sun); !got.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", got)
	}
}
