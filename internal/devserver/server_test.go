package devserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/controller"
	"mops-cli/internal/devserver"
	"mops-cli/internal/filter"
	"mops-cli/internal/model"
	"mops-cli/internal/store"

	"github.com/stretchr/testify/require"
)

const org = "org-test"

var seedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T, cfg devserver.Config) (*devserver.Server, *httptest.Server) {
	t.Helper()
	ctx := context.Background()
	if cfg.DBPath == "" {
		cfg.DBPath = ":memory:"
	}
	srv, err := devserver.NewServer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	require.NoError(t, srv.DB().Seed(ctx, org, seedNow))

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return srv, hs
}

func newClient(t *testing.T, cfg devserver.Config) *api.Client {
	t.Helper()
	_, hs := newServer(t, cfg)
	return api.New(hs.URL, org, api.WithToken(cfg.Token))
}

func TestNewServer_Validates(t *testing.T) {
	_, err := devserver.NewServer(context.Background(), devserver.Config{})
	require.Error(t, err)

	_, err = devserver.NewServer(context.Background(), devserver.Config{DBPath: ":memory:", Latency: -time.Second})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	_, hs := newServer(t, devserver.Config{Token: "secret"})
	resp, err := http.Get(hs.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok\n", string(body))
}

func TestToken_Required(t *testing.T) {
	_, hs := newServer(t, devserver.Config{Token: "secret"})

	_, err := api.New(hs.URL, org).ListCampaigns(context.Background(), api.CampaignQuery{})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = api.New(hs.URL, org, api.WithToken("secret")).ListCampaigns(context.Background(), api.CampaignQuery{})
	require.NoError(t, err)
}

func TestListCampaigns_FiltersAndPages(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	page, err := c.ListCampaigns(ctx, api.CampaignQuery{})
	require.NoError(t, err)
	require.Len(t, page.Campaigns, 2)
	require.NotNil(t, page.Meta)
	require.Equal(t, 2, page.Meta.Total)
	// Newest first.
	require.Equal(t, devserver.SeedNewsID, page.Campaigns[0].ID)
	require.Equal(t, 3, page.Campaigns[1].Count.Tasks)
	require.Equal(t, 2, page.Campaigns[1].Count.Members)

	page, err = c.ListCampaigns(ctx, api.CampaignQuery{Search: "SPRING"})
	require.NoError(t, err)
	require.Len(t, page.Campaigns, 1)
	require.Equal(t, devserver.SeedLaunchID, page.Campaigns[0].ID)

	page, err = c.ListCampaigns(ctx, api.CampaignQuery{Statuses: []model.CampaignStatus{model.CampaignDraft}})
	require.NoError(t, err)
	require.Len(t, page.Campaigns, 1)
	require.Equal(t, devserver.SeedNewsID, page.Campaigns[0].ID)

	page, err = c.ListCampaigns(ctx, api.CampaignQuery{Page: 2, Limit: 1, Sort: "name"})
	require.NoError(t, err)
	require.Len(t, page.Campaigns, 1)
	require.Equal(t, devserver.SeedLaunchID, page.Campaigns[0].ID)
	require.Equal(t, model.Pagination{Page: 2, Limit: 1, Total: 2, TotalPages: 2}, *page.Meta)
	require.False(t, page.Meta.HasNextPage())
	require.True(t, page.Meta.HasPrevPage())
}

func TestListCampaigns_SearchCoversSummaryAndDescription(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	promo, err := c.CreateCampaign(ctx, api.CampaignInput{Name: "Q3 push", Summary: "Holiday PROMO blitz"})
	require.NoError(t, err)
	half, err := c.CreateCampaign(ctx, api.CampaignInput{Name: "Retention", Description: "Win back 50% of churned users"})
	require.NoError(t, err)
	_, err = c.CreateCampaign(ctx, api.CampaignInput{Name: "Stores", Description: "Reach 500 stores"})
	require.NoError(t, err)

	search := func(q string) []string {
		page, err := c.ListCampaigns(ctx, api.CampaignQuery{Search: q})
		require.NoError(t, err)
		var ids []string
		for _, cp := range page.Campaigns {
			ids = append(ids, cp.ID)
		}
		return ids
	}
	require.Equal(t, []string{promo.ID}, search("promo"))
	require.Equal(t, []string{half.ID}, search("50%"))
	require.Empty(t, search("_"))

	// The controller narrows by the same search locally; both sides must agree.
	st := store.New()
	st.SetCampaignFilter(filter.CampaignFilter{Search: "promo"}, filter.SortNone)
	require.NoError(t, controller.NewCampaigns(controller.Deps{Store: st, API: c}).Load(ctx))
	got := st.GetFilteredCampaigns()
	require.Len(t, got, 1)
	require.Equal(t, promo.ID, got[0].ID)
}

func TestListCampaigns_SortsOnTheServer(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	tests := []struct {
		sort string
		want []string
	}{
		{sort: "", want: []string{devserver.SeedNewsID, devserver.SeedLaunchID}},
		{sort: "oldest", want: []string{devserver.SeedLaunchID, devserver.SeedNewsID}},
		{sort: "size", want: []string{devserver.SeedLaunchID, devserver.SeedNewsID}},
		{sort: "priority", want: []string{devserver.SeedLaunchID, devserver.SeedNewsID}},
		{sort: "due", want: []string{devserver.SeedLaunchID, devserver.SeedNewsID}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			var got []string
			for page := 1; page <= 2; page++ {
				p, err := c.ListCampaigns(ctx, api.CampaignQuery{Page: page, Limit: 1, Sort: tt.sort})
				require.NoError(t, err)
				require.Len(t, p.Campaigns, 1)
				got = append(got, p.Campaigns[0].ID)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestUpdate_ClearsOptionalFields(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	empty := ""
	cp, err := c.UpdateCampaign(ctx, devserver.SeedLaunchID, api.CampaignUpdate{ClearTargetDate: true, LeadID: &empty})
	require.NoError(t, err)
	require.Nil(t, cp.TargetDate)
	require.Nil(t, cp.Lead)
	require.NotNil(t, cp.StartDate)

	tk, err := c.UpdateTask(ctx, devserver.SeedLaunchID, "tsk-assets", api.TaskUpdate{ClearDueDate: true, AssigneeID: &empty})
	require.NoError(t, err)
	require.Nil(t, tk.DueDate)
	require.Nil(t, tk.Assignee)
	require.NotNil(t, tk.EstimatedHours)
}

func TestCampaign_CreateUpdateDelete(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	_, err := c.CreateCampaign(ctx, api.CampaignInput{Name: "   "})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)

	created, err := c.CreateCampaign(ctx, api.CampaignInput{Name: "Summer promo", LeadID: "usr-ana"})
	require.NoError(t, err)
	require.Equal(t, model.CampaignDraft, created.Status)
	require.Equal(t, model.HealthOnTrack, created.Health)
	require.Equal(t, model.PriorityNone, created.Priority)
	require.Len(t, created.Members, 1)
	require.Equal(t, model.RoleLead, created.Members[0].Role)

	status := model.CampaignReady
	name := "Summer promo 2"
	updated, err := c.UpdateCampaign(ctx, created.ID, api.CampaignUpdate{Name: &name, Status: &status})
	require.NoError(t, err)
	require.Equal(t, "Summer promo 2", updated.Name)
	require.Equal(t, model.CampaignReady, updated.Status)

	require.NoError(t, c.DeleteCampaign(ctx, created.ID))
	_, err = c.GetCampaign(ctx, created.ID)
	require.True(t, api.IsNotFound(err))
	require.True(t, api.IsNotFound(c.DeleteCampaign(ctx, created.ID)))
}

func TestCampaign_DatesMustBeOrdered(t *testing.T) {
	c := newClient(t, devserver.Config{})
	start := seedNow
	end := seedNow.AddDate(0, 0, -1)
	_, err := c.CreateCampaign(context.Background(), api.CampaignInput{Name: "Backwards", StartDate: &start, TargetDate: &end})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestTasks_NestSubtasksOneLevel(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx, devserver.SeedLaunchID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	var assets model.Task
	for _, tk := range tasks {
		if tk.ID == "tsk-assets" {
			assets = tk
		}
	}
	require.Len(t, assets.Subtasks, 2)
	require.Equal(t, 2, assets.Count.Subtasks)

	sub := "tsk-assets-video"
	_, err = c.CreateTask(ctx, devserver.SeedLaunchID, api.TaskInput{Title: "Too deep", ParentTaskID: &sub})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)

	parent := "tsk-ads"
	created, err := c.CreateTask(ctx, devserver.SeedLaunchID, api.TaskInput{Title: "Pick audiences", ParentTaskID: &parent})
	require.NoError(t, err)
	require.True(t, created.IsSubtask())
	require.Equal(t, model.TaskTodo, created.Status)

	require.NoError(t, c.DeleteTask(ctx, devserver.SeedLaunchID, "tsk-assets"))
	tasks, err = c.ListTasks(ctx, devserver.SeedLaunchID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func TestTasks_UnknownCampaignIsNotFound(t *testing.T) {
	c := newClient(t, devserver.Config{})
	_, err := c.ListTasks(context.Background(), "cmp-missing")
	require.True(t, api.IsNotFound(err))
}

func TestSchedules_RangeAndCreate(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	got, err := c.ListSchedules(ctx, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "sch-announce", got[0].ID)

	got, err = c.ListSchedules(ctx, from.AddDate(0, 0, 7), from.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Empty(t, got)

	at := time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC)
	sc, err := c.CreateSchedule(ctx, api.ScheduleInput{ContentID: devserver.SeedVideoID, ScheduledAt: at})
	require.NoError(t, err)
	require.Equal(t, "Teaser video", sc.Title)
	require.Equal(t, devserver.SeedLaunchID, sc.CampaignID)
	require.True(t, sc.ScheduledAt.Equal(at))

	_, err = c.CreateSchedule(ctx, api.ScheduleInput{ContentID: "cnt-missing", ScheduledAt: at})
	require.True(t, api.IsNotFound(err))
}

func TestLatency_ClientGivesUp(t *testing.T) {
	_, hs := newServer(t, devserver.Config{Latency: 2 * time.Second})
	c := api.New(hs.URL, org)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ListCampaigns(ctx, api.CampaignQuery{})
	var te *api.TransportError
	require.True(t, errors.As(err, &te))
}

func TestBoard_MovePersistsThroughBackend(t *testing.T) {
	c := newClient(t, devserver.Config{})
	ctx := context.Background()
	st := store.New()
	deps := controller.Deps{Store: st, API: c}

	require.NoError(t, controller.NewCampaigns(deps).Open(ctx, devserver.SeedLaunchID))
	require.Equal(t, devserver.SeedLaunchID, st.CurrentCampaignID())

	board := controller.NewBoard(deps)
	require.NoError(t, board.MoveTask(ctx, "tsk-ads", model.TaskInProgress))

	local, ok := st.Task("tsk-ads")
	require.True(t, ok)
	require.Equal(t, model.TaskInProgress, local.Status)

	remote, err := c.ListTasks(ctx, devserver.SeedLaunchID)
	require.NoError(t, err)
	for _, tk := range remote {
		if tk.ID == "tsk-ads" {
			require.Equal(t, model.TaskInProgress, tk.Status)
		}
	}
}
