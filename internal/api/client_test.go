package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mops-cli/internal/model"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "org-1", WithToken("secret"))
}

func TestListCampaigns_EnvelopeWithPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/org-1/campaigns", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "DRAFT,READY", r.URL.Query().Get("status"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `{"ok":true,"data":[{"id":"c1","name":"Launch","status":"draft"}],
			"pagination":{"page":2,"limit":1,"total":3,"totalPages":3}}`)
	})

	page, err := c.ListCampaigns(context.Background(), CampaignQuery{
		Page:     2,
		Statuses: []model.CampaignStatus{model.CampaignDraft, model.CampaignReady},
	})
	require.NoError(t, err)
	require.Len(t, page.Campaigns, 1)
	require.Equal(t, model.CampaignDraft, page.Campaigns[0].Status)
	require.NotNil(t, page.Meta)
	require.True(t, page.Meta.HasNextPage())
	require.True(t, page.Meta.HasPrevPage())
}

func TestClient_NonSuccessAndOkFalseAreTheSameError(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"http 404", http.StatusNotFound, `{"error":{"message":"Campaign not found"}}`},
		{"ok false", http.StatusOK, `{"ok":false,"error":{"message":"Campaign not found"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			got, err := c.GetCampaign(context.Background(), "missing")
			var ae *Error
			require.ErrorAs(t, err, &ae)
			require.Equal(t, "Campaign not found", ae.Message)
			require.Equal(t, tc.status, ae.Status)
			require.Empty(t, got.ID)
		})
	}
}

func TestClient_IsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	err := c.DeleteCampaign(context.Background(), "c1")
	require.True(t, IsNotFound(err))
	require.Contains(t, err.Error(), "404")
}

func TestClient_TransportErrorWrapsCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.ListTasks(ctx, "c1")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.True(t, IsCanceled(err))
}

func TestUpdateTask_SendsOnlySetFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/org-1/campaigns/c1/tasks/t1", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"status": "IN_PROGRESS"}, body)
		_, _ = io.WriteString(w, `{"id":"t1","title":"Copy","status":"IN_PROGRESS"}`)
	})
	status := model.TaskInProgress
	got, err := c.UpdateTask(context.Background(), "c1", "t1", TaskUpdate{Status: &status})
	require.NoError(t, err)
	require.Equal(t, model.TaskInProgress, got.Status)
	require.Equal(t, "c1", got.CampaignID)
}

func TestCreateSchedule_EmptyBodyIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	_, err := c.CreateSchedule(context.Background(), ScheduleInput{ContentID: "ct1", ScheduledAt: time.Now()})
	require.Error(t, err)
}

func TestListSchedules_SendsRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/org-1/schedules", r.URL.Path)
		require.Equal(t, "2026-01-01T00:00:00Z", r.URL.Query().Get("from"))
		require.Equal(t, "2026-01-08T00:00:00Z", r.URL.Query().Get("to"))
		_, _ = io.WriteString(w, `{"ok":true,"data":[{"id":"s1","contentId":"ct1","scheduledAt":"2026-01-02T09:00:00Z"}]}`)
	})
	got, err := c.ListSchedules(context.Background(), from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "ct1", got[0].ContentID)
}

func TestClient_RequiresOrg(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	_, err := c.ListCampaigns(context.Background(), CampaignQuery{})
	require.Error(t, err)
	require.False(t, errors.As(err, new(*TransportError)))
}
