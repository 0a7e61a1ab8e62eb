package wire

import (
	"errors"
	"testing"
	"time"

	"mops-cli/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestUnwrap_Shapes(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "bare array", body: `[{"id":"c1"}]`, want: `[{"id":"c1"}]`},
		{name: "bare object", body: `{"id":"c1"}`, want: `{"id":"c1"}`},
		{name: "envelope ok", body: `{"ok":true,"data":[1,2]}`, want: `[1,2]`},
		{name: "envelope failed", body: `{"ok":false,"error":{"message":"nope"}}`, wantErr: "nope"},
		{name: "failed without message", body: `{"ok":false}`, wantErr: "request failed"},
		{name: "error only", body: `{"error":"bad org"}`, wantErr: "bad org"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, _, err := Unwrap([]byte(tc.body))
			if tc.wantErr != "" {
				var re *RemoteError
				if !errors.As(err, &re) {
					t.Fatalf("expected RemoteError, got %v", err)
				}
				if re.Error() != tc.wantErr {
					t.Fatalf("message: got %q want %q", re.Error(), tc.wantErr)
				}
				if data != nil {
					t.Fatalf("data must not accompany an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tc.want {
				t.Fatalf("got %s want %s", data, tc.want)
			}
		})
	}
}

func TestUnwrap_EmptyBody(t *testing.T) {
	if _, _, err := Unwrap([]byte("  ")); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestUnwrap_PaginationAlongsideData(t *testing.T) {
	body := `{"ok":true,"data":[],"pagination":{"page":2,"limit":10,"total":35,"totalPages":4,"hasNextPage":false}}`
	_, meta, err := Unwrap([]byte(body))
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if meta == nil || meta.Page != 2 || meta.TotalPages != 4 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if !meta.HasNextPage() || !meta.HasPrevPage() {
		t.Fatalf("derived flags must follow page/totalPages, got %+v", meta)
	}
}

func TestErrorMessage(t *testing.T) {
	cases := map[string]string{
		`{"error":{"message":"Campaign not found"}}`: "Campaign not found",
		`{"message":"Unauthorized"}`:                 "Unauthorized",
		`plain text`:                                 "plain text",
		``:                                           "",
	}
	for body, want := range cases {
		if got := ErrorMessage([]byte(body)); got != want {
			t.Fatalf("ErrorMessage(%q)=%q want %q", body, got, want)
		}
	}
}

func TestDecodeCampaigns_TranslatesBackendSpellings(t *testing.T) {
	raw := []byte(`{
		"campaigns": [{
			"id": "c1",
			"orgId": "org",
			"title": "Launch",
			"status": "planning",
			"health": "at-risk",
			"priority": 3,
			"startDate": "2026-03-01",
			"endDate": "2026-03-31T00:00:00Z",
			"lead": {"id": "u1", "name": "Ana"},
			"members": [{"id": "m1", "userId": "u2", "role": "viewer"}],
			"_count": {"tasks": 4, "members": 1, "contents": 0}
		}],
		"pagination": {"page": 1, "limit": 20, "total": 1, "totalPages": 1}
	}`)
	got, meta, err := DecodeCampaigns(raw)
	if err != nil {
		t.Fatalf("DecodeCampaigns: %v", err)
	}
	if meta == nil || meta.Total != 1 {
		t.Fatalf("expected pagination, got %+v", meta)
	}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	target := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	want := []model.Campaign{{
		ID:         "c1",
		OrgID:      "org",
		Name:       "Launch",
		Status:     model.CampaignPlanning,
		Health:     model.HealthAtRisk,
		Priority:   model.PriorityHigh,
		StartDate:  &start,
		TargetDate: &target,
		Lead:       &model.UserRef{ID: "u1", Name: "Ana"},
		Members:    []model.Member{{ID: "m1", CampaignID: "c1", User: model.UserRef{ID: "u2"}, Role: model.RoleViewer}},
		Count:      model.CampaignCount{Tasks: 4, Members: 1},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("campaign mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCampaigns_UnknownEnumRejectsWholeResponse(t *testing.T) {
	raw := []byte(`[{"id":"ok","status":"DRAFT"},{"id":"bad","status":"ARCHIVED"}]`)
	got, _, err := DecodeCampaigns(raw)
	var ee model.EnumError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EnumError, got %v", err)
	}
	if got != nil {
		t.Fatalf("no rows may be returned on error, got %+v", got)
	}
}

func TestDecodeTasks_NestedSubtasksAndDefaults(t *testing.T) {
	raw := []byte(`[{
		"id": "t1",
		"title": "Write copy",
		"status": "in progress",
		"estimatedHours": "2.5",
		"subtasks": [{"id": "t1a", "title": "Outline", "status": "done", "priority": "low"}]
	}]`)
	got, err := DecodeTasks(raw, "c1")
	if err != nil {
		t.Fatalf("DecodeTasks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one task, got %d", len(got))
	}
	tk := got[0]
	if tk.Status != model.TaskInProgress || tk.Priority != model.PriorityNone || tk.CampaignID != "c1" {
		t.Fatalf("unexpected task %+v", tk)
	}
	if tk.EstimatedHours == nil || *tk.EstimatedHours != 2.5 {
		t.Fatalf("estimatedHours not parsed: %v", tk.EstimatedHours)
	}
	if tk.Count.Subtasks != 1 || len(tk.Subtasks) != 1 {
		t.Fatalf("expected one subtask, got %+v", tk)
	}
	sub := tk.Subtasks[0]
	if sub.ParentTaskID == nil || *sub.ParentTaskID != "t1" || sub.Status != model.TaskDone || sub.CampaignID != "c1" {
		t.Fatalf("unexpected subtask %+v", sub)
	}
}

func TestDecodeTask_PriorityOutOfRange(t *testing.T) {
	_, err := DecodeTask([]byte(`{"id":"t","priority":9}`), "c")
	var ee model.EnumError
	if !errors.As(err, &ee) || ee.Enum != "priority" {
		t.Fatalf("expected priority EnumError, got %v", err)
	}
}

func TestDecodeSchedules(t *testing.T) {
	raw := []byte(`{"items":[
		{"id":"s1","scheduledAt":"2026-05-04T09:15:00Z","content":{"id":"ct1","campaignId":"c1","title":"Teaser"}},
		{"id":"s2","contentId":"ct2","scheduledAt":1777885200000,"status":"published"}
	]}`)
	got, err := DecodeSchedules(raw)
	if err != nil {
		t.Fatalf("DecodeSchedules: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two schedules, got %d", len(got))
	}
	if got[0].ContentID != "ct1" || got[0].CampaignID != "c1" || got[0].Title != "Teaser" || got[0].Status != model.ScheduleScheduled {
		t.Fatalf("unexpected first schedule %+v", got[0])
	}
	if got[1].Status != model.SchedulePublished || got[1].ScheduledAt.IsZero() {
		t.Fatalf("unexpected second schedule %+v", got[1])
	}

	if _, err := DecodeSchedule([]byte(`{"id":"s3"}`)); err == nil {
		t.Fatalf("expected error for missing scheduledAt")
	}
}

func TestDecodeMilestonesAndLabels(t *testing.T) {
	ms, err := DecodeMilestones([]byte(`[{"id":"m1","name":"Beta","completed":true,"dueDate":null}]`), "c1")
	if err != nil {
		t.Fatalf("DecodeMilestones: %v", err)
	}
	if diff := cmp.Diff([]model.Milestone{{ID: "m1", CampaignID: "c1", Title: "Beta", Done: true}}, ms); diff != "" {
		t.Fatalf("milestones (-want +got):\n%s", diff)
	}
	ls, err := DecodeLabels(nil, "c1")
	if err != nil || len(ls) != 0 {
		t.Fatalf("null label payload should decode empty, got %v %v", ls, err)
	}
}
