package devserver

import (
	"context"
	"time"

	"mops-cli/internal/model"
)

// Seed ids are stable so scripts and tests can address them directly.
const (
	SeedLaunchID   = "cmp-launch"
	SeedNewsID     = "cmp-newsletter"
	SeedBlogPostID = "cnt-blog-post"
	SeedVideoID    = "cnt-teaser"
)

// Seed fills an empty organization with two campaigns, their people,
// tasks (one with subtasks), labels, milestones, content and a schedule.
// Seeding an organization that already has campaigns does nothing.
func (d *DB) Seed(ctx context.Context, orgID string, now time.Time) error {
	var n int
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM campaigns WHERE org_id = ?`, orgID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	now = now.UTC().Truncate(time.Second)
	day := func(offset int) *time.Time {
		t := now.AddDate(0, 0, offset)
		return &t
	}
	hours := func(h float64) *float64 { return &h }
	str := func(s string) *string { return &s }

	ana := model.UserRef{ID: "usr-ana", Name: "Ana Lima", Email: "ana@example.com"}
	ben := model.UserRef{ID: "usr-ben", Name: "Ben Ortiz", Email: "ben@example.com"}

	campaigns := []model.Campaign{
		{
			ID: SeedLaunchID, OrgID: orgID, Name: "Spring product launch",
			Summary: "Launch the spring release across every channel",
			Status:  model.CampaignPlanning, Health: model.HealthOnTrack, Priority: model.PriorityHigh,
			StartDate: day(-7), TargetDate: day(21), Lead: &ana,
			CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID: SeedNewsID, OrgID: orgID, Name: "Monthly newsletter",
			Status: model.CampaignDraft, Health: model.HealthAtRisk, Priority: model.PriorityMedium,
			Lead:      &ben,
			CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
		},
	}
	for _, c := range campaigns {
		if err := d.PutCampaign(ctx, c); err != nil {
			return err
		}
	}

	members := []model.Member{
		{ID: "mem-launch-ana", CampaignID: SeedLaunchID, User: ana, Role: model.RoleLead},
		{ID: "mem-launch-ben", CampaignID: SeedLaunchID, User: ben, Role: model.RoleMember},
		{ID: "mem-news-ben", CampaignID: SeedNewsID, User: ben, Role: model.RoleLead},
	}
	for _, m := range members {
		if err := d.PutMember(ctx, m); err != nil {
			return err
		}
	}

	labels := []model.Label{
		{ID: "lbl-social", CampaignID: SeedLaunchID, Name: "social", Color: "#3b82f6"},
		{ID: "lbl-paid", CampaignID: SeedLaunchID, Name: "paid", Color: "#f59e0b"},
	}
	for _, l := range labels {
		if err := d.PutLabel(ctx, l); err != nil {
			return err
		}
	}

	milestones := []model.Milestone{
		{ID: "mst-assets", CampaignID: SeedLaunchID, Title: "Assets ready", DueDate: day(7)},
		{ID: "mst-golive", CampaignID: SeedLaunchID, Title: "Go live", DueDate: day(21)},
	}
	for _, m := range milestones {
		if err := d.PutMilestone(ctx, m); err != nil {
			return err
		}
	}

	tasks := []model.Task{
		{ID: "tsk-brief", Title: "Write creative brief", Status: model.TaskDone, Priority: model.PriorityHigh, Assignee: &ana},
		{ID: "tsk-assets", Title: "Produce launch assets", Status: model.TaskInProgress, Priority: model.PriorityHigh, Assignee: &ben, DueDate: day(7), EstimatedHours: hours(16)},
		{ID: "tsk-assets-video", Title: "Cut teaser video", Status: model.TaskTodo, Priority: model.PriorityMedium, ParentTaskID: str("tsk-assets")},
		{ID: "tsk-assets-banner", Title: "Design banners", Status: model.TaskReview, Priority: model.PriorityLow, ParentTaskID: str("tsk-assets")},
		{ID: "tsk-ads", Title: "Set up paid ads", Status: model.TaskTodo, Priority: model.PriorityUrgent, DueDate: day(14)},
	}
	for i, t := range tasks {
		t.CampaignID = SeedLaunchID
		t.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		t.UpdatedAt = t.CreatedAt
		if err := d.PutTask(ctx, t); err != nil {
			return err
		}
	}

	contents := []model.Content{
		{ID: SeedBlogPostID, CampaignID: SeedLaunchID, Title: "Launch announcement", Type: model.ContentArticle},
		{ID: SeedVideoID, CampaignID: SeedLaunchID, Title: "Teaser video", Type: model.ContentVideo},
		{ID: "cnt-issue", CampaignID: SeedNewsID, Title: "April issue", Type: model.ContentEmail},
	}
	for _, c := range contents {
		if err := d.PutContent(ctx, c); err != nil {
			return err
		}
	}

	at := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, time.UTC).AddDate(0, 0, 2)
	return d.PutSchedule(ctx, model.Schedule{
		ID: "sch-announce", ContentID: SeedBlogPostID, CampaignID: SeedLaunchID,
		Title: "Launch announcement", ScheduledAt: at, Status: model.ScheduleScheduled,
	})
}
