package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"mops-cli/internal/model"
	"mops-cli/internal/wire"
)

type TaskInput struct {
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Status         model.TaskStatus `json:"status,omitempty"`
	Priority       model.Priority   `json:"priority,omitempty"`
	AssigneeID     string           `json:"assigneeId,omitempty"`
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	EstimatedHours *float64         `json:"estimatedHours,omitempty"`
	ParentTaskID   *string          `json:"parentTaskId,omitempty"`
}

type TaskUpdate struct {
	Title          *string           `json:"title,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Status         *model.TaskStatus `json:"status,omitempty"`
	Priority       *model.Priority   `json:"priority,omitempty"`
	AssigneeID     *string           `json:"assigneeId,omitempty"`
	DueDate        *time.Time        `json:"dueDate,omitempty"`
	EstimatedHours *float64          `json:"estimatedHours,omitempty"`

	// An empty AssigneeID unassigns the task.
	ClearDueDate bool `json:"clearDueDate,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context, campaignID string) ([]model.Task, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.orgPath("campaigns", campaignID, "tasks"), nil, nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeTasks(data, campaignID)
}

func (c *Client) CreateTask(ctx context.Context, campaignID string, in TaskInput) (model.Task, error) {
	data, _, err := c.do(ctx, http.MethodPost, c.orgPath("campaigns", campaignID, "tasks"), nil, in)
	if err != nil {
		return model.Task{}, err
	}
	if err := requireData(data); err != nil {
		return model.Task{}, err
	}
	return wire.DecodeTask(data, campaignID)
}

func (c *Client) UpdateTask(ctx context.Context, campaignID, taskID string, in TaskUpdate) (model.Task, error) {
	data, _, err := c.do(ctx, http.MethodPatch, c.orgPath("campaigns", campaignID, "tasks", taskID), nil, in)
	if err != nil {
		return model.Task{}, err
	}
	if err := requireData(data); err != nil {
		return model.Task{}, err
	}
	return wire.DecodeTask(data, campaignID)
}

func (c *Client) DeleteTask(ctx context.Context, campaignID, taskID string) error {
	_, _, err := c.do(ctx, http.MethodDelete, c.orgPath("campaigns", campaignID, "tasks", taskID), nil, nil)
	return err
}

type ScheduleInput struct {
	ContentID   string    `json:"contentId"`
	CampaignID  string    `json:"campaignId,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// ListSchedules returns calendar entries in [from, to).
func (c *Client) ListSchedules(ctx context.Context, from, to time.Time) ([]model.Schedule, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}
	data, _, err := c.do(ctx, http.MethodGet, c.orgPath("schedules"), q, nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeSchedules(data)
}

func (c *Client) CreateSchedule(ctx context.Context, in ScheduleInput) (model.Schedule, error) {
	data, _, err := c.do(ctx, http.MethodPost, c.orgPath("schedules"), nil, in)
	if err != nil {
		return model.Schedule{}, err
	}
	if err := requireData(data); err != nil {
		return model.Schedule{}, err
	}
	return wire.DecodeSchedule(data)
}
