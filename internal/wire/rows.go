package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mops-cli/internal/model"
)

type userRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

func (r *userRow) toModel() *model.UserRef {
	if r == nil || strings.TrimSpace(r.ID) == "" {
		return nil
	}
	return &model.UserRef{ID: r.ID, Name: r.Name, Email: r.Email, Image: r.Image}
}

type campaignRow struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organizationId"`
	OrgID          string       `json:"orgId"`
	Name           string       `json:"name"`
	Title          string       `json:"title"`
	Summary        string       `json:"summary"`
	Description    string       `json:"description"`
	Status         string       `json:"status"`
	Health         string       `json:"health"`
	Priority       flexString   `json:"priority"`
	StartDate      flexTime     `json:"startDate"`
	TargetDate     flexTime     `json:"targetDate"`
	EndDate        flexTime     `json:"endDate"`
	Lead           *userRow     `json:"lead"`
	Members        []memberRow  `json:"members"`
	Tasks          []taskRow    `json:"tasks"`
	Contents       []contentRow `json:"contents"`
	Count          *struct {
		Tasks    int `json:"tasks"`
		Members  int `json:"members"`
		Contents int `json:"contents"`
	} `json:"_count"`
	CreatedAt flexTime `json:"createdAt"`
	UpdatedAt flexTime `json:"updatedAt"`
}

func (r campaignRow) toModel() (model.Campaign, error) {
	c := model.Campaign{
		ID:          r.ID,
		OrgID:       firstNonEmpty(r.OrganizationID, r.OrgID),
		Name:        firstNonEmpty(r.Name, r.Title),
		Summary:     r.Summary,
		Description: r.Description,
		StartDate:   r.StartDate.ptr(),
		TargetDate:  r.TargetDate.ptr(),
		Lead:        r.Lead.toModel(),
		CreatedAt:   r.CreatedAt.value(),
		UpdatedAt:   r.UpdatedAt.value(),
	}
	if c.TargetDate == nil {
		c.TargetDate = r.EndDate.ptr()
	}

	var err error
	if c.Status, err = campaignStatus(r.Status); err != nil {
		return model.Campaign{}, err
	}
	if c.Health, err = health(r.Health); err != nil {
		return model.Campaign{}, err
	}
	if c.Priority, err = priority(r.Priority); err != nil {
		return model.Campaign{}, err
	}

	for _, mr := range r.Members {
		m, err := mr.toModel(c.ID)
		if err != nil {
			return model.Campaign{}, err
		}
		c.Members = append(c.Members, m)
	}
	for _, tr := range r.Tasks {
		t, err := tr.toModel(c.ID)
		if err != nil {
			return model.Campaign{}, err
		}
		c.Tasks = append(c.Tasks, t)
	}
	for _, cr := range r.Contents {
		ct, err := cr.toModel(c.ID)
		if err != nil {
			return model.Campaign{}, err
		}
		c.Contents = append(c.Contents, ct)
	}

	if r.Count != nil {
		c.Count = model.CampaignCount{Tasks: r.Count.Tasks, Members: r.Count.Members, Contents: r.Count.Contents}
	} else {
		c.Count = model.CampaignCount{Tasks: len(c.Tasks), Members: len(c.Members), Contents: len(c.Contents)}
	}
	return c, nil
}

type taskRow struct {
	ID             string     `json:"id"`
	CampaignID     string     `json:"campaignId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       flexString `json:"priority"`
	Assignee       *userRow   `json:"assignee"`
	AssigneeID     string     `json:"assigneeId"`
	DueDate        flexTime   `json:"dueDate"`
	EstimatedHours flexFloat  `json:"estimatedHours"`
	ParentTaskID   *string    `json:"parentTaskId"`
	ParentID       *string    `json:"parentId"`
	Subtasks       []taskRow  `json:"subtasks"`
	Count          *struct {
		Subtasks int `json:"subtasks"`
	} `json:"_count"`
	CreatedAt flexTime `json:"createdAt"`
	UpdatedAt flexTime `json:"updatedAt"`
}

func (r taskRow) toModel(campaignID string) (model.Task, error) {
	t := model.Task{
		ID:             r.ID,
		CampaignID:     firstNonEmpty(r.CampaignID, campaignID),
		Title:          r.Title,
		Description:    r.Description,
		Assignee:       r.Assignee.toModel(),
		DueDate:        r.DueDate.ptr(),
		EstimatedHours: r.EstimatedHours.ptr(),
		CreatedAt:      r.CreatedAt.value(),
		UpdatedAt:      r.UpdatedAt.value(),
	}
	if t.Assignee == nil && strings.TrimSpace(r.AssigneeID) != "" {
		t.Assignee = &model.UserRef{ID: r.AssigneeID}
	}
	parent := r.ParentTaskID
	if parent == nil {
		parent = r.ParentID
	}
	if parent != nil && strings.TrimSpace(*parent) != "" {
		p := strings.TrimSpace(*parent)
		t.ParentTaskID = &p
	}

	var err error
	if t.Status, err = taskStatus(r.Status); err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	if t.Priority, err = priority(r.Priority); err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	for _, sr := range r.Subtasks {
		sub, err := sr.toModel(t.CampaignID)
		if err != nil {
			return model.Task{}, err
		}
		if sub.ParentTaskID == nil {
			pid := t.ID
			sub.ParentTaskID = &pid
		}
		t.Subtasks = append(t.Subtasks, sub)
	}
	if r.Count != nil {
		t.Count.Subtasks = r.Count.Subtasks
	} else {
		t.Count.Subtasks = len(t.Subtasks)
	}
	return t, nil
}

type memberRow struct {
	ID         string   `json:"id"`
	CampaignID string   `json:"campaignId"`
	UserID     string   `json:"userId"`
	User       *userRow `json:"user"`
	Role       string   `json:"role"`
}

func (r memberRow) toModel(campaignID string) (model.Member, error) {
	m := model.Member{ID: r.ID, CampaignID: firstNonEmpty(r.CampaignID, campaignID)}
	if u := r.User.toModel(); u != nil {
		m.User = *u
	} else {
		m.User = model.UserRef{ID: r.UserID}
	}
	role, err := model.ParseMemberRole(r.Role)
	if err != nil {
		return model.Member{}, fmt.Errorf("member %s: %w", r.ID, err)
	}
	m.Role = role
	return m, nil
}

type labelRow struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId"`
	Name       string `json:"name"`
	Color      string `json:"color"`
}

type milestoneRow struct {
	ID          string   `json:"id"`
	CampaignID  string   `json:"campaignId"`
	Title       string   `json:"title"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DueDate     flexTime `json:"dueDate"`
	Done        bool     `json:"done"`
	Completed   bool     `json:"completed"`
}

type contentRow struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId"`
	Title      string `json:"title"`
	Type       string `json:"type"`
}

func (r contentRow) toModel(campaignID string) (model.Content, error) {
	typ, err := model.ParseContentType(r.Type)
	if err != nil {
		return model.Content{}, fmt.Errorf("content %s: %w", r.ID, err)
	}
	return model.Content{ID: r.ID, CampaignID: firstNonEmpty(r.CampaignID, campaignID), Title: r.Title, Type: typ}, nil
}

type scheduleRow struct {
	ID          string      `json:"id"`
	ContentID   string      `json:"contentId"`
	CampaignID  string      `json:"campaignId"`
	Title       string      `json:"title"`
	ScheduledAt flexTime    `json:"scheduledAt"`
	Status      string      `json:"status"`
	Content     *contentRow `json:"content"`
}

func (r scheduleRow) toModel() (model.Schedule, error) {
	if !r.ScheduledAt.valid {
		return model.Schedule{}, fmt.Errorf("schedule %s: missing scheduledAt", r.ID)
	}
	status, err := model.ParseScheduleStatus(r.Status)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("schedule %s: %w", r.ID, err)
	}
	sc := model.Schedule{
		ID:          r.ID,
		ContentID:   r.ContentID,
		CampaignID:  r.CampaignID,
		Title:       r.Title,
		ScheduledAt: r.ScheduledAt.value(),
		Status:      status,
	}
	if r.Content != nil {
		sc.ContentID = firstNonEmpty(sc.ContentID, r.Content.ID)
		sc.CampaignID = firstNonEmpty(sc.CampaignID, r.Content.CampaignID)
		sc.Title = firstNonEmpty(sc.Title, r.Content.Title)
	}
	return sc, nil
}

// Enum translation. Empty values fall back to the backend's column defaults.

func campaignStatus(s string) (model.CampaignStatus, error) {
	if strings.TrimSpace(s) == "" {
		return model.CampaignDraft, nil
	}
	return model.ParseCampaignStatus(s)
}

func health(s string) (model.Health, error) {
	if strings.TrimSpace(s) == "" {
		return model.HealthOnTrack, nil
	}
	return model.ParseHealth(s)
}

func taskStatus(s string) (model.TaskStatus, error) {
	if strings.TrimSpace(s) == "" {
		return model.TaskTodo, nil
	}
	return model.ParseTaskStatus(s)
}

// priority maps either a name or a 0-4 rank.
func priority(f flexString) (model.Priority, error) {
	if f.number {
		n, err := strconv.Atoi(f.s)
		all := model.Priorities()
		if err != nil || n < 0 || n >= len(all) {
			return "", model.EnumError{Enum: "priority", Value: f.s}
		}
		return all[n], nil
	}
	return model.ParsePriority(f.s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Decoders. Each takes an unwrapped payload (see Unwrap) and fails as a whole:
// a single untranslatable row rejects the response.

func decodeRows[R any](raw json.RawMessage, what string) ([]R, error) {
	var rows []R
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return rows, nil
}

func DecodeCampaigns(raw json.RawMessage) ([]model.Campaign, *model.Pagination, error) {
	list, meta, err := listPayload(raw, "campaigns")
	if err != nil {
		return nil, nil, err
	}
	rows, err := decodeRows[campaignRow](list, "campaigns")
	if err != nil {
		return nil, nil, err
	}
	out := make([]model.Campaign, 0, len(rows))
	for _, r := range rows {
		c, err := r.toModel()
		if err != nil {
			return nil, nil, fmt.Errorf("campaign %s: %w", r.ID, err)
		}
		out = append(out, c)
	}
	return out, meta, nil
}

func DecodeCampaign(raw json.RawMessage) (model.Campaign, error) {
	var r campaignRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Campaign{}, fmt.Errorf("decode campaign: %w", err)
	}
	c, err := r.toModel()
	if err != nil {
		return model.Campaign{}, fmt.Errorf("campaign %s: %w", r.ID, err)
	}
	return c, nil
}

func DecodeTasks(raw json.RawMessage, campaignID string) ([]model.Task, error) {
	list, _, err := listPayload(raw, "tasks")
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[taskRow](list, "tasks")
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toModel(campaignID)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func DecodeTask(raw json.RawMessage, campaignID string) (model.Task, error) {
	var r taskRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return r.toModel(campaignID)
}

func DecodeMembers(raw json.RawMessage, campaignID string) ([]model.Member, error) {
	list, _, err := listPayload(raw, "members")
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[memberRow](list, "members")
	if err != nil {
		return nil, err
	}
	out := make([]model.Member, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel(campaignID)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func DecodeLabels(raw json.RawMessage, campaignID string) ([]model.Label, error) {
	list, _, err := listPayload(raw, "labels")
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[labelRow](list, "labels")
	if err != nil {
		return nil, err
	}
	out := make([]model.Label, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Label{ID: r.ID, CampaignID: firstNonEmpty(r.CampaignID, campaignID), Name: r.Name, Color: r.Color})
	}
	return out, nil
}

func DecodeMilestones(raw json.RawMessage, campaignID string) ([]model.Milestone, error) {
	list, _, err := listPayload(raw, "milestones")
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[milestoneRow](list, "milestones")
	if err != nil {
		return nil, err
	}
	out := make([]model.Milestone, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Milestone{
			ID:          r.ID,
			CampaignID:  firstNonEmpty(r.CampaignID, campaignID),
			Title:       firstNonEmpty(r.Title, r.Name),
			Description: r.Description,
			DueDate:     r.DueDate.ptr(),
			Done:        r.Done || r.Completed,
		})
	}
	return out, nil
}

func DecodeSchedules(raw json.RawMessage) ([]model.Schedule, error) {
	list, _, err := listPayload(raw, "schedules")
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[scheduleRow](list, "schedules")
	if err != nil {
		return nil, err
	}
	out := make([]model.Schedule, 0, len(rows))
	for _, r := range rows {
		sc, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

func DecodeSchedule(raw json.RawMessage) (model.Schedule, error) {
	var r scheduleRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Schedule{}, fmt.Errorf("decode schedule: %w", err)
	}
	return r.toModel()
}
