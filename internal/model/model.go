package model

import "time"

// UserRef is the embedded user shape the backend attaches to leads, members and assignees.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

type CampaignCount struct {
	Tasks    int `json:"tasks"`
	Members  int `json:"members"`
	Contents int `json:"contents"`
}

type Campaign struct {
	ID          string         `json:"id"`
	OrgID       string         `json:"organizationId"`
	Name        string         `json:"name"`
	Summary     string         `json:"summary,omitempty"`
	Description string         `json:"description,omitempty"`
	Status      CampaignStatus `json:"status"`
	Health      Health         `json:"health"`
	Priority    Priority       `json:"priority"`
	StartDate   *time.Time     `json:"startDate,omitempty"`
	TargetDate  *time.Time     `json:"targetDate,omitempty"`
	Lead        *UserRef       `json:"lead,omitempty"`
	Members     []Member       `json:"members,omitempty"`
	Tasks       []Task         `json:"tasks,omitempty"`
	Contents    []Content      `json:"contents,omitempty"`
	Count       CampaignCount  `json:"_count"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TaskCount returns the number of tasks attached to the campaign, preferring the
// loaded list over the denormalized counter.
func (c Campaign) TaskCount() int {
	if len(c.Tasks) > 0 {
		return len(c.Tasks)
	}
	return c.Count.Tasks
}

// HasMember reports whether userID is the lead or one of the members.
func (c Campaign) HasMember(userID string) bool {
	if c.Lead != nil && c.Lead.ID == userID {
		return true
	}
	for _, m := range c.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}

type TaskCount struct {
	Subtasks int `json:"subtasks"`
}

type Task struct {
	ID             string     `json:"id"`
	CampaignID     string     `json:"campaignId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	Assignee       *UserRef   `json:"assignee,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`

	// ParentTaskID allows a single level of nesting. Subtasks is derived from it.
	ParentTaskID *string   `json:"parentTaskId,omitempty"`
	Subtasks     []Task    `json:"subtasks,omitempty"`
	Count        TaskCount `json:"_count"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Task) IsSubtask() bool {
	return t.ParentTaskID != nil && *t.ParentTaskID != ""
}

type Member struct {
	ID         string     `json:"id"`
	CampaignID string     `json:"campaignId"`
	User       UserRef    `json:"user"`
	Role       MemberRole `json:"role"`
}

type Label struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
}

type Milestone struct {
	ID          string     `json:"id"`
	CampaignID  string     `json:"campaignId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Done        bool       `json:"done"`
}

type Content struct {
	ID         string      `json:"id"`
	CampaignID string      `json:"campaignId"`
	Title      string      `json:"title"`
	Type       ContentType `json:"type"`
}

// Schedule is a calendar entry placing a piece of content at a point in time.
type Schedule struct {
	ID          string         `json:"id"`
	ContentID   string         `json:"contentId"`
	CampaignID  string         `json:"campaignId,omitempty"`
	Title       string         `json:"title,omitempty"`
	ScheduledAt time.Time      `json:"scheduledAt"`
	Status      ScheduleStatus `json:"status"`
}
