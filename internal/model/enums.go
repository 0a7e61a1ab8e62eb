package model

import (
	"fmt"
	"strings"
)

// EnumError reports a backend value that has no translation for the named enum.
type EnumError struct {
	Enum  string
	Value string
}

func (e EnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Enum, e.Value)
}

// normalizeEnum upper-cases and folds spaces/hyphens to underscores, so that
// "in progress", "In-Progress" and "IN_PROGRESS" compare equal.
func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

type CampaignStatus string

const (
	CampaignDraft    CampaignStatus = "DRAFT"
	CampaignPlanning CampaignStatus = "PLANNING"
	CampaignReady    CampaignStatus = "READY"
	CampaignDone     CampaignStatus = "DONE"
	CampaignCanceled CampaignStatus = "CANCELED"
)

func CampaignStatuses() []CampaignStatus {
	return []CampaignStatus{CampaignDraft, CampaignPlanning, CampaignReady, CampaignDone, CampaignCanceled}
}

func ParseCampaignStatus(s string) (CampaignStatus, error) {
	switch normalizeEnum(s) {
	case "DRAFT":
		return CampaignDraft, nil
	case "PLANNING", "PLANNED":
		return CampaignPlanning, nil
	case "READY":
		return CampaignReady, nil
	case "DONE", "COMPLETED":
		return CampaignDone, nil
	case "CANCELED", "CANCELLED":
		return CampaignCanceled, nil
	default:
		return "", EnumError{Enum: "campaign status", Value: s}
	}
}

func (s CampaignStatus) Valid() bool {
	for _, v := range CampaignStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

func (s CampaignStatus) Label() string {
	switch s {
	case CampaignDraft:
		return "Draft"
	case CampaignPlanning:
		return "Planning"
	case CampaignReady:
		return "Ready"
	case CampaignDone:
		return "Done"
	case CampaignCanceled:
		return "Canceled"
	default:
		return string(s)
	}
}

// Health is the risk axis of a campaign. It is independent of CampaignStatus.
type Health string

const (
	HealthOnTrack  Health = "ON_TRACK"
	HealthAtRisk   Health = "AT_RISK"
	HealthOffTrack Health = "OFF_TRACK"
)

func Healths() []Health {
	return []Health{HealthOnTrack, HealthAtRisk, HealthOffTrack}
}

func ParseHealth(s string) (Health, error) {
	switch normalizeEnum(s) {
	case "ON_TRACK", "ONTRACK":
		return HealthOnTrack, nil
	case "AT_RISK", "ATRISK":
		return HealthAtRisk, nil
	case "OFF_TRACK", "OFFTRACK":
		return HealthOffTrack, nil
	default:
		return "", EnumError{Enum: "health", Value: s}
	}
}

func (h Health) Valid() bool {
	for _, v := range Healths() {
		if v == h {
			return true
		}
	}
	return false
}

func (h Health) Label() string {
	switch h {
	case HealthOnTrack:
		return "On track"
	case HealthAtRisk:
		return "At risk"
	case HealthOffTrack:
		return "Off track"
	default:
		return string(h)
	}
}

type Priority string

const (
	PriorityNone   Priority = "NO_PRIORITY"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func Priorities() []Priority {
	return []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func ParsePriority(s string) (Priority, error) {
	switch normalizeEnum(s) {
	case "NO_PRIORITY", "NONE", "":
		return PriorityNone, nil
	case "LOW":
		return PriorityLow, nil
	case "MEDIUM", "MED":
		return PriorityMedium, nil
	case "HIGH":
		return PriorityHigh, nil
	case "URGENT":
		return PriorityUrgent, nil
	default:
		return "", EnumError{Enum: "priority", Value: s}
	}
}

// Rank orders priorities from NO_PRIORITY (0) to URGENT (4). Unknown values rank -1.
func (p Priority) Rank() int {
	for i, v := range Priorities() {
		if v == p {
			return i
		}
	}
	return -1
}

func (p Priority) Label() string {
	switch p {
	case PriorityNone:
		return "No priority"
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return string(p)
	}
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskDone       TaskStatus = "DONE"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// TaskStatuses returns the board column order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskTodo, TaskInProgress, TaskReview, TaskDone, TaskCancelled}
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch normalizeEnum(s) {
	case "TODO", "TO_DO":
		return TaskTodo, nil
	case "IN_PROGRESS", "INPROGRESS", "DOING":
		return TaskInProgress, nil
	case "REVIEW", "IN_REVIEW":
		return TaskReview, nil
	case "DONE", "COMPLETED":
		return TaskDone, nil
	case "CANCELLED", "CANCELED":
		return TaskCancelled, nil
	default:
		return "", EnumError{Enum: "task status", Value: s}
	}
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

func (s TaskStatus) IsEndState() bool {
	return s == TaskDone || s == TaskCancelled
}

func (s TaskStatus) Label() string {
	switch s {
	case TaskTodo:
		return "Todo"
	case TaskInProgress:
		return "In progress"
	case TaskReview:
		return "Review"
	case TaskDone:
		return "Done"
	case TaskCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

type MemberRole string

const (
	RoleLead   MemberRole = "LEAD"
	RoleMember MemberRole = "MEMBER"
	RoleViewer MemberRole = "VIEWER"
)

func ParseMemberRole(s string) (MemberRole, error) {
	switch normalizeEnum(s) {
	case "LEAD", "OWNER":
		return RoleLead, nil
	case "MEMBER", "":
		return RoleMember, nil
	case "VIEWER":
		return RoleViewer, nil
	default:
		return "", EnumError{Enum: "member role", Value: s}
	}
}

type ContentType string

const (
	ContentPost    ContentType = "POST"
	ContentVideo   ContentType = "VIDEO"
	ContentArticle ContentType = "ARTICLE"
	ContentEmail   ContentType = "EMAIL"
	ContentStory   ContentType = "STORY"
)

func ParseContentType(s string) (ContentType, error) {
	switch normalizeEnum(s) {
	case "POST":
		return ContentPost, nil
	case "VIDEO", "REEL":
		return ContentVideo, nil
	case "ARTICLE", "BLOG":
		return ContentArticle, nil
	case "EMAIL", "NEWSLETTER":
		return ContentEmail, nil
	case "STORY":
		return ContentStory, nil
	default:
		return "", EnumError{Enum: "content type", Value: s}
	}
}

type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "SCHEDULED"
	SchedulePublished ScheduleStatus = "PUBLISHED"
	ScheduleFailed    ScheduleStatus = "FAILED"
)

func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	switch normalizeEnum(s) {
	case "SCHEDULED", "PENDING", "":
		return ScheduleScheduled, nil
	case "PUBLISHED":
		return SchedulePublished, nil
	case "FAILED", "ERROR":
		return ScheduleFailed, nil
	default:
		return "", EnumError{Enum: "schedule status", Value: s}
	}
}
