package controller

import (
	"strings"
	"time"
	"unicode/utf8"

	"mops-cli/internal/api"
	"mops-cli/internal/model"
	"mops-cli/internal/store"
)

const (
	maxNameLen  = 200
	maxTitleLen = 300
)

func validateName(field, v string, max int) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return ValidationError{Field: field, Message: "must not be empty"}
	}
	if utf8.RuneCountInString(v) > max {
		return ValidationError{Field: field, Message: "is too long"}
	}
	return nil
}

func validateRange(start, target *time.Time) error {
	if start != nil && target != nil && target.Before(*start) {
		return ValidationError{Field: "targetDate", Message: "must not be before startDate"}
	}
	return nil
}

func validatePriority(p model.Priority) error {
	if p != "" && p.Rank() < 0 {
		return ValidationError{Field: "priority", Message: "unknown value " + string(p)}
	}
	return nil
}

func validateCampaignInput(in api.CampaignInput) error {
	if err := validateName("name", in.Name, maxNameLen); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return ValidationError{Field: "status", Message: "unknown value " + string(in.Status)}
	}
	if in.Health != "" {
		if _, err := model.ParseHealth(string(in.Health)); err != nil {
			return ValidationError{Field: "health", Message: "unknown value " + string(in.Health)}
		}
	}
	if err := validatePriority(in.Priority); err != nil {
		return err
	}
	return validateRange(in.StartDate, in.TargetDate)
}

func validateCampaignPatch(cur model.Campaign, p store.CampaignPatch) error {
	if p.Name != nil {
		if err := validateName("name", *p.Name, maxNameLen); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return ValidationError{Field: "status", Message: "unknown value " + string(*p.Status)}
	}
	if p.Health != nil && !p.Health.Valid() {
		return ValidationError{Field: "health", Message: "unknown value " + string(*p.Health)}
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return err
		}
	}
	start, target := cur.StartDate, cur.TargetDate
	if p.StartDate != nil {
		start = p.StartDate
	}
	if p.TargetDate != nil {
		target = p.TargetDate
	}
	if p.ClearStartDate {
		start = nil
	}
	if p.ClearTargetDate {
		target = nil
	}
	return validateRange(start, target)
}

func validateTaskInput(in api.TaskInput) error {
	if err := validateName("title", in.Title, maxTitleLen); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return ValidationError{Field: "status", Message: "unknown value " + string(in.Status)}
	}
	if err := validatePriority(in.Priority); err != nil {
		return err
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return ValidationError{Field: "estimatedHours", Message: "must not be negative"}
	}
	return nil
}

func validateTaskPatch(p store.TaskPatch) error {
	if p.Title != nil {
		if err := validateName("title", *p.Title, maxTitleLen); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return ValidationError{Field: "status", Message: "unknown value " + string(*p.Status)}
	}
	if p.Priority != nil {
		if err := validatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return ValidationError{Field: "estimatedHours", Message: "must not be negative"}
	}
	return nil
}

func campaignUpdate(p store.CampaignPatch) api.CampaignUpdate {
	u := api.CampaignUpdate{
		Name:        p.Name,
		Summary:     p.Summary,
		Description: p.Description,
		Status:      p.Status,
		Health:      p.Health,
		Priority:    p.Priority,
		StartDate:   p.StartDate,
		TargetDate:  p.TargetDate,

		ClearStartDate:  p.ClearStartDate,
		ClearTargetDate: p.ClearTargetDate,
	}
	if p.Lead != nil {
		id := p.Lead.ID
		u.LeadID = &id
	}
	if p.ClearLead {
		empty := ""
		u.LeadID = &empty
	}
	return u
}

func taskUpdate(p store.TaskPatch) api.TaskUpdate {
	u := api.TaskUpdate{
		Title:          p.Title,
		Description:    p.Description,
		Status:         p.Status,
		Priority:       p.Priority,
		DueDate:        p.DueDate,
		EstimatedHours: p.EstimatedHours,

		ClearDueDate: p.ClearDueDate,
	}
	if p.Assignee != nil {
		id := p.Assignee.ID
		u.AssigneeID = &id
	}
	if p.ClearAssignee {
		empty := ""
		u.AssigneeID = &empty
	}
	return u
}
