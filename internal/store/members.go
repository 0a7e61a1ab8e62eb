package store

import (
	"strings"
	"time"

	"mops-cli/internal/model"
)

type MemberPatch struct {
	Role *model.MemberRole
	User *model.UserRef
}

func (s *Store) SetMembers(ms []model.Member) {
	s.mutate(func() bool { s.members.setAll(ms); return true })
}

func (s *Store) AddMember(m model.Member) {
	s.mutate(func() bool { s.members.add(m); return true })
}

func (s *Store) UpdateMember(id string, p MemberPatch) bool {
	return s.mutate(func() bool {
		return s.members.update(strings.TrimSpace(id), func(m *model.Member) {
			if p.Role != nil {
				m.Role = *p.Role
			}
			if p.User != nil {
				m.User = *p.User
			}
		})
	})
}

func (s *Store) RemoveMember(id string) bool {
	return s.mutate(func() bool { return s.members.remove(strings.TrimSpace(id)) })
}

// Members returns the members of campaignID, or all members when campaignID is empty.
func (s *Store) Members(campaignID string) []model.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members.where(func(m model.Member) bool { return campaignID == "" || m.CampaignID == campaignID })
}

type LabelPatch struct {
	Name  *string
	Color *string
}

func (s *Store) SetLabels(ls []model.Label) {
	s.mutate(func() bool { s.labels.setAll(ls); return true })
}

func (s *Store) AddLabel(l model.Label) {
	s.mutate(func() bool { s.labels.add(l); return true })
}

func (s *Store) UpdateLabel(id string, p LabelPatch) bool {
	return s.mutate(func() bool {
		return s.labels.update(strings.TrimSpace(id), func(l *model.Label) {
			if p.Name != nil {
				l.Name = *p.Name
			}
			if p.Color != nil {
				l.Color = *p.Color
			}
		})
	})
}

func (s *Store) RemoveLabel(id string) bool {
	return s.mutate(func() bool { return s.labels.remove(strings.TrimSpace(id)) })
}

func (s *Store) Labels(campaignID string) []model.Label {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels.where(func(l model.Label) bool { return campaignID == "" || l.CampaignID == campaignID })
}

type MilestonePatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	Done         *bool
	ClearDueDate bool
}

func (s *Store) SetMilestones(ms []model.Milestone) {
	s.mutate(func() bool { s.milestones.setAll(ms); return true })
}

func (s *Store) AddMilestone(m model.Milestone) {
	s.mutate(func() bool { s.milestones.add(m); return true })
}

func (s *Store) UpdateMilestone(id string, p MilestonePatch) bool {
	return s.mutate(func() bool {
		return s.milestones.update(strings.TrimSpace(id), func(m *model.Milestone) {
			if p.Title != nil {
				m.Title = *p.Title
			}
			if p.Description != nil {
				m.Description = *p.Description
			}
			if p.DueDate != nil {
				v := *p.DueDate
				m.DueDate = &v
			}
			if p.ClearDueDate {
				m.DueDate = nil
			}
			if p.Done != nil {
				m.Done = *p.Done
			}
		})
	})
}

func (s *Store) RemoveMilestone(id string) bool {
	return s.mutate(func() bool { return s.milestones.remove(strings.TrimSpace(id)) })
}

func (s *Store) Milestones(campaignID string) []model.Milestone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.milestones.where(func(m model.Milestone) bool { return campaignID == "" || m.CampaignID == campaignID })
}

type SchedulePatch struct {
	ScheduledAt *time.Time
	Status      *model.ScheduleStatus
}

func (s *Store) SetSchedules(ss []model.Schedule) {
	s.mutate(func() bool { s.schedules.setAll(ss); return true })
}

func (s *Store) AddSchedule(sc model.Schedule) {
	s.mutate(func() bool { s.schedules.add(sc); return true })
}

func (s *Store) UpdateSchedule(id string, p SchedulePatch) bool {
	return s.mutate(func() bool {
		return s.schedules.update(strings.TrimSpace(id), func(sc *model.Schedule) {
			if p.ScheduledAt != nil {
				sc.ScheduledAt = *p.ScheduledAt
			}
			if p.Status != nil {
				sc.Status = *p.Status
			}
		})
	})
}

// ReplaceSchedule swaps the schedule stored under id for sc, which may carry a
// different id (a confirmed copy replacing an optimistic placeholder).
func (s *Store) ReplaceSchedule(id string, sc model.Schedule) bool {
	return s.mutate(func() bool { return s.schedules.replace(strings.TrimSpace(id), sc) })
}

func (s *Store) RemoveSchedule(id string) bool {
	return s.mutate(func() bool { return s.schedules.remove(strings.TrimSpace(id)) })
}

func (s *Store) Schedules() []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedules.all()
}

func (s *Store) Schedule(id string) (model.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedules.get(strings.TrimSpace(id))
}
