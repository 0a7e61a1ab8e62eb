package store

import (
	"strings"
	"time"

	"mops-cli/internal/model"
	"mops-cli/internal/viewstate"
)

// CampaignPatch carries the fields to merge into a campaign. Nil means "leave as is".
type CampaignPatch struct {
	Name        *string
	Summary     *string
	Description *string
	Status      *model.CampaignStatus
	Health      *model.Health
	Priority    *model.Priority
	StartDate   *time.Time
	TargetDate  *time.Time
	Lead        *model.UserRef

	ClearStartDate  bool
	ClearTargetDate bool
	ClearLead       bool
}

func (p CampaignPatch) IsEmpty() bool {
	return p == CampaignPatch{}
}

func (p CampaignPatch) apply(c *model.Campaign) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Summary != nil {
		c.Summary = *p.Summary
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Health != nil {
		c.Health = *p.Health
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.StartDate != nil {
		v := *p.StartDate
		c.StartDate = &v
	}
	if p.ClearStartDate {
		c.StartDate = nil
	}
	if p.TargetDate != nil {
		v := *p.TargetDate
		c.TargetDate = &v
	}
	if p.ClearTargetDate {
		c.TargetDate = nil
	}
	if p.Lead != nil {
		v := *p.Lead
		c.Lead = &v
	}
	if p.ClearLead {
		c.Lead = nil
	}
}

func cloneCampaign(c model.Campaign) model.Campaign {
	c.Members = append([]model.Member(nil), c.Members...)
	c.Contents = append([]model.Content(nil), c.Contents...)
	if c.Tasks != nil {
		tasks := make([]model.Task, len(c.Tasks))
		for i := range c.Tasks {
			tasks[i] = cloneTask(c.Tasks[i])
		}
		c.Tasks = tasks
	}
	if c.Lead != nil {
		lead := *c.Lead
		c.Lead = &lead
	}
	return c
}

func cloneCampaigns(in []model.Campaign) []model.Campaign {
	out := make([]model.Campaign, len(in))
	for i := range in {
		out[i] = cloneCampaign(in[i])
	}
	return out
}

func (s *Store) campaignIndex(id string) int {
	for i := range s.campaigns {
		if s.campaigns[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) SetCampaigns(cs []model.Campaign) {
	s.mutate(func() bool {
		s.campaigns = cloneCampaigns(cs)
		return true
	})
}

// AddCampaign prepends c so the newest campaign is listed first.
func (s *Store) AddCampaign(c model.Campaign) {
	s.mutate(func() bool {
		s.campaigns = append([]model.Campaign{cloneCampaign(c)}, s.campaigns...)
		return true
	})
}

// UpdateCampaign merges p into the campaign with id. It reports whether the
// campaign existed; an unknown id is silently ignored.
func (s *Store) UpdateCampaign(id string, p CampaignPatch) bool {
	id = strings.TrimSpace(id)
	return s.mutate(func() bool {
		i := s.campaignIndex(id)
		if i < 0 {
			return false
		}
		p.apply(&s.campaigns[i])
		s.campaigns[i].UpdatedAt = time.Now().UTC()
		return true
	})
}

// ReplaceCampaign swaps the stored campaign with c (matched by id), e.g. after
// the backend returns its canonical copy.
func (s *Store) ReplaceCampaign(c model.Campaign) bool {
	return s.mutate(func() bool {
		i := s.campaignIndex(c.ID)
		if i < 0 {
			return false
		}
		s.campaigns[i] = cloneCampaign(c)
		return true
	})
}

// RemoveCampaign drops the campaign and everything scoped to it, and clears
// every reference the UI holds to it (current campaign, selection, detail panel).
func (s *Store) RemoveCampaign(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	return s.mutate(func() bool {
		i := s.campaignIndex(id)
		if i < 0 {
			return false
		}
		s.campaigns = append(s.campaigns[:i:i], s.campaigns[i+1:]...)

		if s.currentCampaignID == id {
			s.currentCampaignID = ""
			s.views[viewstate.ScreenCampaign] = viewstate.New(viewstate.ScreenCampaign)
		}
		s.views[viewstate.ScreenCampaigns] = s.views[viewstate.ScreenCampaigns].Forget(id)

		for _, tid := range append([]string(nil), s.taskOrder...) {
			if t, ok := s.tasks[tid]; ok && t.CampaignID == id {
				s.deleteTaskLocked(tid)
			}
		}
		inCampaign := func(cid string) bool { return cid == id }
		s.members.removeWhere(func(m model.Member) bool { return inCampaign(m.CampaignID) })
		s.labels.removeWhere(func(l model.Label) bool { return inCampaign(l.CampaignID) })
		s.milestones.removeWhere(func(m model.Milestone) bool { return inCampaign(m.CampaignID) })
		s.schedules.removeWhere(func(sc model.Schedule) bool { return inCampaign(sc.CampaignID) })
		return true
	})
}

func (s *Store) Campaigns() []model.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCampaigns(s.campaigns)
}

func (s *Store) Campaign(id string) (model.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.campaignIndex(strings.TrimSpace(id))
	if i < 0 {
		return model.Campaign{}, false
	}
	return cloneCampaign(s.campaigns[i]), true
}

// SetCurrentCampaign marks id as the campaign open on the campaign screen.
// Switching campaigns resets that screen's UI state.
func (s *Store) SetCurrentCampaign(id string) {
	id = strings.TrimSpace(id)
	s.mutate(func() bool {
		if s.currentCampaignID == id {
			return false
		}
		s.currentCampaignID = id
		v := viewstate.New(viewstate.ScreenCampaign)
		v.Mode = s.views[viewstate.ScreenCampaign].Mode
		s.views[viewstate.ScreenCampaign] = v
		return true
	})
}

func (s *Store) CurrentCampaign() (model.Campaign, bool) {
	s.mu.RLock()
	id := s.currentCampaignID
	s.mu.RUnlock()
	if id == "" {
		return model.Campaign{}, false
	}
	return s.Campaign(id)
}

func (s *Store) CurrentCampaignID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentCampaignID
}
