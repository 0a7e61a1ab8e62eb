package filter

import (
	"sort"
	"strings"
	"time"

	"mops-cli/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CampaignFilter is a sparse set of predicates. A zero-valued field imposes no
// constraint; every set field narrows the result. From excludes campaigns that
// end (targetDate) before it and To excludes campaigns that start after it.
type CampaignFilter struct {
	Statuses   []model.CampaignStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Healths    []model.Health         `json:"health,omitempty" yaml:"health,omitempty"`
	Priorities []model.Priority       `json:"priority,omitempty" yaml:"priority,omitempty"`
	LeadID     string                 `json:"leadId,omitempty" yaml:"leadId,omitempty"`
	MemberID   string                 `json:"memberId,omitempty" yaml:"memberId,omitempty"`
	From       *time.Time             `json:"from,omitempty" yaml:"from,omitempty"`
	To         *time.Time             `json:"to,omitempty" yaml:"to,omitempty"`
	Search     string                 `json:"search,omitempty" yaml:"search,omitempty"`
}

func (f CampaignFilter) IsEmpty() bool {
	return len(f.Statuses) == 0 &&
		len(f.Healths) == 0 &&
		len(f.Priorities) == 0 &&
		strings.TrimSpace(f.LeadID) == "" &&
		strings.TrimSpace(f.MemberID) == "" &&
		f.From == nil &&
		f.To == nil &&
		strings.TrimSpace(f.Search) == ""
}

func (f CampaignFilter) Match(c model.Campaign) bool {
	return f.matcher().match(c)
}

type campaignMatcher struct {
	f    CampaignFilter
	text *textMatcher
}

func (f CampaignFilter) matcher() campaignMatcher {
	return campaignMatcher{f: f, text: newTextMatcher(f.Search)}
}

func (m campaignMatcher) match(c model.Campaign) bool {
	f := m.f
	if len(f.Statuses) > 0 && !contains(f.Statuses, c.Status) {
		return false
	}
	if len(f.Healths) > 0 && !contains(f.Healths, c.Health) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, c.Priority) {
		return false
	}
	if lead := strings.TrimSpace(f.LeadID); lead != "" {
		if c.Lead == nil || c.Lead.ID != lead {
			return false
		}
	}
	if member := strings.TrimSpace(f.MemberID); member != "" && !c.HasMember(member) {
		return false
	}
	if f.From != nil && !afterOrEqual(c.TargetDate, *f.From) {
		return false
	}
	if f.To != nil && !beforeOrEqual(c.StartDate, *f.To) {
		return false
	}
	return m.text.match(c.Name, c.Summary, c.Description)
}

// Campaigns returns the campaigns matching f, ordered by by. With SortNone the
// original relative order is kept.
func Campaigns(in []model.Campaign, f CampaignFilter, by Sort) []model.Campaign {
	m := f.matcher()
	out := make([]model.Campaign, 0, len(in))
	for _, c := range in {
		if m.match(c) {
			out = append(out, c)
		}
	}
	SortCampaigns(out, by)
	return out
}

// SortCampaigns sorts in place. Equal keys fall back to id so repeated calls are deterministic.
func SortCampaigns(cs []model.Campaign, by Sort) {
	if by == SortNone {
		return
	}
	var col *collate.Collator
	if by == SortName {
		col = collate.New(language.Und, collate.IgnoreCase, collate.Loose)
	}
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		switch by {
		case SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortName:
			if c := col.CompareString(a.Name, b.Name); c != 0 {
				return c < 0
			}
		case SortSize:
			if a.TaskCount() != b.TaskCount() {
				return a.TaskCount() > b.TaskCount()
			}
		case SortPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
		case SortDue:
			if c := compareOptionalTime(a.TargetDate, b.TargetDate); c != 0 {
				return c < 0
			}
		}
		return a.ID < b.ID
	})
}

// compareOptionalTime orders present times ascending and absent times last.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}
