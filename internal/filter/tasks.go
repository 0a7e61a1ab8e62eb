package filter

import (
	"sort"
	"strings"
	"time"

	"mops-cli/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TaskFilter narrows tasks the same way CampaignFilter narrows campaigns.
// TopLevelOnly drops subtasks (tasks with a parentTaskId).
type TaskFilter struct {
	CampaignID   string             `json:"campaignId,omitempty" yaml:"campaignId,omitempty"`
	Statuses     []model.TaskStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Priorities   []model.Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	AssigneeID   string             `json:"assigneeId,omitempty" yaml:"assigneeId,omitempty"`
	DueFrom      *time.Time         `json:"dueFrom,omitempty" yaml:"dueFrom,omitempty"`
	DueTo        *time.Time         `json:"dueTo,omitempty" yaml:"dueTo,omitempty"`
	Search       string             `json:"search,omitempty" yaml:"search,omitempty"`
	TopLevelOnly bool               `json:"topLevelOnly,omitempty" yaml:"topLevelOnly,omitempty"`
}

func (f TaskFilter) IsEmpty() bool {
	return strings.TrimSpace(f.CampaignID) == "" &&
		len(f.Statuses) == 0 &&
		len(f.Priorities) == 0 &&
		strings.TrimSpace(f.AssigneeID) == "" &&
		f.DueFrom == nil &&
		f.DueTo == nil &&
		strings.TrimSpace(f.Search) == "" &&
		!f.TopLevelOnly
}

func (f TaskFilter) Match(t model.Task) bool {
	return f.matcher().match(t)
}

type taskMatcher struct {
	f    TaskFilter
	text *textMatcher
}

func (f TaskFilter) matcher() taskMatcher {
	return taskMatcher{f: f, text: newTextMatcher(f.Search)}
}

func (m taskMatcher) match(t model.Task) bool {
	f := m.f
	if id := strings.TrimSpace(f.CampaignID); id != "" && t.CampaignID != id {
		return false
	}
	if f.TopLevelOnly && t.IsSubtask() {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if id := strings.TrimSpace(f.AssigneeID); id != "" {
		if t.Assignee == nil || t.Assignee.ID != id {
			return false
		}
	}
	if f.DueFrom != nil && !afterOrEqual(t.DueDate, *f.DueFrom) {
		return false
	}
	if f.DueTo != nil && !beforeOrEqual(t.DueDate, *f.DueTo) {
		return false
	}
	return m.text.match(t.Title, t.Description)
}

// Tasks returns the tasks matching f, ordered by by. With SortNone the original
// relative order is kept.
func Tasks(in []model.Task, f TaskFilter, by Sort) []model.Task {
	m := f.matcher()
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		if m.match(t) {
			out = append(out, t)
		}
	}
	SortTasks(out, by)
	return out
}

func SortTasks(ts []model.Task, by Sort) {
	if by == SortNone {
		return
	}
	var col *collate.Collator
	if by == SortName {
		col = collate.New(language.Und, collate.IgnoreCase, collate.Loose)
	}
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
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
			if c := col.CompareString(a.Title, b.Title); c != 0 {
				return c < 0
			}
		case SortSize:
			if a.Count.Subtasks != b.Count.Subtasks {
				return a.Count.Subtasks > b.Count.Subtasks
			}
		case SortPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
		case SortDue:
			if c := compareOptionalTime(a.DueDate, b.DueDate); c != 0 {
				return c < 0
			}
		}
		return a.ID < b.ID
	})
}

// GroupByStatus buckets tasks into board columns in TaskStatuses order. Tasks
// with an unknown status land in the first column.
func GroupByStatus(ts []model.Task) map[model.TaskStatus][]model.Task {
	out := make(map[model.TaskStatus][]model.Task, len(model.TaskStatuses()))
	for _, st := range model.TaskStatuses() {
		out[st] = []model.Task{}
	}
	for _, t := range ts {
		st := t.Status
		if !st.Valid() {
			st = model.TaskTodo
		}
		out[st] = append(out[st], t)
	}
	return out
}
