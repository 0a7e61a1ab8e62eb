package tui

import (
	"mops-cli/internal/filter"
	"mops-cli/internal/model"
)

type screen int

const (
	screenCampaigns screen = iota
	screenCampaign
)

// Results of background work. Errors have already been pushed to the
// notifier by the controllers; the messages only trigger a re-render.
type campaignsLoadedMsg struct{ err error }

type campaignOpenedMsg struct {
	id  string
	err error
}

type flushDoneMsg struct {
	label string
	err   error
}

type schedulesLoadedMsg struct{ err error }

type flashDoneMsg struct{ seq int }

var campaignSorts = []filter.Sort{
	filter.SortNewest,
	filter.SortOldest,
	filter.SortName,
	filter.SortSize,
	filter.SortPriority,
}

var taskSorts = []filter.Sort{
	filter.SortNone,
	filter.SortPriority,
	filter.SortDue,
	filter.SortName,
	filter.SortNewest,
}

func nextSort(all []filter.Sort, cur filter.Sort) filter.Sort {
	for i, s := range all {
		if s == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// nextOf cycles "no filter" -> each value -> "no filter".
func nextOf[T comparable](all []T, cur []T) []T {
	if len(cur) == 0 {
		return []T{all[0]}
	}
	for i, v := range all {
		if v == cur[0] {
			if i+1 < len(all) {
				return []T{all[i+1]}
			}
			return nil
		}
	}
	return nil
}

func sortLabel(s filter.Sort) string {
	if s == filter.SortNone {
		return "manual"
	}
	return string(s)
}

// nestedOrder lists each top-level task followed by its subtasks, keeping the
// incoming order within both levels. Subtasks whose parent is absent go last.
func nestedOrder(tasks []model.Task) []model.Task {
	children := map[string][]model.Task{}
	present := map[string]bool{}
	for _, t := range tasks {
		if !t.IsSubtask() {
			present[t.ID] = true
		}
	}
	out := make([]model.Task, 0, len(tasks))
	var orphans []model.Task
	for _, t := range tasks {
		switch {
		case !t.IsSubtask():
		case present[*t.ParentTaskID]:
			children[*t.ParentTaskID] = append(children[*t.ParentTaskID], t)
		default:
			orphans = append(orphans, t)
		}
	}
	for _, t := range tasks {
		if t.IsSubtask() {
			continue
		}
		out = append(out, t)
		out = append(out, children[t.ID]...)
	}
	return append(out, orphans...)
}
