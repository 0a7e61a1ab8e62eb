package store

import (
	"strings"
	"time"

	"mops-cli/internal/model"
	"mops-cli/internal/viewstate"
)

// TaskPatch carries the fields to merge into a task. Nil means "leave as is".
// The parent link is not patchable; use AddSubtask/RemoveTask so the subtask
// counter stays consistent.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *model.TaskStatus
	Priority       *model.Priority
	Assignee       *model.UserRef
	DueDate        *time.Time
	EstimatedHours *float64

	ClearAssignee bool
	ClearDueDate  bool
}

func (p TaskPatch) IsEmpty() bool {
	return p == TaskPatch{}
}

func (p TaskPatch) apply(t *model.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		v := *p.Assignee
		t.Assignee = &v
	}
	if p.ClearAssignee {
		t.Assignee = nil
	}
	if p.DueDate != nil {
		v := *p.DueDate
		t.DueDate = &v
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.EstimatedHours != nil {
		v := *p.EstimatedHours
		t.EstimatedHours = &v
	}
}

func cloneTask(t model.Task) model.Task {
	if t.Assignee != nil {
		a := *t.Assignee
		t.Assignee = &a
	}
	if t.ParentTaskID != nil {
		p := *t.ParentTaskID
		t.ParentTaskID = &p
	}
	if t.Subtasks != nil {
		subs := make([]model.Task, len(t.Subtasks))
		for i := range t.Subtasks {
			subs[i] = cloneTask(t.Subtasks[i])
		}
		t.Subtasks = subs
	}
	return t
}

func parentOf(t model.Task) string {
	if t.ParentTaskID == nil {
		return ""
	}
	return strings.TrimSpace(*t.ParentTaskID)
}

// insertTaskLocked stores t (without its nested subtasks) at the end of the order.
func (s *Store) insertTaskLocked(t model.Task) {
	t = cloneTask(t)
	t.Subtasks = nil
	if _, exists := s.tasks[t.ID]; !exists {
		s.taskOrder = append(s.taskOrder, t.ID)
	}
	s.tasks[t.ID] = t
}

// deleteTaskLocked removes a task and its subtasks, keeping the parent's
// subtask counter in step and dropping UI references.
func (s *Store) deleteTaskLocked(id string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	for _, cid := range s.childIDsLocked(id) {
		delete(s.tasks, cid)
		s.forgetTaskLocked(cid)
	}
	delete(s.tasks, id)
	s.forgetTaskLocked(id)
	if pid := parentOf(t); pid != "" {
		if p, ok := s.tasks[pid]; ok {
			p.Count.Subtasks--
			if p.Count.Subtasks < 0 {
				p.Count.Subtasks = 0
			}
			s.tasks[pid] = p
		}
	}
	kept := s.taskOrder[:0]
	for _, tid := range s.taskOrder {
		if _, ok := s.tasks[tid]; ok {
			kept = append(kept, tid)
		}
	}
	s.taskOrder = kept
	return true
}

func (s *Store) forgetTaskLocked(id string) {
	s.views[viewstate.ScreenCampaign] = s.views[viewstate.ScreenCampaign].Forget(id)
}

func (s *Store) childIDsLocked(parentID string) []string {
	var out []string
	for _, tid := range s.taskOrder {
		if t, ok := s.tasks[tid]; ok && parentOf(t) == parentID {
			out = append(out, tid)
		}
	}
	return out
}

// materializeLocked returns a copy of the stored task with Subtasks filled in.
func (s *Store) materializeLocked(t model.Task) model.Task {
	t = cloneTask(t)
	t.Subtasks = nil
	if parentOf(t) != "" {
		return t
	}
	for _, cid := range s.childIDsLocked(t.ID) {
		child := cloneTask(s.tasks[cid])
		child.Subtasks = nil
		t.Subtasks = append(t.Subtasks, child)
	}
	return t
}

func (s *Store) tasksLocked() []model.Task {
	out := make([]model.Task, 0, len(s.taskOrder))
	for _, tid := range s.taskOrder {
		out = append(out, s.materializeLocked(s.tasks[tid]))
	}
	return out
}

// recountLocked sets every parent's subtask counter from the children present.
func (s *Store) recountLocked() {
	counts := map[string]int{}
	for _, t := range s.tasks {
		if pid := parentOf(t); pid != "" {
			counts[pid]++
		}
	}
	for id, t := range s.tasks {
		t.Count.Subtasks = counts[id]
		s.tasks[id] = t
	}
}

// SetTasks replaces all tasks. Nested subtasks are flattened into the store and
// subtask counters are recomputed from what was loaded.
func (s *Store) SetTasks(ts []model.Task) {
	s.mutate(func() bool {
		s.tasks = map[string]model.Task{}
		s.taskOrder = nil
		for _, t := range ts {
			s.insertTaskLocked(t)
			for _, sub := range t.Subtasks {
				if parentOf(sub) == "" {
					pid := t.ID
					sub.ParentTaskID = &pid
				}
				if sub.CampaignID == "" {
					sub.CampaignID = t.CampaignID
				}
				s.insertTaskLocked(sub)
			}
		}
		// Keep only links to loaded top-level tasks, judged on the links as
		// loaded, so nesting stays one level deep whatever the input order.
		var drop []string
		for _, id := range s.taskOrder {
			pid := parentOf(s.tasks[id])
			if pid == "" {
				continue
			}
			if p, ok := s.tasks[pid]; !ok || parentOf(p) != "" {
				drop = append(drop, id)
			}
		}
		for _, id := range drop {
			t := s.tasks[id]
			t.ParentTaskID = nil
			s.tasks[id] = t
		}
		s.recountLocked()
		return true
	})
}

// AddTask appends a task. A task carrying a ParentTaskID is routed through
// AddSubtask.
func (s *Store) AddTask(t model.Task) bool {
	if pid := parentOf(t); pid != "" {
		return s.AddSubtask(pid, t)
	}
	return s.mutate(func() bool {
		if _, exists := s.tasks[t.ID]; exists || strings.TrimSpace(t.ID) == "" {
			return false
		}
		t.Count.Subtasks = 0
		s.insertTaskLocked(t)
		return true
	})
}

// AddSubtask attaches sub to parentID and increments the parent's subtask
// counter. It is a no-op when the parent is unknown, is itself a subtask, or
// sub's id is already taken.
func (s *Store) AddSubtask(parentID string, sub model.Task) bool {
	parentID = strings.TrimSpace(parentID)
	return s.mutate(func() bool {
		p, ok := s.tasks[parentID]
		if !ok || parentOf(p) != "" {
			return false
		}
		if _, exists := s.tasks[sub.ID]; exists || strings.TrimSpace(sub.ID) == "" {
			return false
		}
		pid := parentID
		sub.ParentTaskID = &pid
		sub.Count.Subtasks = 0
		if sub.CampaignID == "" {
			sub.CampaignID = p.CampaignID
		}
		s.insertTaskLocked(sub)
		p.Count.Subtasks++
		s.tasks[parentID] = p
		return true
	})
}

// UpdateTask merges p into the task with id. Unknown ids are silently ignored;
// the return value reports whether anything was updated.
func (s *Store) UpdateTask(id string, p TaskPatch) bool {
	id = strings.TrimSpace(id)
	return s.mutate(func() bool {
		t, ok := s.tasks[id]
		if !ok {
			return false
		}
		p.apply(&t)
		s.tasks[id] = t
		return true
	})
}

// restoreTask puts back a previously captured copy of a task, keeping the
// current subtask counter. Used to roll back optimistic updates.
func (s *Store) restoreTask(prev model.Task) bool {
	return s.mutate(func() bool {
		cur, ok := s.tasks[prev.ID]
		if !ok {
			return false
		}
		prev = cloneTask(prev)
		prev.Subtasks = nil
		prev.ParentTaskID = cur.ParentTaskID
		prev.Count = cur.Count
		s.tasks[prev.ID] = prev
		return true
	})
}

// ReplaceTask swaps in the canonical copy of a task returned by the backend.
func (s *Store) ReplaceTask(t model.Task) bool {
	return s.restoreTask(t)
}

// RemoveTask deletes a task (and its subtasks). Removing a subtask decrements
// its parent's counter.
func (s *Store) RemoveTask(id string) bool {
	id = strings.TrimSpace(id)
	return s.mutate(func() bool {
		return s.deleteTaskLocked(id)
	})
}

// RemoveSubtask deletes id only when it is a subtask of parentID.
func (s *Store) RemoveSubtask(parentID, id string) bool {
	parentID, id = strings.TrimSpace(parentID), strings.TrimSpace(id)
	return s.mutate(func() bool {
		t, ok := s.tasks[id]
		if !ok || parentOf(t) != parentID {
			return false
		}
		return s.deleteTaskLocked(id)
	})
}

// Tasks returns every task in insertion order, parents with their subtasks filled in.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasksLocked()
}

// TopLevelTasks returns tasks without a parent.
func (s *Store) TopLevelTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Task{}
	for _, tid := range s.taskOrder {
		t := s.tasks[tid]
		if parentOf(t) == "" {
			out = append(out, s.materializeLocked(t))
		}
	}
	return out
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[strings.TrimSpace(id)]
	if !ok {
		return model.Task{}, false
	}
	return s.materializeLocked(t), true
}
