package controller

import (
	"context"

	"mops-cli/internal/api"
	"mops-cli/internal/dnd"
	"mops-cli/internal/model"
	"mops-cli/internal/store"

	"go.uber.org/zap"
)

// Board drives the current campaign's task board. It is the Emitter for its
// drag handler: a drop applies the status change locally right away and
// queues the backend call for Flush.
type Board struct {
	Deps
	drag *dnd.Handler
	q    queue
}

func NewBoard(d Deps) *Board {
	b := &Board{Deps: d.withDefaults()}
	b.drag = dnd.NewHandler(b)
	return b
}

func (b *Board) Drag() *dnd.Handler { return b.drag }

// Emit implements dnd.Emitter.
func (b *Board) Emit(m dnd.Mutation) {
	sc, ok := m.(dnd.StatusChange)
	if !ok {
		b.Logger.Debug("board ignored mutation", zap.Any("mutation", m))
		return
	}
	to := sc.To
	task, ok := b.Store.Task(sc.TaskID)
	if !ok {
		return
	}
	tx, ok := b.Store.BeginTaskPatch(sc.TaskID, store.TaskPatch{Status: &to})
	if !ok {
		return
	}
	b.q.push(pendingOp{
		label: "move task",
		tx:    tx,
		persist: func(ctx context.Context) error {
			saved, err := b.API.UpdateTask(ctx, task.CampaignID, task.ID, api.TaskUpdate{Status: &to})
			if err != nil {
				return err
			}
			b.Store.ReplaceTask(saved)
			return nil
		},
	})
}

// Pending reports how many drops are waiting for Flush.
func (b *Board) Pending() int { return b.q.len() }

// Flush sends every queued drop to the backend, rolling back each one that fails.
func (b *Board) Flush(ctx context.Context) error {
	return b.flush(ctx, &b.q)
}

// MoveTask runs a status change through the drag handler, exactly as a drop
// onto the target column would, and persists it. Unknown tasks are ignored.
func (b *Board) MoveTask(ctx context.Context, taskID string, to model.TaskStatus) error {
	if !to.Valid() {
		return b.report("move task", ValidationError{Field: "status", Message: "unknown value " + string(to)})
	}
	t, ok := b.Store.Task(taskID)
	if !ok {
		b.Logger.Debug("move of unknown task ignored", zap.String("id", taskID))
		return nil
	}
	b.drag.Cancel()
	if err := b.drag.DragStart(dnd.TaskPayload{TaskID: t.ID, Status: t.Status}); err != nil {
		return err
	}
	if _, ok := b.drag.Drop(dnd.ColumnTarget{Status: to}); !ok {
		return nil
	}
	return b.Flush(ctx)
}

// Reload refetches the current campaign.
func (b *Board) Reload(ctx context.Context) error {
	id := b.Store.CurrentCampaignID()
	if id == "" {
		return nil
	}
	return openCampaign(ctx, b.Deps, id)
}

func (b *Board) CreateTask(ctx context.Context, campaignID string, in api.TaskInput) (model.Task, error) {
	if err := validateTaskInput(in); err != nil {
		return model.Task{}, b.report("create task", err)
	}
	created, err := b.API.CreateTask(ctx, campaignID, in)
	if err != nil {
		return model.Task{}, b.report("create task", err)
	}
	b.Store.AddTask(created)
	return created, nil
}

// AddSubtask creates a task under parentID. Subtasks of subtasks are rejected;
// a parent the store no longer holds makes this a no-op.
func (b *Board) AddSubtask(ctx context.Context, parentID string, in api.TaskInput) (model.Task, error) {
	parent, ok := b.Store.Task(parentID)
	if !ok {
		b.Logger.Debug("subtask for unknown parent ignored", zap.String("parent", parentID))
		return model.Task{}, nil
	}
	if parent.IsSubtask() {
		return model.Task{}, b.report("add subtask", ValidationError{Field: "parentTaskId", Message: "subtasks cannot have subtasks"})
	}
	if err := validateTaskInput(in); err != nil {
		return model.Task{}, b.report("add subtask", err)
	}
	pid := parent.ID
	in.ParentTaskID = &pid
	created, err := b.API.CreateTask(ctx, parent.CampaignID, in)
	if err != nil {
		return model.Task{}, b.report("add subtask", err)
	}
	b.Store.AddSubtask(parent.ID, created)
	return created, nil
}

// UpdateTask patches a task optimistically, rolling back on failure.
func (b *Board) UpdateTask(ctx context.Context, id string, p store.TaskPatch) error {
	if err := validateTaskPatch(p); err != nil {
		return b.report("update task", err)
	}
	cur, ok := b.Store.Task(id)
	if !ok || p.IsEmpty() {
		return nil
	}
	tx, ok := b.Store.BeginTaskPatch(id, p)
	if !ok {
		return nil
	}
	saved, err := b.API.UpdateTask(ctx, cur.CampaignID, id, taskUpdate(p))
	if err != nil {
		tx.Fail(err)
		return b.report("update task", err)
	}
	tx.Confirm()
	b.Store.ReplaceTask(saved)
	return nil
}

func (b *Board) DeleteTask(ctx context.Context, id string) error {
	cur, ok := b.Store.Task(id)
	if !ok {
		return nil
	}
	if err := b.API.DeleteTask(ctx, cur.CampaignID, id); err != nil && !api.IsNotFound(err) {
		return b.report("delete task", err)
	}
	b.Store.RemoveTask(id)
	return nil
}
