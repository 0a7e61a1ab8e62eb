// Package controller wires the store, the API client, the fetch coordinator and
// the notification queue into the operations each screen performs.
//
// Every operation validates first, then touches the store, then the network.
// Optimistic changes run inside a store.Tx and are rolled back when the
// backend rejects them. Failures are pushed to the Notifier and also returned,
// so scripted callers can exit non-zero. Nothing is retried automatically.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/loader"
	"mops-cli/internal/model"
	"mops-cli/internal/notify"
	"mops-cli/internal/store"

	"go.uber.org/zap"
)

// API is the backend surface controllers use. *api.Client implements it.
type API interface {
	loader.DetailSource
	ListCampaigns(ctx context.Context, q api.CampaignQuery) (api.CampaignPage, error)
	CreateCampaign(ctx context.Context, in api.CampaignInput) (model.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, in api.CampaignUpdate) (model.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	CreateTask(ctx context.Context, campaignID string, in api.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, campaignID, taskID string, in api.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, campaignID, taskID string) error
	ListSchedules(ctx context.Context, from, to time.Time) ([]model.Schedule, error)
	CreateSchedule(ctx context.Context, in api.ScheduleInput) (model.Schedule, error)
}

type Deps struct {
	Store  *store.Store
	API    API
	Loader *loader.Latest
	Notify *notify.Notifier
	Logger *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Store == nil {
		d.Store = store.New()
	}
	if d.Loader == nil {
		d.Loader = loader.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Notify == nil {
		d.Notify = notify.New(notify.DefaultCapacity, d.Logger)
	}
	return d
}

// report pushes err to the notifier unless it only means the request was
// abandoned, and returns it.
func (d Deps) report(action string, err error) error {
	if err == nil {
		return nil
	}
	if api.IsCanceled(err) {
		d.Logger.Debug("request abandoned", zap.String("action", action))
		return err
	}
	if IsValidation(err) {
		d.Notify.Warn(err.Error())
		return err
	}
	d.Logger.Warn("action failed", zap.String("action", action), zap.Error(err))
	d.Notify.Error(action, err)
	return err
}

// pendingOp is an optimistic change waiting for its backend call.
type pendingOp struct {
	label   string
	tx      *store.Tx
	persist func(ctx context.Context) error
}

type queue struct {
	mu  sync.Mutex
	ops []pendingOp

	// flushing is held for a whole flush so backend calls settle in drop order.
	flushing sync.Mutex
}

func (q *queue) push(op pendingOp) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append(q.ops, op)
}

func (q *queue) take() []pendingOp {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.ops
	q.ops = nil
	return ops
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// flush persists queued ops in order. Each op is confirmed or rolled back on
// its own; the returned error joins every failure. Concurrent flushes of the
// same queue run one after another.
func (d Deps) flush(ctx context.Context, q *queue) error {
	q.flushing.Lock()
	defer q.flushing.Unlock()
	var errs []error
	for _, op := range q.take() {
		if err := op.persist(ctx); err != nil {
			op.tx.Fail(err)
			errs = append(errs, d.report(op.label, err))
			continue
		}
		op.tx.Confirm()
	}
	return errors.Join(errs...)
}
