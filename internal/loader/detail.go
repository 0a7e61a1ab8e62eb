package loader

import (
	"context"
	"fmt"

	"mops-cli/internal/model"

	"golang.org/x/sync/errgroup"
)

// DetailSource is the subset of the API client a campaign detail load needs.
type DetailSource interface {
	GetCampaign(ctx context.Context, id string) (model.Campaign, error)
	ListTasks(ctx context.Context, campaignID string) ([]model.Task, error)
	ListMembers(ctx context.Context, campaignID string) ([]model.Member, error)
	ListLabels(ctx context.Context, campaignID string) ([]model.Label, error)
	ListMilestones(ctx context.Context, campaignID string) ([]model.Milestone, error)
}

// Detail is everything the campaign screen shows.
type Detail struct {
	Campaign   model.Campaign
	Tasks      []model.Task
	Members    []model.Member
	Labels     []model.Label
	Milestones []model.Milestone
}

// FetchDetail loads a campaign and its collections in parallel. The first
// failing leg cancels the others and no partial Detail is returned.
func FetchDetail(ctx context.Context, src DetailSource, campaignID string) (Detail, error) {
	var d Detail
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := src.GetCampaign(gctx, campaignID)
		if err != nil {
			return fmt.Errorf("campaign: %w", err)
		}
		d.Campaign = c
		return nil
	})
	g.Go(func() error {
		ts, err := src.ListTasks(gctx, campaignID)
		if err != nil {
			return fmt.Errorf("tasks: %w", err)
		}
		d.Tasks = ts
		return nil
	})
	g.Go(func() error {
		ms, err := src.ListMembers(gctx, campaignID)
		if err != nil {
			return fmt.Errorf("members: %w", err)
		}
		d.Members = ms
		return nil
	})
	g.Go(func() error {
		ls, err := src.ListLabels(gctx, campaignID)
		if err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		d.Labels = ls
		return nil
	})
	g.Go(func() error {
		ms, err := src.ListMilestones(gctx, campaignID)
		if err != nil {
			return fmt.Errorf("milestones: %w", err)
		}
		d.Milestones = ms
		return nil
	})

	if err := g.Wait(); err != nil {
		return Detail{}, err
	}
	return d, nil
}
