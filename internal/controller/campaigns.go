package controller

import (
	"context"

	"mops-cli/internal/api"
	"mops-cli/internal/loader"
	"mops-cli/internal/model"
	"mops-cli/internal/store"
	"mops-cli/internal/viewstate"

	"go.uber.org/zap"
)

// Campaigns drives the campaign list screen and opening a single campaign.
type Campaigns struct {
	Deps
}

func NewCampaigns(d Deps) *Campaigns {
	return &Campaigns{Deps: d.withDefaults()}
}

// Load fetches the page the campaigns screen is on, using the store's filter
// for the server-side part of the query. A load superseded by a newer one
// applies nothing and returns nil.
func (c *Campaigns) Load(ctx context.Context) error {
	view := c.Store.View(viewstate.ScreenCampaigns)
	f, by := c.Store.CampaignFilter()
	q := api.CampaignQuery{
		Page:     view.Page.Page,
		Limit:    view.Page.Limit,
		Statuses: f.Statuses,
		Search:   f.Search,
		Sort:     string(by),
	}

	ctx, tk := c.Loader.Begin(ctx, loader.KeyCampaigns)
	defer tk.Done()
	page, err := c.API.ListCampaigns(ctx, q)
	if err != nil {
		if !tk.Current() {
			return nil
		}
		return c.report("load campaigns", err)
	}
	tk.Apply(func() {
		c.Store.SetCampaigns(page.Campaigns)
		meta := model.NewPagination(q.Page, q.Limit, len(page.Campaigns))
		if page.Meta != nil {
			meta = *page.Meta
		}
		c.Store.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State {
			return v.ApplyMeta(meta)
		})
	})
	return nil
}

// GoToPage moves the campaigns screen to page n and reloads.
func (c *Campaigns) GoToPage(ctx context.Context, n int) error {
	c.Store.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State { return v.SetPage(n) })
	return c.Load(ctx)
}

// Open loads a campaign with its tasks, members, labels and milestones and
// makes it current. Nothing is applied unless every part loaded.
func (c *Campaigns) Open(ctx context.Context, id string) error {
	return openCampaign(ctx, c.Deps, id)
}

func openCampaign(ctx context.Context, d Deps, id string) error {
	ctx, tk := d.Loader.Begin(ctx, loader.KeyDetail)
	defer tk.Done()
	detail, err := loader.FetchDetail(ctx, d.API, id)
	if err != nil {
		if !tk.Current() {
			return nil
		}
		return d.report("open campaign", err)
	}
	tk.Apply(func() {
		if !d.Store.ReplaceCampaign(detail.Campaign) {
			d.Store.AddCampaign(detail.Campaign)
		}
		d.Store.SetCurrentCampaign(detail.Campaign.ID)
		d.Store.SetTasks(detail.Tasks)
		d.Store.SetMembers(detail.Members)
		d.Store.SetLabels(detail.Labels)
		d.Store.SetMilestones(detail.Milestones)
	})
	return nil
}

func (c *Campaigns) Create(ctx context.Context, in api.CampaignInput) (model.Campaign, error) {
	if err := validateCampaignInput(in); err != nil {
		return model.Campaign{}, c.report("create campaign", err)
	}
	created, err := c.API.CreateCampaign(ctx, in)
	if err != nil {
		return model.Campaign{}, c.report("create campaign", err)
	}
	c.Store.AddCampaign(created)
	c.Notify.Success("Created campaign " + created.Name)
	return created, nil
}

// Update patches a campaign optimistically and rolls back if the backend
// rejects it. Patching an id the store does not hold is a silent no-op.
func (c *Campaigns) Update(ctx context.Context, id string, p store.CampaignPatch) error {
	cur, ok := c.Store.Campaign(id)
	if !ok {
		c.Logger.Debug("update of unknown campaign ignored", zap.String("id", id))
		return nil
	}
	if err := validateCampaignPatch(cur, p); err != nil {
		return c.report("update campaign", err)
	}
	if p.IsEmpty() {
		return nil
	}
	tx, ok := c.Store.BeginCampaignPatch(id, p)
	if !ok {
		return nil
	}
	saved, err := c.API.UpdateCampaign(ctx, id, campaignUpdate(p))
	if err != nil {
		tx.Fail(err)
		return c.report("update campaign", err)
	}
	tx.Confirm()
	c.Store.ReplaceCampaign(saved)
	return nil
}

// Delete removes a campaign on the backend, then locally. A campaign the
// backend no longer has is treated as deleted.
func (c *Campaigns) Delete(ctx context.Context, id string) error {
	if err := c.API.DeleteCampaign(ctx, id); err != nil && !api.IsNotFound(err) {
		return c.report("delete campaign", err)
	}
	c.Store.RemoveCampaign(id)
	return nil
}
