package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mops-cli/internal/model"
	"mops-cli/internal/wire"
)

// CampaignQuery is the server-side part of the campaign list request.
type CampaignQuery struct {
	Page     int
	Limit    int
	Statuses []model.CampaignStatus
	Search   string
	Sort     string
}

func (q CampaignQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(q.Statuses) > 0 {
		ss := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			ss = append(ss, string(s))
		}
		v.Set("status", strings.Join(ss, ","))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// CampaignPage is one page of campaigns. Meta is nil when the backend does not paginate.
type CampaignPage struct {
	Campaigns []model.Campaign
	Meta      *model.Pagination
}

type CampaignInput struct {
	Name        string               `json:"name"`
	Summary     string               `json:"summary,omitempty"`
	Description string               `json:"description,omitempty"`
	Status      model.CampaignStatus `json:"status,omitempty"`
	Health      model.Health         `json:"health,omitempty"`
	Priority    model.Priority       `json:"priority,omitempty"`
	StartDate   *time.Time           `json:"startDate,omitempty"`
	TargetDate  *time.Time           `json:"targetDate,omitempty"`
	LeadID      string               `json:"leadId,omitempty"`
}

// CampaignUpdate is a partial update; nil fields are not sent.
type CampaignUpdate struct {
	Name        *string               `json:"name,omitempty"`
	Summary     *string               `json:"summary,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *model.CampaignStatus `json:"status,omitempty"`
	Health      *model.Health         `json:"health,omitempty"`
	Priority    *model.Priority       `json:"priority,omitempty"`
	StartDate   *time.Time            `json:"startDate,omitempty"`
	TargetDate  *time.Time            `json:"targetDate,omitempty"`
	LeadID      *string               `json:"leadId,omitempty"`

	// An empty LeadID unsets the lead; dates are unset with the Clear flags.
	ClearStartDate  bool `json:"clearStartDate,omitempty"`
	ClearTargetDate bool `json:"clearTargetDate,omitempty"`
}

func (c *Client) ListCampaigns(ctx context.Context, q CampaignQuery) (CampaignPage, error) {
	data, meta, err := c.do(ctx, http.MethodGet, c.orgPath("campaigns"), q.values(), nil)
	if err != nil {
		return CampaignPage{}, err
	}
	cs, listMeta, err := wire.DecodeCampaigns(data)
	if err != nil {
		return CampaignPage{}, err
	}
	if meta == nil {
		meta = listMeta
	}
	return CampaignPage{Campaigns: cs, Meta: meta}, nil
}

func (c *Client) GetCampaign(ctx context.Context, id string) (model.Campaign, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.orgPath("campaigns", id), nil, nil)
	if err != nil {
		return model.Campaign{}, err
	}
	if err := requireData(data); err != nil {
		return model.Campaign{}, err
	}
	return wire.DecodeCampaign(data)
}

func (c *Client) CreateCampaign(ctx context.Context, in CampaignInput) (model.Campaign, error) {
	data, _, err := c.do(ctx, http.MethodPost, c.orgPath("campaigns"), nil, in)
	if err != nil {
		return model.Campaign{}, err
	}
	if err := requireData(data); err != nil {
		return model.Campaign{}, err
	}
	return wire.DecodeCampaign(data)
}

func (c *Client) UpdateCampaign(ctx context.Context, id string, in CampaignUpdate) (model.Campaign, error) {
	data, _, err := c.do(ctx, http.MethodPatch, c.orgPath("campaigns", id), nil, in)
	if err != nil {
		return model.Campaign{}, err
	}
	if err := requireData(data); err != nil {
		return model.Campaign{}, err
	}
	return wire.DecodeCampaign(data)
}

func (c *Client) DeleteCampaign(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, c.orgPath("campaigns", id), nil, nil)
	return err
}

func (c *Client) ListMembers(ctx context.Context, campaignID string) ([]model.Member, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.orgPath("campaigns", campaignID, "members"), nil, nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeMembers(data, campaignID)
}

func (c *Client) ListLabels(ctx context.Context, campaignID string) ([]model.Label, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.orgPath("campaigns", campaignID, "labels"), nil, nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeLabels(data, campaignID)
}

func (c *Client) ListMilestones(ctx context.Context, campaignID string) ([]model.Milestone, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.orgPath("campaigns", campaignID, "milestones"), nil, nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeMilestones(data, campaignID)
}
