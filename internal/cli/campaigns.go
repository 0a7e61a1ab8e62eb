package cli

import (
	"strings"
	"time"

	"mops-cli/internal/api"
	"mops-cli/internal/controller"
	"mops-cli/internal/filter"
	"mops-cli/internal/model"
	"mops-cli/internal/store"
	"mops-cli/internal/viewstate"

	"github.com/spf13/cobra"
)

func newCampaignsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaigns",
		Aliases: []string{"campaign", "cmp"},
		Short:   "Campaign commands",
	}
	cmd.AddCommand(newCampaignsListCmd(app))
	cmd.AddCommand(newCampaignsShowCmd(app))
	cmd.AddCommand(newCampaignsCreateCmd(app))
	cmd.AddCommand(newCampaignsUpdateCmd(app))
	cmd.AddCommand(newCampaignsDeleteCmd(app))
	return cmd
}

func newCampaignsListCmd(app *App) *cobra.Command {
	var (
		statuses   []string
		healths    []string
		priorities []string
		search     string
		lead       string
		sortBy     string
		page       int
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of campaigns",
		Long: strings.TrimSpace(`
Status, search and sort are sent to the backend. Health, priority and lead
narrow the returned page locally.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := filter.CampaignFilter{Search: search, LeadID: lead}
			var err error
			if f.Statuses, err = parseList("status", statuses, model.ParseCampaignStatus); err != nil {
				return writeErr(cmd, err)
			}
			if f.Healths, err = parseList("health", healths, model.ParseHealth); err != nil {
				return writeErr(cmd, err)
			}
			if f.Priorities, err = parseList("priority", priorities, model.ParsePriority); err != nil {
				return writeErr(cmd, err)
			}
			by, err := filter.ParseSort(sortBy)
			if err != nil {
				return writeErr(cmd, err)
			}

			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			d.Store.SetCampaignFilter(f, by)
			d.Store.UpdateView(viewstate.ScreenCampaigns, func(v viewstate.State) viewstate.State {
				return v.SetLimit(limit).SetPage(page)
			})
			if err := controller.NewCampaigns(d).Load(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			view := d.Store.View(viewstate.ScreenCampaigns)
			return writeOut(cmd, app, d.Store.GetFilteredCampaigns(), view.Page)
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Campaign status (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&healths, "health", nil, "Health (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&priorities, "priority", nil, "Priority (repeatable or comma separated)")
	cmd.Flags().StringVar(&search, "search", "", "Match name, summary or description")
	cmd.Flags().StringVar(&lead, "lead", "", "Lead user id")
	cmd.Flags().StringVar(&sortBy, "sort", "newest", "Sort (newest|oldest|name|size|priority|due)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", viewstate.DefaultPageSize, "Page size")
	return cmd
}

func newCampaignsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <campaign-id>",
		Short: "Show a campaign with its tasks, members, labels and milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := openCampaign(cmd, d, id); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := d.Store.CurrentCampaign()
			return writeOut(cmd, app, map[string]any{
				"campaign":   c,
				"tasks":      d.Store.Tasks(),
				"members":    d.Store.Members(id),
				"labels":     d.Store.Labels(id),
				"milestones": d.Store.Milestones(id),
			}, nil)
		},
	}
	return cmd
}

// openCampaign loads id into d.Store and makes it current.
func openCampaign(cmd *cobra.Command, d controller.Deps, id string) error {
	if err := controller.NewCampaigns(d).Open(cmd.Context(), id); err != nil {
		if api.IsNotFound(err) {
			return errNotFound("campaign", id)
		}
		return err
	}
	if d.Store.CurrentCampaignID() != id {
		return errNotFound("campaign", id)
	}
	return nil
}

type campaignFields struct {
	name, summary, description string
	status, health, priority   string
	start, target              string
	lead                       string
}

func (f *campaignFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Campaign name")
	cmd.Flags().StringVar(&f.summary, "summary", "", "One line summary")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (draft|planning|ready|done|canceled)")
	cmd.Flags().StringVar(&f.health, "health", "", "Health (on_track|at_risk|off_track)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&f.target, "target", "", "Target date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&f.lead, "lead", "", "Lead user id")
}

func newCampaignsCreateCmd(app *App) *cobra.Command {
	var f campaignFields

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := api.CampaignInput{
				Name:        strings.TrimSpace(f.name),
				Summary:     strings.TrimSpace(f.summary),
				Description: f.description,
				LeadID:      strings.TrimSpace(f.lead),
			}
			var err error
			if f.status != "" {
				if in.Status, err = model.ParseCampaignStatus(f.status); err != nil {
					return writeErr(cmd, err)
				}
			}
			if f.health != "" {
				if in.Health, err = model.ParseHealth(f.health); err != nil {
					return writeErr(cmd, err)
				}
			}
			if f.priority != "" {
				if in.Priority, err = model.ParsePriority(f.priority); err != nil {
					return writeErr(cmd, err)
				}
			}
			if in.StartDate, err = parseDateFlag("start", f.start); err != nil {
				return writeErr(cmd, err)
			}
			if in.TargetDate, err = parseDateFlag("target", f.target); err != nil {
				return writeErr(cmd, err)
			}

			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := controller.NewCampaigns(d).Create(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, c, nil)
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCampaignsUpdateCmd(app *App) *cobra.Command {
	var f campaignFields

	cmd := &cobra.Command{
		Use:   "update <campaign-id>",
		Short: "Update campaign fields (only the flags given are sent)",
		Long:  "An empty --start, --target or --lead clears that field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var p store.CampaignPatch
			if flags.Changed("name") {
				v := strings.TrimSpace(f.name)
				p.Name = &v
			}
			if flags.Changed("summary") {
				v := strings.TrimSpace(f.summary)
				p.Summary = &v
			}
			if flags.Changed("description") {
				p.Description = &f.description
			}
			if flags.Changed("status") {
				v, err := model.ParseCampaignStatus(f.status)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Status = &v
			}
			if flags.Changed("health") {
				v, err := model.ParseHealth(f.health)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Health = &v
			}
			if flags.Changed("priority") {
				v, err := model.ParsePriority(f.priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Priority = &v
			}
			var err error
			if p.StartDate, p.ClearStartDate, err = dateFlag(cmd, "start", f.start); err != nil {
				return writeErr(cmd, err)
			}
			if p.TargetDate, p.ClearTargetDate, err = dateFlag(cmd, "target", f.target); err != nil {
				return writeErr(cmd, err)
			}
			if flags.Changed("lead") {
				if lead := strings.TrimSpace(f.lead); lead == "" {
					p.ClearLead = true
				} else {
					p.Lead = &model.UserRef{ID: lead}
				}
			}

			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := openCampaign(cmd, d, id); err != nil {
				return writeErr(cmd, err)
			}
			if err := controller.NewCampaigns(d).Update(cmd.Context(), id, p); err != nil {
				return writeErr(cmd, err)
			}
			c, _ := d.Store.Campaign(id)
			return writeOut(cmd, app, c, nil)
		},
	}

	f.register(cmd)
	return cmd
}

func newCampaignsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <campaign-id>",
		Short: "Delete a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := controller.NewCampaigns(d).Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": true}, nil)
		},
	}
	return cmd
}

// dateFlag reads a date flag of an update command: an absent flag leaves the
// field alone, an explicit empty value clears it.
func dateFlag(cmd *cobra.Command, flag, v string) (t *time.Time, unset bool, err error) {
	if !cmd.Flags().Changed(flag) {
		return nil, false, nil
	}
	if strings.TrimSpace(v) == "" {
		return nil, true, nil
	}
	t, err = parseDateFlag(flag, v)
	return t, false, err
}

// parseDateFlag accepts a calendar date (midnight UTC) or a full RFC3339 time.
// An empty value yields nil.
func parseDateFlag(flag, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, badFlagError{flag: flag, value: v, err: err}
	}
	return &t, nil
}
