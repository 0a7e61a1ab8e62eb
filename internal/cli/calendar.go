package cli

import (
	"strings"
	"time"

	"mops-cli/internal/controller"
	"mops-cli/internal/dnd"
	"mops-cli/internal/model"

	"github.com/spf13/cobra"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Content calendar commands",
	}
	cmd.AddCommand(newCalendarListCmd(app))
	cmd.AddCommand(newCalendarScheduleCmd(app))
	return cmd
}

func newCalendarListCmd(app *App) *cobra.Command {
	var (
		from string
		to   string
		view string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled content",
		Long: strings.TrimSpace(`
Without --from/--to, lists the week (or day, or month with --view) containing
today. --to is exclusive.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := dnd.ParseCalendarView(view)
			if err != nil {
				return writeErr(cmd, err)
			}
			start, end := calendarPeriod(v, time.Now())
			if t, err := parseDateFlag("from", from); err != nil {
				return writeErr(cmd, err)
			} else if t != nil {
				start = *t
			}
			if t, err := parseDateFlag("to", to); err != nil {
				return writeErr(cmd, err)
			} else if t != nil {
				end = *t
			}
			if !end.After(start) {
				return writeErr(cmd, badFlagError{flag: "to", value: end.Format(time.RFC3339), err: errEmptyRange})
			}

			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := controller.NewCalendar(d).LoadRange(cmd.Context(), start, end); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, d.Store.Schedules(), map[string]any{
				"from": start.Format(time.RFC3339),
				"to":   end.Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Range end, exclusive (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&view, "view", string(dnd.ViewWeek), "Default range when --from/--to are omitted (day|week|month)")
	return cmd
}

func newCalendarScheduleCmd(app *App) *cobra.Command {
	var (
		at       string
		campaign string
		title    string
		view     string
	)

	cmd := &cobra.Command{
		Use:   "schedule <content-id>",
		Short: "Schedule content at a time",
		Long: strings.TrimSpace(`
Scheduling goes through the same path as dropping content on a calendar slot.
With --view month the time of day is replaced by the month view's default
drop hour; other views keep the time, snapped down to the slot.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := time.Parse(time.RFC3339, strings.TrimSpace(at))
			if err != nil {
				return writeErr(cmd, badFlagError{flag: "at", value: at, err: err})
			}
			v, err := dnd.ParseCalendarView(view)
			if err != nil {
				return writeErr(cmd, err)
			}

			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			content := dnd.ContentPayload{
				ContentID:  strings.TrimSpace(args[0]),
				CampaignID: strings.TrimSpace(campaign),
				Title:      strings.TrimSpace(title),
			}
			if content.CampaignID != "" {
				if err := openCampaign(cmd, d, content.CampaignID); err != nil {
					return writeErr(cmd, err)
				}
				c, _ := d.Store.CurrentCampaign()
				found, ok := findContent(c, content.ContentID)
				if !ok {
					return writeErr(cmd, errNotFound("content", content.ContentID))
				}
				if content.Title == "" {
					content.Title = found.Title
				}
			}

			if err := controller.NewCalendar(d).Schedule(cmd.Context(), content, when, v); err != nil {
				return writeErr(cmd, err)
			}
			for _, s := range d.Store.Schedules() {
				if s.ContentID == content.ContentID && !controller.IsTempID(s.ID) {
					return writeOut(cmd, app, s, nil)
				}
			}
			return writeOut(cmd, app, nil, nil)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "When (RFC3339)")
	cmd.Flags().StringVar(&campaign, "campaign", "", "Campaign the content belongs to (checked before scheduling)")
	cmd.Flags().StringVar(&title, "title", "", "Title shown until the backend confirms")
	cmd.Flags().StringVar(&view, "view", string(dnd.ViewWeek), "Calendar view the drop happens in (day|week|month)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func findContent(c model.Campaign, id string) (model.Content, bool) {
	for _, ct := range c.Contents {
		if ct.ID == id {
			return ct, true
		}
	}
	return model.Content{}, false
}

// calendarPeriod is the range the TUI calendar shows for view around now.
func calendarPeriod(view dnd.CalendarView, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch view {
	case dnd.ViewDay:
		return day, day.AddDate(0, 0, 1)
	case dnd.ViewMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(0, 1, 0)
	default:
		start := controller.WeekStart(day)
		return start, start.AddDate(0, 0, 7)
	}
}
