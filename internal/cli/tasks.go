package cli

import (
	"strings"

	"mops-cli/internal/api"
	"mops-cli/internal/controller"
	"mops-cli/internal/filter"
	"mops-cli/internal/model"
	"mops-cli/internal/store"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands (scoped to a campaign)",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		statuses   []string
		priorities []string
		assignee   string
		search     string
		topLevel   bool
		sortBy     string
	)

	cmd := &cobra.Command{
		Use:   "list <campaign-id>",
		Short: "List a campaign's tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			f := filter.TaskFilter{CampaignID: id, AssigneeID: assignee, Search: search, TopLevelOnly: topLevel}
			var err error
			if f.Statuses, err = parseList("status", statuses, model.ParseTaskStatus); err != nil {
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
			if err := openCampaign(cmd, d, id); err != nil {
				return writeErr(cmd, err)
			}
			d.Store.SetTaskFilter(f, by)
			return writeOut(cmd, app, d.Store.GetFilteredTasks(), nil)
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Task status (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&priorities, "priority", nil, "Priority (repeatable or comma separated)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user id")
	cmd.Flags().StringVar(&search, "search", "", "Match title or description")
	cmd.Flags().BoolVar(&topLevel, "top-level", false, "Hide subtasks")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort (priority|due|name|newest|oldest)")
	return cmd
}

type taskFields struct {
	title, description string
	status, priority   string
	assignee, due      string
	estimate           float64
}

func (f *taskFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (todo|in_progress|review|done)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Assignee user id")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().Float64Var(&f.estimate, "estimate", 0, "Estimated hours")
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var (
		f      taskFields
		parent string
	)

	cmd := &cobra.Command{
		Use:   "create <campaign-id>",
		Short: "Create a task (or a subtask with --parent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := api.TaskInput{
				Title:       strings.TrimSpace(f.title),
				Description: f.description,
				AssigneeID:  strings.TrimSpace(f.assignee),
			}
			var err error
			if f.status != "" {
				if in.Status, err = model.ParseTaskStatus(f.status); err != nil {
					return writeErr(cmd, err)
				}
			}
			if f.priority != "" {
				if in.Priority, err = model.ParsePriority(f.priority); err != nil {
					return writeErr(cmd, err)
				}
			}
			if in.DueDate, err = parseDateFlag("due", f.due); err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("estimate") {
				in.EstimatedHours = &f.estimate
			}

			d, err := app.deps()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			b := controller.NewBoard(d)
			parent = strings.TrimSpace(parent)
			if parent == "" {
				t, err := b.CreateTask(cmd.Context(), id, in)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, t, nil)
			}

			if err := openCampaign(cmd, d, id); err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := d.Store.Task(parent); !ok {
				return writeErr(cmd, errNotFound("task", parent))
			}
			t, err := b.AddSubtask(cmd.Context(), parent, in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, t, nil)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task id (creates a subtask)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var f taskFields

	cmd := &cobra.Command{
		Use:   "update <campaign-id> <task-id>",
		Short: "Update task fields (only the flags given are sent)",
		Long:  "An empty --due or --assignee clears that field.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var p store.TaskPatch
			if flags.Changed("title") {
				v := strings.TrimSpace(f.title)
				p.Title = &v
			}
			if flags.Changed("description") {
				p.Description = &f.description
			}
			if flags.Changed("status") {
				v, err := model.ParseTaskStatus(f.status)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Status = &v
			}
			if flags.Changed("priority") {
				v, err := model.ParsePriority(f.priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Priority = &v
			}
			if flags.Changed("assignee") {
				if a := strings.TrimSpace(f.assignee); a == "" {
					p.ClearAssignee = true
				} else {
					p.Assignee = &model.UserRef{ID: a}
				}
			}
			var err error
			if p.DueDate, p.ClearDueDate, err = dateFlag(cmd, "due", f.due); err != nil {
				return writeErr(cmd, err)
			}
			if flags.Changed("estimate") {
				p.EstimatedHours = &f.estimate
			}

			d, taskID, err := openTask(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := controller.NewBoard(d).UpdateTask(cmd.Context(), taskID, p); err != nil {
				return writeErr(cmd, err)
			}
			t, _ := d.Store.Task(taskID)
			return writeOut(cmd, app, t, nil)
		},
	}

	f.register(cmd)
	return cmd
}

func newTasksMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <campaign-id> <task-id> <status>",
		Short: "Move a task to another board column",
		Long: strings.TrimSpace(`
Moves go through the same path as dragging a card onto a column: the change is
applied locally first and rolled back if the backend rejects it. Moving a task
to the column it is already in does nothing.
`),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := model.ParseTaskStatus(args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			d, taskID, err := openTask(cmd, app, args[:2])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := controller.NewBoard(d).MoveTask(cmd.Context(), taskID, to); err != nil {
				return writeErr(cmd, err)
			}
			t, _ := d.Store.Task(taskID)
			return writeOut(cmd, app, t, nil)
		},
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <campaign-id> <task-id>",
		Short: "Delete a task (and its subtasks)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, taskID, err := openTask(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := controller.NewBoard(d).DeleteTask(cmd.Context(), taskID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": taskID, "deleted": true}, nil)
		},
	}
	return cmd
}

// openTask loads the campaign in args[0] and checks it holds task args[1].
func openTask(cmd *cobra.Command, app *App, args []string) (controller.Deps, string, error) {
	d, err := app.deps()
	if err != nil {
		return d, "", err
	}
	campaignID := strings.TrimSpace(args[0])
	taskID := strings.TrimSpace(args[1])
	if err := openCampaign(cmd, d, campaignID); err != nil {
		return d, "", err
	}
	if _, ok := d.Store.Task(taskID); !ok {
		return d, "", errNotFound("task", taskID)
	}
	return d, taskID, nil
}
