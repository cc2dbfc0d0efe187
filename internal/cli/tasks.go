package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tiwariParth/taskboard/internal/app"
	"github.com/tiwariParth/taskboard/internal/format"
	"github.com/tiwariParth/taskboard/internal/models"
	"github.com/tiwariParth/taskboard/internal/task"
	"github.com/tiwariParth/taskboard/internal/view"
)

func newAddCmd(o *options) *cobra.Command {
	var in models.TaskInput
	var priority string

	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a task",
		Example: `  taskboard add "Buy milk" -d "2%" -p high
  taskboard add --title "Write report" --description Q3 --priority low`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Title == "" && len(args) > 0 {
				in.Title = strings.Join(args, " ")
			}
			in.Priority = models.Priority(strings.ToLower(strings.TrimSpace(priority)))

			s, _, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			t, errs := s.AddTask(cmd.Context(), in)
			if errs != nil {
				return errs
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task: %s (ID: %s)\n", format.Bold(t.Title), format.ShortID(t.ID))
			return checkSaved(s)
		},
	}

	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority: low, medium, or high (default medium)")
	return cmd
}

func newListCmd(o *options) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseFilter(filter)
			if err != nil {
				return userError(err)
			}

			s, cfg, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			loc, err := cfg.Location()
			if err != nil {
				return configError(err)
			}
			format.Board(cmd.OutOrStdout(), s.Board(f), s.Tasks(), loc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Which tasks to show: all, active, or completed")
	return cmd
}

func newToggleCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <task>",
		Aliases: []string{"done"},
		Short:   "Flip a task between active and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := toggle(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), toggleMessage(t))
			return checkSaved(s)
		},
	}
}

func newRemoveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := remove(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task: %s\n", format.Bold(t.Title))
			return checkSaved(s)
		},
	}
}

func newEditCmd(o *options) *cobra.Command {
	var (
		title, description, priority string
		completed                    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u models.Update
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("priority") {
				p := models.Priority(strings.ToLower(strings.TrimSpace(priority)))
				u.Priority = &p
			}
			if flags.Changed("completed") {
				u.Completed = &completed
			}
			if u.IsEmpty() {
				return userError(errors.New("nothing to change: pass at least one of --title, --description, --priority or --completed"))
			}

			s, _, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.Resolve(args[0])
			if err != nil {
				return userError(err)
			}
			t, err := s.Edit(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task: %s\n", format.Bold(t.Title))
			return checkSaved(s)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority: low, medium, or high")
	cmd.Flags().BoolVar(&completed, "completed", false, "Set completion state")
	return cmd
}

func newStatsCmd(o *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s.Stats())
			}
			format.StatsLine(cmd.OutOrStdout(), s.Stats())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the counters as JSON")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var (
		exportFormat string
		filter       string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks as JSON, YAML, or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseFilter(filter)
			if err != nil {
				return userError(err)
			}
			if !task.SupportsFormat(exportFormat) {
				return userError(fmt.Errorf("unsupported format: %s", exportFormat))
			}

			s, _, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			tasks := view.Filter(s.Tasks(), f)

			if output == "" || output == "-" {
				if err := task.Export(cmd.OutOrStdout(), tasks, exportFormat); err != nil {
					return userError(err)
				}
				return nil
			}

			fh, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := task.Export(fh, tasks, exportFormat); err != nil {
				fh.Close()
				return userError(err)
			}
			if err := fh.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: "+strings.Join(task.ExportFormats, ", "))
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Which tasks to export: all, active, or completed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

// toggle resolves ref and flips the task it names
func toggle(ctx context.Context, s *app.Session, ref string) (models.Task, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return models.Task{}, userError(err)
	}
	t, err := s.Toggle(ctx, id)
	if err != nil {
		return models.Task{}, userError(err)
	}
	return t, nil
}

// remove resolves ref and deletes the task it names, returning the removed task
func remove(ctx context.Context, s *app.Session, ref string) (models.Task, error) {
	id, err := s.Resolve(ref)
	if err != nil {
		return models.Task{}, userError(err)
	}
	t, _ := s.Store().Get(id)
	if err := s.Delete(ctx, id); err != nil {
		return models.Task{}, userError(err)
	}
	return t, nil
}

func toggleMessage(t models.Task) string {
	if t.Completed {
		return fmt.Sprintf("Marked task as completed: %s", format.Bold(t.Title))
	}
	return fmt.Sprintf("Marked task as active: %s", format.Bold(t.Title))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
