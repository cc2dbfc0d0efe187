package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiwariParth/taskboard/internal/app"
	"github.com/tiwariParth/taskboard/internal/format"
	"github.com/tiwariParth/taskboard/internal/models"
)

const shellHelp = "Available commands: add, list [filter], toggle <task>, delete <task>, stats, help, exit"

func newShellCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work with the board interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			loc, err := cfg.Location()
			if err != nil {
				return configError(err)
			}
			sh := &shell{
				session: s,
				loc:     loc,
				in:      bufio.NewReader(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
			}
			return sh.run(cmd.Context())
		},
	}
}

// shell is a line-oriented session over one task store. Every change is
// written through immediately, so leaving with exit or EOF loses nothing.
type shell struct {
	session *app.Session
	loc     *time.Location
	in      *bufio.Reader
	out     io.Writer
}

func (sh *shell) run(ctx context.Context) error {
	fmt.Fprintln(sh.out, "Welcome to taskboard!")

	for {
		line, ok := sh.prompt("> ")
		if !ok {
			fmt.Fprintln(sh.out, "Goodbye!")
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		command, args := fields[0], fields[1:]

		switch command {
		case "add":
			sh.add(ctx)

		case "list", "ls":
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}
			f, err := models.ParseFilter(filter)
			if err != nil {
				fmt.Fprintln(sh.out, err)
				continue
			}
			format.Board(sh.out, sh.session.Board(f), sh.session.Tasks(), sh.loc)

		case "toggle", "done":
			if len(args) != 1 {
				fmt.Fprintln(sh.out, "Usage: toggle <task>")
				continue
			}
			t, err := toggle(ctx, sh.session, args[0])
			if err != nil {
				fmt.Fprintln(sh.out, err)
				continue
			}
			fmt.Fprintln(sh.out, toggleMessage(t))
			sh.reportSave()

		case "delete", "rm":
			if len(args) != 1 {
				fmt.Fprintln(sh.out, "Usage: delete <task>")
				continue
			}
			t, err := remove(ctx, sh.session, args[0])
			if err != nil {
				fmt.Fprintln(sh.out, err)
				continue
			}
			fmt.Fprintf(sh.out, "Deleted task: %s\n", format.Bold(t.Title))
			sh.reportSave()

		case "stats":
			format.StatsLine(sh.out, sh.session.Stats())

		case "help":
			fmt.Fprintln(sh.out, shellHelp)

		case "exit", "quit":
			fmt.Fprintln(sh.out, "Goodbye!")
			return nil

		default:
			fmt.Fprintln(sh.out, "Unknown command. "+shellHelp)
		}
	}
}

// add asks for each field in turn and reports every validation message at once
func (sh *shell) add(ctx context.Context) {
	title, ok := sh.prompt("Title: ")
	if !ok {
		return
	}
	description, ok := sh.prompt("Description: ")
	if !ok {
		return
	}
	priority, ok := sh.prompt("Priority (low/medium/high) [medium]: ")
	if !ok {
		return
	}

	t, errs := sh.session.AddTask(ctx, models.TaskInput{
		Title:       title,
		Description: description,
		Priority:    models.Priority(strings.ToLower(strings.TrimSpace(priority))),
	})
	if errs != nil {
		printFieldErrors(sh.out, errs)
		return
	}
	fmt.Fprintf(sh.out, "Added task: %s (ID: %s)\n", format.Bold(t.Title), format.ShortID(t.ID))
	sh.reportSave()
}

func (sh *shell) reportSave() {
	if err := sh.session.LastPersistError(); err != nil {
		fmt.Fprintf(sh.out, "Warning: change was not saved: %v\n", err)
	}
}

// prompt prints p and reads one line. It reports false once input is exhausted.
func (sh *shell) prompt(p string) (string, bool) {
	fmt.Fprint(sh.out, p)
	line, err := sh.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}
