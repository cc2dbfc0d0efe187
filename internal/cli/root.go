package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tiwariParth/taskboard/internal/app"
	"github.com/tiwariParth/taskboard/internal/config"
	"github.com/tiwariParth/taskboard/internal/exitcode"
	"github.com/tiwariParth/taskboard/internal/format"
	"github.com/tiwariParth/taskboard/internal/models"
	"github.com/tiwariParth/taskboard/internal/task"
)

// options holds the global flags and output streams shared by every command
type options struct {
	configPath string
	backend    string
	dataPath   string
	verbose    bool

	logger *log.Logger
}

// Execute runs the CLI with the process arguments and returns the exit code
func Execute(version string) int {
	return run(context.Background(), version, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, version string, args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd(version, errOut)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}

	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		fmt.Fprintln(errOut, "Error: invalid task")
		printFieldErrors(errOut, fieldErrs)
	} else {
		fmt.Fprintln(errOut, "Error:", err)
	}
	return codeFor(err)
}

func newRootCmd(version string, errOut io.Writer) *cobra.Command {
	o := &options{logger: log.New(errOut, "", 0)}

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "taskboard - a small persistent task board",
		Long: `taskboard keeps a list of tasks with a title, description, priority and
completion state. Every change is written through to the configured storage.

Tasks can be referred to by id, id prefix, or their number in "taskboard list".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Config file (default "+config.DefaultConfigPath()+")")
	root.PersistentFlags().StringVar(&o.backend, "backend", "", "Storage backend: file, sqlite, or memory")
	root.PersistentFlags().StringVar(&o.dataPath, "data", "", "Storage directory (file) or database path (sqlite)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newAddCmd(o),
		newListCmd(o),
		newToggleCmd(o),
		newRemoveCmd(o),
		newEditCmd(o),
		newStatsCmd(o),
		newExportCmd(o),
		newServeCmd(o),
		newShellCmd(o),
		newBackupCmd(o),
		newRestoreCmd(o),
		newConfigCmd(o),
		newVersionCmd(version),
	)
	return root
}

// loadConfig reads the config file and applies the global flag overrides
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadRaw(o.configPath)
	if err != nil {
		return nil, configError(err)
	}
	if o.backend != "" {
		cfg.Storage.Backend = o.backend
	}
	if o.dataPath != "" {
		cfg.Storage.Path = o.dataPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}

	if !cfg.Display.Color {
		format.SetEnabled(false)
	}
	if o.verbose {
		o.logger.Printf("using %s storage at %q (key %q)", cfg.Storage.Backend, cfg.StoragePath(), cfg.Storage.Key)
	}
	return cfg, nil
}

// openSession loads the configuration and the task list it points at.
// Callers must Close the returned session.
func (o *options) openSession(ctx context.Context) (*app.Session, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := app.New(ctx, cfg, task.WithWarnFunc(o.warn))
	if err != nil {
		return nil, nil, storageError(err)
	}
	return s, cfg, nil
}

func (o *options) warn(err error) {
	o.logger.Printf("warning: %v", err)
}

func printFieldErrors(w io.Writer, errs models.FieldErrors) {
	for _, field := range []string{"title", "description", "priority"} {
		if msg, ok := errs[field]; ok {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}
