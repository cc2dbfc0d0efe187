package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiwariParth/taskboard/internal/app"
	"github.com/tiwariParth/taskboard/internal/config"
	"github.com/tiwariParth/taskboard/internal/storage/file"
)

func newBackupCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the stored task list (file backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, cfg, err := o.openFileStore()
			if err != nil {
				return err
			}
			defer fs.Close()

			id, err := fs.Backup(cmd.Context(), cfg.Storage.Key)
			if err != nil {
				return storageError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup %s\n", id)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available backups, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, cfg, err := o.openFileStore()
			if err != nil {
				return err
			}
			defer fs.Close()

			ids, err := fs.Backups(cmd.Context(), cfg.Storage.Key)
			if err != nil {
				return storageError(err)
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})
	return cmd
}

func newRestoreCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Replace the stored task list with a backup (file backend)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, cfg, err := o.openFileStore()
			if err != nil {
				return err
			}
			defer fs.Close()

			if err := fs.Restore(cmd.Context(), cfg.Storage.Key, args[0]); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored backup %s\n", args[0])
			return nil
		},
	}
}

// openFileStore opens the configured backend and insists it is the file store
func (o *options) openFileStore() (*file.FileStore, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage.Backend != config.BackendFile {
		return nil, nil, userError(errors.New("backups need the file backend, have " + cfg.Storage.Backend))
	}
	backend, err := app.OpenStorage(cfg)
	if err != nil {
		return nil, nil, storageError(err)
	}
	fs, ok := backend.(*file.FileStore)
	if !ok {
		backend.Close()
		return nil, nil, storageError(fmt.Errorf("unexpected storage type %T", backend))
	}
	return fs, cfg, nil
}
