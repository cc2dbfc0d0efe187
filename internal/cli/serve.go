package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tiwariParth/taskboard/internal/web"
)

func newServeCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over a local HTTP API",
		Long: `Start the HTTP API on a loopback address. The server shares one task store
across requests and writes every change through to storage.

Routes:
  GET    /api/tasks?filter=all|active|completed
  POST   /api/tasks
  GET    /api/tasks/:id
  PATCH  /api/tasks/:id
  POST   /api/tasks/:id/toggle
  DELETE /api/tasks/:id
  GET    /api/stats
  GET    /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := o.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if !o.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d tasks on http://%s\n", len(s.Tasks()), addr)
			if err := web.NewServer(s).ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:3000)")
	return cmd
}
