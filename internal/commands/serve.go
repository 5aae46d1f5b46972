package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/labfund/fundops/internal/api"
	"github.com/labfund/fundops/internal/buildinfo"
	"github.com/labfund/fundops/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(dir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Session autosaves outlive the signal so Close can still flush them.
			ws, err := openWorkspace(cmd.Context(), *dir, workspace.WithActor("api"))
			if err != nil {
				return err
			}
			defer ws.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = ws.Config.Server.Addr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewAPI(ws).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logrus.WithFields(logrus.Fields{"addr": addr, "version": buildinfo.String()}).Info("api listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serving api: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down api: %w", err)
			}
			logrus.Info("api stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr in fundops.yaml)")

	return cmd
}
