package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/bootstrap"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/browse"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/scheduler"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/upload"
)

const serviceName = "project-portal"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge for a rendering front end",
		RunE: withApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			logger := logging.NewLogger(ctx)
			bootstrap.SetGinMode(a.cfg.App.Environment)

			browser := browse.NewController(a.client)
			uploads := upload.NewController(ctx, a.client, a.creds.Store, upload.Options{
				ProgressInterval: a.cfg.Upload.ProgressInterval,
				MessageTTL:       a.cfg.Upload.MessageTTL,
				OnSuccess:        func(msg string) { logger.LogInfo("upload", msg) },
				OnFailure:        func(msg string) { logger.LogWarn("upload", msg) },
			})
			defer uploads.Close()

			deps := bootstrap.RouterDeps{
				ServiceName:    serviceName,
				Version:        a.cfg.App.Version,
				APIBaseURL:     a.client.BaseURL(),
				ValidatorBase:  a.cfg.Validator.BaseURL,
				AllowedOrigins: a.cfg.Server.CORSAllowedOrigins,
				Sessions:       a.sessions,
				Browse:         browser,
				Upload:         uploads,
			}
			if a.creds.Redis != nil {
				deps.StorePinger = a.creds.Redis
			}
			router := bootstrap.BuildRouter(deps)

			if spec := a.cfg.Server.RefreshSchedule; spec != "" {
				sched := scheduler.NewScheduler(spec, browser)
				if err := sched.Start(); err != nil {
					return err
				}
				defer sched.Stop()
			}

			srv := &http.Server{
				Addr:              ":" + a.cfg.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.LogInfof("serve", "listening on %s api=%s", srv.Addr, a.client.BaseURL())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("listen: %w", err)
			case <-sigCtx.Done():
			}

			logger.LogInfo("serve", "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}),
	}
}
