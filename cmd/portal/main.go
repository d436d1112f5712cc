package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igmoiiz/Project-Portal-AUMC/config"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/bootstrap"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
)

// app is what every command needs: config, the API client and the session.
type app struct {
	cfg      *config.Config
	client   *portalapi.Client
	creds    *bootstrap.Credentials
	sessions *auth.Manager
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.SetLevel(cfg.App.LogLevel)

	creds, err := bootstrap.OpenCredentials(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	client := portalapi.NewClient(cfg.API.BaseURL, portalapi.Options{
		Timeout:           cfg.API.Timeout,
		UploadTimeout:     cfg.API.UploadTimeout,
		RequestsPerSecond: cfg.API.RequestsPerSec,
		Burst:             cfg.API.Burst,
	})

	return &app{
		cfg:      cfg,
		client:   client,
		creds:    creds,
		sessions: auth.NewManager(client, creds.Store),
	}, nil
}

func (a *app) Close() {
	if err := a.creds.Close(); err != nil {
		logging.NewLogger(context.Background()).LogError("close_credentials", err)
	}
}

// withApp wraps a command body with app setup, teardown and a request ID.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.EnsureRequestID(cmd.Context())
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, a, cmd, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Faculty project portal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newDepartmentsCmd(),
		newProjectsCmd(),
		newValidateURLCmd(),
		newUploadCmd(),
		newServeCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
