package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
)

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as faculty and store the session",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("PORTAL_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			sess, err := a.sessions.Login(ctx, email, password)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidLoginInput) {
					return err
				}
				return errors.New(portalapi.UserMessage(err, "Login failed"))
			}

			department := sess.User.Department
			if department == "" {
				department = "General"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in (department: %s)\n", department)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Faculty email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (or PORTAL_PASSWORD, or prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if err := a.sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			sess, err := a.sessions.Current(ctx)
			if errors.Is(err, auth.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in (department: %s)\n", sess.User.Department)
			if len(sess.User.Profile) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\n", sess.User.Profile)
			}
			return nil
		}),
	}
}
