package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/igmoiiz/Project-Portal-AUMC/config"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/browse"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/validation"
)

func newDepartmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List the selectable departments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range domain.Departments() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func newProjectsCmd() *cobra.Command {
	var department, search string
	var asJSON, withLinks bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Browse project ideas for a department",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			d, err := domain.ParseDepartment(department)
			if err != nil {
				return err
			}

			c := browse.NewController(a.client)
			select {
			case <-c.SelectDepartment(ctx, d):
			case <-ctx.Done():
				return ctx.Err()
			}
			c.SetSearchQuery(search)

			state := c.Snapshot()
			if state.Error != "" {
				return errors.New(state.Error)
			}
			visible := state.VisibleProjects()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(visible)
			}

			fmt.Fprintln(out, summary(state.Department, len(visible), len(state.Projects)))
			if len(visible) == 0 {
				fmt.Fprintln(out, "No projects found")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSUPERVISOR\tAREA\tIDEA")
			for _, p := range visible {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Supervisor, p.InterestedArea, browse.CopyText(p))
				if withLinks {
					fmt.Fprintf(tw, "\t\t\t%s\n", validation.BuildURLWithBase(a.cfg.Validator.BaseURL, p.ProjectIdea, p.InterestedArea, p.Supervisor))
				}
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVarP(&department, "department", "d", "", "Department code, e.g. CS")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive filter over supervisor, area and idea")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&withLinks, "links", false, "Print the idea-validator link under each project")
	_ = cmd.MarkFlagRequired("department")
	return cmd
}

func newValidateURLCmd() *cobra.Command {
	var title, area, supervisor string
	cmd := &cobra.Command{
		Use:   "validate-url",
		Short: "Print the idea-validator link for a proposal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), validation.BuildURLWithBase(cfg.Validator.BaseURL, title, area, supervisor))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Project idea")
	cmd.Flags().StringVar(&area, "area", "", "Interested area")
	cmd.Flags().StringVar(&supervisor, "supervisor", "", "Supervisor")
	return cmd
}

// summary is the header above the table, e.g. "CS: showing 1 of 3 projects".
func summary(department domain.Department, shown, total int) string {
	noun := "projects"
	if total == 1 {
		noun = "project"
	}
	return fmt.Sprintf("%s: showing %d of %d %s", department, shown, total, noun)
}
