package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/upload"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.xlsx|file.csv>",
		Short: "Upload a spreadsheet of project ideas",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			uc := upload.NewController(ctx, a.client, a.creds.Store, upload.Options{
				ProgressInterval: a.cfg.Upload.ProgressInterval,
				MessageTTL:       a.cfg.Upload.MessageTTL,
			})
			defer uc.Close()

			errOut := cmd.ErrOrStderr()
			uc.Subscribe(func(s upload.Snapshot) {
				if s.State == upload.StateUploading {
					fmt.Fprintf(errOut, "\ruploading %s ... %3.0f%%", args[0], s.Progress)
				}
			})

			f, err := upload.FileFromPath(args[0])
			if err != nil {
				return err
			}
			if err := uc.SelectFile(f); err != nil {
				return errors.New(uc.Snapshot().Message)
			}

			fmt.Fprintf(errOut, "department: %s\n", uc.Snapshot().Department)
			err = uc.SubmitUpload(ctx)
			fmt.Fprintln(errOut)

			snap := uc.Snapshot()
			if err != nil {
				return errors.New(snap.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), snap.Message)
			return nil
		}),
	}
}
