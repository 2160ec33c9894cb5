package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"innoboard/boardtest"
)

func (a *app) download(name string, data []byte) error {
	path := filepath.Join(a.cfg.DownloadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and download report documents",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "tasks",
			Short: "Download the case-database report",
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := a.api.GenerateTaskReport(context.Background())
				if err != nil {
					return err
				}
				return a.download("task_report.docx", data)
			},
		},
		&cobra.Command{
			Use:   "meeting <id>",
			Short: "Download the meeting papers for one meeting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := a.api.GenerateMeetingReport(context.Background(), args[0])
				if err != nil {
					return err
				}
				return a.download(fmt.Sprintf("meeting_%s_report.docx", args[0]), data)
			},
		},
		&cobra.Command{
			Use:   "minutes <id>",
			Short: "Download the minutes document for one meeting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := a.api.GenerateMeetingMinutes(context.Background(), args[0])
				if err != nil {
					return err
				}
				return a.download(fmt.Sprintf("meeting_%s_minutes.docx", args[0]), data)
			},
		},
	)
	return cmd
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import submitted nettskjema forms as new case items",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := a.api.ImportNettskjema(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("imported %d tasks\n", count)
			a.dispatcher.Refresh()
			return a.settle()
		},
	}
}

func fixtureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fixture",
		Short: "Serve an in-memory backend for UI development",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := boardtest.New()
			a.logger.Infof("fixture backend listening on %s", a.cfg.FixtureAddr)
			return srv.Start(a.cfg.FixtureAddr)
		},
	}
}
