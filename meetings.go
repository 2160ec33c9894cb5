package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"innoboard/domain"
)

func meetingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Schedule meetings and manage their agendas",
	}
	cmd.AddCommand(
		meetingsListCmd(a),
		meetingsAddCmd(a),
		meetingsRmCmd(a),
		meetingsAttachCmd(a),
		meetingsDetachCmd(a),
		meetingsMinutesCmd(a),
	)
	return cmd
}

func meetingsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and display scheduled meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.meetings.Refresh(context.Background()); err != nil {
				return err
			}
			for _, m := range a.meetings.All() {
				fmt.Printf("%s - %s (%s)  id=%s\n", m.Number, m.Date.Format("2. January 2006"), m.Location, m.ID)
				for _, e := range m.Agenda {
					fmt.Printf("    task %s", e.TaskID)
					if e.Minutes != "" {
						fmt.Printf("  minutes: %s", e.Minutes)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}
}

func meetingsAddCmd(a *app) *cobra.Command {
	var number, date, location string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a new meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
			}
			return a.meetings.Add(context.Background(), domain.MeetingFields{
				Number:   number,
				Date:     day,
				Location: location,
			})
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "meeting number")
	cmd.Flags().StringVar(&date, "date", "", "meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&location, "location", domain.DefaultMeetingLocation, "meeting room")
	return cmd
}

func meetingsRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a meeting; its agenda tasks are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.meetings.Delete(context.Background(), args[0])
		},
	}
}

func meetingsAttachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <meeting-id> <task-id>",
		Short: "Put a case item on a meeting's agenda",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.meetings.AttachTask(context.Background(), args[0], args[1])
		},
	}
}

func meetingsDetachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <meeting-id> <task-id>",
		Short: "Take a case item off a meeting's agenda",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.meetings.DetachTask(context.Background(), args[0], args[1])
		},
	}
}

func meetingsMinutesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "minutes <meeting-id> <task-id> <text>",
		Short: "Save the minutes for one agenda item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.meetings.SaveMinutes(context.Background(), args[0], args[1], args[2])
		},
	}
}
