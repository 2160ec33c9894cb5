package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"innoboard/domain"
)

// quiesceTimeout bounds how long a command waits for its dispatched
// intent to settle before exiting.
const quiesceTimeout = 2 * time.Minute

func (a *app) settle() error {
	ctx, cancel := context.WithTimeout(context.Background(), quiesceTimeout)
	defer cancel()
	return a.dispatcher.Quiesce(ctx)
}

func (a *app) printTasks() {
	for i, t := range a.dispatcher.Store().Tasks() {
		num := t.CaseNumber
		if num == "" {
			num = "-"
		}
		fmt.Printf("%2d. [%s] %s  (%s, %s", i+1, num, t.Title, t.Owner, t.Stage)
		if t.Status != "" {
			fmt.Printf(", %s", t.Status)
		}
		fmt.Printf(")  id=%s\n", t.ID)
		for _, att := range t.Attachments {
			fmt.Printf("      attachment: %s\n", att.Filename)
		}
	}
}

func tasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and edit case items",
	}
	cmd.AddCommand(
		tasksListCmd(a),
		tasksAddCmd(a),
		tasksEditCmd(a),
		tasksRmCmd(a),
		tasksStatusCmd(a),
		tasksNumberCmd(a),
		tasksAttachCmd(a),
		tasksReorderCmd(a),
	)
	return cmd
}

func tasksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and display the case database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.printTasks()
			return nil
		},
	}
}

func tasksAddCmd(a *app) *cobra.Command {
	var fields domain.TaskFields
	var stage string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new idea to the case database",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields.Stage = domain.Stage(stage)
			if err := a.dispatcher.Create(fields); err != nil {
				return err
			}
			return a.settle()
		},
	}
	cmd.Flags().StringVar(&fields.Title, "title", "", "idea name")
	cmd.Flags().StringVar(&fields.Owner, "owner", "", "idea owner")
	cmd.Flags().StringVar(&fields.Description, "description", "", "description of the idea")
	cmd.Flags().StringVar(&fields.RelevanceForBI, "relevance", "", "relevance for BI")
	cmd.Flags().StringVar(&fields.NeedForCourse, "need", "", "need for the course/idea")
	cmd.Flags().StringVar(&fields.TargetGroup, "target-group", "", "target group")
	cmd.Flags().StringVar(&fields.GrowthPotential, "growth", "", "growth potential")
	cmd.Flags().StringVar(&fields.FacultyResources, "faculty", "", "faculty resources")
	cmd.Flags().StringVar(&stage, "stage", string(domain.StageIdeaDescription), "lifecycle stage")
	return cmd
}

func tasksEditCmd(a *app) *cobra.Command {
	var (
		title, owner, description, relevance string
		need, target, growth, faculty, stage string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit fields of a case item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.TaskPatch{}
			set := func(flag string, dst **string, val *string) {
				if cmd.Flags().Changed(flag) {
					*dst = val
				}
			}
			set("title", &patch.Title, &title)
			set("owner", &patch.Owner, &owner)
			set("description", &patch.Description, &description)
			set("relevance", &patch.RelevanceForBI, &relevance)
			set("need", &patch.NeedForCourse, &need)
			set("target-group", &patch.TargetGroup, &target)
			set("growth", &patch.GrowthPotential, &growth)
			set("faculty", &patch.FacultyResources, &faculty)
			if cmd.Flags().Changed("stage") {
				s := domain.Stage(stage)
				patch.Stage = &s
			}
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.dispatcher.Update(args[0], patch)
			return a.settle()
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "idea name")
	cmd.Flags().StringVar(&owner, "owner", "", "idea owner")
	cmd.Flags().StringVar(&description, "description", "", "description of the idea")
	cmd.Flags().StringVar(&relevance, "relevance", "", "relevance for BI")
	cmd.Flags().StringVar(&need, "need", "", "need for the course/idea")
	cmd.Flags().StringVar(&target, "target-group", "", "target group")
	cmd.Flags().StringVar(&growth, "growth", "", "growth potential")
	cmd.Flags().StringVar(&faculty, "faculty", "", "faculty resources")
	cmd.Flags().StringVar(&stage, "stage", "", "lifecycle stage")
	return cmd
}

func tasksRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a case item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.dispatcher.Delete(args[0])
			return a.settle()
		},
	}
}

func tasksStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the completion status of a case item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.dispatcher.ChangeStatus(args[0], domain.Status(args[1]))
			return a.settle()
		},
	}
}

func tasksNumberCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "number <id> <case-number>",
		Short: "Set the display case number, e.g. 3/24",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.dispatcher.ChangeCaseNumber(args[0], args[1])
			return a.settle()
		},
	}
}

func tasksAttachCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <file>",
		Short: "Upload a file attachment for a case item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.dispatcher.Attach(args[0], filepath.Base(args[1]), data)
			return a.settle()
		},
	}
}

func tasksReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Apply a new ordering; unnamed items keep their relative order at the end",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.dispatcher.Refresh()
			if err := a.settle(); err != nil {
				return err
			}
			a.dispatcher.Reorder(args)
			if err := a.settle(); err != nil {
				return err
			}
			a.printTasks()
			return nil
		},
	}
}
