package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"planner/internal/models"
	"planner/internal/repository"
	"planner/internal/service"
)

func init() {
	var (
		subject  string
		projects int
		tasks    int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a user with sample projects, tasks and calendar entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			start := time.Now()
			n, err := seed(ctx, store, subject, projects, tasks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d items for %s in %v\n", n, subject, time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "test-user", "Subject of the seeded user")
	cmd.Flags().IntVar(&projects, "projects", 5, "Number of projects")
	cmd.Flags().IntVar(&tasks, "tasks", 20, "Tasks per project")
	rootCmd.AddCommand(cmd)
}

// seed goes through the services so the seeded data obeys the same ordering
// rules as live data. Every fourth task is scheduled over the coming week.
func seed(ctx context.Context, store *repository.Store, subject string, projects, tasks int) (int, error) {
	user, err := store.Repo().EnsureUser(ctx, subject, "")
	if err != nil {
		return 0, err
	}
	items := service.NewItems(store, nil)
	calendar := service.NewCalendar(store, nil)
	today := time.Now().UTC()

	created := 0
	for p := 1; p <= projects; p++ {
		pid, err := items.Create(ctx, user.ID, service.CreateInput{Text: fmt.Sprintf("Project %d", p), Type: models.ItemTypeProject})
		if err != nil {
			return created, err
		}
		created++
		for i := 1; i <= tasks; i++ {
			id, err := items.CreateChild(ctx, user.ID, pid, fmt.Sprintf("Task %d.%d", p, i), models.ItemTypeTask)
			if err != nil {
				return created, err
			}
			created++
			if i%4 == 0 {
				date := today.AddDate(0, 0, i%7).Format("2006-01-02")
				if _, err := calendar.AssignToDate(ctx, user.ID, id, date); err != nil {
					return created, err
				}
			}
		}
	}
	return created, nil
}
