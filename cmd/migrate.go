package main

import (
	"github.com/spf13/cobra"

	"planner/pkg/logger"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := openStore(ctx); err != nil {
				return err
			}
			logger.Info(ctx, "Database schema is up to date")
			return nil
		},
	})
}
