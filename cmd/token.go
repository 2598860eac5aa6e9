package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"planner/internal/config"
	"planner/internal/middleware"
)

func init() {
	var (
		subject string
		email   string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed development JWT",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Get().JWTSecret
			if secret == "" {
				secret = "change-me"
			}
			signed, err := middleware.IssueToken(secret, subject, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "test-user", "Token subject (user identity)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(cmd)
}
