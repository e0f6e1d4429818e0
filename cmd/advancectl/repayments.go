package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Dan9191/advance-service/internal/models"
)

func repaymentsCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repayments",
		Short: "Collect loan installments",
	}
	cmd.AddCommand(repaymentsRunCmd(env))
	return cmd
}

func repaymentsRunCmd(env *environment) *cobra.Command {
	var (
		date  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect the installments due on a day",
		Long: `Collect the installments due on a day, today by default.

A day that another run already claimed is skipped unless --force is given.
Use --force to retry a day whose run failed part way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			day := env.svc.Today()
			if date != "" {
				var err error
				if day, err = models.ParseDay(date); err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}

			if !force {
				guard, closeGuard, err := env.guard(ctx)
				if err != nil {
					return err
				}
				defer closeGuard()
				claimed, err := guard.Acquire(ctx, day, uuid.NewString())
				if err != nil {
					return err
				}
				if !claimed {
					return fmt.Errorf("repayments for %s were already run, use --force to run again", models.FormatDay(day))
				}
			}

			summary, runErr := env.svc.RunRepaymentsOn(ctx, day)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return errors.Join(runErr, err)
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Business day to collect, YYYY-MM-DD")
	cmd.Flags().BoolVar(&force, "force", false, "Run even if the day was already claimed")
	return cmd
}
