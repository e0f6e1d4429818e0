package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func advanceCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "advance [account-id] [amount]",
		Short: "Grant a cash advance repaid in weekly installments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			railID, err := env.svc.GrantAdvance(cmd.Context(), id, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Advance of %s to account %d performed, rail transaction %d\n",
				amount.StringFixed(2), id, railID)
			return nil
		},
	}
}

func loanCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Inspect loans",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status [account-id]",
		Short: "Print the repayment progress of an account's loan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			status, err := env.svc.LoanStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	})
	return cmd
}
