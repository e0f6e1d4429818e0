package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Dan9191/advance-service/internal/models"
)

func accountCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank accounts",
	}
	cmd.AddCommand(accountAddCmd(env))
	cmd.AddCommand(accountShowCmd(env))
	cmd.AddCommand(accountListCmd(env))
	cmd.AddCommand(accountDeleteCmd(env))
	return cmd
}

func accountAddCmd(env *environment) *cobra.Command {
	var balance string
	cmd := &cobra.Command{
		Use:   "add [id]",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q", balance)
			}
			if err := env.svc.AddAccount(cmd.Context(), &models.Account{ID: id, Balance: amount}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d added\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&balance, "balance", "0", "Opening balance")
	return cmd
}

func accountShowCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print an account with its repayment schedule as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			account, err := env.svc.GetAccount(cmd.Context(), id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(account)
		},
	}
}

func accountListCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := env.svc.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}
			today := env.svc.Today()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBALANCE\tLOAN\tOUTSTANDING")
			for _, a := range accounts {
				state, outstanding := "-", "-"
				if a.Loan != nil {
					state = string(a.Loan.State(today))
					outstanding = a.Loan.Outstanding().StringFixed(2)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Balance.StringFixed(2), state, outstanding)
			}
			return w.Flush()
		},
	}
}

func accountDeleteCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Remove an account and its loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			if err := env.svc.DeleteAccount(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %d deleted\n", id)
			return nil
		},
	}
}
