package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dan9191/advance-service/internal/integrations/rail"
	"github.com/Dan9191/advance-service/internal/models"
)

func transactionsCmd(env *environment) *cobra.Command {
	var accountID int64
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List every recorded transaction attempt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := env.svc.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tDIRECTION\tFROM\tTO\tAMOUNT\tRAIL ID\tSTATUS")
			for _, t := range txs {
				if accountID != 0 && t.SourceID != accountID && t.DestinationID != accountID {
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
					t.ID, models.FormatDay(t.Date), t.Direction, t.SourceID, t.DestinationID,
					t.Amount.StringFixed(2), railRef(t.RailID), statusText(t.Status))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&accountID, "account", 0, "Only show transactions touching this account")
	return cmd
}

func reportCmd(env *environment) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download the payment rail's settlement report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "xml" && format != "text" {
				return fmt.Errorf("unknown format %q, expected xml or text", format)
			}
			report, err := env.svc.DownloadReport(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "xml" {
				body, err := rail.EncodeReport(report)
				if err != nil {
					return err
				}
				_, err = out.Write(body)
				return err
			}

			ids := make([]int64, 0, len(report))
			for id := range report {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RAIL ID\tSTATUS")
			for _, id := range ids {
				fmt.Fprintf(w, "%d\t%s\n", id, report[id])
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: xml or text")
	return cmd
}

func railRef(id int64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprint(id)
}

func statusText(s models.Status) string {
	if s == models.StatusPending {
		return "pending"
	}
	return string(s)
}
