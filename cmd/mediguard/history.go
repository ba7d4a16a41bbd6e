package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediguard/internal/client"
)

func historyCmd(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Work with saved analyses (requires --token)",
	}

	var offset, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := newClient().ListHistory(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tBILLED\tSAVINGS\tISSUES\tCREATED")
			for i := range page.Items {
				r := &page.Items[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, deref(r.BillTitle), money(r.TotalBilled), money(r.PotentialSavings),
					count(r.IssuesFound), r.CreatedAt.Format("2006-01-02 15:04"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d\n", len(page.Items), page.Meta.Total)
			return nil
		},
	}
	list.Flags().IntVar(&offset, "offset", 0, "records to skip")
	list.Flags().IntVar(&limit, "limit", 20, "records per page (max 100)")

	cmd.AddCommand(list)
	return cmd
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func count(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
