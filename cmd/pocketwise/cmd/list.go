package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pocketwise/internal/app"
	"pocketwise/internal/chart"
	"pocketwise/internal/query"
)

func newListCmd(o *globalOptions) *cobra.Command {
	var (
		filters query.Config
		sort    string
		charts  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show transactions, totals and breakdowns",
		Long: `List the transactions matching the filters together with their totals
and, unless --charts=false, text charts of the category and monthly
breakdowns.

Example:
  pocketwise list --month 2024-01
  pocketwise list --category Food --search lunch --sort amountHigh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer o.close(s)

			filters.Sort = query.SortMode(sort)
			if _, err := s.Controller.SetFilters(ctx, filters); err != nil {
				return err
			}
			v := s.Controller.SearchNow(ctx, filters.Search)

			out := cmd.OutOrStdout()
			if err := printView(out, v); err != nil {
				return err
			}
			if !charts {
				return nil
			}
			txt := chart.NewText(out)
			fmt.Fprintln(out)
			if err := txt.Render(ctx, v.Pie); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return txt.Render(ctx, v.Bar)
		},
	}

	cmd.Flags().StringVar(&filters.Month, "month", query.All, "YYYY-MM bucket or all")
	cmd.Flags().StringVar(&filters.Category, "category", query.All, "category or all")
	cmd.Flags().StringVar(&filters.Search, "search", "", "text to look for in category, note, type or amount")
	cmd.Flags().StringVar(&sort, "sort", string(query.SortLatest), "latest, amountHigh or amountLow")
	cmd.Flags().BoolVar(&charts, "charts", true, "draw the breakdown charts")
	return cmd
}

func printView(out io.Writer, v app.View) error {
	if v.MonthLabel != "" {
		fmt.Fprintf(out, "%s\n\n", v.MonthLabel)
	}
	if v.Count == 0 {
		fmt.Fprintln(out, "No transactions")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tNOTE")
		for _, r := range v.Transactions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Type, r.Category, r.Display, r.Note)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "\n%d transaction(s)  income %s  expense %s  net %s\n",
		v.Count, v.Totals.IncomeText, v.Totals.ExpenseText, v.Totals.NetText)
	return nil
}
