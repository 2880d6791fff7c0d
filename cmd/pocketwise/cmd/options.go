package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pocketwise/internal/core"
)

func newOptionsCmd(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the months and categories available to filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer o.close(s)

			opts := s.Controller.Options()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Months:")
			if len(opts.Months) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, m := range opts.Months {
				fmt.Fprintf(out, "  %s  %s\n", m, core.MonthLabel(m))
			}
			fmt.Fprintf(out, "Categories:\n  %s\n", strings.Join(opts.Categories, ", "))
			return nil
		},
	}
}
