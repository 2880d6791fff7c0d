package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pocketwise/internal/app"
	"pocketwise/internal/core"
)

func newRemoveCmd(o *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a transaction after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer o.close(s)

			confirm := app.AlwaysConfirm
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), core.NewFormatter(o.cfg.CurrencySymbol))
			}

			id := args[0]
			if _, ok := s.Controller.Lookup(id); !ok {
				return fmt.Errorf("transaction %s not found", id)
			}
			removed, err := s.Controller.Delete(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Kept", id)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// promptConfirmer asks on out and reads a y/N answer from in.
func promptConfirmer(in io.Reader, out io.Writer, f core.Formatter) app.Confirmer {
	return app.ConfirmFunc(func(_ context.Context, t core.Transaction) (bool, error) {
		fmt.Fprintf(out, "Delete %s %s (%s) on %s? [y/N] ", t.Type, f.Format(t.Amount), t.Category, t.Date)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
