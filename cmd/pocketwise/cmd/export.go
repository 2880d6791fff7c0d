package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pocketwise/internal/export"
)

func newExportCmd(o *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transaction to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer o.close(s)

			data, err := s.Controller.Export(cmd.Context())
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transaction(s) to %s\n", len(s.Controller.All()), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", export.FileName, `destination file, or "-" for stdout`)
	return cmd
}
