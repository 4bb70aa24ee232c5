package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type exportPayload struct {
	Summary services.ExportSummary  `json:"summary" yaml:"summary"`
	Entries []services.ExportEntry `json:"entries" yaml:"entries"`
}

func newExportCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded days as CSV (text format) or JSON/YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			outputPath, _ := cmd.Flags().GetString("output")

			exportRange, err := services.ParseExportRange(from, to)
			if err != nil {
				return err
			}

			return env.run(cmd, func(ctx context.Context, a *app) error {
				entries, err := a.exports.BuildEntries(ctx, exportRange)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if outputPath != "" {
					file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					defer file.Close()
					w = file
				}

				payload := exportPayload{Summary: services.BuildExportSummary(entries), Entries: entries}
				return a.render(w, payload, func(w io.Writer) error {
					return writeExportCSV(w, entries)
				})
			})
		},
	}

	cmd.Flags().String("from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func writeExportCSV(w io.Writer, entries []services.ExportEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(services.ExportCSVHeaders); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write(entry.Columns()); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
