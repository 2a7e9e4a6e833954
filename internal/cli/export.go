package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/export"
	"github.com/joseph-ayodele/mtext/internal/history"
)

func newExportCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var outPath, fromStr, toStr string

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Export the run history to an XLSX workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseDate(fromStr)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to, err := parseDate(toStr)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if to != nil {
				// make --to inclusive of the whole day
				end := to.Add(24*time.Hour - time.Nanosecond)
				to = &end
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Between(from, to)
			if err != nil {
				return err
			}

			data, err := export.RunsXLSX(runs, logger)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("%w: %q: %v", common.ErrWrite, outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d run(s) to %s\n", len(runs), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "runs.xlsx", "output workbook path")
	cmd.Flags().StringVar(&fromStr, "from", "", "only runs on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "only runs on or before this date (YYYY-MM-DD)")
	return cmd
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	t = t.UTC()
	return &t, nil
}
