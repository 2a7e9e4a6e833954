package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/history"
)

func newHistoryCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:          "history",
		Short:        "Show recent extraction runs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			for _, r := range runs {
				line := fmt.Sprintf("%s  %-9s %-9s %s (%d page(s), %dms)",
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Provider, r.Status, r.SourcePath, r.Pages, r.DurationMS)
				if r.Status == history.StatusFailed && r.Error != "" {
					line += "  error: " + common.Truncate(r.Error, 120)
				} else if r.OutputPath != "" {
					line += "  -> " + r.OutputPath
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			logger.Debug("history listed", "rows", len(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}
