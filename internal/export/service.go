// Package export renders the run history as an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/mtext/internal/history"
)

// RunsXLSX returns an XLSX workbook (as bytes) with one row per recorded run.
func RunsXLSX(runs []history.Run, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Runs"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Date",
		"Source File",
		"Provider",
		"Model",
		"Pages",
		"Status",
		"Output File",
		"Error",
		"Duration (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range runs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !r.CreatedAt.IsZero() {
			write(1, r.CreatedAt.Format("2006-01-02 15:04:05"))
		} else {
			write(1, "")
		}
		write(2, r.SourcePath)
		write(3, r.Provider)
		write(4, r.Model)
		write(5, r.Pages)
		write(6, r.Status)
		write(7, r.OutputPath)
		write(8, r.Error)
		write(9, r.DurationMS)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // date
	_ = f.SetColWidth(sheet, "B", "B", 48) // source
	_ = f.SetColWidth(sheet, "C", "D", 24) // provider, model
	_ = f.SetColWidth(sheet, "G", "G", 48) // output
	_ = f.SetColWidth(sheet, "H", "H", 40) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(runs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
