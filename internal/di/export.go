package di

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/randhum/timeclock/internal/domain"
)

// writeRawEntriesCSV writes the full active time_entries table to path,
// the same ';'-delimited format the HTTP export endpoint streams (spec
// §6), so the daily export job and the on-demand download agree byte
// for byte.
func writeRawEntriesCSV(path string, entries []domain.RawEntryExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(domain.RawEntryExportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write(e.CSVRow()); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
