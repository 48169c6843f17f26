package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// csvHeader is the column layout of persisted tables. It matches the remote
// metadata so a reconciled CSV can itself be re-loaded.
var csvHeader = []string{colID, colYouTubeID, colStartTime, colCaption}

// WriteCSV persists a reconciled table at path with a header row and no index
// column. The file is truncated if it already exists: the persisted CSVs are
// the authoritative record of the latest reconciliation.
func WriteCSV(path string, t Table) error {
	f, err := os.Create(path) // #nosec G304 -- path derives from the user-chosen data root
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	writeErr := func() error {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
		for _, row := range t.Rows {
			record := []string{
				row.ID,
				row.YouTubeID,
				strconv.FormatFloat(row.StartTime, 'f', -1, 64),
				row.Caption,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}()

	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("writing %s: %w", path, closeErr)
	}
	return nil
}
