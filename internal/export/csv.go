package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteCSV writes intervals as CSV with a header row.
func WriteCSV(w io.Writer, intervals []Interval) error {
	cw := csv.NewWriter(w)

	// Header
	if err := cw.Write([]string{"State", "Work", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, iv := range intervals {
		secs := int64(iv.Duration() / time.Second)
		row := []string{
			string(iv.State),
			strconv.FormatBool(iv.Work),
			iv.Start.Format(time.RFC3339),
			iv.End.Format(time.RFC3339),
			strconv.FormatInt(secs, 10),
			formatDuration(secs),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToCSV writes intervals to a new CSV file at path.
func ToCSV(intervals []Interval, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, intervals); err != nil {
		f.Close()
		return fmt.Errorf("write csv file: %w", err)
	}
	return f.Close()
}
