package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

type jsonExport struct {
	ExportedAt string         `json:"exported_at"`
	Count      int            `json:"count"`
	Intervals  []jsonInterval `json:"intervals"`
}

type jsonInterval struct {
	State       string `json:"state"`
	Work        bool   `json:"work"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

// WriteJSON writes intervals as an indented JSON document stamped with
// exportedAt.
func WriteJSON(w io.Writer, intervals []Interval, exportedAt time.Time) error {
	export := jsonExport{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Count:      len(intervals),
		Intervals:  make([]jsonInterval, 0, len(intervals)),
	}

	for _, iv := range intervals {
		secs := int64(iv.Duration() / time.Second)
		export.Intervals = append(export.Intervals, jsonInterval{
			State:       string(iv.State),
			Work:        iv.Work,
			Start:       iv.Start.Format(time.RFC3339),
			End:         iv.End.Format(time.RFC3339),
			DurationSec: secs,
			Duration:    formatDuration(secs),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ToJSON writes intervals to a JSON file at path.
func ToJSON(intervals []Interval, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	if err := WriteJSON(f, intervals, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write json file: %w", err)
	}
	return f.Close()
}
