package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// Correction is one applied history rewrite.
type Correction struct {
	ID         string
	Start      time.Time
	End        time.Time
	State      string
	BackupPath string
	AppliedAt  time.Time
}

// CorrectionFilter is used to filter corrections in queries.
type CorrectionFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
