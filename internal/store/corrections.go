package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/worktime/internal/statelog"
)

// timeLayout is fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *Store) CreateCorrection(start, end time.Time, state, backupPath string) (*Correction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("correction id: %w", err)
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.Exec(
		`INSERT INTO corrections (id, start_time, end_time, state, backup_path, applied_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), start.UTC().Format(timeLayout), end.UTC().Format(timeLayout), state, backupPath, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create correction: %w", err)
	}
	return s.GetCorrection(id.String())
}

// RecordCorrection stores a rewrite applied to the transition log.
func (s *Store) RecordCorrection(start, end time.Time, state statelog.State, backupPath string) error {
	_, err := s.CreateCorrection(start, end, string(state), backupPath)
	return err
}

func (s *Store) GetCorrection(id string) (*Correction, error) {
	var c Correction
	var start, end, applied string
	err := s.db.QueryRow(
		`SELECT id, start_time, end_time, state, backup_path, applied_at FROM corrections WHERE id = ?`, id,
	).Scan(&c.ID, &start, &end, &c.State, &c.BackupPath, &applied)
	if err != nil {
		return nil, fmt.Errorf("get correction %s: %w", id, err)
	}
	c.Start, _ = time.Parse(timeLayout, start)
	c.End, _ = time.Parse(timeLayout, end)
	c.AppliedAt, _ = time.Parse(timeLayout, applied)
	return &c, nil
}

// ListCorrections returns corrections newest first. From and To filter on
// the corrected range's start.
func (s *Store) ListCorrections(f CorrectionFilter) ([]Correction, error) {
	query := `SELECT id, start_time, end_time, state, backup_path, applied_at FROM corrections WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(timeLayout))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(timeLayout))
	}
	query += ` ORDER BY applied_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var c Correction
		var start, end, applied string
		if err := rows.Scan(&c.ID, &start, &end, &c.State, &c.BackupPath, &applied); err != nil {
			return nil, err
		}
		c.Start, _ = time.Parse(timeLayout, start)
		c.End, _ = time.Parse(timeLayout, end)
		c.AppliedAt, _ = time.Parse(timeLayout, applied)
		out = append(out, c)
	}
	return out, rows.Err()
}
