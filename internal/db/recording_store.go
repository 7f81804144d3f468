package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordingNotFound is returned when no stored recording matches the id.
var ErrRecordingNotFound = errors.New("recording not found")

// RecordingRecord is a captured sensor stream stored in upload CSV form, so
// it can be loaded into a session later exactly like a file upload.
type RecordingRecord struct {
	RecordingID string    `json:"recording_id"`
	Name        string    `json:"name"`
	SampleRate  float64   `json:"sample_rate"`
	SampleCount int64     `json:"sample_count"`
	CSV         string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveRecording stores a captured stream and returns its assigned id.
func (db *DB) SaveRecording(name string, sampleRate float64, sampleCount int64, csv string) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO recordings (recording_id, name, sample_rate, sample_count, csv) VALUES (?, ?, ?, ?, ?)",
		id, name, sampleRate, sampleCount, csv,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// LoadRecording fetches a stored recording including its CSV body.
func (db *DB) LoadRecording(id string) (*RecordingRecord, error) {
	rec := &RecordingRecord{}
	err := db.QueryRow(
		"SELECT recording_id, name, sample_rate, sample_count, csv, created_at FROM recordings WHERE recording_id = ?",
		id,
	).Scan(&rec.RecordingID, &rec.Name, &rec.SampleRate, &rec.SampleCount, &rec.CSV, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecordings returns stored recordings without their CSV bodies, newest
// first.
func (db *DB) ListRecordings() ([]RecordingRecord, error) {
	rows, err := db.Query(
		"SELECT recording_id, name, sample_rate, sample_count, created_at FROM recordings ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []RecordingRecord
	for rows.Next() {
		var rec RecordingRecord
		if err := rows.Scan(&rec.RecordingID, &rec.Name, &rec.SampleRate, &rec.SampleCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recordings, nil
}

// DeleteRecording removes a stored recording.
func (db *DB) DeleteRecording(id string) error {
	res, err := db.Exec("DELETE FROM recordings WHERE recording_id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRecordingNotFound
	}
	return nil
}
