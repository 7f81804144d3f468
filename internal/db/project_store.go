package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when no saved project matches the media key.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRecord is the persisted state of a review session, keyed by the
// media file's name and size so reopening the same video restores its sync.
type ProjectRecord struct {
	ProjectID     string             `json:"project_id"`
	MediaName     string             `json:"media_name"`
	MediaSize     int64              `json:"media_size"`
	MediaDuration float64            `json:"media_duration"`
	SampleRate    float64            `json:"sample_rate"`
	SyncOffset    *float64           `json:"sync_offset,omitempty"`
	VideoMark     *float64           `json:"video_mark,omitempty"`
	DataMark      *float64           `json:"data_mark,omitempty"`
	Notes         string             `json:"notes"`
	Annotations   []AnnotationRecord `json:"annotations"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// AnnotationRecord is one labelled moment on the data timeline.
type AnnotationRecord struct {
	Time     float64 `json:"time"`
	Label    string  `json:"label"`
	Category string  `json:"category,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// SaveProject upserts the project for its media key and replaces its
// annotations wholesale. A new ProjectID is assigned on first save.
func (db *DB) SaveProject(rec *ProjectRecord) error {
	if rec.MediaName == "" {
		return fmt.Errorf("project media name is required")
	}
	if rec.ProjectID == "" {
		rec.ProjectID = uuid.NewString()
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO projects (
			project_id, media_name, media_size, media_duration, sample_rate,
			sync_offset, video_mark, data_mark, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (media_name, media_size) DO UPDATE SET
			media_duration = excluded.media_duration,
			sample_rate    = excluded.sample_rate,
			sync_offset    = excluded.sync_offset,
			video_mark     = excluded.video_mark,
			data_mark      = excluded.data_mark,
			notes          = excluded.notes,
			updated_at     = CURRENT_TIMESTAMP`,
		rec.ProjectID, rec.MediaName, rec.MediaSize, rec.MediaDuration, rec.SampleRate,
		rec.SyncOffset, rec.VideoMark, rec.DataMark, rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	// The upsert keeps the original project_id on conflict; read it back so
	// annotations land on the right row.
	var id string
	err = tx.QueryRow(
		"SELECT project_id FROM projects WHERE media_name = ? AND media_size = ?",
		rec.MediaName, rec.MediaSize,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to resolve project id: %w", err)
	}
	rec.ProjectID = id

	if _, err := tx.Exec("DELETE FROM annotations WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear annotations: %w", err)
	}
	for _, a := range rec.Annotations {
		_, err := tx.Exec(
			"INSERT INTO annotations (project_id, at_time, label, category, notes) VALUES (?, ?, ?, ?, ?)",
			id, a.Time, a.Label, a.Category, a.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert annotation: %w", err)
		}
	}

	return tx.Commit()
}

// LoadProject fetches the project for a media key, or ErrProjectNotFound.
func (db *DB) LoadProject(mediaName string, mediaSize int64) (*ProjectRecord, error) {
	rec := &ProjectRecord{}
	var syncOffset, videoMark, dataMark sql.NullFloat64
	err := db.QueryRow(
		`SELECT project_id, media_name, media_size, media_duration, sample_rate,
			sync_offset, video_mark, data_mark, notes, created_at, updated_at
		FROM projects WHERE media_name = ? AND media_size = ?`,
		mediaName, mediaSize,
	).Scan(
		&rec.ProjectID, &rec.MediaName, &rec.MediaSize, &rec.MediaDuration, &rec.SampleRate,
		&syncOffset, &videoMark, &dataMark, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if syncOffset.Valid {
		rec.SyncOffset = &syncOffset.Float64
	}
	if videoMark.Valid {
		rec.VideoMark = &videoMark.Float64
	}
	if dataMark.Valid {
		rec.DataMark = &dataMark.Float64
	}

	rec.Annotations, err = db.projectAnnotations(rec.ProjectID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (db *DB) projectAnnotations(projectID string) ([]AnnotationRecord, error) {
	rows, err := db.Query(
		"SELECT at_time, label, category, notes FROM annotations WHERE project_id = ? ORDER BY at_time, annotation_id",
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var annotations []AnnotationRecord
	for rows.Next() {
		var a AnnotationRecord
		if err := rows.Scan(&a.Time, &a.Label, &a.Category, &a.Notes); err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return annotations, nil
}

// ProjectSummary is a row in the saved-project listing.
type ProjectSummary struct {
	ProjectID string    `json:"project_id"`
	MediaName string    `json:"media_name"`
	MediaSize int64     `json:"media_size"`
	HasSync   bool      `json:"has_sync"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListProjects returns all saved projects, most recently updated first.
func (db *DB) ListProjects() ([]ProjectSummary, error) {
	rows, err := db.Query(
		"SELECT project_id, media_name, media_size, sync_offset IS NOT NULL, updated_at FROM projects ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []ProjectSummary
	for rows.Next() {
		var p ProjectSummary
		if err := rows.Scan(&p.ProjectID, &p.MediaName, &p.MediaSize, &p.HasSync, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// DeleteProject removes a project and its annotations.
func (db *DB) DeleteProject(projectID string) error {
	res, err := db.Exec("DELETE FROM projects WHERE project_id = ?", projectID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProjectNotFound
	}
	return nil
}
