package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// SnapshotStore keeps whole-table checkpoints in SQLite under a checkpoint name.
//
// It satisfies the same sink contract as the CSV checkpoint: each save replaces the stored table.
type SnapshotStore struct {
	db   *sql.DB
	name string
}

// NewSnapshotStore creates a store for the checkpoint called name.
func NewSnapshotStore(db *sql.DB, name string) *SnapshotStore {
	return &SnapshotStore{db: db, name: name}
}

// Name identifies the checkpoint in logs and run history.
func (s *SnapshotStore) Name() string {
	return s.name
}

func (s *SnapshotStore) SaveObservations(ctx context.Context, rows []models.ChartObservation) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chart_observations WHERE checkpoint = ?", s.name); err != nil {
			return fmt.Errorf("failed to clear observations: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chart_observations
				(checkpoint, position, chart_date, title, artist, rank, peak_position, previous_rank, weeks_on_chart)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range rows {
			var prev sql.NullInt64
			if r.PreviousRank != nil {
				prev = sql.NullInt64{Int64: int64(*r.PreviousRank), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, s.name, i, shared.FormatDate(r.Date), r.Title, r.Artist,
				r.Rank, r.PeakPosition, prev, r.WeeksOnChart); err != nil {
				return fmt.Errorf("failed to insert observation %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCheckpoint, err)
	}
	return nil
}

// LoadObservations returns the stored table in insertion order. An unknown checkpoint is an empty table.
func (s *SnapshotStore) LoadObservations(ctx context.Context) ([]models.ChartObservation, error) {
	query := `
		SELECT chart_date, title, artist, rank, peak_position, previous_rank, weeks_on_chart
		FROM chart_observations
		WHERE checkpoint = ?
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query observations: %v", shared.ErrCheckpoint, err)
	}
	defer rows.Close()

	var observations []models.ChartObservation
	for rows.Next() {
		var (
			obs  models.ChartObservation
			date string
			prev sql.NullInt64
		)
		if err := rows.Scan(&date, &obs.Title, &obs.Artist, &obs.Rank, &obs.PeakPosition, &prev, &obs.WeeksOnChart); err != nil {
			return nil, fmt.Errorf("%w: failed to scan observation: %v", shared.ErrCheckpoint, err)
		}

		if obs.Date, err = shared.ParseDate(date); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrCheckpoint, err)
		}
		if prev.Valid {
			p := int(prev.Int64)
			obs.PreviousRank = &p
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrCheckpoint, err)
	}
	return observations, nil
}

func (s *SnapshotStore) SaveTracks(ctx context.Context, rows []models.TrackRecord) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM track_records WHERE checkpoint = ?", s.name); err != nil {
			return fmt.Errorf("failed to clear track records: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO track_records
				(checkpoint, position, title, artist, peak_rank, weeks, peak_date, track_id, name, album,
				 popularity, collaboration, release_date, features)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range rows {
			var features sql.NullString
			if r.Features != nil {
				data, err := json.Marshal(r.Features)
				if err != nil {
					return fmt.Errorf("failed to encode features for row %d: %w", i, err)
				}
				features = sql.NullString{String: string(data), Valid: true}
			}

			if _, err := stmt.ExecContext(ctx, s.name, i, r.Title, r.Artist, r.PeakRank, r.Weeks,
				shared.FormatDate(r.PeakDate), r.ID, r.Name, r.Album, r.Popularity, r.Collaboration,
				r.ReleaseDate, features); err != nil {
				return fmt.Errorf("failed to insert track record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCheckpoint, err)
	}
	return nil
}

// LoadTracks returns the stored table in insertion order. An unknown checkpoint is an empty table.
func (s *SnapshotStore) LoadTracks(ctx context.Context) ([]models.TrackRecord, error) {
	query := `
		SELECT title, artist, peak_rank, weeks, peak_date, track_id, name, album,
		       popularity, collaboration, release_date, features
		FROM track_records
		WHERE checkpoint = ?
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query track records: %v", shared.ErrCheckpoint, err)
	}
	defer rows.Close()

	var records []models.TrackRecord
	for rows.Next() {
		var (
			r        models.TrackRecord
			peakDate string
			features sql.NullString
		)
		if err := rows.Scan(&r.Title, &r.Artist, &r.PeakRank, &r.Weeks, &peakDate, &r.ID, &r.Name, &r.Album,
			&r.Popularity, &r.Collaboration, &r.ReleaseDate, &features); err != nil {
			return nil, fmt.Errorf("%w: failed to scan track record: %v", shared.ErrCheckpoint, err)
		}

		if peakDate != "" {
			if r.PeakDate, err = shared.ParseDate(peakDate); err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrCheckpoint, err)
			}
		}
		if features.Valid {
			r.Features = &models.AudioFeatures{}
			if err := json.Unmarshal([]byte(features.String), r.Features); err != nil {
				return nil, fmt.Errorf("%w: failed to decode features: %v", shared.ErrCheckpoint, err)
			}
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrCheckpoint, err)
	}
	return records, nil
}
