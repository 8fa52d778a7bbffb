package postgres

import (
	"database/sql"
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
)

func (s *Store) SavePreset(preset models.Preset) error {
	return s.queue.Do(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO presets (id, name, mood, created_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, mood = excluded.mood, created_at = excluded.created_at`,
			preset.ID, preset.Name, nullString(preset.Mood), preset.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save preset %s: %w", preset.ID, err)
		}

		if _, err := tx.Exec("DELETE FROM preset_activities WHERE preset_id = $1", preset.ID); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO preset_activities (
				preset_id, activity_id, title, start_time, end_time, category, color, points, description, sort_order
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, a := range preset.Activities {
			_, err = stmt.Exec(
				preset.ID, a.ID, a.Title, a.StartTime, a.EndTime,
				string(a.Category), nullString(a.Color), a.Points, nullString(a.Description), i,
			)
			if err != nil {
				return fmt.Errorf("failed to save activity %s: %w", a.ID, err)
			}
		}

		return tx.Commit()
	})
}

func (s *Store) LoadPresets() ([]models.Preset, error) {
	var presets []models.Preset
	err := s.queue.Do(func() error {
		rows, err := s.db.Query("SELECT id, name, mood, created_at FROM presets ORDER BY created_at DESC")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			preset, err := scanPreset(rows)
			if err != nil {
				return err
			}
			presets = append(presets, preset)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range presets {
			activities, err := s.loadActivities(presets[i].ID)
			if err != nil {
				return err
			}
			presets[i].Activities = activities
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return presets, nil
}

func (s *Store) GetPresetByID(id string) (*models.Preset, error) {
	var preset *models.Preset
	err := s.queue.Do(func() error {
		row := s.db.QueryRow("SELECT id, name, mood, created_at FROM presets WHERE id = $1", id)
		p, err := scanPreset(row)
		if err == sql.ErrNoRows {
			return fmt.Errorf("preset %s: %w", id, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		p.Activities, err = s.loadActivities(p.ID)
		if err != nil {
			return err
		}
		preset = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preset, nil
}

func (s *Store) SearchPresets(term string) ([]models.Preset, error) {
	var presets []models.Preset
	err := s.queue.Do(func() error {
		pattern := "%" + term + "%"
		rows, err := s.db.Query(`
			SELECT DISTINCT p.id, p.name, p.mood, p.created_at
			FROM presets p
			LEFT JOIN preset_activities a ON a.preset_id = p.id
			WHERE p.name ILIKE $1 OR p.mood ILIKE $1 OR a.title ILIKE $1
			ORDER BY p.created_at DESC`, pattern)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			preset, err := scanPreset(rows)
			if err != nil {
				return err
			}
			presets = append(presets, preset)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range presets {
			activities, err := s.loadActivities(presets[i].ID)
			if err != nil {
				return err
			}
			presets[i].Activities = activities
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return presets, nil
}

func (s *Store) DeletePreset(id string) error {
	return s.queue.Do(func() error {
		_, err := s.db.Exec("DELETE FROM presets WHERE id = $1", id)
		return err
	})
}

func (s *Store) loadActivities(presetID string) ([]models.Activity, error) {
	rows, err := s.db.Query(`
		SELECT activity_id, title, start_time, end_time, category, color, points, description
		FROM preset_activities WHERE preset_id = $1 ORDER BY sort_order ASC`, presetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var category string
		var color, description sql.NullString
		if err := rows.Scan(&a.ID, &a.Title, &a.StartTime, &a.EndTime, &category, &color, &a.Points, &description); err != nil {
			logger.Warn("skipping corrupted activity row", "preset", presetID, "error", err)
			continue
		}
		a.Category = models.Category(category)
		a.Color = color.String
		a.Description = description.String
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPreset(row rowScanner) (models.Preset, error) {
	var p models.Preset
	var mood sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &mood, &p.CreatedAt); err != nil {
		return models.Preset{}, err
	}
	p.Mood = mood.String
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
