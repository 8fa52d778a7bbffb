package postgres

import (
	"database/sql"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

func (s *Store) UpdateTotalPoints(total int) error {
	return s.queue.Do(func() error {
		_, err := s.db.Exec(
			"UPDATE points_tracking SET total_points = $1, updated_at = $2 WHERE id = 1",
			total, time.Now().Format(time.RFC3339))
		return err
	})
}

func (s *Store) UpdateDailyPoints(daily int) error {
	return s.queue.Do(func() error {
		_, err := s.db.Exec(
			"UPDATE points_tracking SET daily_points = $1, updated_at = $2 WHERE id = 1",
			daily, time.Now().Format(time.RFC3339))
		return err
	})
}

func (s *Store) UpdateLastActivityDate(date string) error {
	return s.queue.Do(func() error {
		_, err := s.db.Exec(
			"UPDATE points_tracking SET last_activity_date = $1, updated_at = $2 WHERE id = 1",
			nullString(date), time.Now().Format(time.RFC3339))
		return err
	})
}

func (s *Store) LoadPoints() (models.PointsTracking, error) {
	var points models.PointsTracking
	err := s.queue.Do(func() error {
		var lastDate sql.NullString
		row := s.db.QueryRow("SELECT total_points, daily_points, last_activity_date, updated_at FROM points_tracking WHERE id = 1")
		if err := row.Scan(&points.TotalPoints, &points.DailyPoints, &lastDate, &points.UpdatedAt); err != nil {
			return err
		}
		if lastDate.Valid {
			points.LastActivityDate = &lastDate.String
		}
		return nil
	})
	if err != nil {
		return models.PointsTracking{}, err
	}
	return points, nil
}
