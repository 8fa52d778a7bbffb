package postgres

import (
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

func (s *Store) SaveCompletedTasks(tasks []models.CompletedTask) error {
	return s.queue.Do(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM completed_tasks"); err != nil {
			return err
		}

		stmt, err := tx.Prepare("INSERT INTO completed_tasks (id, activity_id, date, points) VALUES ($1, $2, $3, $4)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tasks {
			if _, err := stmt.Exec(t.ID, t.ActivityID, t.Date, t.Points); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func (s *Store) AddCompletedTask(task models.CompletedTask) error {
	return s.queue.Do(func() error {
		_, err := s.db.Exec(`
			INSERT INTO completed_tasks (id, activity_id, date, points)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (activity_id, date) DO UPDATE SET id = excluded.id, points = excluded.points`,
			task.ID, task.ActivityID, task.Date, task.Points)
		return err
	})
}

func (s *Store) RemoveCompletedTask(activityID, date string) error {
	return s.queue.Do(func() error {
		_, err := s.db.Exec("DELETE FROM completed_tasks WHERE activity_id = $1 AND date = $2", activityID, date)
		return err
	})
}

func (s *Store) LoadCompletedTasks() ([]models.CompletedTask, error) {
	var tasks []models.CompletedTask
	err := s.queue.Do(func() error {
		rows, err := s.db.Query("SELECT id, activity_id, date, points FROM completed_tasks ORDER BY date ASC")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t models.CompletedTask
			if err := rows.Scan(&t.ID, &t.ActivityID, &t.Date, &t.Points); err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
