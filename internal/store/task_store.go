package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/tasklite/internal/model"
)

// selectTasks tolerates NULLs in rows written by older releases, whose
// done and created_at columns were nullable.
const selectTasks = `
	SELECT id, title, COALESCE(done, 0) AS done, COALESCE(created_at, 0) AS created_at
	FROM todos`

// taskRow mirrors a todos row; done is stored as 0/1.
type taskRow struct {
	ID        int64  `db:"id"`
	Title     string `db:"title"`
	Done      int    `db:"done"`
	CreatedAt int64  `db:"created_at"`
}

func (r taskRow) toTask() model.Task {
	return model.Task{
		ID:        r.ID,
		Title:     r.Title,
		Done:      r.Done != 0,
		CreatedAt: r.CreatedAt,
	}
}

// ListAll returns every task, most recently created (highest id) first.
// An empty table yields an empty, non-nil slice.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	err := s.withConn(ctx, "listing tasks", func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, selectTasks+" ORDER BY id DESC")
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

// ListTitles returns the raw title of every task, in no particular order.
func (s *SQLiteStore) ListTitles(ctx context.Context) ([]string, error) {
	titles := []string{}
	err := s.withConn(ctx, "listing titles", func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &titles, "SELECT title FROM todos")
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// Get retrieves a single task by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Task, error) {
	var row taskRow
	err := s.withConn(ctx, fmt.Sprintf("getting task %d", id), func(conn *sqlx.Conn) error {
		err := conn.GetContext(ctx, &row, selectTasks+" WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	task := row.toTask()
	return &task, nil
}

// Count returns the number of stored tasks.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.withConn(ctx, "counting tasks", func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM todos")
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Insert creates a task stamped with the current time and returns its id.
func (s *SQLiteStore) Insert(ctx context.Context, title string, done bool) (int64, error) {
	return s.InsertAt(ctx, title, done, s.now())
}

// InsertAt creates a task with an explicit creation time. The importer uses
// it so that every row of one run shares a timestamp.
func (s *SQLiteStore) InsertAt(
	ctx context.Context,
	title string,
	done bool,
	createdAt time.Time,
) (int64, error) {
	title, err := validateTitle(title)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.withConn(ctx, "inserting task", func(conn *sqlx.Conn) error {
		result, err := conn.ExecContext(ctx,
			"INSERT INTO todos (title, done, created_at) VALUES (?, ?, ?)",
			title, boolToInt(done), createdAt.UnixMilli(),
		)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateTitle overwrites the title of an existing task. Other columns are
// left untouched.
func (s *SQLiteStore) UpdateTitle(ctx context.Context, id int64, title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}

	return s.withConn(ctx, fmt.Sprintf("updating task %d", id), func(conn *sqlx.Conn) error {
		result, err := conn.ExecContext(ctx,
			"UPDATE todos SET title = ? WHERE id = ?", title, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return &NotFoundError{ID: id}
		}
		return nil
	})
}

// ToggleDone flips the done flag of a task and returns the new value.
func (s *SQLiteStore) ToggleDone(ctx context.Context, id int64) (bool, error) {
	var done int
	err := s.withTx(ctx, fmt.Sprintf("toggling task %d", id), func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE todos SET done = CASE WHEN COALESCE(done, 0) = 0 THEN 1 ELSE 0 END WHERE id = ?",
			id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return &NotFoundError{ID: id}
		}
		return tx.GetContext(ctx, &done, "SELECT done FROM todos WHERE id = ?", id)
	})
	if err != nil {
		return false, err
	}
	return done != 0, nil
}

// Delete removes a task. Deleting an id that does not exist succeeds.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	return s.withConn(ctx, fmt.Sprintf("deleting task %d", id), func(conn *sqlx.Conn) error {
		_, err := conn.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
		return err
	})
}

// validateTitle trims title and rejects it when nothing is left.
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Message: "must not be empty"}
	}
	return title, nil
}
