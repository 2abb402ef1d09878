package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

const taskColumns = `id, project_id, task_group_id, title, description, task_type, priority, difficulty,
	estimated_hours, task_status, display_order, created_at, updated_at`

// CreateBatch inserts all tasks with a single statement.
func (r *SQLiteTaskRepo) CreateBatch(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	const placeholders = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	values := make([]string, 0, len(tasks))
	args := make([]any, 0, len(tasks)*13)
	for i := range tasks {
		t := &tasks[i]
		values = append(values, placeholders)
		args = append(args,
			t.ID,
			t.ProjectID,
			nullableString(t.TaskGroupID),
			t.Title,
			t.Description,
			string(t.Type),
			string(t.Priority),
			string(t.Difficulty),
			nullableFloat(t.EstimatedHours),
			string(t.Status),
			t.DisplayOrder,
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		)
	}
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES ` + strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting tasks: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, projectID, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND project_id = ?`, id, projectID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task: %w", domain.ErrNotFound)
	}
	return t, err
}

// ListByProject returns the project's tasks in display order.
func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY display_order, rowid`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET task_group_id = ?, title = ?, description = ?, task_type = ?, priority = ?,
			difficulty = ?, estimated_hours = ?, task_status = ?, display_order = ?, updated_at = ?
		WHERE id = ? AND project_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(t.TaskGroupID),
		t.Title,
		t.Description,
		string(t.Type),
		string(t.Priority),
		string(t.Difficulty),
		nullableFloat(t.EstimatedHours),
		string(t.Status),
		t.DisplayOrder,
		formatTime(t.UpdatedAt),
		t.ID,
		t.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, "task")
}

func (r *SQLiteTaskRepo) UpdatePlacement(ctx context.Context, projectID, taskID string, displayOrder int, groupID *string) (bool, error) {
	query := `UPDATE tasks SET display_order = ?, task_group_id = ?, updated_at = ?
		WHERE id = ? AND project_id = ?`
	res, err := r.db.ExecContext(ctx, query, displayOrder, nullableString(groupID), nowUTC(), taskID, projectID)
	if err != nil {
		return false, fmt.Errorf("updating task placement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var groupID sql.NullString
	var hours sql.NullFloat64
	var typ, priority, difficulty, status, createdAt, updatedAt string
	err := row.Scan(
		&t.ID, &t.ProjectID, &groupID, &t.Title, &t.Description,
		&typ, &priority, &difficulty, &hours, &status, &t.DisplayOrder,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.TaskGroupID = stringFromNull(groupID)
	t.EstimatedHours = floatFromNull(hours)
	t.Type = domain.TaskType(typ)
	t.Priority = domain.Priority(priority)
	t.Difficulty = domain.Difficulty(difficulty)
	t.Status = domain.TaskStatus(status)
	if t.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
