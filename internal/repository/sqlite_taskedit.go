package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
)

// SQLiteTaskEditRepo implements TaskEditRepo using a SQLite database.
type SQLiteTaskEditRepo struct {
	db db.DBTX
}

func NewSQLiteTaskEditRepo(db db.DBTX) *SQLiteTaskEditRepo {
	return &SQLiteTaskEditRepo{db: db}
}

func (r *SQLiteTaskEditRepo) Create(ctx context.Context, e *domain.TaskEdit) error {
	query := `INSERT INTO task_edits (id, task_id, field_changed, original_value, new_value, edited_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.TaskID,
		e.FieldChanged,
		nullableString(e.OriginalValue),
		nullableString(e.NewValue),
		formatTime(e.EditedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task edit: %w", err)
	}
	return nil
}

func (r *SQLiteTaskEditRepo) ListByTask(ctx context.Context, taskID string) ([]domain.TaskEdit, error) {
	query := `SELECT id, task_id, field_changed, original_value, new_value, edited_at
		FROM task_edits WHERE task_id = ? ORDER BY edited_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing task edits: %w", err)
	}
	defer rows.Close()

	var edits []domain.TaskEdit
	for rows.Next() {
		var e domain.TaskEdit
		var orig, next sql.NullString
		var editedAt string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.FieldChanged, &orig, &next, &editedAt); err != nil {
			return nil, fmt.Errorf("scanning task edit: %w", err)
		}
		e.OriginalValue = stringFromNull(orig)
		e.NewValue = stringFromNull(next)
		if e.EditedAt, err = parseTime(editedAt, "edited_at"); err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task edits: %w", err)
	}
	return edits, nil
}
