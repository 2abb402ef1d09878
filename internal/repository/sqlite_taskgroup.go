package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
)

// SQLiteTaskGroupRepo implements TaskGroupRepo using a SQLite database.
type SQLiteTaskGroupRepo struct {
	db db.DBTX
}

func NewSQLiteTaskGroupRepo(db db.DBTX) *SQLiteTaskGroupRepo {
	return &SQLiteTaskGroupRepo{db: db}
}

func (r *SQLiteTaskGroupRepo) Create(ctx context.Context, g *domain.TaskGroup) error {
	query := `INSERT INTO task_groups (id, project_id, name, description, display_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.ProjectID,
		g.Name,
		nullableString(g.Description),
		g.DisplayOrder,
		formatTime(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task group: %w", err)
	}
	return nil
}

func (r *SQLiteTaskGroupRepo) ListByProject(ctx context.Context, projectID string) ([]domain.TaskGroup, error) {
	query := `SELECT id, project_id, name, description, display_order, created_at
		FROM task_groups WHERE project_id = ? ORDER BY display_order`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing task groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.TaskGroup
	for rows.Next() {
		var g domain.TaskGroup
		var desc sql.NullString
		var createdAt string
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.Name, &desc, &g.DisplayOrder, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning task group: %w", err)
		}
		g.Description = stringFromNull(desc)
		if g.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task groups: %w", err)
	}
	return groups, nil
}

// Delete removes a group. Its tasks remain with a NULL group reference.
func (r *SQLiteTaskGroupRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task group: %w", err)
	}
	return requireAffected(res, "task group")
}
