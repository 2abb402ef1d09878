package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

const projectColumns = `id, user_id, title, description, target_users, constraints, template_type, status, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Title,
		p.Description,
		p.TargetUsers,
		p.Constraints,
		p.TemplateType,
		string(p.Status),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	return p, err
}

// ListByUser returns the owner's projects newest first, with task and group
// counts.
func (r *SQLiteProjectRepo) ListByUser(ctx context.Context, userID string) ([]domain.ProjectSummary, error) {
	query := `SELECT ` + projectColumns + `,
			(SELECT COUNT(*) FROM tasks t WHERE t.project_id = projects.id),
			(SELECT COUNT(*) FROM task_groups g WHERE g.project_id = projects.id)
		FROM projects WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []domain.ProjectSummary
	for rows.Next() {
		var s domain.ProjectSummary
		var statusStr, createdAt, updatedAt string
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.Description, &s.TargetUsers, &s.Constraints,
			&s.TemplateType, &statusStr, &createdAt, &updatedAt,
			&s.TaskCount, &s.GroupCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		s.Status = domain.ProjectStatus(statusStr)
		if s.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

func (r *SQLiteProjectRepo) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating project status: %w", err)
	}
	return requireAffected(res, "project")
}

// Delete removes a project owned by userID. Groups, tasks and edits go with
// it through ON DELETE CASCADE.
func (r *SQLiteProjectRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res, "project")
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var statusStr, createdAt, updatedAt string
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.TargetUsers, &p.Constraints,
		&p.TemplateType, &statusStr, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.Status = domain.ProjectStatus(statusStr)
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, domain.ErrNotFound)
	}
	return nil
}
