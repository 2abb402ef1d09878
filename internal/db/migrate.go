package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list is replayed on every start.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		target_users  TEXT NOT NULL DEFAULT '',
		constraints   TEXT NOT NULL DEFAULT '',
		template_type TEXT NOT NULL DEFAULT 'Web Application',
		status        TEXT NOT NULL DEFAULT 'draft'
		              CHECK(status IN ('draft','generated','completed')),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS task_groups (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		description   TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		UNIQUE(project_id, display_order)
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id              TEXT PRIMARY KEY,
		project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		task_group_id   TEXT REFERENCES task_groups(id) ON DELETE SET NULL,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		task_type       TEXT NOT NULL
		                CHECK(task_type IN ('user-story','engineering-task','risk','unknown')),
		priority        TEXT NOT NULL DEFAULT 'medium'
		                CHECK(priority IN ('low','medium','high')),
		difficulty      TEXT NOT NULL DEFAULT 'medium'
		                CHECK(difficulty IN ('easy','medium','hard')),
		estimated_hours REAL CHECK(estimated_hours IS NULL OR estimated_hours > 0),
		task_status     TEXT NOT NULL DEFAULT 'todo'
		                CHECK(task_status IN ('todo','in-progress','done')),
		display_order   INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_order ON tasks(project_id, display_order)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_group ON tasks(task_group_id)`,

	`CREATE TABLE IF NOT EXISTS task_edits (
		id             TEXT PRIMARY KEY,
		task_id        TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		field_changed  TEXT NOT NULL,
		original_value TEXT,
		new_value      TEXT,
		edited_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_edits_task ON task_edits(task_id, edited_at)`,
}
