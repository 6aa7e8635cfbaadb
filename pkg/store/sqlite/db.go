package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var bootQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		contact_number TEXT,
		role_id INTEGER REFERENCES roles(id),
		environment_id INTEGER REFERENCES environments(id),
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS roles (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		is_super_user BOOLEAN DEFAULT 0,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		action TEXT,
		entity TEXT,
		description TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		id INTEGER PRIMARY KEY,
		role_id INTEGER REFERENCES roles(id),
		permission_id INTEGER REFERENCES permissions(id),
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS environments (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS question_types (
		id INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY,
		text TEXT NOT NULL,
		question_type_id INTEGER REFERENCES question_types(id),
		is_signature BOOLEAN DEFAULT 0,
		remarks TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY,
		value TEXT,
		remarks TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS forms (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		user_id INTEGER REFERENCES users(id),
		is_public BOOLEAN DEFAULT 0,
		attachments_required BOOLEAN DEFAULT 0,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS form_questions (
		id INTEGER PRIMARY KEY,
		form_id INTEGER REFERENCES forms(id),
		question_id INTEGER REFERENCES questions(id),
		order_number INTEGER,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS form_answers (
		id INTEGER PRIMARY KEY,
		form_question_id INTEGER REFERENCES form_questions(id),
		answer_id INTEGER REFERENCES answers(id),
		remarks TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS form_assignments (
		id INTEGER PRIMARY KEY,
		form_id INTEGER REFERENCES forms(id),
		entity_name TEXT,
		entity_id INTEGER,
		assigned_entity_identifier TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS form_submissions (
		id INTEGER PRIMARY KEY,
		form_id INTEGER REFERENCES forms(id),
		submitted_by TEXT,
		submitted_at TIMESTAMP,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS answers_submitted (
		id INTEGER PRIMARY KEY,
		question TEXT,
		question_type TEXT,
		answer TEXT,
		form_submission_id INTEGER REFERENCES form_submissions(id),
		"column" INTEGER,
		"row" INTEGER,
		cell_content TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id INTEGER PRIMARY KEY,
		form_submission_id INTEGER REFERENCES form_submissions(id),
		file_type TEXT,
		file_path TEXT,
		is_signature BOOLEAN DEFAULT 0,
		signature_position TEXT,
		signature_author TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		is_deleted BOOLEAN DEFAULT 0,
		deleted_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS token_blocklist (
		id INTEGER PRIMARY KEY,
		jti TEXT NOT NULL,
		created_at TIMESTAMP
	);`,
}

type Settings struct {
	DbPath string
}

// NewDB opens the sqlite database and ensures the entity tables exist.
func NewDB(settings Settings) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", settings.DbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, q := range bootQueries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return db, nil
}
