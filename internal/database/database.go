package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}

	// Conditional migration: add markdown_content to recipes if missing
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = 'recipes' AND column_name = 'markdown_content'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check markdown_content column: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE recipes ADD COLUMN markdown_content TEXT`); err != nil {
			return fmt.Errorf("add markdown_content column: %w", err)
		}
	}

	// Conditional migration: add avatar_url to users if missing
	err = db.QueryRow(`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = 'users' AND column_name = 'avatar_url'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check avatar_url column: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE users ADD COLUMN avatar_url TEXT`); err != nil {
			return fmt.Errorf("add avatar_url column: %w", err)
		}
	}

	return nil
}
