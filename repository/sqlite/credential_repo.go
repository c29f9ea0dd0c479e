package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

//go:embed schema.sql
var schemaFS embed.FS

type credentialRepository struct {
	db *sql.DB
}

// Open opens the sqlite file at path, applies the schema and returns a
// credential repository backed by it.
func Open(path string) (repository.CredentialRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &credentialRepository{db: db}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *credentialRepository) Get(ctx context.Context) (domain.Credentials, error) {
	const query = `SELECT key, value FROM credentials WHERE key IN (?, ?)`
	rows, err := r.db.QueryContext(ctx, query, repository.KeyAccessToken, repository.KeyRefreshToken)
	if err != nil {
		return domain.Credentials{}, err
	}
	defer rows.Close()

	var creds domain.Credentials
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Credentials{}, err
		}
		switch key {
		case repository.KeyAccessToken:
			creds.AccessToken = value
		case repository.KeyRefreshToken:
			creds.RefreshToken = value
		}
	}
	return creds, rows.Err()
}

func (r *credentialRepository) Save(ctx context.Context, creds domain.Credentials) error {
	const query = `
	INSERT INTO credentials (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (key) DO UPDATE
	SET value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, repository.KeyAccessToken, creds.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, repository.KeyRefreshToken, creds.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return tx.Commit()
}

func (r *credentialRepository) Clear(ctx context.Context) error {
	const query = `DELETE FROM credentials WHERE key IN (?, ?)`
	_, err := r.db.ExecContext(ctx, query, repository.KeyAccessToken, repository.KeyRefreshToken)
	return err
}

func (r *credentialRepository) Close() error {
	return r.db.Close()
}
