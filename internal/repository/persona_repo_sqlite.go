package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"persona-studio/internal/domain"
)

// SQLitePersonaRepository implementa PersonaRepository sobre SQLite (modernc).
type SQLitePersonaRepository struct {
	db *sql.DB
}

// NewSQLitePersonaRepository crea el repositorio e inicializa el schema.
func NewSQLitePersonaRepository(ctx context.Context, db *sql.DB) (*SQLitePersonaRepository, error) {
	r := &SQLitePersonaRepository{db: db}
	if err := r.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return r, nil
}

func (r *SQLitePersonaRepository) initSchema(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS personas (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		description TEXT NOT NULL,
		avatar_url TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		identity TEXT NOT NULL,
		traits TEXT NOT NULL,
		knowledge TEXT NOT NULL,
		training TEXT NOT NULL,
		status TEXT NOT NULL,
		visibility TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_personas_user_created ON personas(user_id, created_at DESC);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *SQLitePersonaRepository) Create(ctx context.Context, persona domain.Persona) error {
	cols, err := encodePersonaJSON(persona)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO personas (id, user_id, name, role, description, avatar_url, type, identity, traits, knowledge, training, status, visibility, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		persona.ID,
		persona.UserID,
		persona.Name,
		persona.Role,
		persona.Description,
		persona.AvatarURL,
		string(persona.Type),
		string(cols.identity),
		string(cols.traits),
		string(cols.knowledge),
		string(cols.training),
		persona.Status,
		persona.Visibility,
		persona.CreatedAt.UnixNano(),
	)
	return err
}

func (r *SQLitePersonaRepository) GetByID(ctx context.Context, id string) (domain.Persona, error) {
	const query = `
		SELECT id, user_id, name, role, description, avatar_url, type, identity, traits, knowledge, training, status, visibility, created_at
		FROM personas
		WHERE id = ?
	`
	p, err := scanSQLitePersona(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Persona{}, ErrNotFound
	}
	return p, err
}

func (r *SQLitePersonaRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Persona, error) {
	const query = `
		SELECT id, user_id, name, role, description, avatar_url, type, identity, traits, knowledge, training, status, visibility, created_at
		FROM personas
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var personas []domain.Persona
	for rows.Next() {
		p, err := scanSQLitePersona(rows)
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return personas, nil
}

// scanSQLitePersona adapta created_at (unix nanos) al scanner comun.
func scanSQLitePersona(row rowScanner) (domain.Persona, error) {
	var createdAt int64
	p, err := scanPersona(scanFunc(func(dest ...any) error {
		dest[len(dest)-1] = &createdAt
		return row.Scan(dest...)
	}))
	if err != nil {
		return domain.Persona{}, err
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	return p, nil
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }
