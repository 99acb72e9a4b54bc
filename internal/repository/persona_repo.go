package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"persona-studio/internal/domain"
)

// ErrNotFound se devuelve cuando el persona no existe.
var ErrNotFound = errors.New("persona not found")

// PersonaRepository guarda los registros terminados que entrega el wizard.
type PersonaRepository interface {
	Create(ctx context.Context, persona domain.Persona) error
	GetByID(ctx context.Context, id string) (domain.Persona, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Persona, error)
}

type PgPersonaRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonaRepository(pool *pgxpool.Pool) *PgPersonaRepository {
	return &PgPersonaRepository{pool: pool}
}

// EnsureSchema crea la tabla si no existe.
func (r *PgPersonaRepository) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS personas (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			description TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			identity JSONB NOT NULL,
			traits JSONB NOT NULL,
			knowledge JSONB NOT NULL,
			training JSONB NOT NULL,
			status TEXT NOT NULL,
			visibility TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_personas_user_created ON personas (user_id, created_at DESC);
	`
	_, err := r.pool.Exec(ctx, query)
	return err
}

func (r *PgPersonaRepository) Create(ctx context.Context, persona domain.Persona) error {
	cols, err := encodePersonaJSON(persona)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO personas (id, user_id, name, role, description, avatar_url, type, identity, traits, knowledge, training, status, visibility, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.pool.Exec(ctx, query,
		persona.ID,
		persona.UserID,
		persona.Name,
		persona.Role,
		persona.Description,
		persona.AvatarURL,
		string(persona.Type),
		cols.identity,
		cols.traits,
		cols.knowledge,
		cols.training,
		persona.Status,
		persona.Visibility,
		persona.CreatedAt,
	)
	return err
}

func (r *PgPersonaRepository) GetByID(ctx context.Context, id string) (domain.Persona, error) {
	const query = `
		SELECT id, user_id, name, role, description, avatar_url, type, identity, traits, knowledge, training, status, visibility, created_at
		FROM personas
		WHERE id = $1
	`
	p, err := scanPersona(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Persona{}, ErrNotFound
	}
	return p, err
}

func (r *PgPersonaRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Persona, error) {
	const query = `
		SELECT id, user_id, name, role, description, avatar_url, type, identity, traits, knowledge, training, status, visibility, created_at
		FROM personas
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var personas []domain.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
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

// rowScanner cubre pgx.Row, pgx.Rows y *sql.Row/*sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type personaJSON struct {
	identity  []byte
	traits    []byte
	knowledge []byte
	training  []byte
}

func encodePersonaJSON(p domain.Persona) (personaJSON, error) {
	var out personaJSON
	var err error
	if out.identity, err = json.Marshal(p.Identity); err != nil {
		return out, fmt.Errorf("marshal identity: %w", err)
	}
	if out.traits, err = json.Marshal(p.Traits); err != nil {
		return out, fmt.Errorf("marshal traits: %w", err)
	}
	knowledge := p.Knowledge
	if knowledge == nil {
		knowledge = []domain.KnowledgeItem{}
	}
	if out.knowledge, err = json.Marshal(knowledge); err != nil {
		return out, fmt.Errorf("marshal knowledge: %w", err)
	}
	if out.training, err = json.Marshal(p.Training); err != nil {
		return out, fmt.Errorf("marshal training: %w", err)
	}
	return out, nil
}

func scanPersona(row rowScanner) (domain.Persona, error) {
	var (
		p         domain.Persona
		personaTy string
		cols      personaJSON
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Role,
		&p.Description,
		&p.AvatarURL,
		&personaTy,
		&cols.identity,
		&cols.traits,
		&cols.knowledge,
		&cols.training,
		&p.Status,
		&p.Visibility,
		&p.CreatedAt,
	); err != nil {
		return domain.Persona{}, err
	}
	p.Type = domain.PersonaType(personaTy)
	if err := json.Unmarshal(cols.identity, &p.Identity); err != nil {
		return domain.Persona{}, fmt.Errorf("unmarshal identity: %w", err)
	}
	if err := json.Unmarshal(cols.traits, &p.Traits); err != nil {
		return domain.Persona{}, fmt.Errorf("unmarshal traits: %w", err)
	}
	if err := json.Unmarshal(cols.knowledge, &p.Knowledge); err != nil {
		return domain.Persona{}, fmt.Errorf("unmarshal knowledge: %w", err)
	}
	if err := json.Unmarshal(cols.training, &p.Training); err != nil {
		return domain.Persona{}, fmt.Errorf("unmarshal training: %w", err)
	}
	return p, nil
}
