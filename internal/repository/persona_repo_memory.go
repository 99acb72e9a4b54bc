package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"persona-studio/internal/domain"
)

// MemoryPersonaRepository guarda personas en memoria. Util para tests y para correr sin base.
type MemoryPersonaRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Persona
}

func NewMemoryPersonaRepository() *MemoryPersonaRepository {
	return &MemoryPersonaRepository{items: make(map[string]domain.Persona)}
}

func (r *MemoryPersonaRepository) Create(_ context.Context, persona domain.Persona) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[persona.ID]; exists {
		return fmt.Errorf("persona %s already exists", persona.ID)
	}
	persona.Knowledge = append([]domain.KnowledgeItem(nil), persona.Knowledge...)
	r.items[persona.ID] = persona
	return nil
}

func (r *MemoryPersonaRepository) GetByID(_ context.Context, id string) (domain.Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return domain.Persona{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryPersonaRepository) ListByUserID(_ context.Context, userID string) ([]domain.Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Persona
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
