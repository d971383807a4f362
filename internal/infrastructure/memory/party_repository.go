package memory

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo partes autenticables en memoria.
type PartyRepo struct {
	s *Store
}

// NewPartyRepository construye el repositorio.
func NewPartyRepository(s *Store) *PartyRepo {
	return &PartyRepo{s: s}
}

func (r *PartyRepo) Create(_ context.Context, party *entity.Party) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parties[party.ID]; ok {
		return domain.ErrDuplicateParty
	}
	r.s.parties[party.ID] = *party
	return nil
}

func (r *PartyRepo) GetByID(_ context.Context, id string) (*entity.Party, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.parties[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PartyRepo) Upsert(_ context.Context, party *entity.Party) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.parties[party.ID] = *party
	return nil
}
