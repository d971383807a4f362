package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo partes autenticables sobre PostgreSQL.
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador.
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO parties (id, name, secret_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.SecretHash, p.Role, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateParty
		}
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

func (r *PartyRepo) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	var p entity.Party
	err := r.q.QueryRow(ctx,
		`SELECT id, name, secret_hash, role, created_at FROM parties WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.SecretHash, &p.Role, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &p, nil
}

func (r *PartyRepo) Upsert(ctx context.Context, p *entity.Party) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO parties (id, name, secret_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET secret_hash = EXCLUDED.secret_hash, role = EXCLUDED.role`,
		p.ID, p.Name, p.SecretHash, p.Role, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert party: %w", err)
	}
	return nil
}
