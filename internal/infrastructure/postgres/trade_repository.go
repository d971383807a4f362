package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
	"github.com/jhoicas/logistica-api/internal/domain/repository"
)

var _ repository.TradeRepository = (*TradeRepo)(nil)

// TradeRepo implementación de TradeRepository sobre PostgreSQL. transport_state se guarda como texto.
type TradeRepo struct {
	q Querier
}

// NewTradeRepository construye el adaptador. Acepta pool o tx (Querier).
func NewTradeRepository(q Querier) *TradeRepo {
	return &TradeRepo{q: q}
}

const tradeColumns = `id, customer, product_name, min_temperature, max_temperature, price, quantity, transport_state, created_by, created_at, updated_at`

func (r *TradeRepo) Create(ctx context.Context, t *entity.Trade) error {
	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Customer, t.ProductName, t.MinTemperature, t.MaxTemperature,
		t.Price, t.Quantity, t.TransportState.String(), t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (r *TradeRepo) GetByID(ctx context.Context, id string) (*entity.Trade, error) {
	return r.get(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
}

func (r *TradeRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Trade, error) {
	return r.get(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1 FOR UPDATE`, id)
}

func (r *TradeRepo) get(ctx context.Context, query, id string) (*entity.Trade, error) {
	if !isUUID(id) {
		return nil, nil
	}
	t, err := scanTrade(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trade: %w", err)
	}
	return t, nil
}

func (r *TradeRepo) UpdateState(ctx context.Context, id string, state logistics.TransportState, updatedAt time.Time) error {
	if !isUUID(id) {
		return domain.ErrTradeNotFound
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE trades SET transport_state = $2, updated_at = $3 WHERE id = $1`,
		id, state.String(), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update trade state: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTradeNotFound
	}
	return nil
}

// List construye el WHERE según los filtros presentes.
func (r *TradeRepo) List(ctx context.Context, filter entity.TradeFilter, limit, offset int) ([]*entity.Trade, error) {
	var (
		where []string
		args  []any
	)
	if filter.Customer != "" {
		args = append(args, filter.Customer)
		where = append(where, fmt.Sprintf("customer = $%d", len(args)))
	}
	if filter.State != nil {
		args = append(args, filter.State.String())
		where = append(where, fmt.Sprintf("transport_state = $%d", len(args)))
	}
	query := `SELECT ` + tradeColumns + ` FROM trades`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, nullableLimit(limit), offset)
	query += fmt.Sprintf(` ORDER BY created_at, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()
	var list []*entity.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *TradeRepo) AddTransition(ctx context.Context, tr *entity.TradeTransition) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO trade_transitions (id, trade_id, from_state, to_state, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tr.ID, tr.TradeID, tr.From.String(), tr.To.String(), tr.Actor, tr.At,
	)
	if err != nil {
		return fmt.Errorf("insert trade transition: %w", err)
	}
	return nil
}

func (r *TradeRepo) ListTransitions(ctx context.Context, tradeID string) ([]*entity.TradeTransition, error) {
	if !isUUID(tradeID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, trade_id, from_state, to_state, actor, created_at
		FROM trade_transitions WHERE trade_id = $1 ORDER BY created_at, seq`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("list trade transitions: %w", err)
	}
	defer rows.Close()
	var list []*entity.TradeTransition
	for rows.Next() {
		var (
			tr       entity.TradeTransition
			from, to string
		)
		if err := rows.Scan(&tr.ID, &tr.TradeID, &from, &to, &tr.Actor, &tr.At); err != nil {
			return nil, fmt.Errorf("scan trade transition: %w", err)
		}
		tr.At = tr.At.UTC()
		if tr.From, err = logistics.ParseTransportState(from); err != nil {
			return nil, err
		}
		if tr.To, err = logistics.ParseTransportState(to); err != nil {
			return nil, err
		}
		list = append(list, &tr)
	}
	return list, rows.Err()
}

func scanTrade(row pgx.Row) (*entity.Trade, error) {
	var (
		t     entity.Trade
		state string
	)
	if err := row.Scan(
		&t.ID, &t.Customer, &t.ProductName, &t.MinTemperature, &t.MaxTemperature,
		&t.Price, &t.Quantity, &state, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s, err := logistics.ParseTransportState(state)
	if err != nil {
		return nil, err
	}
	t.TransportState = s
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
