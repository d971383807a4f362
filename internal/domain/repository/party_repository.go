package repository

import (
	"context"

	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

// PartyRepository define el puerto de persistencia para las partes autenticables.
type PartyRepository interface {
	Create(ctx context.Context, party *entity.Party) error
	GetByID(ctx context.Context, id string) (*entity.Party, error)
	// Upsert crea o reemplaza la credencial (siembra de la autoridad al arrancar).
	Upsert(ctx context.Context, party *entity.Party) error
}
