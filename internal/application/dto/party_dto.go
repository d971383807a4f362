package dto

import "time"

// CreatePartyRequest alta de una parte (secret en texto, se hashea en el use case).
type CreatePartyRequest struct {
	ID     string `json:"id" validate:"required,min=1,max=100"`
	Name   string `json:"name" validate:"omitempty,max=200"`
	Secret string `json:"secret" validate:"required,min=8"`
	Role   string `json:"role" validate:"omitempty,oneof=customer"`
}

// PartyResponse salida de una parte (sin secreto).
type PartyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest credenciales de una parte.
type LoginRequest struct {
	PartyID string `json:"party_id" validate:"required"`
	Secret  string `json:"secret" validate:"required"`
}

// LoginResponse token JWT cuyo subject es el ID de la parte.
type LoginResponse struct {
	Token string        `json:"token"`
	Party PartyResponse `json:"party"`
}
