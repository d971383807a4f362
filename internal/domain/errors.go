package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Todos son deterministas:
// dependen solo de la entrada y del estado actual, nunca se reintentan.
var (
	ErrUnauthorized       = errors.New("no autorizado: la operación requiere la autoridad")
	ErrProductNotFound    = errors.New("el producto no existe")
	ErrDuplicateProduct   = errors.New("el producto ya está registrado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrTradeNotFound      = errors.New("trato no encontrado")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrPartyNotFound      = errors.New("parte no encontrada")
	ErrDuplicateParty     = errors.New("la parte ya está registrada")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
)

// Alias con los nombres del contrato público.
var (
	ErrUnknownProduct = ErrProductNotFound
	ErrUnknownTrade   = ErrTradeNotFound
)

// InsufficientStockError informa la cantidad disponible para que el llamador ajuste su pedido.
type InsufficientStockError struct {
	Product   string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %q, solicitado %d, disponible %d",
		ErrInsufficientStock.Error(), e.Product, e.Requested, e.Available)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// TransitionError describe la arista rechazada por la máquina de estados.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("%s: %s no tiene estado siguiente", ErrInvalidTransition.Error(), e.From)
	}
	return fmt.Sprintf("%s: %s → %s", ErrInvalidTransition.Error(), e.From, e.To)
}

// Unwrap permite errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
