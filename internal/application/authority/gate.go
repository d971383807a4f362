// Package authority implementa la verificación de capacidad que precede a toda mutación.
package authority

import (
	"strings"

	"github.com/jhoicas/logistica-api/internal/domain"
)

// Config identidad de la autoridad, fijada al construir el sistema.
type Config struct {
	AuthorityID string
}

// Gate compara la identidad del llamador contra la autoridad única.
type Gate struct {
	authority string
}

// NewGate construye el gate. Una autoridad vacía es un error de configuración.
func NewGate(cfg Config) (*Gate, error) {
	id := strings.TrimSpace(cfg.AuthorityID)
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return &Gate{authority: id}, nil
}

// CheckAuthority devuelve ErrUnauthorized si caller no es la autoridad.
func (g *Gate) CheckAuthority(caller string) error {
	if caller == "" || caller != g.authority {
		return domain.ErrUnauthorized
	}
	return nil
}

// IsAuthority variante booleana de CheckAuthority.
func (g *Gate) IsAuthority(caller string) bool {
	return g.CheckAuthority(caller) == nil
}

// AuthorityID identidad configurada.
func (g *Gate) AuthorityID() string {
	return g.authority
}
