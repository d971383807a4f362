package entity

import "time"

// Roles de una parte.
const (
	RoleAuthority = "authority"
	RoleCustomer  = "customer"
)

// Party identidad que puede autenticarse (la autoridad o un cliente).
type Party struct {
	ID         string
	Name       string
	SecretHash string // bcrypt hash, nunca el secreto plano
	Role       string
	CreatedAt  time.Time
}
