package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullableLimit traduce limit <= 0 (sin límite) a NULL, que Postgres interpreta como LIMIT ALL.
func nullableLimit(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

// isUUID indica si id puede compararse con una columna UUID sin que Postgres rechace el literal (22P02).
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
