package postgres

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID(uuid.NewString()))
	for _, id := range []string{"", "no-es-uuid", "xyz", "1234"} {
		assert.False(t, isUUID(id), id)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "22P02"}))
	assert.False(t, isUniqueViolation(errors.New("otro error")))
}

func TestNullableLimit(t *testing.T) {
	assert.Nil(t, nullableLimit(0))
	assert.Nil(t, nullableLimit(-1))
	if l := nullableLimit(5); assert.NotNil(t, l) {
		assert.Equal(t, 5, *l)
	}
}
