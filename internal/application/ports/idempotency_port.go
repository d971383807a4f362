package ports

import (
	"context"
	"time"
)

// IdempotencyRecord respuesta guardada para una llave de idempotencia ya completada.
type IdempotencyRecord struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore define el puerto de salida para las llaves Idempotency-Key.
// Cualquier adaptador (Redis, memoria) debe implementar esta interfaz.
type IdempotencyStore interface {
	// Acquire reserva la llave. acquired=true si el llamador debe ejecutar la petición;
	// si no, rec trae la respuesta guardada o es nil cuando otra petición con la misma llave sigue en curso.
	Acquire(ctx context.Context, key string, ttl time.Duration) (rec *IdempotencyRecord, acquired bool, err error)
	// Complete guarda la respuesta final para repetirla en reintentos.
	Complete(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error
	// Release libera una llave reservada sin respuesta (p. ej. tras un error 5xx).
	Release(ctx context.Context, key string) error
}
