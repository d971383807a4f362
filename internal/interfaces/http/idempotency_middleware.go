package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/logistica-api/internal/application/dto"
	"github.com/jhoicas/logistica-api/internal/application/ports"
)

// Cabeceras del protocolo de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

// RequireIdempotency repite la respuesta guardada cuando llega de nuevo la misma Idempotency-Key.
// Debe usarse DESPUÉS de AuthMiddleware: la llave se aísla por parte, método y URL.
//
// Comportamiento:
//   - Sin cabecera → la petición pasa sin tocar el store.
//   - Llave completada → 2xx/4xx guardado, con Idempotent-Replayed: true.
//   - Llave en curso → 409 IDEMPOTENCY_IN_PROGRESS.
//   - 5xx del handler → la llave se libera para permitir el reintento.
//   - Fallo del store → 503 IDEMPOTENCY_UNAVAILABLE.
func RequireIdempotency(store ports.IdempotencyStore, ttl time.Duration, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if raw == "" {
			return c.Next()
		}
		if len(raw) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "INVALID_IDEMPOTENCY_KEY",
				Message: "Idempotency-Key demasiado larga",
			})
		}
		key := GetPartyID(c) + ":" + c.Method() + ":" + c.OriginalURL() + ":" + raw

		rec, acquired, err := store.Acquire(c.Context(), key, ttl)
		if err != nil {
			log.Error().Err(err).Msg("idempotencia: acquire")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_UNAVAILABLE",
				Message: "no se pudo verificar la llave de idempotencia, intente más tarde",
			})
		}
		if !acquired {
			if rec == nil {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_IN_PROGRESS",
					Message: "otra petición con la misma Idempotency-Key sigue en curso",
				})
			}
			c.Set(HeaderReplayed, "true")
			if rec.ContentType != "" {
				c.Set(fiber.HeaderContentType, rec.ContentType)
			}
			return c.Status(rec.Status).Send(rec.Body)
		}

		if err := c.Next(); err != nil {
			releaseKey(c, store, key, log)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			releaseKey(c, store, key, log)
			return nil
		}
		saved := ports.IdempotencyRecord{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(c.Context(), key, saved, ttl); err != nil {
			log.Warn().Err(err).Msg("idempotencia: guardar respuesta")
		}
		return nil
	}
}

func releaseKey(c *fiber.Ctx, store ports.IdempotencyStore, key string, log zerolog.Logger) {
	if err := store.Release(c.Context(), key); err != nil {
		log.Warn().Err(err).Msg("idempotencia: liberar llave")
	}
}
