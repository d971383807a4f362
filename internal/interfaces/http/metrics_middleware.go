package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// HTTPObserver cuenta peticiones HTTP; lo implementa *metrics.Prometheus.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int)
}

// RequestMetrics cuenta cada petición por método, patrón de ruta y código de respuesta.
func RequestMetrics(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		obs.ObserveHTTP(utils.CopyString(c.Method()), utils.CopyString(c.Route().Path), status)
		return err
	}
}
