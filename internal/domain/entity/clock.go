package entity

import "time"

// Now devuelve la hora actual en UTC truncada a microsegundos (la precisión de TIMESTAMPTZ).
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
