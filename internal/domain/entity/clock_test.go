package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow_UTCEnMicrosegundos(t *testing.T) {
	now := Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Microsecond))
	assert.Equal(t, now, now.Round(0), "sin lectura monotónica")
}
