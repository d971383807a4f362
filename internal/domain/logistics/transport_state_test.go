package logistics_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/logistica-api/internal/domain"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
)

var allStates = []logistics.TransportState{
	logistics.StateIdle,
	logistics.StateCreated,
	logistics.StateInTransit,
	logistics.StateComplete,
	logistics.StateCancel,
	logistics.StateDone,
}

// Las cinco aristas del grafo; cualquier otro par debe rechazarse.
var validEdges = map[[2]logistics.TransportState]bool{
	{logistics.StateCreated, logistics.StateInTransit}:  true,
	{logistics.StateInTransit, logistics.StateComplete}: true,
	{logistics.StateComplete, logistics.StateDone}:      true,
	{logistics.StateCreated, logistics.StateCancel}:     true,
	{logistics.StateInTransit, logistics.StateCancel}:   true,
}

func TestTransition_TablaCompleta(t *testing.T) {
	for _, from := range allStates {
		for _, to := range allStates {
			got, err := logistics.Transition(from, to)
			if validEdges[[2]logistics.TransportState{from, to}] {
				require.NoError(t, err, "%s → %s debe ser válida", from, to)
				assert.Equal(t, to, got)
				continue
			}
			require.Error(t, err, "%s → %s debe rechazarse", from, to)
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
			assert.Equal(t, from, got, "el estado no cambia si la arista es inválida")
		}
	}
}

func TestTransition_NuncaRetrocede(t *testing.T) {
	for _, from := range allStates {
		for _, to := range logistics.AllowedFrom(from) {
			assert.Greater(t, int(to), int(from), "%s → %s debe avanzar", from, to)
		}
	}
}

func TestNext_Canonico(t *testing.T) {
	cases := []struct {
		from logistics.TransportState
		want logistics.TransportState
		ok   bool
	}{
		{logistics.StateCreated, logistics.StateInTransit, true},
		{logistics.StateInTransit, logistics.StateComplete, true},
		{logistics.StateComplete, logistics.StateDone, true},
		{logistics.StateDone, logistics.StateDone, false},
		{logistics.StateCancel, logistics.StateCancel, false},
		{logistics.StateIdle, logistics.StateIdle, false},
	}
	for _, tc := range cases {
		t.Run(tc.from.String(), func(t *testing.T) {
			got, err := logistics.Next(tc.from)
			if !tc.ok {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTerminalYCancelable(t *testing.T) {
	assert.True(t, logistics.StateDone.Terminal())
	assert.True(t, logistics.StateCancel.Terminal())
	assert.False(t, logistics.StateComplete.Terminal())
	assert.False(t, logistics.StateIdle.Terminal())

	assert.True(t, logistics.StateCreated.Cancellable())
	assert.True(t, logistics.StateInTransit.Cancellable())
	assert.False(t, logistics.StateComplete.Cancellable())
	assert.False(t, logistics.StateDone.Cancellable())
}

func TestTransportState_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		State logistics.TransportState `json:"state"`
	}{logistics.StateInTransit})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"InTransit"}`, string(b))

	var st logistics.TransportState
	require.NoError(t, st.UnmarshalText([]byte("complete")))
	assert.Equal(t, logistics.StateComplete, st)

	assert.Error(t, st.UnmarshalText([]byte("Lost")))
	_, err = logistics.TransportState(42).MarshalText()
	assert.Error(t, err)
}
