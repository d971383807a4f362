// Package logistics contiene la máquina de estados del transporte de un trato.
// El grafo es un dato (tabla de transiciones) y no condicionales dispersos.
package logistics

import (
	"fmt"
	"strings"

	"github.com/jhoicas/logistica-api/internal/domain"
)

// TransportState estado del envío de un trato. El orden numérico sigue el ciclo de vida.
type TransportState int

const (
	StateIdle TransportState = iota // valor cero lógico, nunca persistido
	StateCreated
	StateInTransit
	StateComplete
	StateCancel
	StateDone
)

var stateNames = map[TransportState]string{
	StateIdle:      "Idle",
	StateCreated:   "Created",
	StateInTransit: "InTransit",
	StateComplete:  "Complete",
	StateCancel:    "Cancel",
	StateDone:      "Done",
}

// transitions aristas permitidas: estado actual → estados siguientes.
// Idle → Created no aparece: la creación del trato no es una transición.
var transitions = map[TransportState][]TransportState{
	StateCreated:   {StateInTransit, StateCancel},
	StateInTransit: {StateComplete, StateCancel},
	StateComplete:  {StateDone},
	StateCancel:    nil,
	StateDone:      nil,
}

// canonicalNext siguiente estado que toma Advance. Cancel solo se alcanza con una cancelación explícita.
var canonicalNext = map[TransportState]TransportState{
	StateCreated:   StateInTransit,
	StateInTransit: StateComplete,
	StateComplete:  StateDone,
}

func (s TransportState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("TransportState(%d)", int(s))
}

// Valid indica si es uno de los seis estados conocidos.
func (s TransportState) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// Terminal indica si el estado no tiene aristas de salida.
func (s TransportState) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Cancellable indica si la cancelación es válida desde este estado.
func (s TransportState) Cancellable() bool {
	return CanTransition(s, StateCancel)
}

// CanTransition consulta la tabla de transiciones.
func CanTransition(from, to TransportState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition valida la arista from → to.
func Transition(from, to TransportState) (TransportState, error) {
	if !CanTransition(from, to) {
		return from, &domain.TransitionError{From: from.String(), To: to.String()}
	}
	return to, nil
}

// Next devuelve el siguiente estado canónico (el que aplica Advance).
func Next(from TransportState) (TransportState, error) {
	to, ok := canonicalNext[from]
	if !ok {
		return from, &domain.TransitionError{From: from.String()}
	}
	return to, nil
}

// AllowedFrom copia de las aristas de salida de un estado.
func AllowedFrom(from TransportState) []TransportState {
	next := transitions[from]
	out := make([]TransportState, len(next))
	copy(out, next)
	return out
}

// ParseTransportState acepta el nombre del estado sin distinguir mayúsculas.
func ParseTransportState(s string) (TransportState, error) {
	for st, name := range stateNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return StateIdle, fmt.Errorf("%w: estado de transporte desconocido %q", domain.ErrInvalidInput, s)
}

// MarshalText serializa por nombre (JSON y columnas de texto).
func (s TransportState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("estado de transporte inválido %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText inverso de MarshalText.
func (s *TransportState) UnmarshalText(b []byte) error {
	st, err := ParseTransportState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
