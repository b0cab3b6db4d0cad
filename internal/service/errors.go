package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Reversal engine errors. All are user-visible and non-retryable without
// manual intervention.
var (
	ErrYaRevertida        = errors.New("la actividad ya fue revertida")
	ErrNoReversible       = errors.New("la actividad no puede deshacerse")
	ErrStockInconsistente = errors.New("el stock actual ya no contiene las cantidades registradas; se requiere conciliación manual")
	ErrActividadEliminada = errors.New("la actividad fue dada de baja")
	ErrNoEditable         = errors.New("la actividad no puede editarse en su estado actual")
)

// ErrValidacion carries the complete list of violated constraints keyed by
// field path, never just the first one.
type ErrValidacion struct {
	Campos map[string]string
}

func (e *ErrValidacion) Error() string {
	claves := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		claves = append(claves, k)
	}
	sort.Strings(claves)
	partes := make([]string, 0, len(claves))
	for _, k := range claves {
		partes = append(partes, fmt.Sprintf("%s: %s", k, e.Campos[k]))
	}
	return "validación fallida: " + strings.Join(partes, "; ")
}
