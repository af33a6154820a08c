package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrAccountLocked      = errors.New("cuenta bloqueada")
	ErrNotAuthenticated   = errors.New("se requiere una sesión activa")
)

// ValidationError indica que un campo tiene una forma estructuralmente
// imposible (id no positivo, valor nulo donde no se permite).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// FormatError indica que un campo está bien tipado pero su contenido queda
// fuera del dominio permitido (cadena vacía, regex que no coincide, rango
// negativo). Igual que ValidationError, envuelve ErrInvalidInput.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrInvalidInput }

// LockedAccountError señala un login rechazado por bloqueo activo e informa
// la hora de desbloqueo.
type LockedAccountError struct {
	Until time.Time
}

func (e *LockedAccountError) Error() string {
	return fmt.Sprintf("cuenta bloqueada, intente de nuevo después de %s",
		e.Until.Format("15:04:05"))
}

func (e *LockedAccountError) Unwrap() error { return ErrAccountLocked }
