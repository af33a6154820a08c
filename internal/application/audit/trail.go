// Package audit registra acciones de usuario y tiempos de sesión. Sustituye
// al decorador de seguimiento del sistema original por un recorder explícito
// que los managers invocan tras cada mutación exitosa.
package audit

import (
	"sync"
	"time"

	"github.com/tu-usuario/inventory-lite/pkg/logger"
)

// Recorder es el sumidero opcional de auditoría que aceptan los managers.
// Una implementación nil-safe: los managers toleran recorder == nil.
type Recorder interface {
	Record(userID int, action string)
}

// Action es una entrada del registro de acciones.
type Action struct {
	UserID    int
	Action    string
	Timestamp time.Time
}

// Trail acumula acciones en memoria y las emite por el logger estructurado.
type Trail struct {
	log *logger.Logger

	mu       sync.Mutex
	actions  []Action
	loginAt  map[int]time.Time
	logoutAt map[int]time.Time
}

// NewTrail construye el registro. log puede ser nil (solo memoria).
func NewTrail(log *logger.Logger) *Trail {
	return &Trail{
		log:      log,
		loginAt:  make(map[int]time.Time),
		logoutAt: make(map[int]time.Time),
	}
}

// Record añade una acción con marca de tiempo. userID 0 significa acción sin
// sesión (p.ej. un registro de cuenta).
func (t *Trail) Record(userID int, action string) {
	t.mu.Lock()
	t.actions = append(t.actions, Action{
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now(),
	})
	t.mu.Unlock()
	if t.log != nil {
		t.log.Info().Int("user_id", userID).Str("action", action).Msg("audit")
	}
}

// Actions devuelve las acciones de un usuario, o todas si userID == 0.
func (t *Trail) Actions(userID int) []Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	if userID == 0 {
		out := make([]Action, len(t.actions))
		copy(out, t.actions)
		return out
	}
	var out []Action
	for _, a := range t.actions {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// SetLoginTime marca el inicio de sesión de un usuario.
func (t *Trail) SetLoginTime(userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loginAt[userID] = time.Now()
}

// SetLogoutTime marca el cierre de sesión de un usuario.
func (t *Trail) SetLogoutTime(userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logoutAt[userID] = time.Now()
}

// SessionDuration calcula la duración de la última sesión registrada.
// ok == false si faltan marcas de login o logout.
func (t *Trail) SessionDuration(userID int) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	in, okIn := t.loginAt[userID]
	out, okOut := t.logoutAt[userID]
	if !okIn || !okOut {
		return 0, false
	}
	return out.Sub(in), true
}
