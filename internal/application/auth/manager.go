// Package auth implementa el manager de cuentas de usuario: registro, la
// máquina de estados de autenticación (conteo de intentos, bloqueo temporal,
// reinicio perezoso al expirar) y las actualizaciones de perfil gateadas por
// sesión. El "usuario actual" global del sistema original se sustituye por un
// handle de sesión explícito que el llamador pasa en cada operación.
package auth

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tu-usuario/inventory-lite/internal/application/audit"
	"github.com/tu-usuario/inventory-lite/internal/application/dto"
	"github.com/tu-usuario/inventory-lite/internal/domain"
	"github.com/tu-usuario/inventory-lite/internal/domain/entity"
	"github.com/tu-usuario/inventory-lite/pkg/token"
)

// PasswordHasher es el colaborador de hasheo: una función de un solo sentido
// con sal y su verificación. El algoritmo concreto no forma parte del
// contrato.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Config parámetros del bloqueo y de los tokens de sesión.
type Config struct {
	MaxAttempts     int           // 0 = 3
	LockFor         time.Duration // 0 = 2 minutos
	TokenSecret     string
	TokenIssuer     string
	TokenExpMinutes int // 0 = 60
}

func (c Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return 3
	}
	return c.MaxAttempts
}

func (c Config) lockFor() time.Duration {
	if c.LockFor <= 0 {
		return 2 * time.Minute
	}
	return c.LockFor
}

func (c Config) tokenExpMinutes() int {
	if c.TokenExpMinutes <= 0 {
		return 60
	}
	return c.TokenExpMinutes
}

// Session es el handle que devuelve Login y que recibe toda operación que
// requiere sesión activa.
type Session struct {
	UserID   int
	Username string
	Token    string
	IssuedAt time.Time
}

// RegisterInput son los campos del alta de usuario. Email y Phone vacíos
// significan "sin dato".
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	Phone           string
}

// Manager posee en exclusiva la colección de usuarios y la única sesión
// activa del proceso.
type Manager struct {
	mu      sync.Mutex
	users   map[int]*entity.User
	hasher  PasswordHasher
	cfg     Config
	rec     audit.Recorder // opcional
	current *Session
	now     func() time.Time
}

// NewManager construye el manager. rec puede ser nil.
func NewManager(hasher PasswordHasher, cfg Config, rec audit.Recorder) *Manager {
	return &Manager{
		users:  make(map[int]*entity.User),
		hasher: hasher,
		cfg:    cfg,
		rec:    rec,
		now:    time.Now,
	}
}

// SetClock inyecta el reloj (tests de expiración de bloqueo).
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// LoadFromJSON puebla la colección desde un documento persistido,
// conservando id, hash y contadores. Un user_id ya presente produce
// ErrDuplicate.
func (m *Manager) LoadFromJSON(doc *dto.UserDocument) error {
	if doc == nil {
		return &domain.ValidationError{Field: "document", Reason: "no puede ser nulo"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range doc.Users {
		if _, ok := m.users[rec.UserID]; ok {
			return fmt.Errorf("usuario %d: %w", rec.UserID, domain.ErrDuplicate)
		}
		var lockUntil *time.Time
		if rec.LockUntil != nil {
			t := dto.FromEpochSeconds(*rec.LockUntil)
			lockUntil = &t
		}
		u, err := entity.NewUser(rec.UserID, rec.Username, rec.Password,
			deref(rec.Email), deref(rec.Phone), rec.FailedAttempts, lockUntil)
		if err != nil {
			return fmt.Errorf("usuario %d: %w", rec.UserID, err)
		}
		m.users[u.ID()] = u
	}
	return nil
}

// ExportToJSON produce el documento persistido con el estado completo de la
// base de usuarios. Inversa exacta de LoadFromJSON.
func (m *Manager) ExportToJSON() *dto.UserDocument {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := dto.DefaultUserDocument()
	for _, id := range m.sortedIDsLocked() {
		u := m.users[id]
		var lockUntil *float64
		if u.LockUntil() != nil {
			e := dto.EpochSeconds(*u.LockUntil())
			lockUntil = &e
		}
		doc.Users = append(doc.Users, dto.UserRecord{
			UserID:         u.ID(),
			Username:       u.Username(),
			Password:       u.PasswordHash(),
			Email:          nilIfEmpty(u.Email()),
			Phone:          nilIfEmpty(u.Phone()),
			FailedAttempts: u.FailedAttempts(),
			LockUntil:      lockUntil,
		})
	}
	return doc
}

// Register da de alta un usuario: valida todos los campos, exige que la
// contraseña y su confirmación coincidan, hashea y asigna id = max + 1.
// Cualquier fallo de validación aborta sin cambio de estado parcial.
func (m *Manager) Register(in RegisterInput) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := entity.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if m.usernameTakenLocked(in.Username) {
		return nil, fmt.Errorf("usuario %q: %w", in.Username, domain.ErrDuplicate)
	}
	if in.Password != in.ConfirmPassword {
		return nil, &domain.FormatError{Field: "password", Reason: "las contraseñas no coinciden"}
	}
	if err := entity.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := entity.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := entity.ValidatePhone(in.Phone); err != nil {
		return nil, err
	}
	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashear contraseña: %w", err)
	}
	id := m.maxIDLocked() + 1
	u, err := entity.NewUser(id, in.Username, hash, in.Email, in.Phone, 0, nil)
	if err != nil {
		return nil, err
	}
	m.users[id] = u
	m.record(id, fmt.Sprintf("register username=%s", in.Username))
	return u, nil
}

// Login ejecuta la máquina de estados de autenticación:
//
//  1. username desconocido -> ErrUserNotFound.
//  2. bloqueo vigente -> LockedAccountError con la hora de desbloqueo.
//  3. bloqueo expirado -> reinicio perezoso de contador y bloqueo.
//  4. contraseña correcta -> reinicio, nueva sesión activa.
//     contraseña incorrecta -> incrementa el contador; al llegar al máximo
//     bloquea la cuenta y falla con LockedAccountError, si no con
//     ErrInvalidCredentials.
//
// La expiración se evalúa aquí, de forma perezosa: no hay temporizador en
// segundo plano.
func (m *Manager) Login(username, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findByUsernameLocked(username)
	if u == nil {
		return nil, fmt.Errorf("usuario %q: %w", username, domain.ErrUserNotFound)
	}
	now := m.now()
	if until := u.LockUntil(); until != nil {
		if now.Before(*until) {
			return nil, &domain.LockedAccountError{Until: *until}
		}
		u.ResetLock()
	}
	if !m.hasher.Verify(u.PasswordHash(), password) {
		attempts := u.RecordFailedAttempt()
		if attempts >= m.cfg.maxAttempts() {
			until := now.Add(m.cfg.lockFor())
			u.Lock(until)
			return nil, &domain.LockedAccountError{Until: until}
		}
		return nil, domain.ErrInvalidCredentials
	}
	u.ResetLock()
	signed, err := token.Generate(m.cfg.TokenSecret, u.ID(), u.Username(),
		m.cfg.TokenIssuer, m.cfg.tokenExpMinutes())
	if err != nil {
		return nil, fmt.Errorf("emitir token de sesión: %w", err)
	}
	s := &Session{
		UserID:   u.ID(),
		Username: u.Username(),
		Token:    signed,
		IssuedAt: now,
	}
	m.current = s
	m.record(u.ID(), "login")
	return s, nil
}

// Logout cierra la sesión activa.
func (m *Manager) Logout(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.requireSessionLocked(s)
	if err != nil {
		return err
	}
	m.current = nil
	m.record(u.ID(), "logout")
	return nil
}

// Current devuelve la sesión activa, o nil si no hay ninguna.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// RemoveUser elimina un usuario, salvo el de la sesión activa (hay que
// cerrar sesión antes).
func (m *Manager) RemoveUser(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.UserID == id {
		return fmt.Errorf("no se puede eliminar el usuario con sesión activa: %w", domain.ErrConflict)
	}
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("usuario %d: %w", id, domain.ErrUserNotFound)
	}
	delete(m.users, id)
	m.record(id, "remove_user")
	return nil
}

// UpdateUsername cambia el nombre de usuario de la sesión activa,
// revalidando formato y unicidad.
func (m *Manager) UpdateUsername(s *Session, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.requireSessionLocked(s)
	if err != nil {
		return err
	}
	if err := entity.ValidateUsername(username); err != nil {
		return err
	}
	if m.usernameTakenLocked(username) {
		return fmt.Errorf("usuario %q: %w", username, domain.ErrDuplicate)
	}
	if err := u.SetUsername(username); err != nil {
		return err
	}
	s.Username = username
	m.record(u.ID(), "update_username")
	return nil
}

// UpdatePassword cambia la contraseña de la sesión activa tras revalidar
// coincidencia y fortaleza; guarda solo el hash.
func (m *Manager) UpdatePassword(s *Session, password, confirm string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.requireSessionLocked(s)
	if err != nil {
		return err
	}
	if password != confirm {
		return &domain.FormatError{Field: "password", Reason: "las contraseñas no coinciden"}
	}
	if err := entity.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashear contraseña: %w", err)
	}
	if err := u.SetPasswordHash(hash); err != nil {
		return err
	}
	m.record(u.ID(), "update_password")
	return nil
}

// UpdateEmail cambia el email de la sesión activa.
func (m *Manager) UpdateEmail(s *Session, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.requireSessionLocked(s)
	if err != nil {
		return err
	}
	if err := u.SetEmail(email); err != nil {
		return err
	}
	m.record(u.ID(), "update_email")
	return nil
}

// UpdatePhone cambia el teléfono de la sesión activa.
func (m *Manager) UpdatePhone(s *Session, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.requireSessionLocked(s)
	if err != nil {
		return err
	}
	if err := u.SetPhone(phone); err != nil {
		return err
	}
	m.record(u.ID(), "update_phone")
	return nil
}

// GetUser devuelve un usuario por id.
func (m *Manager) GetUser(id int) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("usuario %d: %w", id, domain.ErrUserNotFound)
	}
	return u, nil
}

// ListUsers devuelve todos los usuarios ordenados por id.
func (m *Manager) ListUsers() []*entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*entity.User, 0, len(m.users))
	for _, id := range m.sortedIDsLocked() {
		out = append(out, m.users[id])
	}
	return out
}

// MaxUserID devuelve el máximo id de usuario, 0 si no hay ninguno.
func (m *Manager) MaxUserID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxIDLocked()
}

// requireSessionLocked valida el handle de sesión: no nulo, token firmado
// vigente y coincidente con la única sesión activa.
func (m *Manager) requireSessionLocked(s *Session) (*entity.User, error) {
	if s == nil || m.current == nil || m.current.UserID != s.UserID {
		return nil, domain.ErrNotAuthenticated
	}
	userID, _, err := token.Parse(m.cfg.TokenSecret, s.Token)
	if err != nil || userID != s.UserID {
		return nil, domain.ErrNotAuthenticated
	}
	u, ok := m.users[s.UserID]
	if !ok {
		return nil, fmt.Errorf("usuario %d: %w", s.UserID, domain.ErrUserNotFound)
	}
	return u, nil
}

func (m *Manager) findByUsernameLocked(username string) *entity.User {
	for _, u := range m.users {
		if u.Username() == username {
			return u
		}
	}
	return nil
}

func (m *Manager) usernameTakenLocked(username string) bool {
	return m.findByUsernameLocked(username) != nil
}

func (m *Manager) maxIDLocked() int {
	max := 0
	for id := range m.users {
		if id > max {
			max = id
		}
	}
	return max
}

func (m *Manager) sortedIDsLocked() []int {
	ids := make([]int, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *Manager) record(userID int, action string) {
	if m.rec != nil {
		m.rec.Record(userID, action)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
