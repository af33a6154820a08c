package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-lite/internal/application/auth"
	"github.com/tu-usuario/inventory-lite/internal/domain"
)

// plainHasher evita el coste de bcrypt en los tests del manager; el hasher
// real se prueba en el paquete security.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }
func (plainHasher) Verify(hash, plain string) bool    { return hash == "hash:"+plain }

const (
	testSecret   = "test-secret"
	strongPass   = "Password1!"
	wrongPass    = "Wrongpass1!"
	altStrongPwd = "Otherpass2!"
)

func newManager() *auth.Manager {
	return auth.NewManager(plainHasher{}, auth.Config{TokenSecret: testSecret}, nil)
}

// fakeClock devuelve un manager con reloj controlable.
func newManagerWithClock() (*auth.Manager, *time.Time) {
	m := newManager()
	now := time.Now()
	current := &now
	m.SetClock(func() time.Time { return *current })
	return m, current
}

func registerAlice(t *testing.T, m *auth.Manager) {
	t.Helper()
	u, err := m.Register(auth.RegisterInput{
		Username:        "alice1",
		Password:        strongPass,
		ConfirmPassword: strongPass,
		Email:           "alice@example.com",
		Phone:           "123456",
	})
	require.NoError(t, err)
	require.Equal(t, 1, u.ID())
}

func TestRegister(t *testing.T) {
	m := newManager()
	registerAlice(t, m)

	u, err := m.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "alice1", u.Username())
	assert.Equal(t, 0, u.FailedAttempts())
	assert.Nil(t, u.LockUntil())
	// La contraseña nunca se guarda en claro.
	assert.NotEqual(t, strongPass, u.PasswordHash())
}

func TestRegisterValidation(t *testing.T) {
	m := newManager()
	registerAlice(t, m)

	cases := []struct {
		name string
		in   auth.RegisterInput
		want error
	}{
		{"username duplicado",
			auth.RegisterInput{Username: "alice1", Password: strongPass, ConfirmPassword: strongPass},
			domain.ErrDuplicate},
		{"username inválido",
			auth.RegisterInput{Username: "a!", Password: strongPass, ConfirmPassword: strongPass},
			domain.ErrInvalidInput},
		{"contraseñas no coinciden",
			auth.RegisterInput{Username: "bob22", Password: strongPass, ConfirmPassword: altStrongPwd},
			domain.ErrInvalidInput},
		{"contraseña débil",
			auth.RegisterInput{Username: "bob22", Password: "abc", ConfirmPassword: "abc"},
			domain.ErrInvalidInput},
		{"email inválido",
			auth.RegisterInput{Username: "bob22", Password: strongPass, ConfirmPassword: strongPass, Email: "x"},
			domain.ErrInvalidInput},
		{"teléfono inválido",
			auth.RegisterInput{Username: "bob22", Password: strongPass, ConfirmPassword: strongPass, Phone: "12ab"},
			domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Register(tc.in)
			assert.ErrorIs(t, err, tc.want)
			// Todo o nada: ningún alta parcial.
			assert.Equal(t, 1, m.MaxUserID())
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	m := newManager()
	registerAlice(t, m)

	s, err := m.Login("alice1", strongPass)
	require.NoError(t, err)
	assert.Equal(t, 1, s.UserID)
	assert.Equal(t, "alice1", s.Username)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, s, m.Current())
}

func TestLoginUnknownUser(t *testing.T) {
	m := newManager()
	_, err := m.Login("nadie", strongPass)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// TestLockoutScenario recorre la máquina de estados completa: tres fallos
// consecutivos bloquean la cuenta, un cuarto intento antes de expirar falla
// con LockedAccount sin incrementar el contador, y tras avanzar el reloj más
// allá de la ventana el login correcto funciona y reinicia el contador.
func TestLockoutScenario(t *testing.T) {
	m, clock := newManagerWithClock()
	registerAlice(t, m)

	_, err := m.Login("alice1", wrongPass)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = m.Login("alice1", wrongPass)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Tercer fallo: bloqueo, con hora de desbloqueo informada.
	_, err = m.Login("alice1", wrongPass)
	var locked *domain.LockedAccountError
	require.ErrorAs(t, err, &locked)
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
	wantUntil := clock.Add(2 * time.Minute)
	assert.True(t, locked.Until.Equal(wantUntil), "desbloqueo en %s, se esperaba %s", locked.Until, wantUntil)

	u, err := m.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 3, u.FailedAttempts())

	// Cuarto intento dentro de la ventana: sigue bloqueado, incluso con la
	// contraseña correcta, y el contador no crece.
	_, err = m.Login("alice1", strongPass)
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
	assert.Equal(t, 3, u.FailedAttempts())

	// Avanzar el reloj más allá de la ventana: el reinicio es perezoso.
	*clock = clock.Add(2*time.Minute + time.Second)
	s, err := m.Login("alice1", strongPass)
	require.NoError(t, err)
	assert.Equal(t, 1, s.UserID)
	assert.Equal(t, 0, u.FailedAttempts())
	assert.Nil(t, u.LockUntil())
}

func TestLockExpiryResetsEvenOnWrongPassword(t *testing.T) {
	m, clock := newManagerWithClock()
	registerAlice(t, m)

	for i := 0; i < 3; i++ {
		_, _ = m.Login("alice1", wrongPass)
	}
	*clock = clock.Add(3 * time.Minute)

	// Tras expirar, el contador parte de cero: un fallo vuelve a ser
	// credenciales inválidas, no bloqueo.
	_, err := m.Login("alice1", wrongPass)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	u, gerr := m.GetUser(1)
	require.NoError(t, gerr)
	assert.Equal(t, 1, u.FailedAttempts())
}

func TestLogout(t *testing.T) {
	m := newManager()
	registerAlice(t, m)

	// Sin sesión: NotAuthenticated.
	assert.ErrorIs(t, m.Logout(nil), domain.ErrNotAuthenticated)

	s, err := m.Login("alice1", strongPass)
	require.NoError(t, err)
	require.NoError(t, m.Logout(s))
	assert.Nil(t, m.Current())

	// La sesión cerrada ya no sirve.
	assert.ErrorIs(t, m.UpdateEmail(s, "x@y.com"), domain.ErrNotAuthenticated)
}

func TestSessionRequiredForProfileUpdates(t *testing.T) {
	m := newManager()
	registerAlice(t, m)

	assert.ErrorIs(t, m.UpdateUsername(nil, "bob22"), domain.ErrNotAuthenticated)
	assert.ErrorIs(t, m.UpdatePassword(nil, strongPass, strongPass), domain.ErrNotAuthenticated)
	assert.ErrorIs(t, m.UpdateEmail(nil, "a@b.com"), domain.ErrNotAuthenticated)
	assert.ErrorIs(t, m.UpdatePhone(nil, "123"), domain.ErrNotAuthenticated)

	// Un handle falsificado (token inventado) tampoco pasa.
	fake := &auth.Session{UserID: 1, Username: "alice1", Token: "no-es-un-jwt"}
	assert.ErrorIs(t, m.UpdateEmail(fake, "a@b.com"), domain.ErrNotAuthenticated)
}

func TestProfileUpdates(t *testing.T) {
	m := newManager()
	registerAlice(t, m)
	s, err := m.Login("alice1", strongPass)
	require.NoError(t, err)

	require.NoError(t, m.UpdateEmail(s, "nueva@example.com"))
	require.NoError(t, m.UpdatePhone(s, "987654"))
	require.NoError(t, m.UpdatePassword(s, altStrongPwd, altStrongPwd))
	require.NoError(t, m.UpdateUsername(s, "alice2"))

	u, err := m.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "alice2", u.Username())
	assert.Equal(t, "nueva@example.com", u.Email())
	assert.Equal(t, "987654", u.Phone())

	// La contraseña nueva funciona en el siguiente login.
	require.NoError(t, m.Logout(s))
	_, err = m.Login("alice2", altStrongPwd)
	require.NoError(t, err)
}

func TestUpdateUsernameUniqueness(t *testing.T) {
	m := newManager()
	registerAlice(t, m)
	_, err := m.Register(auth.RegisterInput{
		Username: "bob22", Password: strongPass, ConfirmPassword: strongPass,
	})
	require.NoError(t, err)

	s, err := m.Login("alice1", strongPass)
	require.NoError(t, err)

	assert.ErrorIs(t, m.UpdateUsername(s, "bob22"), domain.ErrDuplicate)
	u, err := m.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "alice1", u.Username())
}

func TestRemoveUser(t *testing.T) {
	m := newManager()
	registerAlice(t, m)
	_, err := m.Register(auth.RegisterInput{
		Username: "bob22", Password: strongPass, ConfirmPassword: strongPass,
	})
	require.NoError(t, err)

	s, err := m.Login("alice1", strongPass)
	require.NoError(t, err)

	// No se puede eliminar el usuario con sesión activa.
	assert.ErrorIs(t, m.RemoveUser(s.UserID), domain.ErrConflict)

	assert.ErrorIs(t, m.RemoveUser(99), domain.ErrUserNotFound)

	require.NoError(t, m.RemoveUser(2))
	_, err = m.GetUser(2)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// Tras cerrar sesión sí se permite.
	require.NoError(t, m.Logout(s))
	require.NoError(t, m.RemoveUser(1))
}

func TestUserRoundTrip(t *testing.T) {
	m := newManager()
	registerAlice(t, m)
	_, err := m.Register(auth.RegisterInput{
		Username: "bob22", Password: strongPass, ConfirmPassword: strongPass, Phone: "555123",
	})
	require.NoError(t, err)

	// Dejar a bob con estado de bloqueo para comprobar que sobrevive al
	// viaje de ida y vuelta.
	for i := 0; i < 3; i++ {
		_, _ = m.Login("bob22", wrongPass)
	}

	doc := m.ExportToJSON()
	restored := newManager()
	require.NoError(t, restored.LoadFromJSON(doc))

	require.Equal(t, len(m.ListUsers()), len(restored.ListUsers()))
	for i, orig := range m.ListUsers() {
		got := restored.ListUsers()[i]
		assert.Equal(t, orig.ID(), got.ID())
		assert.Equal(t, orig.Username(), got.Username())
		assert.Equal(t, orig.PasswordHash(), got.PasswordHash())
		assert.Equal(t, orig.Email(), got.Email())
		assert.Equal(t, orig.Phone(), got.Phone())
		assert.Equal(t, orig.FailedAttempts(), got.FailedAttempts())
		if orig.LockUntil() == nil {
			assert.Nil(t, got.LockUntil())
		} else {
			require.NotNil(t, got.LockUntil())
			assert.WithinDuration(t, *orig.LockUntil(), *got.LockUntil(), time.Millisecond)
		}
	}

	// El usuario restaurado bloqueado sigue bloqueado.
	_, err = restored.Login("bob22", strongPass)
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
}

func TestLoadDuplicateUserID(t *testing.T) {
	m := newManager()
	registerAlice(t, m)
	doc := m.ExportToJSON()
	doc.Users = append(doc.Users, doc.Users[0])

	restored := newManager()
	assert.ErrorIs(t, restored.LoadFromJSON(doc), domain.ErrDuplicate)
}

func TestIDMonotonicityAfterRemoval(t *testing.T) {
	m := newManager()
	registerAlice(t, m)
	_, err := m.Register(auth.RegisterInput{
		Username: "bob22", Password: strongPass, ConfirmPassword: strongPass,
	})
	require.NoError(t, err)

	require.NoError(t, m.RemoveUser(2))
	u, err := m.Register(auth.RegisterInput{
		Username: "carol3", Password: strongPass, ConfirmPassword: strongPass,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID()) // max restante es 1
}
