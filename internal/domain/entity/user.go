package entity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/tu-usuario/inventory-lite/internal/domain"
)

// Conjunto de símbolos aceptados en contraseñas.
const passwordSymbols = "!@#$%^&*()-_+="

var (
	usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailRE    = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phoneRE    = regexp.MustCompile(`^[0-9]+$`)
)

// User representa una cuenta de usuario. El campo password guarda siempre un
// hash, nunca texto plano; el hasheo es responsabilidad del UserManager para
// que la entidad sea agnóstica del algoritmo.
type User struct {
	id             int
	username       string
	passwordHash   string
	email          string // vacío = sin email
	phone          string // vacío = sin teléfono
	failedAttempts int
	lockUntil      *time.Time // nil = no bloqueado
}

// NewUser construye un usuario completamente formado (carga desde JSON):
// conserva id, hash y contadores tal cual llegan.
func NewUser(id int, username, passwordHash, email, phone string,
	failedAttempts int, lockUntil *time.Time) (*User, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "debe ser un entero positivo"}
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, &domain.FormatError{Field: "password", Reason: "el hash no puede estar vacío"}
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	if failedAttempts < 0 {
		return nil, &domain.FormatError{Field: "failed_attempts", Reason: "debe ser un entero no negativo"}
	}
	return &User{
		id:             id,
		username:       username,
		passwordHash:   passwordHash,
		email:          email,
		phone:          phone,
		failedAttempts: failedAttempts,
		lockUntil:      lockUntil,
	}, nil
}

func (u *User) ID() int              { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Email() string        { return u.email }
func (u *User) Phone() string        { return u.phone }
func (u *User) FailedAttempts() int  { return u.failedAttempts }

// LockUntil devuelve el instante de desbloqueo, o nil si no hay bloqueo.
func (u *User) LockUntil() *time.Time { return u.lockUntil }

// SetUsername valida y cambia el nombre de usuario. La unicidad la comprueba
// el manager.
func (u *User) SetUsername(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.username = username
	return nil
}

// SetPasswordHash guarda un hash ya calculado. La validación de fortaleza se
// aplica sobre el texto plano antes de hashear, no aquí.
func (u *User) SetPasswordHash(hash string) error {
	if strings.TrimSpace(hash) == "" {
		return &domain.FormatError{Field: "password", Reason: "el hash no puede estar vacío"}
	}
	u.passwordHash = hash
	return nil
}

// SetEmail valida y cambia el email (vacío lo elimina).
func (u *User) SetEmail(email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	u.email = email
	return nil
}

// SetPhone valida y cambia el teléfono (vacío lo elimina).
func (u *User) SetPhone(phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	u.phone = phone
	return nil
}

// RecordFailedAttempt incrementa el contador de intentos fallidos y devuelve
// el nuevo valor.
func (u *User) RecordFailedAttempt() int {
	u.failedAttempts++
	return u.failedAttempts
}

// Lock fija el instante hasta el que la cuenta queda bloqueada.
func (u *User) Lock(until time.Time) {
	u.lockUntil = &until
}

// ResetLock limpia contador y bloqueo; se invoca en login exitoso o al
// expirar la ventana de bloqueo.
func (u *User) ResetLock() {
	u.failedAttempts = 0
	u.lockUntil = nil
}

// ValidateUsername aplica las reglas de formato del nombre de usuario:
// 3–20 caracteres del conjunto [a-zA-Z0-9_.-].
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return &domain.FormatError{Field: "username", Reason: "debe ser una cadena no vacía"}
	}
	if len(username) < 3 {
		return &domain.FormatError{Field: "username", Reason: "debe tener al menos 3 caracteres"}
	}
	if len(username) > 20 {
		return &domain.FormatError{Field: "username", Reason: "no debe superar 20 caracteres"}
	}
	if !usernameRE.MatchString(username) {
		return &domain.FormatError{
			Field:  "username",
			Reason: "solo puede contener letras, dígitos, guion bajo (_), guion (-) y punto (.)",
		}
	}
	return nil
}

// ValidatePassword aplica las reglas de fortaleza sobre la contraseña en
// texto plano: mínimo 8 caracteres, al menos un dígito, una mayúscula, una
// minúscula y un símbolo de passwordSymbols.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return &domain.FormatError{Field: "password", Reason: "debe ser una cadena no vacía"}
	}
	if len(password) < 8 {
		return &domain.FormatError{Field: "password", Reason: "debe tener al menos 8 caracteres"}
	}
	var hasDigit, hasUpper, hasLower, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
		if strings.ContainsRune(passwordSymbols, r) {
			hasSymbol = true
		}
	}
	switch {
	case !hasDigit:
		return &domain.FormatError{Field: "password", Reason: "debe contener al menos un dígito"}
	case !hasUpper:
		return &domain.FormatError{Field: "password", Reason: "debe contener al menos una mayúscula"}
	case !hasLower:
		return &domain.FormatError{Field: "password", Reason: "debe contener al menos una minúscula"}
	case !hasSymbol:
		return &domain.FormatError{
			Field:  "password",
			Reason: "debe contener al menos un carácter especial (" + passwordSymbols + ")",
		}
	}
	return nil
}

// ValidateEmail acepta vacío (campo opcional) o la forma simple
// local@dominio.tld.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if strings.TrimSpace(email) == "" {
		return &domain.FormatError{Field: "email", Reason: "debe ser una cadena no vacía"}
	}
	if !emailRE.MatchString(email) {
		return &domain.FormatError{Field: "email", Reason: "formato de email inválido"}
	}
	return nil
}

// ValidatePhone acepta vacío (campo opcional) o solo dígitos con longitud
// mínima de 3.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if strings.TrimSpace(phone) == "" {
		return &domain.FormatError{Field: "phone", Reason: "debe ser una cadena no vacía"}
	}
	if len(phone) < 3 {
		return &domain.FormatError{Field: "phone", Reason: "debe tener al menos 3 caracteres"}
	}
	if !phoneRE.MatchString(phone) {
		return &domain.FormatError{Field: "phone", Reason: "solo puede contener dígitos"}
	}
	return nil
}
