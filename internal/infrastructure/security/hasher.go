// Package security implementa el colaborador de hasheo de contraseñas con
// bcrypt (algoritmo con sal y coste configurable).
package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/inventory-lite/internal/application/auth"
)

var _ auth.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher hashea y verifica contraseñas con bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher construye el hasher. cost <= 0 usa el coste por defecto de
// bcrypt.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash devuelve el hash bcrypt de la contraseña en texto plano.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify comprueba la contraseña contra el hash almacenado.
func (h *BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
