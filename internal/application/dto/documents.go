// Package dto define las formas JSON persistidas. Los nombres de campo son
// el contrato estable entre versiones: no renombrar.
package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// InventoryDocument es el documento persistido del inventario.
type InventoryDocument struct {
	Categories []CategoryRecord `json:"categories"`
	Products   []ProductRecord  `json:"products"`
}

// DefaultInventoryDocument devuelve la estructura por defecto usada cuando el
// archivo falta, está vacío o es corrupto.
func DefaultInventoryDocument() *InventoryDocument {
	return &InventoryDocument{
		Categories: []CategoryRecord{},
		Products:   []ProductRecord{},
	}
}

// CategoryRecord es la forma persistida de una categoría.
type CategoryRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductRecord es la forma persistida de un producto.
type ProductRecord struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	CategoryID   int       `json:"category_id"`
	DateAdded    Timestamp `json:"date_added"`
	LastModified Timestamp `json:"last_modified"`
	Description  string    `json:"description"`
}

// UserDocument es el documento persistido de cuentas de usuario.
type UserDocument struct {
	Users []UserRecord `json:"users"`
}

// DefaultUserDocument devuelve la estructura por defecto de usuarios.
func DefaultUserDocument() *UserDocument {
	return &UserDocument{Users: []UserRecord{}}
}

// UserRecord es la forma persistida de un usuario. LockUntil es epoch en
// segundos (nullable), como lo escribía el sistema original.
type UserRecord struct {
	UserID         int      `json:"user_id"`
	Username       string   `json:"username"`
	Password       string   `json:"password"` // hash, nunca texto plano
	Email          *string  `json:"email"`
	Phone          *string  `json:"phone"`
	FailedAttempts int      `json:"failed_attempts"`
	LockUntil      *float64 `json:"lock_until"`
}

// Timestamp serializa como cadena RFC3339 y acepta al leer tanto RFC3339
// como epoch numérico (el contrato admite number|string).
type Timestamp struct {
	time.Time
}

// NewTimestamp envuelve un time.Time.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// MarshalJSON emite RFC3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// UnmarshalJSON acepta RFC3339 o epoch en segundos (entero o fraccional).
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			return fmt.Errorf("timestamp inválido %q: %w", s, perr)
		}
		t.Time = parsed
		return nil
	}
	var epoch float64
	if err := json.Unmarshal(data, &epoch); err != nil {
		return fmt.Errorf("timestamp inválido: %s", string(data))
	}
	sec, frac := math.Modf(epoch)
	t.Time = time.Unix(int64(sec), int64(frac*float64(time.Second)))
	return nil
}

// EpochSeconds convierte un time.Time a epoch en segundos.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromEpochSeconds convierte epoch en segundos a time.Time.
func FromEpochSeconds(epoch float64) time.Time {
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
