package entity

import (
	"strings"

	"github.com/tu-usuario/inventory-lite/internal/domain"
)

// UnknownCategoryName es el centinela que marca una categoría eliminada.
// El borrado de categorías es lógico: se renombra en lugar de eliminarse
// para que los category_id de los productos sigan siendo resolubles.
const UnknownCategoryName = "Unknown"

// Category representa una categoría de productos. El ID es inmutable tras la
// construcción; el nombre puede cambiar vía SetName.
type Category struct {
	id   int
	name string
}

// NewCategory construye una categoría validando id y nombre.
func NewCategory(id int, name string) (*Category, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Field: "category_id", Reason: "debe ser un entero positivo"}
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{id: id, name: name}, nil
}

// ID devuelve el identificador de la categoría.
func (c *Category) ID() int { return c.id }

// Name devuelve el nombre actual.
func (c *Category) Name() string { return c.name }

// SetName cambia el nombre aplicando la misma regla que el constructor.
func (c *Category) SetName(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.name = name
	return nil
}

// MarkRemoved aplica el borrado lógico renombrando al centinela.
func (c *Category) MarkRemoved() {
	c.name = UnknownCategoryName
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.FormatError{Field: "name", Reason: "debe ser una cadena no vacía"}
	}
	return nil
}
