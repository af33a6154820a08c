package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventory-lite/internal/domain"
)

// Product representa un producto del inventario. Cada setter revalida el
// campo y refresca LastModified; DateAdded es inmutable tras la construcción.
// La existencia del category_id referenciado NO se valida aquí: eso es
// responsabilidad del manager, para que Product no dependa del registro de
// categorías.
type Product struct {
	id           int
	name         string
	price        decimal.Decimal
	quantity     int
	categoryID   int
	dateAdded    time.Time
	lastModified time.Time
	description  string
}

// NewProduct construye un producto completamente formado (carga desde JSON):
// conserva id y timestamps tal cual llegan.
func NewProduct(id int, name string, price decimal.Decimal, quantity, categoryID int,
	dateAdded, lastModified time.Time, description string) (*Product, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "debe ser un entero positivo"}
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if categoryID <= 0 {
		return nil, &domain.ValidationError{Field: "category_id", Reason: "debe ser un entero positivo"}
	}
	return &Product{
		id:           id,
		name:         name,
		price:        price,
		quantity:     quantity,
		categoryID:   categoryID,
		dateAdded:    dateAdded,
		lastModified: lastModified,
		description:  description,
	}, nil
}

func (p *Product) ID() int                 { return p.id }
func (p *Product) Name() string            { return p.name }
func (p *Product) Price() decimal.Decimal  { return p.price }
func (p *Product) Quantity() int           { return p.quantity }
func (p *Product) CategoryID() int         { return p.categoryID }
func (p *Product) DateAdded() time.Time    { return p.dateAdded }
func (p *Product) LastModified() time.Time { return p.lastModified }
func (p *Product) Description() string     { return p.description }

// SetName valida y cambia el nombre.
func (p *Product) SetName(name string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.name = name
	p.touch()
	return nil
}

// SetPrice valida y cambia el precio.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.price = price
	p.touch()
	return nil
}

// SetQuantity valida y cambia la cantidad.
func (p *Product) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	p.quantity = quantity
	p.touch()
	return nil
}

// SetCategoryID cambia la categoría referenciada. La existencia de la
// categoría la comprueba el manager antes de llamar aquí.
func (p *Product) SetCategoryID(categoryID int) error {
	if categoryID <= 0 {
		return &domain.ValidationError{Field: "category_id", Reason: "debe ser un entero positivo"}
	}
	p.categoryID = categoryID
	p.touch()
	return nil
}

// SetDescription cambia la descripción (puede ser vacía).
func (p *Product) SetDescription(description string) error {
	p.description = description
	p.touch()
	return nil
}

// Info devuelve el resumen determinista del producto con todos sus campos.
// Se usa tanto para mostrar como de sustituto canónico de igualdad en los
// resultados de búsqueda.
func (p *Product) Info() string {
	return fmt.Sprintf(
		"ProductID: %d, Product name: %s, price: %s, quantity: %d, "+
			"category_id: %d, date_added: %s, last_modified: %s, description: %s",
		p.id, p.name, p.price.String(), p.quantity, p.categoryID,
		p.dateAdded.Format(time.RFC3339), p.lastModified.Format(time.RFC3339),
		p.description,
	)
}

func (p *Product) touch() {
	p.lastModified = time.Now()
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.FormatError{Field: "name", Reason: "debe ser una cadena no vacía"}
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return &domain.FormatError{Field: "price", Reason: "debe ser un número no negativo"}
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return &domain.FormatError{Field: "quantity", Reason: "debe ser un entero no negativo"}
	}
	return nil
}
