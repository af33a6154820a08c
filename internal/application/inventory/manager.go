// Package inventory implementa el manager del inventario: mapas de entidades
// por id, política de ids incrementales, invariantes entre entidades
// (existencia de categoría) y el contrato de import/export JSON.
package inventory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/tu-usuario/inventory-lite/internal/application/audit"
	"github.com/tu-usuario/inventory-lite/internal/application/dto"
	"github.com/tu-usuario/inventory-lite/internal/domain"
	"github.com/tu-usuario/inventory-lite/internal/domain/entity"
)

// CreateProductInput son los campos para crear un producto. El id y los
// timestamps los genera el manager.
type CreateProductInput struct {
	Name        string
	Price       decimal.Decimal
	Quantity    int
	Category    int
	Description string
}

// Manager posee en exclusiva las colecciones de productos y categorías.
// Todas las operaciones son cortas y en memoria; un único mutex grueso las
// protege por si el llamador usa varias goroutines.
type Manager struct {
	mu         sync.Mutex
	products   map[int]*entity.Product
	categories map[int]*entity.Category
	rec        audit.Recorder // opcional, nil = sin auditoría
	actor      func() int     // opcional, id del usuario de la sesión activa
}

// NewManager construye un manager vacío. rec puede ser nil.
func NewManager(rec audit.Recorder) *Manager {
	return &Manager{
		products:   make(map[int]*entity.Product),
		categories: make(map[int]*entity.Category),
		rec:        rec,
	}
}

// SetActor inyecta el proveedor del usuario activo para atribuir las acciones
// auditadas. fn puede ser nil; sin proveedor las acciones se registran con
// userID 0 (sin sesión).
func (m *Manager) SetActor(fn func() int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actor = fn
}

// LoadFromJSON puebla primero las categorías y después los productos desde un
// documento persistido. La importación es tolerante: un producto cuya
// categoría no existe se carga igualmente (resolver su nombre fallará luego
// con NotFound). Un id ya presente produce ErrDuplicate.
func (m *Manager) LoadFromJSON(doc *dto.InventoryDocument) error {
	if doc == nil {
		return &domain.ValidationError{Field: "document", Reason: "no puede ser nulo"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range doc.Categories {
		if _, ok := m.categories[rec.ID]; ok {
			return fmt.Errorf("categoría %d: %w", rec.ID, domain.ErrDuplicate)
		}
		cat, err := entity.NewCategory(rec.ID, rec.Name)
		if err != nil {
			return fmt.Errorf("categoría %d: %w", rec.ID, err)
		}
		m.categories[cat.ID()] = cat
	}
	for _, rec := range doc.Products {
		if _, ok := m.products[rec.ID]; ok {
			return fmt.Errorf("producto %d: %w", rec.ID, domain.ErrDuplicate)
		}
		p, err := entity.NewProduct(rec.ID, rec.Name, decimal.NewFromFloat(rec.Price),
			rec.Quantity, rec.CategoryID, rec.DateAdded.Time, rec.LastModified.Time,
			rec.Description)
		if err != nil {
			return fmt.Errorf("producto %d: %w", rec.ID, err)
		}
		m.products[p.ID()] = p
	}
	return nil
}

// ExportToJSON produce el documento persistido con el estado completo.
// Es la inversa exacta de LoadFromJSON (ley de ida y vuelta).
func (m *Manager) ExportToJSON() *dto.InventoryDocument {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := dto.DefaultInventoryDocument()
	for _, id := range m.sortedCategoryIDs() {
		c := m.categories[id]
		doc.Categories = append(doc.Categories, dto.CategoryRecord{ID: c.ID(), Name: c.Name()})
	}
	for _, id := range m.sortedProductIDs() {
		p := m.products[id]
		doc.Products = append(doc.Products, dto.ProductRecord{
			ID:           p.ID(),
			Name:         p.Name(),
			Price:        p.Price().InexactFloat64(),
			Quantity:     p.Quantity(),
			CategoryID:   p.CategoryID(),
			DateAdded:    dto.NewTimestamp(p.DateAdded()),
			LastModified: dto.NewTimestamp(p.LastModified()),
			Description:  p.Description(),
		})
	}
	return doc
}

// AddCategory crea una categoría con id = max actual + 1. Rechaza nombres
// vacíos o duplicados.
func (m *Manager) AddCategory(name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return 0, &domain.FormatError{Field: "name", Reason: "debe ser una cadena no vacía"}
	}
	for _, c := range m.categories {
		if c.Name() == name {
			return 0, fmt.Errorf("categoría %q: %w", name, domain.ErrDuplicate)
		}
	}
	id := m.maxCategoryIDLocked() + 1
	cat, err := entity.NewCategory(id, name)
	if err != nil {
		return 0, err
	}
	m.categories[id] = cat
	m.record(fmt.Sprintf("add_category id=%d name=%s", id, name))
	return id, nil
}

// RemoveCategory aplica borrado lógico: renombra a "Unknown" sin tocar los
// productos que la referencian.
func (m *Manager) RemoveCategory(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.categories[id]
	if !ok {
		return fmt.Errorf("categoría %d: %w", id, domain.ErrNotFound)
	}
	cat.MarkRemoved()
	m.record(fmt.Sprintf("remove_category id=%d", id))
	return nil
}

// UpdateCategoryName cambia el nombre de una categoría existente.
func (m *Manager) UpdateCategoryName(id int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.categories[id]
	if !ok {
		return fmt.Errorf("categoría %d: %w", id, domain.ErrNotFound)
	}
	if err := cat.SetName(name); err != nil {
		return err
	}
	m.record(fmt.Sprintf("update_category_name id=%d", id))
	return nil
}

// CategoryName devuelve el nombre de la categoría, o NotFound si el id no
// resuelve (incluye el caso de un category_id colgante tras import tolerante).
func (m *Manager) CategoryName(id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.categories[id]
	if !ok {
		return "", fmt.Errorf("categoría %d: %w", id, domain.ErrNotFound)
	}
	return cat.Name(), nil
}

// CategoryInfo devuelve el resumen legible de una categoría.
func (m *Manager) CategoryInfo(id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.categories[id]
	if !ok {
		return "", fmt.Errorf("categoría %d: %w", id, domain.ErrNotFound)
	}
	return fmt.Sprintf("CategoryID: %d, Category name: %s", cat.ID(), cat.Name()), nil
}

// CategoryExists informa si el id resuelve a una categoría conocida.
func (m *Manager) CategoryExists(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.categories[id]
	return ok
}

// Categories devuelve los ids de categoría ordenados.
func (m *Manager) Categories() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedCategoryIDs()
}

// MaxCategoryID devuelve el máximo id de categoría, 0 si no hay ninguna.
// Es la base de la política de siguiente id.
func (m *Manager) MaxCategoryID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxCategoryIDLocked()
}

// AddProduct crea un producto nuevo: valida que la categoría exista, asigna
// id = max actual + 1 y estampa ambos timestamps a ahora.
func (m *Manager) AddProduct(in CreateProductInput) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[in.Category]; !ok {
		return 0, fmt.Errorf("categoría %d: %w", in.Category, domain.ErrNotFound)
	}
	id := m.maxProductIDLocked() + 1
	now := time.Now()
	p, err := entity.NewProduct(id, in.Name, in.Price, in.Quantity, in.Category,
		now, now, in.Description)
	if err != nil {
		return 0, err
	}
	m.products[id] = p
	m.record(fmt.Sprintf("add_product id=%d name=%s", id, in.Name))
	return id, nil
}

// RemoveProduct elimina el producto de la colección (borrado duro, a
// diferencia de las categorías).
func (m *Manager) RemoveProduct(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	delete(m.products, id)
	m.record(fmt.Sprintf("remove_product id=%d", id))
	return nil
}

// UpdateProductName cambia el nombre; el setter refresca last_modified.
func (m *Manager) UpdateProductName(id int, name string) error {
	return m.updateProduct(id, "update_product_name", func(p *entity.Product) error {
		return p.SetName(name)
	})
}

// UpdateProductPrice cambia el precio.
func (m *Manager) UpdateProductPrice(id int, price decimal.Decimal) error {
	return m.updateProduct(id, "update_product_price", func(p *entity.Product) error {
		return p.SetPrice(price)
	})
}

// UpdateProductQuantity cambia la cantidad.
func (m *Manager) UpdateProductQuantity(id, quantity int) error {
	return m.updateProduct(id, "update_product_quantity", func(p *entity.Product) error {
		return p.SetQuantity(quantity)
	})
}

// UpdateProductDescription cambia la descripción.
func (m *Manager) UpdateProductDescription(id int, description string) error {
	return m.updateProduct(id, "update_product_description", func(p *entity.Product) error {
		return p.SetDescription(description)
	})
}

// UpdateProductCategory cambia la categoría referenciada validando antes que
// la nueva exista.
func (m *Manager) UpdateProductCategory(id, categoryID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	if _, ok := m.categories[categoryID]; !ok {
		return fmt.Errorf("categoría %d: %w", categoryID, domain.ErrNotFound)
	}
	if err := p.SetCategoryID(categoryID); err != nil {
		return err
	}
	m.record(fmt.Sprintf("update_product_category id=%d category=%d", id, categoryID))
	return nil
}

// FindProductByID devuelve la entidad o NotFound.
func (m *Manager) FindProductByID(id int) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// ProductInfo devuelve el resumen legible del producto.
func (m *Manager) ProductInfo(id int) (string, error) {
	p, err := m.FindProductByID(id)
	if err != nil {
		return "", err
	}
	return p.Info(), nil
}

// ProductCategoryName resuelve el nombre de la categoría del producto.
func (m *Manager) ProductCategoryName(id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return "", fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	cat, ok := m.categories[p.CategoryID()]
	if !ok {
		return "", fmt.Errorf("categoría %d: %w", p.CategoryID(), domain.ErrNotFound)
	}
	return cat.Name(), nil
}

// ProductExists informa si el id resuelve a un producto conocido.
func (m *Manager) ProductExists(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.products[id]
	return ok
}

// Products devuelve los ids de producto ordenados.
func (m *Manager) Products() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedProductIDs()
}

// MaxProductID devuelve el máximo id de producto, 0 si no hay ninguno.
func (m *Manager) MaxProductID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxProductIDLocked()
}

// TotalValue calcula Σ(precio × cantidad) sobre todos los productos.
func (m *Manager) TotalValue() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, p := range m.products {
		total = total.Add(p.Price().Mul(decimal.NewFromInt(int64(p.Quantity()))))
	}
	return total
}

// TotalValueByCategory restringe la suma a los productos de una categoría.
func (m *Manager) TotalValueByCategory(categoryID int) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, p := range m.products {
		if p.CategoryID() == categoryID {
			total = total.Add(p.Price().Mul(decimal.NewFromInt(int64(p.Quantity()))))
		}
	}
	return total
}

// SearchProduct busca por subcadena en el nombre sin distinguir mayúsculas
// (case folding Unicode). Sin coincidencias devuelve lista vacía, no error.
func (m *Manager) SearchProduct(keyword string) []*entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	fold := cases.Fold()
	needle := fold.String(keyword)
	results := make([]*entity.Product, 0)
	for _, id := range m.sortedProductIDs() {
		p := m.products[id]
		if strings.Contains(fold.String(p.Name()), needle) {
			results = append(results, p)
		}
	}
	return results
}

// ProductsByCategory devuelve los resúmenes de los productos que referencian
// la categoría.
func (m *Manager) ProductsByCategory(categoryID int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]string, 0)
	for _, id := range m.sortedProductIDs() {
		p := m.products[id]
		if p.CategoryID() == categoryID {
			infos = append(infos, p.Info())
		}
	}
	return infos
}

// IsProductAvailable devuelve true si el producto existe y tiene stock.
// La ausencia aquí no es un error: devuelve false.
func (m *Manager) IsProductAvailable(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	return ok && p.Quantity() > 0
}

func (m *Manager) updateProduct(id int, action string, mutate func(*entity.Product) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	if err := mutate(p); err != nil {
		return err
	}
	m.record(fmt.Sprintf("%s id=%d", action, id))
	return nil
}

// record se invoca con m.mu ya tomado.
func (m *Manager) record(action string) {
	if m.rec == nil {
		return
	}
	userID := 0
	if m.actor != nil {
		userID = m.actor()
	}
	m.rec.Record(userID, action)
}

func (m *Manager) maxProductIDLocked() int {
	max := 0
	for id := range m.products {
		if id > max {
			max = id
		}
	}
	return max
}

func (m *Manager) maxCategoryIDLocked() int {
	max := 0
	for id := range m.categories {
		if id > max {
			max = id
		}
	}
	return max
}

func (m *Manager) sortedProductIDs() []int {
	ids := make([]int, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *Manager) sortedCategoryIDs() []int {
	ids := make([]int, 0, len(m.categories))
	for id := range m.categories {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
