// Package jsonstore es el adaptador de persistencia sobre archivos JSON.
// El contrato del colaborador: Load nunca falla por archivo ausente, vacío o
// corrupto (devuelve la estructura por defecto); Save sobrescribe el archivo
// con salida indentada en UTF-8.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tu-usuario/inventory-lite/internal/application/dto"
	"github.com/tu-usuario/inventory-lite/pkg/logger"
)

// Store lee y escribe los documentos persistidos.
type Store struct {
	log *logger.Logger // opcional
}

// NewStore construye el adaptador. log puede ser nil.
func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// LoadInventory lee el documento de inventario. Archivo ausente, vacío o
// corrupto devuelve {"products": [], "categories": []}.
func (s *Store) LoadInventory(path string) *dto.InventoryDocument {
	doc := dto.DefaultInventoryDocument()
	s.load(path, doc, func() { doc = dto.DefaultInventoryDocument() })
	if doc.Categories == nil {
		doc.Categories = []dto.CategoryRecord{}
	}
	if doc.Products == nil {
		doc.Products = []dto.ProductRecord{}
	}
	return doc
}

// SaveInventory escribe el documento de inventario.
func (s *Store) SaveInventory(doc *dto.InventoryDocument, path string) error {
	return s.save(doc, path)
}

// LoadUsers lee el documento de usuarios. Archivo ausente, vacío o corrupto
// devuelve {"users": []}.
func (s *Store) LoadUsers(path string) *dto.UserDocument {
	doc := dto.DefaultUserDocument()
	s.load(path, doc, func() { doc = dto.DefaultUserDocument() })
	if doc.Users == nil {
		doc.Users = []dto.UserRecord{}
	}
	return doc
}

// SaveUsers escribe el documento de usuarios.
func (s *Store) SaveUsers(doc *dto.UserDocument, path string) error {
	return s.save(doc, path)
}

// load intenta deserializar path sobre target; ante cualquier problema
// invoca reset para dejar la estructura por defecto.
func (s *Store) load(path string, target any, reset func()) {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.debug("archivo no disponible, usando estructura por defecto", path, err)
		return
	}
	if strings.TrimSpace(string(raw)) == "" {
		s.debug("archivo vacío, usando estructura por defecto", path, nil)
		return
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.debug("JSON corrupto, usando estructura por defecto", path, err)
		reset()
	}
}

func (s *Store) save(doc any, path string) error {
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("serializar %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("guardar %s: %w", path, err)
	}
	return nil
}

func (s *Store) debug(msg, path string, err error) {
	if s.log == nil {
		return
	}
	ev := s.log.Debug().Str("path", path)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}
