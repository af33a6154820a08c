package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/inventory-lite/internal/application/audit"
	"github.com/tu-usuario/inventory-lite/internal/application/auth"
	"github.com/tu-usuario/inventory-lite/internal/application/inventory"
	"github.com/tu-usuario/inventory-lite/internal/domain"
	"github.com/tu-usuario/inventory-lite/internal/infrastructure/jsonstore"
	"github.com/tu-usuario/inventory-lite/internal/infrastructure/security"
	"github.com/tu-usuario/inventory-lite/pkg/config"
	"github.com/tu-usuario/inventory-lite/pkg/logger"
)

// app agrupa los colaboradores del menú.
type app struct {
	cfg     *config.Config
	store   *jsonstore.Store
	inv     *inventory.Manager
	users   *auth.Manager
	trail   *audit.Trail
	session *auth.Session
	in      *bufio.Reader
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	trail := audit.NewTrail(log)
	store := jsonstore.NewStore(log)
	inv := inventory.NewManager(trail)
	users := auth.NewManager(
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.Config{
			MaxAttempts:     cfg.Auth.MaxAttempts,
			LockFor:         cfg.Auth.LockFor(),
			TokenSecret:     sessionSecret(cfg),
			TokenIssuer:     cfg.Session.Issuer,
			TokenExpMinutes: cfg.Session.Expiration,
		},
		trail,
	)

	if err := inv.LoadFromJSON(store.LoadInventory(cfg.Store.InventoryPath)); err != nil {
		log.Fatal().Err(err).Msg("cargar inventario")
	}
	if err := users.LoadFromJSON(store.LoadUsers(cfg.Store.UsersPath)); err != nil {
		log.Fatal().Err(err).Msg("cargar usuarios")
	}

	a := &app{
		cfg:   cfg,
		store: store,
		inv:   inv,
		users: users,
		trail: trail,
		in:    bufio.NewReader(os.Stdin),
	}
	// Las mutaciones del inventario se atribuyen al usuario con sesión activa.
	inv.SetActor(a.currentUserID)
	a.run()
}

// currentUserID devuelve el id del usuario con sesión activa, o 0 si no hay
// sesión.
func (a *app) currentUserID() int {
	if a.session != nil {
		return a.session.UserID
	}
	return 0
}

// sessionSecret devuelve el secreto configurado o uno de desarrollo para que
// la CLI funcione sin configuración previa.
func sessionSecret(cfg *config.Config) string {
	if cfg.Session.Secret != "" {
		return cfg.Session.Secret
	}
	return "inventory-lite-dev-secret"
}

func (a *app) run() {
	fmt.Println("Bienvenido a inventory-lite")
	for {
		fmt.Println(`
Elige una opción:

1 - Iniciar sesión
2 - Registrarse
3 - Salir`)
		switch a.prompt("Opción: ") {
		case "1":
			a.login()
		case "2":
			a.register()
		case "3":
			fmt.Println("Hasta pronto.")
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func (a *app) login() {
	username := a.prompt("Usuario: ")
	password := a.prompt("Contraseña: ")
	s, err := a.users.Login(username, password)
	// El estado de intentos/bloqueo cambia también en los fallos: persistir
	// siempre tras cada intento.
	a.saveUsers()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.session = s
	a.trail.SetLoginTime(s.UserID)
	fmt.Printf("Sesión iniciada como %s.\n", s.Username)
	a.inventoryMenu()
}

func (a *app) register() {
	in := auth.RegisterInput{
		Username:        a.prompt("Usuario: "),
		Password:        a.prompt("Contraseña: "),
		ConfirmPassword: a.prompt("Confirmar contraseña: "),
		Email:           a.prompt("Email (opcional): "),
		Phone:           a.prompt("Teléfono (opcional): "),
	}
	u, err := a.users.Register(in)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.saveUsers()
	fmt.Printf("Registro exitoso. Tu id de usuario es %d.\n", u.ID())
}

func (a *app) inventoryMenu() {
	for {
		fmt.Println(`
Inventario:

1 - Listar productos
2 - Listar categorías
3 - Buscar producto
4 - Añadir producto
5 - Añadir categoría
6 - Actualizar producto
7 - Eliminar producto
8 - Eliminar categoría
9 - Productos por categoría
10 - Valor total del inventario
11 - Mi perfil
12 - Cerrar sesión`)
		switch a.prompt("Opción: ") {
		case "1":
			for _, id := range a.inv.Products() {
				info, _ := a.inv.ProductInfo(id)
				fmt.Println(info)
			}
		case "2":
			for _, id := range a.inv.Categories() {
				info, _ := a.inv.CategoryInfo(id)
				fmt.Println(info)
			}
		case "3":
			results := a.inv.SearchProduct(a.prompt("Palabra clave: "))
			if len(results) == 0 {
				fmt.Println("Sin resultados.")
			}
			for _, p := range results {
				fmt.Println(p.Info())
			}
		case "4":
			a.addProduct()
		case "5":
			a.addCategory()
		case "6":
			a.updateProduct()
		case "7":
			a.removeByID("Id de producto: ", a.inv.RemoveProduct)
		case "8":
			a.removeByID("Id de categoría: ", a.inv.RemoveCategory)
		case "9":
			catID, ok := a.promptInt("Id de categoría: ")
			if !ok {
				continue
			}
			for _, info := range a.inv.ProductsByCategory(catID) {
				fmt.Println(info)
			}
			fmt.Println("Valor de la categoría:", a.inv.TotalValueByCategory(catID).String())
		case "10":
			fmt.Println("Valor total:", a.inv.TotalValue().String())
		case "11":
			a.profileMenu()
		case "12":
			if err := a.users.Logout(a.session); err != nil {
				fmt.Println("Error:", err)
				continue
			}
			a.trail.SetLogoutTime(a.session.UserID)
			if d, ok := a.trail.SessionDuration(a.session.UserID); ok {
				fmt.Println("Duración de la sesión:", d.Round(time.Second))
			}
			a.session = nil
			a.saveUsers()
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func (a *app) addProduct() {
	name := a.prompt("Nombre: ")
	price, err := decimal.NewFromString(a.prompt("Precio: "))
	if err != nil {
		fmt.Println("Precio inválido.")
		return
	}
	qty, ok := a.promptInt("Cantidad: ")
	if !ok {
		return
	}
	catID, ok := a.promptInt("Id de categoría: ")
	if !ok {
		return
	}
	id, err := a.inv.AddProduct(inventory.CreateProductInput{
		Name:        name,
		Price:       price,
		Quantity:    qty,
		Category:    catID,
		Description: a.prompt("Descripción (opcional): "),
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.saveInventory()
	fmt.Printf("Producto %d añadido.\n", id)
}

func (a *app) addCategory() {
	id, err := a.inv.AddCategory(a.prompt("Nombre de la categoría: "))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.saveInventory()
	fmt.Printf("Categoría %d añadida.\n", id)
}

func (a *app) updateProduct() {
	id, ok := a.promptInt("Id de producto: ")
	if !ok {
		return
	}
	fmt.Println(`
Campo a actualizar:

1 - Nombre
2 - Precio
3 - Cantidad
4 - Categoría
5 - Descripción`)
	var err error
	switch a.prompt("Opción: ") {
	case "1":
		err = a.inv.UpdateProductName(id, a.prompt("Nuevo nombre: "))
	case "2":
		var price decimal.Decimal
		price, err = decimal.NewFromString(a.prompt("Nuevo precio: "))
		if err == nil {
			err = a.inv.UpdateProductPrice(id, price)
		}
	case "3":
		qty, ok := a.promptInt("Nueva cantidad: ")
		if !ok {
			return
		}
		err = a.inv.UpdateProductQuantity(id, qty)
	case "4":
		catID, ok := a.promptInt("Nueva categoría: ")
		if !ok {
			return
		}
		err = a.inv.UpdateProductCategory(id, catID)
	case "5":
		err = a.inv.UpdateProductDescription(id, a.prompt("Nueva descripción: "))
	default:
		fmt.Println("Opción inválida.")
		return
	}
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.saveInventory()
	fmt.Println("Producto actualizado.")
}

func (a *app) profileMenu() {
	fmt.Println(`
Perfil:

1 - Cambiar usuario
2 - Cambiar contraseña
3 - Cambiar email
4 - Cambiar teléfono`)
	var err error
	switch a.prompt("Opción: ") {
	case "1":
		err = a.users.UpdateUsername(a.session, a.prompt("Nuevo usuario: "))
	case "2":
		err = a.users.UpdatePassword(a.session,
			a.prompt("Nueva contraseña: "), a.prompt("Confirmar contraseña: "))
	case "3":
		err = a.users.UpdateEmail(a.session, a.prompt("Nuevo email: "))
	case "4":
		err = a.users.UpdatePhone(a.session, a.prompt("Nuevo teléfono: "))
	default:
		fmt.Println("Opción inválida.")
		return
	}
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.saveUsers()
	fmt.Println("Perfil actualizado.")
}

func (a *app) removeByID(label string, remove func(int) error) {
	id, ok := a.promptInt(label)
	if !ok {
		return
	}
	if err := remove(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Println("No encontrado.")
		} else {
			fmt.Println("Error:", err)
		}
		return
	}
	a.saveInventory()
	fmt.Println("Eliminado.")
}

func (a *app) saveInventory() {
	if err := a.store.SaveInventory(a.inv.ExportToJSON(), a.cfg.Store.InventoryPath); err != nil {
		fmt.Println("Error al guardar inventario:", err)
	}
}

func (a *app) saveUsers() {
	if err := a.store.SaveUsers(a.users.ExportToJSON(), a.cfg.Store.UsersPath); err != nil {
		fmt.Println("Error al guardar usuarios:", err)
	}
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) promptInt(label string) (int, bool) {
	n, err := strconv.Atoi(a.prompt(label))
	if err != nil {
		fmt.Println("Número inválido.")
		return 0, false
	}
	return n, true
}
