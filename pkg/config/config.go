package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde
// env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Store   StoreConfig
	Auth    AuthConfig
	Session SessionConfig
	Log     LogConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// StoreConfig rutas de los documentos JSON persistidos.
type StoreConfig struct {
	InventoryPath string
	UsersPath     string
}

// AuthConfig parámetros del bloqueo de cuenta y del hasheo.
type AuthConfig struct {
	MaxAttempts int // intentos fallidos antes de bloquear
	LockMinutes int // duración de la ventana de bloqueo
	BcryptCost  int
}

// LockFor devuelve la ventana de bloqueo como duración.
func (c AuthConfig) LockFor() time.Duration {
	return time.Duration(c.LockMinutes) * time.Minute
}

// SessionConfig configuración de los tokens de sesión.
type SessionConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// LogConfig configuración del logger.
type LogConfig struct {
	Level string
}

// Load lee la configuración desde variables de entorno (y opcionalmente
// desde archivo). Las env vars tienen prioridad. Nombres esperados:
// APP_ENV, STORE_INVENTORY_PATH, AUTH_MAX_ATTEMPTS, SESSION_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "inventory-lite"),
		},
		Store: StoreConfig{
			InventoryPath: getString(v, "STORE_INVENTORY_PATH", "data.json"),
			UsersPath:     getString(v, "STORE_USERS_PATH", "user.json"),
		},
		Auth: AuthConfig{
			MaxAttempts: getInt(v, "AUTH_MAX_ATTEMPTS", 3),
			LockMinutes: getInt(v, "AUTH_LOCK_MINUTES", 2),
			BcryptCost:  getInt(v, "AUTH_BCRYPT_COST", 0), // 0 = coste por defecto de bcrypt
		},
		Session: SessionConfig{
			Secret:     getString(v, "SESSION_SECRET", ""),
			Expiration: getInt(v, "SESSION_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "SESSION_ISSUER", "inventory-lite"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			// Un valor no numérico (p.ej. AUTH_MAX_ATTEMPTS=abc) conserva
			// el valor por defecto en vez de degradarse a 0.
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
