// Package logger envuelve zerolog con la política de salida de la aplicación:
// consola legible con umbral debug en desarrollo, JSON con el nivel
// configurado en cualquier otro entorno.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env   string // development -> consola legible; otro -> JSON
	Level string // trace, debug, info, warn, error
}

// Logger wrapper sobre zerolog para inyección y consistencia.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger del proceso según el entorno y redirige el logger global
// de zerolog para librerías que lo usen. Un nivel vacío o no reconocido cae
// al umbral del entorno: debug en desarrollo, info en el resto.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	floor := zerolog.InfoLevel
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
		floor = zerolog.DebugLevel
	}

	l := newLogger(w, parseLevel(cfg.Level, floor))
	log.Logger = l.zl
	return l
}

// NewWriter crea un logger sobre un writer arbitrario. Pensado para tests que
// inspeccionan la salida JSON.
func NewWriter(w io.Writer, level string) *Logger {
	return newLogger(w, parseLevel(level, zerolog.InfoLevel))
}

func newLogger(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func parseLevel(s string, def zerolog.Level) zerolog.Level {
	lv, err := zerolog.ParseLevel(s)
	if err != nil || lv == zerolog.NoLevel {
		return def
	}
	return lv
}

// Trace, Debug, Info, Warn, Error delegados a zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog devuelve el logger interno por si se necesita la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
