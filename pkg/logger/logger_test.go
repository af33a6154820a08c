package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/inventory-lite/pkg/logger"
)

func TestWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWriter(&buf, "warn")

	l.Info().Msg("descartado")
	assert.Empty(t, buf.String())

	l.Warn().Msg("emitido")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "emitido")
}

func TestWriterUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWriter(&buf, "gritando")

	l.Debug().Msg("descartado")
	assert.Empty(t, buf.String())

	l.Info().Msg("emitido")
	assert.Contains(t, buf.String(), "emitido")
}
