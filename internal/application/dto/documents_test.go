package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-lite/internal/application/dto"
)

// El contrato admite number|string para los timestamps de producto: se emite
// RFC3339 pero se acepta también epoch numérico de documentos antiguos.
func TestTimestampAcceptsBothForms(t *testing.T) {
	var ts dto.Timestamp

	require.NoError(t, json.Unmarshal([]byte(`"2026-01-01T10:30:00Z"`), &ts))
	assert.Equal(t, 2026, ts.Year())

	require.NoError(t, json.Unmarshal([]byte(`1767263400`), &ts))
	assert.True(t, ts.Equal(time.Unix(1767263400, 0)))

	require.NoError(t, json.Unmarshal([]byte(`1767263400.25`), &ts))
	assert.Equal(t, int64(1767263400), ts.Unix())

	assert.Error(t, json.Unmarshal([]byte(`"ayer"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ts))
}

func TestTimestampEmitsRFC3339(t *testing.T) {
	ts := dto.NewTimestamp(time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC))
	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-01T10:30:00Z"`, string(raw))
}

func TestEpochSecondsRoundTrip(t *testing.T) {
	now := time.Now()
	got := dto.FromEpochSeconds(dto.EpochSeconds(now))
	assert.WithinDuration(t, now, got, time.Millisecond)
}

func TestDefaultDocuments(t *testing.T) {
	inv := dto.DefaultInventoryDocument()
	raw, err := json.Marshal(inv)
	require.NoError(t, err)
	// Las colecciones por defecto serializan como [] y no como null.
	assert.JSONEq(t, `{"categories":[],"products":[]}`, string(raw))

	users := dto.DefaultUserDocument()
	raw, err = json.Marshal(users)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[]}`, string(raw))
}
