package audit_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-lite/internal/application/audit"
	"github.com/tu-usuario/inventory-lite/pkg/logger"
)

func TestTrailRecordAndFilter(t *testing.T) {
	tr := audit.NewTrail(nil)

	tr.Record(1, "login")
	tr.Record(2, "add_product id=1")
	tr.Record(1, "logout")

	all := tr.Actions(0)
	require.Len(t, all, 3)

	mine := tr.Actions(1)
	require.Len(t, mine, 2)
	assert.Equal(t, "login", mine[0].Action)
	assert.Equal(t, "logout", mine[1].Action)
	assert.False(t, mine[0].Timestamp.IsZero())

	assert.Empty(t, tr.Actions(42))
}

func TestTrailSessionDuration(t *testing.T) {
	tr := audit.NewTrail(nil)

	_, ok := tr.SessionDuration(1)
	assert.False(t, ok)

	tr.SetLoginTime(1)
	_, ok = tr.SessionDuration(1)
	assert.False(t, ok, "sin logout no hay duración")

	tr.SetLogoutTime(1)
	d, ok := tr.SessionDuration(1)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int64(d), int64(0))
}

func TestTrailEmitsStructuredLog(t *testing.T) {
	var buf bytes.Buffer
	tr := audit.NewTrail(logger.NewWriter(&buf, "info"))

	tr.Record(3, "remove_product id=9")

	out := buf.String()
	assert.Contains(t, out, `"user_id":3`)
	assert.Contains(t, out, `"action":"remove_product id=9"`)
}
