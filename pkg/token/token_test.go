package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventory-lite/pkg/token"
)

func TestGenerateAndParse(t *testing.T) {
	signed, err := token.Generate("secret", 7, "alice1", "inventory-lite", 60)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, username, err := token.Parse("secret", signed)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
	assert.Equal(t, "alice1", username)
}

func TestParseWrongSecret(t *testing.T) {
	signed, err := token.Generate("secret", 7, "alice1", "inventory-lite", 60)
	require.NoError(t, err)

	_, _, err = token.Parse("otro-secret", signed)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, _, err := token.Parse("secret", "no-es-un-jwt")
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := token.Generate("", 7, "alice1", "inventory-lite", 60)
	assert.Error(t, err)

	_, _, err = token.Parse("", "lo-que-sea")
	assert.Error(t, err)
}
