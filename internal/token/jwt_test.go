package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	manager := NewJWT("test-secret", time.Hour)
	userID := uuid.New()

	tokenString, err := manager.Generate(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := manager.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWT_Parse_WrongSecret(t *testing.T) {
	manager := NewJWT("secret-a", time.Hour)
	other := NewJWT("secret-b", time.Hour)

	tokenString, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	_, err = other.Parse(tokenString)
	assert.Error(t, err)
}

func TestJWT_Parse_Expired(t *testing.T) {
	manager := NewJWT("test-secret", -time.Minute)

	tokenString, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	_, err = manager.Parse(tokenString)
	assert.Error(t, err)
}

func TestJWT_Parse_Garbage(t *testing.T) {
	manager := NewJWT("test-secret", time.Hour)

	_, err := manager.Parse("not-a-token")
	assert.Error(t, err)
}
