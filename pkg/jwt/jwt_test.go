package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	operatorID := uuid.New()

	token, err := GenerateToken(operatorID, "Jane", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, operatorID, claims.OperatorID)
	assert.Equal(t, "Jane", claims.Name)
	assert.False(t, claims.Demo)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("definitely.not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
