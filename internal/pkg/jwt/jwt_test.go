package jwt

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")
	employeeID := "emp-1"

	token, expiresAt, err := svc.GenerateAccessToken("user-1", &employeeID, RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), decoded, nil)
	claims, err := ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleManager, claims.Role)
	require.NotNil(t, claims.EmployeeID)
	assert.Equal(t, "emp-1", *claims.EmployeeID)
}

func TestGenerateAccessToken_BadDuration(t *testing.T) {
	_, _, err := NewJWTService("test-secret", "forever").GenerateAccessToken("user-1", nil, RoleEmployee)
	assert.Error(t, err)
}

func TestClaimsFromContext_WrongType(t *testing.T) {
	auth := NewJWTService("test-secret", "15m").JWTAuth()
	token, _, err := auth.Encode(map[string]interface{}{"user_id": "user-1", "type": "refresh"})
	require.NoError(t, err)

	_, err = ClaimsFromContext(jwtauth.NewContext(context.Background(), token, nil))
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRoleCanApprove(t *testing.T) {
	assert.True(t, RoleAdmin.CanApprove())
	assert.True(t, RoleManager.CanApprove())
	assert.False(t, RoleEmployee.CanApprove())
	assert.False(t, Role("").CanApprove())
}
