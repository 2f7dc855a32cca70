package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("emp-1", user.RoleManager)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])

	_, _, err = svc.GenerateAccessToken("", user.RoleEmployee)
	assert.ErrorIs(t, err, user.ErrEmployeeIDRequired)

	_, _, err = svc.GenerateAccessToken("emp-1", user.Role("intern"))
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestJWTService_SSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken("hr-1", user.RoleHR)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	employeeID, role, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "hr-1", employeeID)
	assert.Equal(t, user.RoleHR, role)

	access, _, err := svc.GenerateAccessToken("hr-1", user.RoleHR)
	require.NoError(t, err)
	_, _, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	other := NewJWTService("other-secret", time.Hour)
	_, _, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}
