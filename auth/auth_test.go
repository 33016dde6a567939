package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter-2-secret")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter-2-secret", hash)

	assert.True(t, CheckPassword(hash, "hunter-2-secret"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("not-a-hash", "hunter-2-secret"))
}

func TestGenerateAndVerifyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	assert.NoError(t, InitJWTSecret())

	token, err := GenerateToken("user-123")
	assert.NoError(t, err)

	userID, err := VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	assert.NoError(t, InitJWTSecret())

	_, err := VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	assert.NoError(t, InitJWTSecret())

	token, err := GenerateToken("user-123")
	assert.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	assert.NoError(t, InitJWTSecret())

	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestOperatorIdentityRequiresUnit(t *testing.T) {
	_, err := OperatorIdentity("id-1", "Operator One", "op1", "")
	assert.Error(t, err)

	identity, err := OperatorIdentity("id-1", "Operator One", "op1", "irban1")
	assert.NoError(t, err)
	assert.False(t, identity.IsAdmin())
	assert.Equal(t, "irban1", identity.Unit())
}

func TestAdminIdentityHasNoUnit(t *testing.T) {
	identity := AdminIdentity("id-2", "Administrator", "admin")
	assert.True(t, identity.IsAdmin())
	assert.Equal(t, "", identity.Unit())
}
