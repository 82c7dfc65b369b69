package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethicscore/internal/model"
)

func newTestAuth() *AuthService {
	auth := NewAuthService("operator", "secret-pass", "test-secret")
	auth.now = func() time.Time { return fixedNow }
	return auth
}

func TestLogin(t *testing.T) {
	auth := newTestAuth()

	_, err := auth.Login("operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := auth.Login("operator", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims, err := auth.ValidateOperatorToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.OperatorID, claims.OperatorID)
	assert.Equal(t, model.ScopeOperator, claims.Scope)

	_, err = auth.ValidateEvaluatorToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEvaluatorToken(t *testing.T) {
	auth := newTestAuth()

	resp, err := auth.IssueEvaluatorToken(model.EvaluatorTokenRequest{UserID: "u1", Role: "legal-expert", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(evaluatorTokenTTL).Unix(), resp.ExpiresAt)

	claims, err := auth.ValidateEvaluatorToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "legal-expert", claims.Role)
	assert.Equal(t, "p1", claims.ProjectID)

	_, err = auth.ValidateOperatorToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	auth.now = func() time.Time { return fixedNow.Add(evaluatorTokenTTL + time.Hour) }
	_, err = auth.ValidateEvaluatorToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	resp, err := newTestAuth().Login("operator", "secret-pass")
	require.NoError(t, err)

	other := NewAuthService("operator", "secret-pass", "another-secret")
	_, err = other.ValidateOperatorToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.ValidateOperatorToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
