package model

import "github.com/golang-jwt/jwt/v5"

// Token scopes
const (
	ScopeOperator  = "operator"
	ScopeEvaluator = "evaluator"
)

// OperatorClaims are JWT claims for operator authentication
type OperatorClaims struct {
	OperatorID string `json:"operatorId"`
	Scope      string `json:"scope"`
	jwt.RegisteredClaims
}

// EvaluatorClaims are JWT claims for a project-scoped evaluator token
type EvaluatorClaims struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	ProjectID string `json:"projectId"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for operator login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token      string `json:"token"`
	OperatorID string `json:"operatorId"`
}

// EvaluatorTokenRequest asks for an evaluator token for one project
type EvaluatorTokenRequest struct {
	UserID    string `json:"userId" validate:"required"`
	Role      string `json:"role" validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
}

// EvaluatorTokenResponse carries an issued evaluator token
type EvaluatorTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
