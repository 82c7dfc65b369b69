package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ethicscore/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const evaluatorTokenTTL = 30 * 24 * time.Hour

// AuthService handles operator and evaluator authentication
type AuthService struct {
	operatorUsername string
	operatorPassword string
	jwtSecret        []byte
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(username, password, secret string) *AuthService {
	return &AuthService{
		operatorUsername: username,
		operatorPassword: password,
		jwtSecret:        []byte(secret),
		now:              time.Now,
	}
}

// Login validates operator credentials and returns a permanent token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.operatorUsername || password != s.operatorPassword {
		return nil, ErrInvalidCredentials
	}

	operatorID := "op_" + uuid.New().String()[:8]

	claims := &model.OperatorClaims{
		OperatorID: operatorID,
		Scope:      model.ScopeOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:      tokenString,
		OperatorID: operatorID,
	}, nil
}

// ValidateOperatorToken validates an operator JWT and returns claims
func (s *AuthService) ValidateOperatorToken(tokenString string) (*model.OperatorClaims, error) {
	claims := &model.OperatorClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != model.ScopeOperator || claims.OperatorID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueEvaluatorToken creates a project-scoped token for an evaluator
func (s *AuthService) IssueEvaluatorToken(req model.EvaluatorTokenRequest) (*model.EvaluatorTokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(evaluatorTokenTTL)
	claims := &model.EvaluatorClaims{
		UserID:    req.UserID,
		Role:      req.Role,
		ProjectID: req.ProjectID,
		Scope:     model.ScopeEvaluator,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		return nil, err
	}
	return &model.EvaluatorTokenResponse{Token: tokenString, ExpiresAt: expiresAt.Unix()}, nil
}

// ValidateEvaluatorToken validates an evaluator JWT and returns claims
func (s *AuthService) ValidateEvaluatorToken(tokenString string) (*model.EvaluatorClaims, error) {
	claims := &model.EvaluatorClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != model.ScopeEvaluator || claims.UserID == "" || claims.ProjectID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
