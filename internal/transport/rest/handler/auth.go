package handler

import (
	"encoding/json"
	"net/http"

	"ethicscore/internal/model"
	"ethicscore/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := service.Validate(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// IssueEvaluatorToken handles POST /v1/evaluator-tokens
func (h *AuthHandler) IssueEvaluatorToken(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluatorTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := service.Validate(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := h.authSvc.IssueEvaluatorToken(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
