package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"ethicscore/internal/model"
	"ethicscore/internal/service"
	"ethicscore/internal/transport/rest/middleware"
)

// ResponseHandler handles evaluator response endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// resolveUser decides which evaluator a request acts for. Evaluators are
// pinned to their own token; operators name the user explicitly.
func resolveUser(p *middleware.Principal, projectID, requested string) (string, error) {
	if !p.CanAccessProject(projectID) {
		return "", service.ErrForbidden
	}
	if p.IsOperator() {
		if requested == "" {
			return "", service.ErrValidation
		}
		return requested, nil
	}
	if requested != "" && requested != p.UserID {
		return "", service.ErrForbidden
	}
	return p.UserID, nil
}

// SaveDraft handles PUT /v1/projects/{projectId}/responses/{questionnaireKey}
func (h *ResponseHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var draft model.Response
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := resolveUser(principal, vars["projectId"], draft.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	draft.ProjectID = vars["projectId"]
	draft.QuestionnaireKey = vars["questionnaireKey"]
	draft.UserID = userID
	if !principal.IsOperator() {
		draft.Role = principal.Role
	}

	if err := h.responseSvc.SaveDraft(r.Context(), &draft); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &draft)
}

// Get handles GET /v1/projects/{projectId}/responses/{questionnaireKey}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := resolveUser(principal, vars["projectId"], r.URL.Query().Get("userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response, err := h.responseSvc.Get(r.Context(), vars["projectId"], userID, vars["questionnaireKey"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// Submit handles POST /v1/projects/{projectId}/responses/{questionnaireKey}/submit
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := resolveUser(principal, vars["projectId"], r.URL.Query().Get("userId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	score, err := h.responseSvc.Submit(r.Context(), vars["projectId"], userID, vars["questionnaireKey"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, score)
}
