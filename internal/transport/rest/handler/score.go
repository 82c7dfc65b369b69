package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ethicscore/internal/service"
)

const defaultHotspotLimit = 10

// ScoreHandler handles score, rollup and hotspot endpoints
type ScoreHandler struct {
	scoreSvc *service.ScoreService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreSvc *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreSvc: scoreSvc}
}

// Compute handles POST /v1/projects/{projectId}/scores/{userId}/{questionnaireKey}/compute
func (h *ScoreHandler) Compute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	score, err := h.scoreSvc.ComputeScore(r.Context(), vars["projectId"], vars["userId"], vars["questionnaireKey"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.scoreSvc.InvalidateProject(r.Context(), vars["projectId"])
	writeJSON(w, http.StatusOK, score)
}

// ComputeCombined handles POST /v1/projects/{projectId}/scores/{userId}/combined/compute
func (h *ScoreHandler) ComputeCombined(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	score, err := h.scoreSvc.ComputeCombinedScore(r.Context(), vars["projectId"], vars["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.scoreSvc.InvalidateProject(r.Context(), vars["projectId"])
	writeJSON(w, http.StatusOK, score)
}

// List handles GET /v1/projects/{projectId}/scores
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	includeCombined, err := queryBool(r, "includeCombined")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	scores, err := h.scoreSvc.ListScores(r.Context(), mux.Vars(r)["projectId"], includeCombined)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

// ComputeProject handles POST /v1/projects/{projectId}/project-score/compute
func (h *ScoreHandler) ComputeProject(w http.ResponseWriter, r *http.Request) {
	includeCombined, err := queryBool(r, "includeCombined")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	project, err := h.scoreSvc.ComputeProjectScore(r.Context(), mux.Vars(r)["projectId"], r.URL.Query().Get("role"), includeCombined)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// GetProject handles GET /v1/projects/{projectId}/project-score
func (h *ScoreHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	includeCombined, err := queryBool(r, "includeCombined")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	project, err := h.scoreSvc.GetProjectScore(r.Context(), mux.Vars(r)["projectId"], r.URL.Query().Get("role"), includeCombined)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Hotspots handles GET /v1/projects/{projectId}/hotspots
func (h *ScoreHandler) Hotspots(w http.ResponseWriter, r *http.Request) {
	var threshold *float64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v >= 0 && v <= 1) {
			writeError(w, http.StatusBadRequest, "threshold must be a number between 0 and 1")
			return
		}
		threshold = &v
	}

	hotspots, err := h.scoreSvc.GetHotspots(r.Context(), mux.Vars(r)["projectId"], r.URL.Query().Get("questionnaireKey"), threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hotspots": hotspots})
}

// TopHotspots handles GET /v1/projects/{projectId}/hotspots/top
func (h *ScoreHandler) TopHotspots(w http.ResponseWriter, r *http.Request) {
	limit := defaultHotspotLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	entries, err := h.scoreSvc.TopHotspots(r.Context(), mux.Vars(r)["projectId"], limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hotspots": entries})
}

// RecomputeRequest narrows a bulk recompute
type RecomputeRequest struct {
	UserID           string `json:"userId"`
	QuestionnaireKey string `json:"questionnaireKey"`
	Role             string `json:"role"`
}

// Recompute handles POST /v1/projects/{projectId}/recompute
func (h *ScoreHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.scoreSvc.RecomputeProject(r.Context(), mux.Vars(r)["projectId"], service.RecomputeFilter{
		UserID:           req.UserID,
		QuestionnaireKey: req.QuestionnaireKey,
		Role:             req.Role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", service.ErrValidation, name)
	}
	return v, nil
}
