// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// RecommendDependencies defines the interface for recommendation queries.
type RecommendDependencies interface {
	Recommend(ctx context.Context, horseID string) ([]model.Recommendation, error)
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps RecommendDependencies
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps RecommendDependencies) *RecommendHandler {
	return &RecommendHandler{deps: deps}
}

// recommendationsResponse mirrors the JSON shape for GET /recommendations/{id}.
type recommendationsResponse struct {
	HorseID         string                 `json:"horse_id"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// HandleGetRecommendations handles GET /recommendations/{horse_id} requests.
func (h *RecommendHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	// Extract path parameter after /recommendations/
	path := strings.TrimPrefix(r.URL.Path, "/recommendations/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	recs, err := h.deps.Recommend(r.Context(), path)
	if err != nil {
		writeDomainError(w, "recommend", err)
		return
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{HorseID: path, Recommendations: recs})
}
