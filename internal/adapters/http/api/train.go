// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/okian/paddock/internal/app"
)

// TrainDependencies defines the interface for training operations.
type TrainDependencies interface {
	Train(ctx context.Context) (service.RunResult, error)
}

// TrainHandler handles model training requests.
type TrainHandler struct {
	deps TrainDependencies
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(deps TrainDependencies) *TrainHandler {
	return &TrainHandler{deps: deps}
}

// trainResponse mirrors the JSON shape returned by POST /train.
type trainResponse struct {
	RunID      string    `json:"run_id"`
	ModelType  string    `json:"model_type"`
	Method     string    `json:"validation_method"`
	Rows       int       `json:"rows"`
	Seed       int64     `json:"seed"`
	MAE        float64   `json:"mae"`
	Accuracy   float64   `json:"accuracy"`
	FoldMAE    []float64 `json:"fold_mae,omitempty"`
	TrainedAt  time.Time `json:"trained_at"`
	VectorSize int       `json:"vector_size"`
}

// HandleTrain handles POST /train requests.
func (h *TrainHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	result, err := h.deps.Train(r.Context())
	if err != nil {
		writeDomainError(w, "train", err)
		return
	}
	writeJSON(w, http.StatusOK, trainResponse{
		RunID:      result.RunID,
		ModelType:  result.ModelType,
		Method:     result.Report.Method,
		Rows:       result.Report.Rows,
		Seed:       result.Report.Seed,
		MAE:        result.Report.MAE,
		Accuracy:   result.Report.Accuracy,
		FoldMAE:    result.Report.FoldMAE,
		TrainedAt:  result.TrainedAt,
		VectorSize: result.Shape,
	})
}
