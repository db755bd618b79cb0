// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/paddock/internal/adapters/repository"
	service "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/domain/feature"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/ranker"
	"github.com/okian/paddock/internal/domain/trainer"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Profile store operations.
	CreateProfile(ctx context.Context, p model.HorseProfile) error
	UpdateProfile(ctx context.Context, p model.HorseProfile) error
	DeleteProfile(ctx context.Context, id string) error
	Profile(ctx context.Context, id string) (model.HorseProfile, error)
	Profiles(ctx context.Context) ([]model.HorseProfile, error)
	AppendRecord(ctx context.Context, r model.TrainingRecord) error
	History(ctx context.Context, horseID string) ([]model.TrainingRecord, error)
	RecordSignal(ctx context.Context, sig model.ContextSignal)

	// Engine operations.
	Train(ctx context.Context) (service.RunResult, error)
	Recommend(ctx context.Context, horseID string) ([]model.Recommendation, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	horsesHandler    *HorsesHandler
	trainHandler     *TrainHandler
	recommendHandler *RecommendHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		horsesHandler:    NewHorsesHandler(deps),
		trainHandler:     NewTrainHandler(deps),
		recommendHandler: NewRecommendHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/horses", MetricsMiddleware(s.horsesHandler.HandleCollection, "horses"))
	mux.HandleFunc("/horses/", MetricsMiddleware(s.horsesHandler.HandleItem, "horses"))
	mux.HandleFunc("/train", MetricsMiddleware(s.trainHandler.HandleTrain, "train"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendHandler.HandleGetRecommendations, "recommendations"))
}

// horseRequest mirrors the JSON schema for horse profile writes.
type horseRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Breed      string `json:"breed"`
	BirthDate  string `json:"birth_date"`
	LineageRef string `json:"lineage_ref,omitempty"`
}

func (h horseRequest) validate() error {
	switch {
	case strings.TrimSpace(h.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(h.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(h.BirthDate) == "":
		return errors.New("missing birth_date")
	}
	if _, err := time.Parse(time.RFC3339, h.BirthDate); err != nil {
		return errors.New("invalid birth_date; must be RFC3339")
	}
	return nil
}

func (h horseRequest) toProfile() model.HorseProfile {
	born, _ := time.Parse(time.RFC3339, h.BirthDate)
	return model.HorseProfile{
		ID:         h.ID,
		Name:       h.Name,
		Breed:      h.Breed,
		BirthDate:  born,
		LineageRef: h.LineageRef,
	}
}

// recordRequest mirrors the JSON schema for POST /horses/{id}/records.
type recordRequest struct {
	TS              string  `json:"ts"`
	Exercise        string  `json:"exercise"`
	DurationMinutes int     `json:"duration_minutes"`
	Intensity       string  `json:"intensity"`
	Outcome         float64 `json:"outcome"`
}

func (r recordRequest) validate() error {
	switch {
	case strings.TrimSpace(r.TS) == "":
		return errors.New("missing ts")
	case strings.TrimSpace(r.Exercise) == "":
		return errors.New("missing exercise")
	case r.DurationMinutes <= 0:
		return errors.New("duration_minutes must be positive")
	case model.ParseIntensity(r.Intensity) == 0:
		return errors.New("intensity must be low, medium, or high")
	case r.Outcome < 1 || r.Outcome > 10:
		return errors.New("outcome must be between 1 and 10")
	}
	if _, err := time.Parse(time.RFC3339, r.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (r recordRequest) toRecord(horseID string) model.TrainingRecord {
	ts, _ := time.Parse(time.RFC3339, r.TS)
	return model.TrainingRecord{
		HorseID:         horseID,
		Timestamp:       ts,
		Exercise:        model.Exercise(r.Exercise),
		DurationMinutes: r.DurationMinutes,
		Intensity:       model.ParseIntensity(r.Intensity),
		Outcome:         r.Outcome,
	}
}

// signalRequest mirrors the JSON schema for POST /horses/{id}/signals.
type signalRequest struct {
	TS       string  `json:"ts"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

func (s signalRequest) validate() error {
	switch {
	case strings.TrimSpace(s.TS) == "":
		return errors.New("missing ts")
	case strings.TrimSpace(s.Category) == "":
		return errors.New("missing category")
	}
	switch model.SignalCategory(s.Category) {
	case model.SignalWeather, model.SignalDiet, model.SignalMedical, model.SignalLineage:
	default:
		return errors.New("category must be weather, diet, medical, or lineage")
	}
	if _, err := time.Parse(time.RFC3339, s.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (s signalRequest) toSignal(horseID string) model.ContextSignal {
	ts, _ := time.Parse(time.RFC3339, s.TS)
	return model.ContextSignal{
		HorseID:   horseID,
		Category:  model.SignalCategory(s.Category),
		Timestamp: ts,
		Value:     s.Value,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps engine errors onto HTTP statuses. Data and
// configuration defects are distinguished so operators can tell a bad request
// from a broken deployment.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrDuplicateID):
		writeError(w, http.StatusConflict, "duplicate_id", err)
	case errors.Is(err, repository.ErrInvalidRow),
		errors.Is(err, feature.ErrInvalidProfile),
		errors.Is(err, trainer.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrTrainingInProgress):
		writeError(w, http.StatusConflict, "training_in_progress", err)
	case errors.Is(err, service.ErrModelNotTrained):
		writeError(w, http.StatusConflict, "model_not_trained", err)
	case errors.Is(err, ranker.ErrEmptyActionSpace),
		errors.Is(err, ranker.ErrModelShapeMismatch),
		errors.Is(err, feature.ErrMissingRequiredSignal):
		// Misconfiguration, not caller error.
		writeError(w, http.StatusInternalServerError, "misconfigured", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
	}
}
