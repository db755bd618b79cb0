// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// HorsesDependencies defines the interface for horse profile operations.
type HorsesDependencies interface {
	CreateProfile(ctx context.Context, p model.HorseProfile) error
	UpdateProfile(ctx context.Context, p model.HorseProfile) error
	DeleteProfile(ctx context.Context, id string) error
	Profile(ctx context.Context, id string) (model.HorseProfile, error)
	Profiles(ctx context.Context) ([]model.HorseProfile, error)
	AppendRecord(ctx context.Context, r model.TrainingRecord) error
	History(ctx context.Context, horseID string) ([]model.TrainingRecord, error)
	RecordSignal(ctx context.Context, sig model.ContextSignal)
}

// HorsesHandler handles horse profile and training record requests.
type HorsesHandler struct {
	deps HorsesDependencies
}

// NewHorsesHandler creates a new horses handler.
func NewHorsesHandler(deps HorsesDependencies) *HorsesHandler {
	return &HorsesHandler{deps: deps}
}

// HandleCollection handles GET /horses and POST /horses requests.
func (h *HorsesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	}
}

// HandleItem handles /horses/{id} and /horses/{id}/records requests.
func (h *HorsesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/horses/")
	id, rest, nested := strings.Cut(path, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if nested {
		switch {
		case rest == "records" && r.Method == http.MethodPost:
			h.appendRecord(w, r, id)
		case rest == "records" && r.Method == http.MethodGet:
			h.history(w, r, id)
		case rest == "signals" && r.Method == http.MethodPost:
			h.recordSignal(w, r, id)
		case rest == "records", rest == "signals":
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		default:
			http.NotFound(w, r)
		}
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	}
}

func (h *HorsesHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.deps.Profiles(r.Context())
	if err != nil {
		writeDomainError(w, "list horses", err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *HorsesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req horseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.CreateProfile(r.Context(), req.toProfile()); err != nil {
		writeDomainError(w, "create horse", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "id": req.ID})
}

func (h *HorsesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.deps.Profile(r.Context(), id)
	if err != nil {
		writeDomainError(w, "get horse", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *HorsesHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req horseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	// Path wins over body for identity.
	req.ID = id
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.UpdateProfile(r.Context(), req.toProfile()); err != nil {
		writeDomainError(w, "update horse", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "id": id})
}

func (h *HorsesHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.deps.DeleteProfile(r.Context(), id); err != nil {
		writeDomainError(w, "delete horse", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (h *HorsesHandler) appendRecord(w http.ResponseWriter, r *http.Request, id string) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.deps.AppendRecord(r.Context(), req.toRecord(id)); err != nil {
		writeDomainError(w, "append record", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "horse_id": id})
}

func (h *HorsesHandler) history(w http.ResponseWriter, r *http.Request, id string) {
	records, err := h.deps.History(r.Context(), id)
	if err != nil {
		writeDomainError(w, "read history", err)
		return
	}
	if records == nil {
		records = []model.TrainingRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HorsesHandler) recordSignal(w http.ResponseWriter, r *http.Request, id string) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.deps.RecordSignal(r.Context(), req.toSignal(id))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "horse_id": id})
}
