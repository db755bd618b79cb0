// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/adapters/signals"
	"github.com/okian/paddock/internal/config"
	"github.com/okian/paddock/internal/domain/feature"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/ranker"
	"github.com/okian/paddock/internal/domain/trainer"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// RunResult is the outcome of one successful training run.
type RunResult struct {
	RunID     string         `json:"run_id"`
	Report    trainer.Report `json:"report"`
	ModelType string         `json:"model_type"`
	Shape     int            `json:"shape"`
	TrainedAt time.Time      `json:"trained_at"`
}

// Service implements the recommendation engine behind the HTTP API. It owns
// the single trained-model slot: at most one training run is in flight at a
// time, and the previous model stays visible until a run completes
// successfully (swap-on-completion).
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store   repository.Store
	sources signals.Set

	// Immutable configuration for the lifetime of any trained model.
	cfg        *config.Config
	composer   *feature.Composer
	candidates []model.CandidateAction

	// Trained-model slot. Guarded by mu; the model itself is immutable.
	current  trainer.Model
	last     RunResult
	training bool

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the profile/history store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSignalSources sets the context-signal sources.
func WithSignalSources(set signals.Set) Option {
	return func(s *Service) {
		if set != nil {
			s.sources = set
		}
	}
}

// WithCandidateActions sets the candidate action space scored per horse.
func WithCandidateActions(actions []model.CandidateAction) Option {
	return func(s *Service) {
		if len(actions) > 0 {
			s.candidates = actions
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service for the given immutable configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		candidates: DefaultActionSpace(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.sources == nil {
		s.sources = signals.NewSet()
	}

	s.composer = feature.NewComposer(
		toggles(s.cfg.Features),
		feature.WithSignalSource(model.SignalWeather, s.sources[model.SignalWeather]),
		feature.WithSignalSource(model.SignalDiet, s.sources[model.SignalDiet]),
		feature.WithSignalSource(model.SignalMedical, s.sources[model.SignalMedical]),
		feature.WithSignalSource(model.SignalLineage, s.sources[model.SignalLineage]),
	)

	s.started = true
	s.logger.Info(ctx, "recommendation engine started",
		logger.String("model_type", s.cfg.Model.Type),
		logger.String("validation", s.cfg.Training.ValidationMethod),
		logger.Int("feature_shape", s.composer.Shape()),
		logger.Int("candidate_actions", len(s.candidates)),
	)
	return nil
}

// Stop shuts the service down. In-flight training is abandoned via its
// context; the model slot is left as-is.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "recommendation engine stopped")
}

func toggles(f config.Features) feature.Toggles {
	return feature.Toggles{
		Weather: f.IncludeWeather,
		Diet:    f.IncludeDiet,
		Medical: f.IncludeMedical,
		Lineage: f.IncludeLineage,
	}
}

// Train assembles a dataset from the store and fits a new model. At most one
// run may be in flight; concurrent requests are rejected with
// ErrTrainingInProgress rather than queued. A cancelled or failed run leaves
// the previously trained model untouched.
func (s *Service) Train(ctx context.Context) (RunResult, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return RunResult{}, ErrNotStarted
	}
	if s.training {
		s.mu.Unlock()
		metrics.RecordTrainingRejected()
		return RunResult{}, ErrTrainingInProgress
	}
	s.training = true
	composer := s.composer
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.training = false
		s.mu.Unlock()
	}()

	runID := uuid.NewString()
	start := time.Now()
	s.logger.Info(ctx, "training run started", logger.String("run_id", runID))

	ds, err := s.buildDataset(ctx, composer)
	if err != nil {
		metrics.RecordTrainingError()
		return RunResult{}, err
	}
	metrics.UpdateDatasetRows(ds.Rows())

	m, report, err := trainer.Train(ctx, ds, trainerConfig(s.cfg))
	if err != nil {
		metrics.RecordTrainingError()
		s.logger.Error(ctx, "training run failed",
			logger.String("run_id", runID),
			logger.Error(err),
		)
		return RunResult{}, err
	}

	result := RunResult{
		RunID:     runID,
		Report:    report,
		ModelType: m.Type(),
		Shape:     m.Shape(),
		TrainedAt: time.Now().UTC(),
	}

	// Swap-on-completion: readers never observe a partial model.
	s.mu.Lock()
	s.current = m
	s.last = result
	s.mu.Unlock()

	elapsed := time.Since(start)
	metrics.RecordTrainingRun()
	metrics.RecordTrainingDuration(float64(elapsed.Milliseconds()))
	metrics.UpdateModelAccuracy(report.Accuracy)
	s.logger.Info(ctx, "training run completed",
		logger.String("run_id", runID),
		logger.Int("rows", report.Rows),
		logger.Float64("mae", report.MAE),
		logger.Duration("elapsed", elapsed),
	)
	return result, nil
}

func trainerConfig(cfg *config.Config) trainer.Config {
	return trainer.Config{
		ModelType:        cfg.Model.Type,
		Params:           trainer.Params(cfg.Model.Params),
		ValidationMethod: cfg.Training.ValidationMethod,
		TestSize:         cfg.Training.TestSize,
		NSplits:          cfg.Training.NSplits,
		Seed:             cfg.Training.Seed,
	}
}

// Recommend ranks the candidate action space for one horse against the
// current model. Safe for unlimited concurrent callers; the model is
// immutable once trained.
func (s *Service) Recommend(ctx context.Context, horseID string) ([]model.Recommendation, error) {
	s.mu.RLock()
	m := s.current
	composer := s.composer
	candidates := s.candidates
	started := s.started
	s.mu.RUnlock()

	if !started {
		return nil, ErrNotStarted
	}
	if m == nil {
		return nil, ErrModelNotTrained
	}

	metrics.RecordRecommendationRequest()

	profile, err := s.store.Profile(ctx, horseID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.History(ctx, horseID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recs, err := ranker.Rank(ctx, m, composer, profile, history, candidates, time.Now().UTC(), ranker.Limits{
		MaxPerHorse:   s.cfg.Recommendations.MaxPerHorse,
		MinConfidence: s.cfg.Recommendations.MinConfidence,
	})
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordCompositionError()
		return nil, err
	}

	metrics.RecordRecommendationsServed(len(recs))
	metrics.RecordCandidatesFiltered(len(candidates) - len(recs))
	return recs, nil
}

// LastRun returns the result of the most recent successful training run.
func (s *Service) LastRun() (RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.current != nil
}

// RecordSignal stores a context-signal reading for a horse.
func (s *Service) RecordSignal(_ context.Context, sig model.ContextSignal) {
	s.sources.Record(sig)
}

// Store accessors used by the HTTP layer.

// CreateProfile adds a new horse profile.
func (s *Service) CreateProfile(ctx context.Context, p model.HorseProfile) error {
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return err
	}
	metrics.UpdateHorsesTracked(s.store.Count(ctx))
	return nil
}

// UpdateProfile applies an operator corrective edit.
func (s *Service) UpdateProfile(ctx context.Context, p model.HorseProfile) error {
	return s.store.UpdateProfile(ctx, p)
}

// DeleteProfile removes a profile and its history.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return err
	}
	metrics.UpdateHorsesTracked(s.store.Count(ctx))
	return nil
}

// Profile returns one horse profile.
func (s *Service) Profile(ctx context.Context, id string) (model.HorseProfile, error) {
	return s.store.Profile(ctx, id)
}

// Profiles returns all horse profiles ordered by id.
func (s *Service) Profiles(ctx context.Context) ([]model.HorseProfile, error) {
	return s.store.Profiles(ctx)
}

// AppendRecord appends one training record to a horse's history.
func (s *Service) AppendRecord(ctx context.Context, r model.TrainingRecord) error {
	if err := s.store.AppendRecord(ctx, r); err != nil {
		return err
	}
	metrics.RecordRecordAppended()
	return nil
}

// History returns a horse's ordered training records.
func (s *Service) History(ctx context.Context, horseID string) ([]model.TrainingRecord, error) {
	return s.store.History(ctx, horseID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"training_inflight": s.training,
		"model_type":        s.cfg.Model.Type,
		"candidate_actions": len(s.candidates),
	}
	if s.started {
		stats["horses"] = s.store.Count(ctx)
		stats["feature_shape"] = s.composer.Shape()
	}
	if s.current != nil {
		stats["model_trained_at"] = s.last.TrainedAt
		stats["model_accuracy"] = s.last.Report.Accuracy
		stats["last_run_id"] = s.last.RunID
	}
	return stats
}

// Seed loads a snapshot into the store and signal sources. Used at startup
// and by tests; not exposed over HTTP.
func (s *Service) Seed(ctx context.Context, snap repository.Snapshot) error {
	for _, p := range snap.Profiles {
		if err := s.store.CreateProfile(ctx, p); err != nil {
			return fmt.Errorf("seed profile %q: %w", p.ID, err)
		}
	}
	for _, r := range snap.Records {
		if err := s.store.AppendRecord(ctx, r); err != nil {
			return fmt.Errorf("seed record for %q: %w", r.HorseID, err)
		}
	}
	for _, sig := range snap.Signals {
		s.sources.Record(sig)
	}
	metrics.UpdateHorsesTracked(s.store.Count(ctx))
	return nil
}
