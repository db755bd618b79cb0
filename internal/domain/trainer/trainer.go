// Package trainer fits tabular models on composed feature vectors and
// historical outcomes.
package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/okian/paddock/internal/domain/feature"
)

// Validation method names accepted in configuration.
const (
	ValidationHoldout   = "holdout"
	ValidationCrossVal  = "cross_validation"
	defaultNEstimators  = 100
	defaultMaxDepth     = 10
	defaultMinLeaf      = 2
	defaultNeighbors    = 5
	minHoldoutTrainRows = 1
	minHoldoutTestRows  = 1
)

// Params carries flat numeric hyperparameters for the selected estimator.
type Params map[string]float64

func (p Params) intOr(key string, def int) int {
	if v, ok := p[key]; ok && v > 0 {
		return int(v)
	}
	return def
}

// Config selects the estimator and validation strategy for one training run.
// It is built from the immutable process configuration and never mutated.
type Config struct {
	ModelType        string
	Params           Params
	ValidationMethod string
	// TestSize is the held-out fraction in (0,1); used by holdout only.
	TestSize float64
	// NSplits is the fold count; used by cross_validation only.
	NSplits int
	// Seed fixes the random source so identical (data, config, seed) produce
	// identical models and metrics.
	Seed int64
}

// Dataset is a set of (vector, outcome) training pairs. Outcomes are on the
// [0,1] scale the model predicts.
type Dataset struct {
	Vectors  []feature.Vector
	Outcomes []float64
}

// Rows returns the number of training pairs.
func (d Dataset) Rows() int { return len(d.Vectors) }

// Append adds one training pair.
func (d *Dataset) Append(v feature.Vector, outcome float64) {
	d.Vectors = append(d.Vectors, v)
	d.Outcomes = append(d.Outcomes, outcome)
}

// Model is a trained, immutable artifact bound to the exact feature shape it
// was trained on. Safe for unlimited concurrent readers.
type Model interface {
	// Score predicts a confidence in [0,1] for one vector. The vector shape
	// must equal Shape(); a mismatch returns ErrFeatureShapeMismatch.
	Score(v feature.Vector) (float64, error)

	// Shape returns the feature shape the model was trained on.
	Shape() int

	// Type returns the estimator family name.
	Type() string
}

// Report summarizes how the trained model validated.
type Report struct {
	Method string `json:"method"`
	Rows   int    `json:"rows"`
	Seed   int64  `json:"seed"`
	// MAE is mean absolute error on held-out data (mean across folds when
	// cross-validated).
	MAE float64 `json:"mae"`
	// Accuracy is 1-MAE; well-defined because outcomes live in [0,1].
	Accuracy float64 `json:"accuracy"`
	// FoldMAE holds per-fold error; nil for holdout validation.
	FoldMAE []float64 `json:"fold_mae,omitempty"`
}

// estimator fits one model family on rows x features data.
type estimator interface {
	fit(ctx context.Context, x [][]float64, y []float64, rng *rand.Rand) (predictor, error)
}

type predictor interface {
	predict(row []float64) float64
}

// estimators is the registry keyed by model type. Resolution happens at
// config-validation time so an unknown type never reaches a training run.
var estimators = map[string]func(Params) estimator{
	"random_forest": newForest,
	"knn":           newKNN,
}

// KnownModelTypes reports whether the registry can build the given type.
func KnownModelTypes(modelType string) bool {
	_, ok := estimators[modelType]
	return ok
}

// Train fits a model on the dataset and validates it using the configured
// strategy. It is reproducible under a fixed seed and honors ctx cancellation
// between fitting units.
func Train(ctx context.Context, ds Dataset, cfg Config) (Model, Report, error) {
	build, ok := estimators[cfg.ModelType]
	if !ok {
		return nil, Report{}, fmt.Errorf("%w: %q", ErrUnknownModelType, cfg.ModelType)
	}

	shape, err := checkShapes(ds)
	if err != nil {
		return nil, Report{}, err
	}

	x := make([][]float64, ds.Rows())
	for i, v := range ds.Vectors {
		x[i] = v.Values
	}
	y := ds.Outcomes

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // seeded for reproducible training
	est := build(cfg.Params)

	report := Report{Method: cfg.ValidationMethod, Rows: ds.Rows(), Seed: cfg.Seed}
	switch cfg.ValidationMethod {
	case ValidationHoldout:
		report.MAE, err = validateHoldout(ctx, est, x, y, cfg.TestSize, rng)
	case ValidationCrossVal:
		report.FoldMAE, report.MAE, err = validateKFold(ctx, est, x, y, cfg.NSplits, rng)
	default:
		return nil, Report{}, fmt.Errorf("%w: %q", ErrUnknownValidation, cfg.ValidationMethod)
	}
	if err != nil {
		return nil, Report{}, err
	}
	report.Accuracy = 1 - report.MAE

	// Final model is fit on the full dataset once validation passed.
	fitted, err := est.fit(ctx, x, y, rng)
	if err != nil {
		return nil, Report{}, err
	}
	return &trainedModel{modelType: cfg.ModelType, shape: shape, fitted: fitted}, report, nil
}

// checkShapes enforces the all-vectors-identical-shape precondition before
// any fitting work begins.
func checkShapes(ds Dataset) (int, error) {
	if ds.Rows() == 0 {
		return 0, fmt.Errorf("%w: empty dataset", ErrInsufficientData)
	}
	if len(ds.Outcomes) != len(ds.Vectors) {
		return 0, fmt.Errorf("%w: %d vectors but %d outcomes", ErrInsufficientData, len(ds.Vectors), len(ds.Outcomes))
	}
	shape := ds.Vectors[0].Shape()
	for i, v := range ds.Vectors {
		if v.Shape() != shape {
			return 0, fmt.Errorf("%w: row %d has shape %d, expected %d", ErrFeatureShapeMismatch, i, v.Shape(), shape)
		}
	}
	return shape, nil
}

func validateHoldout(ctx context.Context, est estimator, x [][]float64, y []float64, testSize float64, rng *rand.Rand) (float64, error) {
	n := len(x)
	testN := int(math.Round(float64(n) * testSize))
	if testN < minHoldoutTestRows || n-testN < minHoldoutTrainRows {
		return 0, fmt.Errorf("%w: %d rows cannot satisfy test_size %.2f", ErrInsufficientData, n, testSize)
	}

	perm := rng.Perm(n)
	trainX, trainY := gather(x, y, perm[:n-testN])
	testX, testY := gather(x, y, perm[n-testN:])

	fitted, err := est.fit(ctx, trainX, trainY, rng)
	if err != nil {
		return 0, err
	}
	return meanAbsError(fitted, testX, testY), nil
}

func validateKFold(ctx context.Context, est estimator, x [][]float64, y []float64, k int, rng *rand.Rand) ([]float64, float64, error) {
	n := len(x)
	if k < 2 || n < k {
		return nil, 0, fmt.Errorf("%w: %d rows cannot satisfy %d folds", ErrInsufficientData, n, k)
	}

	perm := rng.Perm(n)
	foldMAE := make([]float64, 0, k)
	var sum float64
	for fold := 0; fold < k; fold++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("training cancelled: %w", err)
		}
		lo, hi := fold*n/k, (fold+1)*n/k
		holdIdx := perm[lo:hi]
		trainIdx := append(append([]int{}, perm[:lo]...), perm[hi:]...)

		trainX, trainY := gather(x, y, trainIdx)
		testX, testY := gather(x, y, holdIdx)
		fitted, err := est.fit(ctx, trainX, trainY, rng)
		if err != nil {
			return nil, 0, err
		}
		mae := meanAbsError(fitted, testX, testY)
		foldMAE = append(foldMAE, mae)
		sum += mae
	}
	return foldMAE, sum / float64(k), nil
}

func gather(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	gx := make([][]float64, len(idx))
	gy := make([]float64, len(idx))
	for i, j := range idx {
		gx[i] = x[j]
		gy[i] = y[j]
	}
	return gx, gy
}

func meanAbsError(p predictor, x [][]float64, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for i, row := range x {
		sum += math.Abs(clamp01(p.predict(row)) - y[i])
	}
	return sum / float64(len(x))
}

// trainedModel binds a fitted predictor to its training shape.
type trainedModel struct {
	modelType string
	shape     int
	fitted    predictor
}

func (m *trainedModel) Shape() int   { return m.shape }
func (m *trainedModel) Type() string { return m.modelType }

func (m *trainedModel) Score(v feature.Vector) (float64, error) {
	if v.Shape() != m.shape {
		return 0, fmt.Errorf("%w: vector shape %d, model trained on %d", ErrFeatureShapeMismatch, v.Shape(), m.shape)
	}
	return clamp01(m.fitted.predict(v.Values)), nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
