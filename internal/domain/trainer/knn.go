package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const knnEpsilon = 1e-9

// knn is a distance-weighted k-nearest-neighbours regressor. Fitting just
// retains the training rows; all work happens at prediction time.
type knn struct {
	k int
}

func newKNN(p Params) estimator {
	return &knn{k: p.intOr("k", defaultNeighbors)}
}

func (e *knn) fit(ctx context.Context, x [][]float64, y []float64, _ *rand.Rand) (predictor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training cancelled: %w", err)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no rows to fit", ErrInsufficientData)
	}
	k := e.k
	if k > len(x) {
		k = len(x)
	}
	// Copy so the model stays immutable even if the caller reuses the slices.
	cx := make([][]float64, len(x))
	cy := make([]float64, len(y))
	for i := range x {
		row := make([]float64, len(x[i]))
		copy(row, x[i])
		cx[i] = row
		cy[i] = y[i]
	}
	return &fittedKNN{k: k, x: cx, y: cy}, nil
}

type fittedKNN struct {
	k int
	x [][]float64
	y []float64
}

func (f *fittedKNN) predict(row []float64) float64 {
	type neighbor struct {
		dist float64
		idx  int
	}
	neighbors := make([]neighbor, len(f.x))
	for i, train := range f.x {
		neighbors[i] = neighbor{dist: euclidean(row, train), idx: i}
	}
	// Ties broken by training-row index so predictions are reproducible.
	sort.SliceStable(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].idx < neighbors[b].idx
	})

	var weighted, weights float64
	for _, nb := range neighbors[:f.k] {
		w := 1 / (nb.dist + knnEpsilon)
		weighted += w * f.y[nb.idx]
		weights += w
	}
	return weighted / weights
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
