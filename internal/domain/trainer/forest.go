package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// forest is a bagged ensemble of regression trees. Trees are fit serially
// from one seeded random source so runs are reproducible.
type forest struct {
	nEstimators int
	maxDepth    int
	minLeaf     int
}

func newForest(p Params) estimator {
	return &forest{
		nEstimators: p.intOr("n_estimators", defaultNEstimators),
		maxDepth:    p.intOr("max_depth", defaultMaxDepth),
		minLeaf:     p.intOr("min_leaf", defaultMinLeaf),
	}
}

func (f *forest) fit(ctx context.Context, x [][]float64, y []float64, rng *rand.Rand) (predictor, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("%w: no rows to fit", ErrInsufficientData)
	}
	nFeatures := len(x[0])
	// Feature subsampling per split, sklearn-style p/3 for regression.
	mtry := nFeatures / 3
	if mtry < 1 {
		mtry = 1
	}

	trees := make([]*treeNode, 0, f.nEstimators)
	for i := 0; i < f.nEstimators; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled: %w", err)
		}
		// Bootstrap sample with replacement.
		bx := make([][]float64, n)
		by := make([]float64, n)
		for j := 0; j < n; j++ {
			k := rng.Intn(n)
			bx[j] = x[k]
			by[j] = y[k]
		}
		trees = append(trees, growTree(bx, by, 0, f.maxDepth, f.minLeaf, mtry, rng))
	}
	return &fittedForest{trees: trees}, nil
}

type fittedForest struct {
	trees []*treeNode
}

func (f *fittedForest) predict(row []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}

// treeNode is one node of a CART regression tree. Leaves hold the mean
// outcome of their rows.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

func (t *treeNode) predict(row []float64) float64 {
	node := t
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func growTree(x [][]float64, y []float64, depth, maxDepth, minLeaf, mtry int, rng *rand.Rand) *treeNode {
	if depth >= maxDepth || len(y) < 2*minLeaf || constant(y) {
		return &treeNode{leaf: true, value: mean(y)}
	}

	feat, thresh, ok := bestSplit(x, y, minLeaf, mtry, rng)
	if !ok {
		return &treeNode{leaf: true, value: mean(y)}
	}

	var lx, rx [][]float64
	var ly, ry []float64
	for i, row := range x {
		if row[feat] <= thresh {
			lx = append(lx, row)
			ly = append(ly, y[i])
		} else {
			rx = append(rx, row)
			ry = append(ry, y[i])
		}
	}
	return &treeNode{
		feature:   feat,
		threshold: thresh,
		left:      growTree(lx, ly, depth+1, maxDepth, minLeaf, mtry, rng),
		right:     growTree(rx, ry, depth+1, maxDepth, minLeaf, mtry, rng),
	}
}

// bestSplit scans a random subset of features for the threshold minimizing
// weighted squared error. Returns ok=false when no split leaves minLeaf rows
// on both sides.
func bestSplit(x [][]float64, y []float64, minLeaf, mtry int, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(x[0])
	candidates := rng.Perm(nFeatures)[:mtry]
	sort.Ints(candidates) // stable scan order regardless of Perm layout

	bestSSE := math.Inf(1)
	bestFeat, bestThresh := -1, 0.0

	idx := make([]int, len(x))
	for _, feat := range candidates {
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]][feat] < x[idx[b]][feat] })

		// Prefix sums over the sorted order let each threshold be scored in
		// constant time.
		var leftSum, leftSq float64
		var totalSum, totalSq float64
		for _, i := range idx {
			totalSum += y[i]
			totalSq += y[i] * y[i]
		}
		n := float64(len(idx))
		for pos := 0; pos < len(idx)-1; pos++ {
			yi := y[idx[pos]]
			leftSum += yi
			leftSq += yi * yi

			cur, next := x[idx[pos]][feat], x[idx[pos+1]][feat]
			if cur == next {
				continue
			}
			nl := float64(pos + 1)
			nr := n - nl
			if int(nl) < minLeaf || int(nr) < minLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeat = feat
				bestThresh = (cur + next) / 2
			}
		}
	}
	return bestFeat, bestThresh, bestFeat >= 0
}

func mean(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var sum float64
	for _, v := range y {
		sum += v
	}
	return sum / float64(len(y))
}

func constant(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}
