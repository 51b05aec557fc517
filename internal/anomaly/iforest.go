package anomaly

import (
	"math"
	"math/rand"
)

// Isolation forest parameters, fixed for reproducibility: anomalies isolate
// in short paths, so the expected path length over many random trees maps to
// an anomaly score in (0,1].
const (
	forestTrees     = 50
	forestSubsample = 256
)

type isoNode struct {
	left       *isoNode
	right      *isoNode
	splitValue float64
	splitAttr  int
	size       int
}

type isolationForest struct {
	trees     []*isoNode
	avgPathC  float64
	subsample int
}

// fitForest builds an isolation forest over the rows of matrix using the
// seeded source.
func fitForest(matrix [][]float64, rng *rand.Rand) *isolationForest {
	n := len(matrix)
	subsample := forestSubsample
	if subsample > n {
		subsample = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsample) + 1)))

	f := &isolationForest{
		subsample: subsample,
		avgPathC:  averagePathLength(subsample),
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for t := 0; t < forestTrees; t++ {
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		sample := append([]int(nil), indices[:subsample]...)
		f.trees = append(f.trees, buildIsoTree(matrix, sample, 0, maxDepth, rng))
	}

	return f
}

func buildIsoTree(matrix [][]float64, indices []int, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if depth >= maxDepth || len(indices) <= 1 {
		return &isoNode{size: len(indices)}
	}

	// Attributes with spread in this sample are the only splittable ones.
	dims := len(matrix[indices[0]])
	splittable := make([]int, 0, dims)
	for attr := 0; attr < dims; attr++ {
		lo, hi := matrix[indices[0]][attr], matrix[indices[0]][attr]
		for _, i := range indices[1:] {
			v := matrix[i][attr]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi > lo {
			splittable = append(splittable, attr)
		}
	}
	if len(splittable) == 0 {
		return &isoNode{size: len(indices)}
	}

	attr := splittable[rng.Intn(len(splittable))]
	lo, hi := matrix[indices[0]][attr], matrix[indices[0]][attr]
	for _, i := range indices[1:] {
		v := matrix[i][attr]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right []int
	for _, i := range indices {
		if matrix[i][attr] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &isoNode{
		splitAttr:  attr,
		splitValue: split,
		left:       buildIsoTree(matrix, left, depth+1, maxDepth, rng),
		right:      buildIsoTree(matrix, right, depth+1, maxDepth, rng),
	}
}

// score returns the anomaly score for one row, in (0,1]; values near 1 are
// highly anomalous, values around 0.5 and below are ordinary.
func (f *isolationForest) score(row []float64) float64 {
	var sum float64
	for _, tree := range f.trees {
		sum += pathLength(tree, row, 0)
	}
	expected := sum / float64(len(f.trees))
	return math.Pow(2, -expected/f.avgPathC)
}

func pathLength(node *isoNode, row []float64, depth float64) float64 {
	if node.left == nil {
		return depth + averagePathLength(node.size)
	}
	if row[node.splitAttr] < node.splitValue {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// averagePathLength is the expected path length of an unsuccessful BST
// search over n points, the normalizer from the isolation forest paper.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	const eulerGamma = 0.5772156649
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}
