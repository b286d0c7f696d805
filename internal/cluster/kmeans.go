// Package cluster groups article texts with k-means over term-frequency
// vectors.
package cluster

import (
	"context"
	"errors"
	"math"

	"NewsScope/internal/ports"
	"NewsScope/internal/text"
)

const maxIterations = 50

// ErrInvalidK is returned for a non-positive cluster count.
var ErrInvalidK = errors.New("cluster: k must be positive")

// KMeans is an in-process Clusterer. Seeding is farthest-first from the
// first text, so equal input always yields equal labels.
type KMeans struct {
	tokenizer *text.Tokenizer
}

var _ ports.Clusterer = (*KMeans)(nil)

// NewKMeans returns a deterministic k-means clusterer.
func NewKMeans() *KMeans {
	return &KMeans{tokenizer: text.Default()}
}

// Cluster returns one label in [0,k) per text, k capped at len(texts).
func (m *KMeans) Cluster(ctx context.Context, texts []string, k int) ([]int, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if len(texts) == 0 {
		return nil, nil
	}
	if k > len(texts) {
		k = len(texts)
	}

	vectors := m.vectorize(texts)
	centroids := seed(vectors, k)
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for i, v := range vectors {
			best := nearest(v, centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		centroids = recompute(vectors, labels, centroids)
	}
	return labels, nil
}

func (m *KMeans) vectorize(texts []string) [][]float64 {
	vocab := make(map[string]int)
	docs := make([][]string, len(texts))
	for i, t := range texts {
		docs[i] = m.tokenizer.Tokenize(t)
		for _, tok := range docs[i] {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}

	vectors := make([][]float64, len(texts))
	for i, doc := range docs {
		v := make([]float64, len(vocab))
		for _, tok := range doc {
			v[vocab[tok]]++
		}
		normalize(v)
		vectors[i] = v
	}
	return vectors
}

func seed(vectors [][]float64, k int) [][]float64 {
	centroids := [][]float64{clone(vectors[0])}
	chosen := map[int]bool{0: true}

	for len(centroids) < k {
		far, farDist := -1, -1.0
		for i, v := range vectors {
			if chosen[i] {
				continue
			}
			d := distance(v, centroids[nearest(v, centroids)])
			if d > farDist {
				far, farDist = i, d
			}
		}
		chosen[far] = true
		centroids = append(centroids, clone(vectors[far]))
	}
	return centroids
}

func recompute(vectors [][]float64, labels []int, previous [][]float64) [][]float64 {
	dim := len(vectors[0])
	sums := make([][]float64, len(previous))
	counts := make([]int, len(previous))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := labels[i]
		counts[c]++
		for d := range v {
			sums[c][d] += v[d]
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			// an emptied cluster keeps its old centre
			sums[c] = previous[c]
			continue
		}
		for d := range sums[c] {
			sums[c][d] /= float64(counts[c])
		}
	}
	return sums
}

func nearest(v []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := distance(v, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func distance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func normalize(v []float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
