// Package cluster groups questions by pairwise cosine similarity of their
// embeddings, without knowing the number of groups in advance.
//
// The grouping is greedy and single-pass: each unassigned question opens a
// cluster and absorbs every later unassigned question whose similarity to
// the opening question is at least the threshold. Members are never
// compared with each other, so two questions both close to the opener but
// far from one another share a cluster. This is an approximation of
// single-link clustering, kept because it is deterministic and cheap.
package cluster

import (
	"context"
	"fmt"
	"slices"

	"github.com/hazyhaar/paperlens/embedding"
)

// Assignment maps a question index to its cluster id. Ids are dense,
// starting at 0, in the order clusters were opened.
type Assignment []int

// Count returns the number of clusters.
func (a Assignment) Count() int {
	n := 0
	for _, id := range a {
		if id+1 > n {
			n = id + 1
		}
	}
	return n
}

// Members returns the question indices of each cluster, in index order.
func (a Assignment) Members() [][]int {
	groups := make([][]int, a.Count())
	for i, id := range a {
		groups[id] = append(groups[id], i)
	}
	return groups
}

// SimilarityMatrix returns the symmetric N×N cosine similarity matrix of
// vectors. The diagonal is 1 even for zero vectors. Identical non-zero
// vectors score exactly 1 and every entry is clamped to [-1, 1], so
// rounding never moves a pair across a threshold of 1.
func SimilarityMatrix(vectors [][]float32) [][]float64 {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = embedding.CalculateNorm(v)
	}
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		sim[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := similarity(vectors[i], vectors[j], norms[i], norms[j])
			sim[i][j], sim[j][i] = s, s
		}
	}
	return sim
}

func similarity(a, b []float32, normA, normB float64) float64 {
	if normA != 0 && slices.Equal(a, b) {
		return 1
	}
	return max(-1, min(1, embedding.CosineSimilarityOptimized(a, b, normA, normB)))
}

// Greedy assigns clusters from a similarity matrix. The threshold is
// inclusive: similarity exactly equal to threshold joins the cluster.
func Greedy(sim [][]float64, threshold float64) Assignment {
	n := len(sim)
	labels := make(Assignment, n)
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	for i := 0; i < n; i++ {
		if labels[i] >= 0 {
			continue
		}
		labels[i] = next
		for j := i + 1; j < n; j++ {
			if labels[j] < 0 && sim[i][j] >= threshold {
				labels[j] = next
			}
		}
		next++
	}
	return labels
}

// Assign embeds texts and clusters them. An empty input returns an empty
// Assignment without calling the embedder.
func Assign(ctx context.Context, emb embedding.Embedder, texts []string, threshold float64) (Assignment, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("similarity threshold %v outside (0, 1]", threshold)
	}
	if len(texts) == 0 {
		return Assignment{}, nil
	}
	vecs, err := emb.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	return Greedy(SimilarityMatrix(vecs), threshold), nil
}
