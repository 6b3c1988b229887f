package embedding

import "math"

// CosineSimilarity computes cosine similarity between two vectors. Vectors
// of different length or zero norm have similarity 0.
func CosineSimilarity(a, b []float32) float64 {
	return CosineSimilarityOptimized(a, b, CalculateNorm(a), CalculateNorm(b))
}

// CosineSimilarityOptimized computes cosine similarity with pre-calculated L2 norms.
func CosineSimilarityOptimized(a, b []float32, normA, normB float64) float64 {
	if len(a) != len(b) || normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

// CalculateNorm computes the L2 norm of a vector.
func CalculateNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
