package embedding

import (
	"math"

	"semchunk/pkg/errs"
)

// CosineSimilarity returns the cosine of the angle between a and b, clamped to
// [-1, 1]. A zero vector on either side yields 0.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, errs.Validation("vector", "dimension mismatch: %d != %d", len(a), len(b))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity > 1 {
		similarity = 1
	} else if similarity < -1 {
		similarity = -1
	}
	return similarity, nil
}

// Mean returns the elementwise arithmetic mean of vectors.
func Mean(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return Vector{}, nil
	}

	dimension := len(vectors[0])
	average := make(Vector, dimension)
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, errs.Validation("vector", "dimension mismatch at %d: %d != %d", i, len(v), dimension)
		}
		for j := range v {
			average[j] += v[j]
		}
	}

	count := float64(len(vectors))
	for j := range average {
		average[j] /= count
	}
	return average, nil
}

func Zero(dimension int) Vector {
	return make(Vector, dimension)
}

// IsZero reports whether every component of v is 0.
func IsZero(v Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
