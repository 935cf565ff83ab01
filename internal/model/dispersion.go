package model

import "gonum.org/v1/gonum/stat"

// overdispersionThreshold is the index-of-dispersion margin above
// which a plain Poisson assumption is rejected for a count response.
const overdispersionThreshold = 1.5

// IndexOfDispersion is the sample variance over the sample mean.
func IndexOfDispersion(y []float64) float64 {
	mean := stat.Mean(y, nil)
	if mean == 0 {
		return 0
	}
	return stat.Variance(y, nil) / mean
}

// Overdispersed reports whether a count response's variance exceeds
// its mean by a material margin, justifying a negative-binomial family
// over Poisson.
func Overdispersed(y []float64) bool {
	return IndexOfDispersion(y) >= overdispersionThreshold
}
