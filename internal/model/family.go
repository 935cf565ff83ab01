// Package model is the configuration and fitting harness: it encodes
// the prepared analysis table into a regression design, binds one of
// the supported likelihood families to a prior specification, drives
// the sampling engine, and validates fits via predictive checks and
// leave-one-out comparison.
package model

import "fmt"

// Family identifies a likelihood family for a response variable.
type Family string

const (
	// Binomial models a count of successes out of a known trial count.
	Binomial Family = "binomial"
	// NegBinomial models unbounded, overdispersed counts.
	NegBinomial Family = "negbinomial"
	// ZINB is the zero-inflated negative binomial variant.
	ZINB Family = "zinb"
	// Gaussian models continuous responses.
	Gaussian Family = "gaussian"
	// SkewNormal models continuous responses with asymmetry.
	SkewNormal Family = "skewnormal"
)

// ParseFamily converts a config family name into a Family.
func ParseFamily(name string) (Family, error) {
	switch Family(name) {
	case Binomial, NegBinomial, ZINB, Gaussian, SkewNormal:
		return Family(name), nil
	case "":
		return "", fmt.Errorf("model: empty family name")
	}
	return "", fmt.Errorf("model: unknown family %q", name)
}

// extraCount is the number of family-specific auxiliary parameters
// appended after the coefficients and group terms: negbinomial carries
// a shape, zinb a shape and a zero-inflation probability, gaussian a
// residual scale, skewnormal a scale and a skewness.
func (f Family) extraCount() int {
	switch f {
	case Binomial:
		return 0
	case NegBinomial, Gaussian:
		return 1
	case ZINB, SkewNormal:
		return 2
	}
	return 0
}

// discrete reports whether the family produces integer responses.
func (f Family) discrete() bool {
	switch f {
	case Binomial, NegBinomial, ZINB:
		return true
	}
	return false
}

// complexity orders families so model selection can favor the simpler
// one on marginal leave-one-out differences.
func (f Family) complexity() int {
	switch f {
	case Binomial, Gaussian:
		return 1
	case NegBinomial, SkewNormal:
		return 2
	case ZINB:
		return 3
	}
	return 0
}
