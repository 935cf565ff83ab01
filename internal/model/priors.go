package model

import "gonum.org/v1/gonum/stat/distuv"

// Priors binds a prior distribution to each coefficient class. The
// defaults are weakly informative: a wide student-t on the intercept,
// unit normals on slopes, unit-rate exponentials on scales, and a flat
// beta on the zero-inflation probability.
type Priors struct {
	Intercept     distuv.StudentsT
	Slope         distuv.Normal
	GroupSD       distuv.Exponential
	Sigma         distuv.Exponential
	Shape         distuv.Exponential
	ZeroInflation distuv.Beta
	Skew          distuv.Normal
}

// DefaultPriors returns the study's prior specification.
func DefaultPriors() Priors {
	return Priors{
		Intercept:     distuv.StudentsT{Mu: 0, Sigma: 2.5, Nu: 3},
		Slope:         distuv.Normal{Mu: 0, Sigma: 1},
		GroupSD:       distuv.Exponential{Rate: 1},
		Sigma:         distuv.Exponential{Rate: 1},
		Shape:         distuv.Exponential{Rate: 1},
		ZeroInflation: distuv.Beta{Alpha: 1, Beta: 1},
		Skew:          distuv.Normal{Mu: 0, Sigma: 4},
	}
}
