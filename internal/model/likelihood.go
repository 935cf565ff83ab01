package model

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

func invLogit(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// log1pExp computes log(1+exp(x)) without overflowing for large x.
func log1pExp(x float64) float64 {
	if x > 35 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

func logChoose(n, k float64) float64 {
	ln, _ := math.Lgamma(n + 1)
	lk, _ := math.Lgamma(k + 1)
	lnk, _ := math.Lgamma(n - k + 1)
	return ln - lk - lnk
}

// binomialLogPMF works on the linear-predictor scale: eta is the
// log-odds of success, so the pmf is written without forming p and
// 1-p separately.
func binomialLogPMF(y, n, eta float64) float64 {
	return logChoose(n, y) + y*eta - n*log1pExp(eta)
}

func negBinomialLogPMF(y, mu, shape float64) float64 {
	lyp, _ := math.Lgamma(y + shape)
	lp, _ := math.Lgamma(shape)
	ly, _ := math.Lgamma(y + 1)
	return lyp - lp - ly +
		shape*math.Log(shape/(shape+mu)) +
		y*math.Log(mu/(shape+mu))
}

func zinbLogPMF(y, mu, shape, zi float64) float64 {
	if y == 0 {
		// Zero arises from the inflation component or from the count
		// component producing zero.
		return math.Log(zi + (1-zi)*math.Exp(negBinomialLogPMF(0, mu, shape)))
	}
	return math.Log(1-zi) + negBinomialLogPMF(y, mu, shape)
}

func normalLogPDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return -0.5*z*z - math.Log(sigma) - 0.5*math.Log(2*math.Pi)
}

func skewNormalLogPDF(x, loc, scale, alpha float64) float64 {
	z := (x - loc) / scale
	cdf := distuv.UnitNormal.CDF(alpha * z)
	if cdf <= 0 {
		return math.Inf(-1)
	}
	return math.Ln2 + normalLogPDF(z, 0, 1) - math.Log(scale) + math.Log(cdf)
}

// logLik evaluates one observation's log-likelihood. trials is only
// consulted by the binomial family; extras carries the family-specific
// auxiliary parameters on their unconstrained scale.
func logLik(family Family, y, trials, eta float64, extras []float64) float64 {
	switch family {
	case Binomial:
		return binomialLogPMF(y, trials, eta)
	case NegBinomial:
		return negBinomialLogPMF(y, math.Exp(eta), math.Exp(extras[0]))
	case ZINB:
		return zinbLogPMF(y, math.Exp(eta), math.Exp(extras[0]), invLogit(extras[1]))
	case Gaussian:
		return normalLogPDF(y, eta, math.Exp(extras[0]))
	case SkewNormal:
		return skewNormalLogPDF(y, eta, math.Exp(extras[0]), extras[1])
	}
	return math.Inf(-1)
}
