package ttest

import "gonum.org/v1/gonum/stat/distuv"

// StudentT supplies the two Student's t-distribution functions the engine
// needs. Injecting it keeps the engine testable against a stub distribution
// with known closed-form values.
type StudentT interface {
	// CDF returns the cumulative distribution function at x for the given
	// degrees of freedom.
	CDF(x, df float64) float64
	// Quantile returns the inverse CDF (percent-point function) at q in
	// (0, 1) for the given degrees of freedom.
	Quantile(q, df float64) float64
}

// GonumStudentT backs StudentT with gonum's distuv implementation.
type GonumStudentT struct{}

// CDF implements StudentT.
func (GonumStudentT) CDF(x, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(x)
}

// Quantile implements StudentT.
func (GonumStudentT) Quantile(q, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(q)
}
