// Package ttest implements an unpaired, equal-variance two-sample Student's
// t-test over keyed summary statistics. Inputs carry the sample mean, the
// estimated standard error of the mean (the uncertainty Monte Carlo codes
// such as MCNP report), and the sample size. The engine computes, per key,
// the pooled t-statistic, degrees of freedom, two-tailed p-value and critical
// value, and decides whether the null hypothesis (mean_1 - mean_2) = d is
// rejected at the configured significance level.
package ttest

import "slices"

// SampleSummary describes one named observation: the sample mean, the
// estimated standard error of the mean (not the raw standard deviation), and
// the sample size. Values are never mutated after construction.
type SampleSummary struct {
	Mean          float64 `json:"mean"           yaml:"mean"`
	StandardError float64 `json:"standard_error" yaml:"standard_error"`
	SampleSize    int     `json:"sample_size"    yaml:"sample_size"`
}

// SampleSet maps a string identifier to its summary statistics. Two sample
// sets are compared per invocation; their key sets need not match exactly
// (see Config.Skip).
type SampleSet map[string]SampleSummary

// TestResult holds the per-key outcome of a two-sample t-test. RelStdErr1 and
// RelStdErr2 are the relative standard errors of the two input samples in
// percent, provided as a reliability indicator for the underlying data.
type TestResult struct {
	TValue           float64 `json:"t_value"             yaml:"t_value"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"  yaml:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"             yaml:"p_value"`
	TCritical        float64 `json:"t_critical"          yaml:"t_critical"`
	Rejected         bool    `json:"rejected"            yaml:"rejected"`
	RelStdErr1       float64 `json:"rel_std_err_1"       yaml:"rel_std_err_1"`
	RelStdErr2       float64 `json:"rel_std_err_2"       yaml:"rel_std_err_2"`
}

// Config carries the test parameters.
type Config struct {
	// Alpha is the significance level, in (0, 1).
	Alpha float64
	// Discrepancy is the hypothesized difference d between the two means.
	Discrepancy float64
	// Skip omits keys present in only one sample set instead of failing the
	// whole batch.
	Skip bool
}

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// DefaultConfig returns the default test parameters: alpha 0.05, zero
// discrepancy, mismatched keys fatal.
func DefaultConfig() Config {
	return Config{Alpha: DefaultAlpha}
}

// Validate checks Config invariants.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return ErrAlphaRange
	}

	return nil
}

// Report aggregates a batch run. Results holds the computed tests, Skipped
// the keys omitted due to a tolerated key mismatch, and Failures the keys
// whose inputs were degenerate. The three key sets are disjoint; a key never
// silently disappears.
type Report struct {
	Results  map[string]TestResult `json:"results"            yaml:"results"`
	Skipped  []string              `json:"skipped,omitempty"  yaml:"skipped,omitempty"`
	Failures map[string]error      `json:"-"                  yaml:"-"`
}

// RejectedKeys returns the keys whose null hypothesis was rejected, sorted.
func (r *Report) RejectedKeys() []string {
	var keys []string

	for key, res := range r.Results {
		if res.Rejected {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	return keys
}
