package ttest

import (
	"fmt"
	"math"
	"slices"
)

// percentFactor converts a ratio to percent for relative standard errors.
const percentFactor = 100

// Engine runs batches of two-sample t-tests. The zero value is not usable;
// construct with New or set Dist explicitly.
type Engine struct {
	Dist StudentT
}

// New returns an Engine backed by the gonum Student's t-distribution.
func New() *Engine {
	return &Engine{Dist: GonumStudentT{}}
}

// Run performs a pooled two-sample t-test for every key shared by the two
// sample sets. With cfg.Skip disabled, any key present in exactly one set
// fails the whole batch with a *MismatchError. With cfg.Skip enabled,
// mismatched keys are listed in Report.Skipped. Keys with degenerate inputs
// are reported in Report.Failures and never yield NaN or Inf results.
func (e *Engine) Run(sample1, sample2 SampleSet, cfg Config) (*Report, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	err = validateSamples(sample1, sample2)
	if err != nil {
		return nil, err
	}

	common, skipped, err := matchKeys(sample1, sample2, cfg.Skip)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Results:  make(map[string]TestResult, len(common)),
		Skipped:  skipped,
		Failures: make(map[string]error),
	}

	for _, key := range common {
		result, keyErr := e.testKey(key, sample1[key], sample2[key], cfg)
		if keyErr != nil {
			report.Failures[key] = keyErr

			continue
		}

		report.Results[key] = result
	}

	return report, nil
}

// testKey computes one pooled two-sample t-test. The estimated standard
// errors of the mean are converted to sample standard deviations before the
// pooled variance is formed.
func (e *Engine) testKey(key string, s1, s2 SampleSummary, cfg Config) (TestResult, error) {
	if s1.SampleSize <= 1 {
		return TestResult{}, &DegenerateSampleError{Key: key, Sample: 1, Size: s1.SampleSize}
	}

	if s2.SampleSize <= 1 {
		return TestResult{}, &DegenerateSampleError{Key: key, Sample: 2, Size: s2.SampleSize}
	}

	n1 := float64(s1.SampleSize)
	n2 := float64(s2.SampleSize)

	sd1 := s1.StandardError * math.Sqrt(n1)
	sd2 := s2.StandardError * math.Sqrt(n2)

	df := n1 + n2 - 2
	pooledVar := ((n1-1)*sd1*sd1 + (n2-1)*sd2*sd2) / df
	tValue := (s1.Mean - s2.Mean - cfg.Discrepancy) / math.Sqrt(pooledVar*(1/n1+1/n2))

	if math.IsNaN(tValue) || math.IsInf(tValue, 0) {
		return TestResult{}, &DegenerateSampleError{
			Key:   key,
			Cause: "pooled variance is zero or not finite",
		}
	}

	pValue := 2 * (1 - e.Dist.CDF(math.Abs(tValue), df))
	tCritical := e.Dist.Quantile(1-cfg.Alpha/2, df)

	return TestResult{
		TValue:           tValue,
		DegreesOfFreedom: df,
		PValue:           pValue,
		TCritical:        tCritical,
		// Critical-value comparison is the canonical rejection criterion;
		// p <= alpha agrees with it away from floating-point boundaries.
		Rejected:   math.Abs(tValue) > tCritical,
		RelStdErr1: RelativeStandardError(s1.Mean, s1.StandardError),
		RelStdErr2: RelativeStandardError(s2.Mean, s2.StandardError),
	}, nil
}

// RelativeStandardError returns the standard error as a percentage of the
// mean. A zero mean yields +Inf; callers render that as not available.
func RelativeStandardError(mean, stdErr float64) float64 {
	return stdErr / mean * percentFactor
}

// validateSamples rejects negative standard errors and non-positive sample
// sizes up front, before any per-key computation.
func validateSamples(sample1, sample2 SampleSet) error {
	for i, sample := range []SampleSet{sample1, sample2} {
		for _, key := range sortedKeys(sample) {
			summary := sample[key]

			if summary.StandardError < 0 {
				return fmt.Errorf("sample_%d key %q: %w", i+1, key, ErrNegativeStandardError)
			}

			if summary.SampleSize <= 0 {
				return fmt.Errorf("sample_%d key %q: %w", i+1, key, ErrNonPositiveSampleSize)
			}
		}
	}

	return nil
}

// matchKeys intersects the two key sets. Mismatched keys either fail the
// batch or are returned as skipped, depending on the tolerance flag. All
// returned slices are sorted for deterministic output.
func matchKeys(sample1, sample2 SampleSet, skip bool) (common, skipped []string, err error) {
	var only1, only2 []string

	for key := range sample1 {
		_, ok := sample2[key]
		if ok {
			common = append(common, key)
		} else {
			only1 = append(only1, key)
		}
	}

	for key := range sample2 {
		_, ok := sample1[key]
		if !ok {
			only2 = append(only2, key)
		}
	}

	slices.Sort(common)
	slices.Sort(only1)
	slices.Sort(only2)

	if len(only1) == 0 && len(only2) == 0 {
		return common, nil, nil
	}

	if !skip {
		return nil, nil, &MismatchError{OnlyInSample1: only1, OnlyInSample2: only2}
	}

	skipped = make([]string, 0, len(only1)+len(only2))
	skipped = append(skipped, only1...)
	skipped = append(skipped, only2...)
	slices.Sort(skipped)

	return common, skipped, nil
}

func sortedKeys(sample SampleSet) []string {
	keys := make([]string, 0, len(sample))

	for key := range sample {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
