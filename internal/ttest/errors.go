package ttest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration validation.
var (
	// ErrAlphaRange indicates the significance level is outside (0, 1).
	ErrAlphaRange = errors.New("alpha must be in (0, 1)")
	// ErrNegativeStandardError indicates a sample carries a negative standard error.
	ErrNegativeStandardError = errors.New("standard error must be non-negative")
	// ErrNonPositiveSampleSize indicates a sample carries a size of zero or less.
	ErrNonPositiveSampleSize = errors.New("sample size must be positive")
)

// MismatchError reports keys present in exactly one of the two sample sets
// when mismatch tolerance is disabled. The whole batch fails; no partial
// results are returned.
type MismatchError struct {
	// OnlyInSample1 lists keys present in sample_1 but absent from sample_2.
	OnlyInSample1 []string
	// OnlyInSample2 lists keys present in sample_2 but absent from sample_1.
	OnlyInSample2 []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder

	b.WriteString("sample key sets mismatch")

	if len(e.OnlyInSample1) > 0 {
		fmt.Fprintf(&b, ": sample_2 missing %v", e.OnlyInSample1)
	}

	if len(e.OnlyInSample2) > 0 {
		fmt.Fprintf(&b, ": sample_1 missing %v", e.OnlyInSample2)
	}

	return b.String()
}

// DegenerateSampleError reports a key whose inputs cannot support a
// pooled-variance t-test: a sample size of one or less, or inputs that
// produce a non-finite statistic. Surfaced per key so one degenerate entry
// does not abort the rest of the batch.
type DegenerateSampleError struct {
	Key string
	// Sample is 1 or 2 when a specific sample set is at fault, 0 when the
	// combination is (for example, zero pooled variance).
	Sample int
	Size   int
	Cause  string
}

func (e *DegenerateSampleError) Error() string {
	if e.Sample > 0 {
		return fmt.Sprintf("degenerate sample for key %q: sample_%d has size %d, need at least 2",
			e.Key, e.Sample, e.Size)
	}

	return fmt.Sprintf("degenerate sample for key %q: %s", e.Key, e.Cause)
}
