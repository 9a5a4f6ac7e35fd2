package sampleio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nukestat/tcompare/internal/ttest"
)

// ErrSchemaViolation indicates a JSON sample file does not match the
// expected shape.
var ErrSchemaViolation = errors.New("sample file violates schema")

// sampleSchema constrains JSON sample files to a mapping of key to summary.
// sample_size is optional and filled from the configured default.
const sampleSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "object",
    "required": ["mean", "standard_error"],
    "properties": {
      "mean": {"type": "number"},
      "standard_error": {"type": "number", "minimum": 0},
      "sample_size": {"type": "integer", "minimum": 1}
    },
    "additionalProperties": false
  }
}`

type jsonSummary struct {
	Mean          float64 `json:"mean"`
	StandardError float64 `json:"standard_error"`
	SampleSize    int     `json:"sample_size"`
}

// ReadJSON parses a JSON sample file after validating it against the
// embedded schema, so malformed records fail with a field-level message
// instead of a zero-valued summary.
func ReadJSON(r io.Reader, defaultN int) (ttest.SampleSet, error) {
	if defaultN <= 0 {
		defaultN = DefaultSampleSize
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(sampleSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate samples: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(details, "; "))
	}

	var raw map[string]jsonSummary

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrEmptySampleSet
	}

	samples := make(ttest.SampleSet, len(raw))

	for key, rec := range raw {
		size := rec.SampleSize
		if size == 0 {
			size = defaultN
		}

		samples[key] = ttest.SampleSummary{
			Mean:          rec.Mean,
			StandardError: rec.StandardError,
			SampleSize:    size,
		}
	}

	return samples, nil
}
