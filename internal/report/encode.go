package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/nukestat/tcompare/internal/ttest"
)

// Machine output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownOutputFormat indicates an unrecognized --format value.
var ErrUnknownOutputFormat = errors.New("unknown output format")

// jsonIndent matches the two-space indentation used across the tool's
// machine output.
const jsonIndent = "  "

// document is the serializable shape of a batch report. Failures are
// flattened to messages since error values do not marshal, and relative
// standard errors become nullable so a zero-mean sample's +Inf RSE does not
// break JSON encoding.
type document struct {
	Results  map[string]resultDoc `json:"results"            yaml:"results"`
	Skipped  []string             `json:"skipped,omitempty"  yaml:"skipped,omitempty"`
	Failures map[string]string    `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type resultDoc struct {
	TValue           float64  `json:"t_value"                  yaml:"t_value"`
	DegreesOfFreedom float64  `json:"degrees_of_freedom"       yaml:"degrees_of_freedom"`
	PValue           float64  `json:"p_value"                  yaml:"p_value"`
	TCritical        float64  `json:"t_critical"               yaml:"t_critical"`
	Rejected         bool     `json:"rejected"                 yaml:"rejected"`
	RelStdErr1       *float64 `json:"rel_std_err_1,omitempty"  yaml:"rel_std_err_1,omitempty"`
	RelStdErr2       *float64 `json:"rel_std_err_2,omitempty"  yaml:"rel_std_err_2,omitempty"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}

	return &v
}

func buildDocument(rep *ttest.Report) document {
	doc := document{
		Results: make(map[string]resultDoc, len(rep.Results)),
		Skipped: rep.Skipped,
	}

	for key, res := range rep.Results {
		doc.Results[key] = resultDoc{
			TValue:           res.TValue,
			DegreesOfFreedom: res.DegreesOfFreedom,
			PValue:           res.PValue,
			TCritical:        res.TCritical,
			Rejected:         res.Rejected,
			RelStdErr1:       finiteOrNil(res.RelStdErr1),
			RelStdErr2:       finiteOrNil(res.RelStdErr2),
		}
	}

	if len(rep.Failures) > 0 {
		doc.Failures = make(map[string]string, len(rep.Failures))
		for key, err := range rep.Failures {
			doc.Failures[key] = err.Error()
		}
	}

	return doc
}

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, rep *ttest.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jsonIndent)

	err := enc.Encode(buildDocument(rep))
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML encodes the report as YAML.
func WriteYAML(w io.Writer, rep *ttest.Report) error {
	enc := yaml.NewEncoder(w)

	err := enc.Encode(buildDocument(rep))
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	return enc.Close()
}

// Write dispatches on the output format name. FormatText renders the
// human-readable summary.
func Write(w io.Writer, format string, rep *ttest.Report, cfg ttest.Config, opts Options) error {
	switch format {
	case FormatText, "":
		return WriteSummary(w, rep, cfg, opts)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatYAML:
		return WriteYAML(w, rep)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutputFormat, format)
	}
}
