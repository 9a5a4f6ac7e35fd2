// Package report renders t-test batch results for people and for machines:
// a verbosity-leveled text summary with tables, plus JSON and YAML encodings
// of the full result mapping.
package report

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nukestat/tcompare/internal/ttest"
)

// Verbosity levels for the text summary.
const (
	// VerbositySilent suppresses all summary output.
	VerbositySilent = 0
	// VerbosityCounts prints the one-line rejection count summary.
	VerbosityCounts = 1
	// VerbosityDetail adds rejected-case and reliability tables.
	VerbosityDetail = 2
)

// Options controls text rendering.
type Options struct {
	Verbose int
	NoColor bool
}

// WriteSummary renders the rejection summary at the configured verbosity.
// Skipped keys and per-key failures are always listed at VerbosityCounts and
// above so no key silently disappears from the report.
func WriteSummary(w io.Writer, rep *ttest.Report, cfg ttest.Config, opts Options) error {
	if opts.Verbose <= VerbositySilent {
		return nil
	}

	rejected := rep.RejectedKeys()

	line := fmt.Sprintf("t-test: %s out of %s cases reject null hypothesis (mean_1 - mean_2) = %v with alpha = %v",
		highlightCount(len(rejected), opts.NoColor),
		humanize.Comma(int64(len(rep.Results))),
		cfg.Discrepancy, cfg.Alpha)

	_, err := fmt.Fprintln(w, line)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	err = writeOmissions(w, rep)
	if err != nil {
		return err
	}

	if opts.Verbose < VerbosityDetail {
		return nil
	}

	err = writeRejectedTable(w, rep, rejected)
	if err != nil {
		return err
	}

	return writeReliabilityTable(w, rep)
}

func highlightCount(count int, noColor bool) string {
	text := humanize.Comma(int64(count))
	if noColor {
		return text
	}

	if count > 0 {
		return color.New(color.FgRed, color.Bold).Sprint(text)
	}

	return color.New(color.FgGreen).Sprint(text)
}

// writeOmissions lists skipped keys and degenerate failures.
func writeOmissions(w io.Writer, rep *ttest.Report) error {
	if len(rep.Skipped) > 0 {
		_, err := fmt.Fprintf(w, "skipped %d mismatched key(s): %v\n", len(rep.Skipped), rep.Skipped)
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	for _, key := range sortedFailureKeys(rep) {
		_, err := fmt.Fprintf(w, "failed: %v\n", rep.Failures[key])
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return nil
}

func writeRejectedTable(w io.Writer, rep *ttest.Report, rejected []string) error {
	if len(rejected) == 0 {
		return nil
	}

	_, err := fmt.Fprintln(w, "Rejected cases:")
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Key", "t-value", "df", "p-value", "t-critical"})

	for _, key := range rejected {
		res := rep.Results[key]
		tw.AppendRow(table.Row{
			key,
			fmt.Sprintf("%.5f", res.TValue),
			fmt.Sprintf("%.0f", res.DegreesOfFreedom),
			fmt.Sprintf("%.5e", res.PValue),
			fmt.Sprintf("%.5f", res.TCritical),
		})
	}

	tw.Render()

	return nil
}

func writeReliabilityTable(w io.Writer, rep *ttest.Report) error {
	if len(rep.Results) == 0 {
		return nil
	}

	_, err := fmt.Fprintln(w, "Relative standard errors:")
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	keys := make([]string, 0, len(rep.Results))
	for key := range rep.Results {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Key", "sample_1 RSE", "sample_2 RSE"})

	for _, key := range keys {
		res := rep.Results[key]
		tw.AppendRow(table.Row{key, formatRSE(res.RelStdErr1), formatRSE(res.RelStdErr2)})
	}

	tw.Render()

	return nil
}

// formatRSE renders a relative standard error percentage; a zero-mean sample
// has no meaningful RSE.
func formatRSE(rse float64) string {
	if math.IsInf(rse, 0) || math.IsNaN(rse) {
		return "n/a"
	}

	return fmt.Sprintf("%.3f %%", rse)
}

func sortedFailureKeys(rep *ttest.Report) []string {
	keys := make([]string, 0, len(rep.Failures))

	for key := range rep.Failures {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
