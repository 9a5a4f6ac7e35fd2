// Package sampleio loads keyed sample summaries from input files. Three
// formats are supported: whitespace-columnar text, JSON validated against an
// embedded schema, and MCNP mesh-tally output filtered to a single energy
// bin and z-plane.
package sampleio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nukestat/tcompare/internal/ttest"
)

// Supported input formats.
const (
	FormatAuto      = "auto"
	FormatColumnar  = "columnar"
	FormatJSON      = "json"
	FormatMeshTally = "meshtal"
)

// DefaultSampleSize fills in the sample size for records that do not carry
// one, matching the batch size Monte Carlo runs commonly use.
const DefaultSampleSize = 30

// Columnar field counts: key mean se, optionally followed by n.
const (
	columnarMinFields = 3
	columnarMaxFields = 4
)

var (
	// ErrUnknownFormat indicates an unrecognized input format name.
	ErrUnknownFormat = errors.New("unknown input format")
	// ErrEmptySampleSet indicates a file produced no usable records.
	ErrEmptySampleSet = errors.New("no sample records found")
	// ErrDuplicateKey indicates the same key appears twice in one file.
	ErrDuplicateKey = errors.New("duplicate sample key")
)

// Options controls loading.
type Options struct {
	// Format names the input format; FormatAuto selects by file extension.
	Format string
	// DefaultN is the sample size used when a record omits one.
	DefaultN int
	// Mesh filters mesh-tally records.
	Mesh MeshFilter
}

// DefaultOptions returns loading defaults: auto-detected format and
// DefaultSampleSize for records without a sample size.
func DefaultOptions() Options {
	return Options{Format: FormatAuto, DefaultN: DefaultSampleSize, Mesh: NoMeshFilter()}
}

// Load reads a sample set from path according to opts.
func Load(path string, opts Options) (ttest.SampleSet, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = detectFormat(path)
	}

	if format != FormatColumnar && format != FormatJSON && format != FormatMeshTally {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		return ReadJSON(file, opts.DefaultN)
	case FormatMeshTally:
		return ReadMeshTally(file, opts.Mesh, opts.DefaultN)
	default:
		return ReadColumnar(file, opts.DefaultN)
	}
}

// detectFormat maps a file extension to a format name. Anything unrecognized
// is treated as columnar text.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".imsht", ".msht", ".meshtal":
		return FormatMeshTally
	default:
		return FormatColumnar
	}
}

// ReadColumnar parses one record per line: key, mean, standard error, and an
// optional sample size filled from defaultN when absent. Blank lines and
// lines starting with '#' are skipped.
func ReadColumnar(r io.Reader, defaultN int) (ttest.SampleSet, error) {
	if defaultN <= 0 {
		defaultN = DefaultSampleSize
	}

	samples := make(ttest.SampleSet)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		summary, key, err := parseColumnarLine(line, defaultN)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		_, seen := samples[key]
		if seen {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrDuplicateKey, key)
		}

		samples[key] = summary
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	if len(samples) == 0 {
		return nil, ErrEmptySampleSet
	}

	return samples, nil
}

func parseColumnarLine(line string, defaultN int) (ttest.SampleSummary, string, error) {
	fields := strings.Fields(line)
	if len(fields) < columnarMinFields || len(fields) > columnarMaxFields {
		return ttest.SampleSummary{}, "", fmt.Errorf(
			"expected %d or %d fields (key mean stderr [n]), got %d",
			columnarMinFields, columnarMaxFields, len(fields))
	}

	key := fields[0]

	mean, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return ttest.SampleSummary{}, "", fmt.Errorf("parse mean %q: %w", fields[1], err)
	}

	stdErr, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return ttest.SampleSummary{}, "", fmt.Errorf("parse stderr %q: %w", fields[2], err)
	}

	size := defaultN

	if len(fields) == columnarMaxFields {
		size, err = strconv.Atoi(fields[3])
		if err != nil {
			return ttest.SampleSummary{}, "", fmt.Errorf("parse sample size %q: %w", fields[3], err)
		}
	}

	return ttest.SampleSummary{Mean: mean, StandardError: stdErr, SampleSize: size}, key, nil
}
