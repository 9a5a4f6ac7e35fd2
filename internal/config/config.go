// Package config loads tcompare settings from file, environment, and
// defaults via viper.
package config

import (
	"errors"

	"github.com/nukestat/tcompare/internal/plot"
	"github.com/nukestat/tcompare/internal/report"
	"github.com/nukestat/tcompare/internal/sampleio"
)

// Config is the top-level configuration struct for tcompare.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Alpha       float64     `mapstructure:"alpha"`
	Discrepancy float64     `mapstructure:"discrepancy"`
	Skip        bool        `mapstructure:"skip"`
	Verbose     int         `mapstructure:"verbose"`
	Format      string      `mapstructure:"format"`
	Input       InputConfig `mapstructure:"input"`
	Plot        PlotConfig  `mapstructure:"plot"`
}

// InputConfig holds sample loading settings.
type InputConfig struct {
	Format   string     `mapstructure:"format"`
	DefaultN int        `mapstructure:"default_n"`
	Mesh     MeshConfig `mapstructure:"mesh"`
}

// MeshConfig holds mesh-tally filter bounds. A nil bound disables that
// filter.
type MeshConfig struct {
	EnergyBin *float64 `mapstructure:"energy_bin"`
	ZPlane    *float64 `mapstructure:"z_plane"`
}

// PlotConfig holds plot output settings.
type PlotConfig struct {
	Kind       string `mapstructure:"kind"`
	Output     string `mapstructure:"output"`
	RejectOnly bool   `mapstructure:"reject_only"`
}

// Default values applied before any file or environment override.
const (
	DefaultAlpha          = 0.05
	DefaultDiscrepancy    = 0.0
	DefaultSkip           = false
	DefaultVerbose        = report.VerbosityCounts
	DefaultFormat         = report.FormatText
	DefaultInputFormat    = sampleio.FormatAuto
	DefaultSampleCount    = sampleio.DefaultSampleSize
	DefaultPlotKind       = plot.KindHistogram
	DefaultPlotOutput     = "ttest_plot.html"
	DefaultPlotRejectOnly = true
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidAlpha indicates the significance level is outside (0, 1).
	ErrInvalidAlpha = errors.New("alpha must be in (0, 1)")
	// ErrInvalidVerbose indicates a negative verbosity level.
	ErrInvalidVerbose = errors.New("verbose must be non-negative")
	// ErrInvalidDefaultN indicates a non-positive default sample size.
	ErrInvalidDefaultN = errors.New("input.default_n must be positive")
	// ErrInvalidFormat indicates an unrecognized output format.
	ErrInvalidFormat = errors.New("format must be one of: text, json, yaml")
	// ErrInvalidInputFormat indicates an unrecognized input format.
	ErrInvalidInputFormat = errors.New("input.format must be one of: auto, columnar, json, meshtal")
	// ErrInvalidPlotKind indicates an unrecognized plot kind.
	ErrInvalidPlotKind = errors.New("plot.kind must be one of: histogram, heatmap")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return ErrInvalidAlpha
	}

	if c.Verbose < 0 {
		return ErrInvalidVerbose
	}

	if c.Input.DefaultN <= 0 {
		return ErrInvalidDefaultN
	}

	switch c.Format {
	case report.FormatText, report.FormatJSON, report.FormatYAML:
	default:
		return ErrInvalidFormat
	}

	switch c.Input.Format {
	case sampleio.FormatAuto, sampleio.FormatColumnar, sampleio.FormatJSON, sampleio.FormatMeshTally:
	default:
		return ErrInvalidInputFormat
	}

	switch c.Plot.Kind {
	case plot.KindHistogram, plot.KindHeatmap:
	default:
		return ErrInvalidPlotKind
	}

	return nil
}

// MeshFilter converts the configured mesh bounds to a sampleio filter.
func (c InputConfig) MeshFilter() sampleio.MeshFilter {
	filter := sampleio.NoMeshFilter()

	if c.Mesh.EnergyBin != nil {
		filter.EnergyBin = *c.Mesh.EnergyBin
	}

	if c.Mesh.ZPlane != nil {
		filter.ZPlane = *c.Mesh.ZPlane
	}

	return filter
}
