package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nukestat/tcompare/internal/sampleio"
)

func validConfig() Config {
	return Config{
		Alpha:   DefaultAlpha,
		Verbose: DefaultVerbose,
		Format:  DefaultFormat,
		Input:   InputConfig{Format: DefaultInputFormat, DefaultN: DefaultSampleCount},
		Plot:    PlotConfig{Kind: DefaultPlotKind, Output: DefaultPlotOutput, RejectOnly: true},
	}
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"alpha zero", func(c *Config) { c.Alpha = 0 }, ErrInvalidAlpha},
		{"alpha one", func(c *Config) { c.Alpha = 1 }, ErrInvalidAlpha},
		{"negative verbose", func(c *Config) { c.Verbose = -1 }, ErrInvalidVerbose},
		{"zero default n", func(c *Config) { c.Input.DefaultN = 0 }, ErrInvalidDefaultN},
		{"bad format", func(c *Config) { c.Format = "xml" }, ErrInvalidFormat},
		{"bad input format", func(c *Config) { c.Input.Format = "hdf5" }, ErrInvalidInputFormat},
		{"bad plot kind", func(c *Config) { c.Plot.Kind = "pie" }, ErrInvalidPlotKind},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}

func TestMeshFilter_Conversion(t *testing.T) {
	t.Parallel()

	// No bounds set: everything passes.
	open := InputConfig{}.MeshFilter()
	assert.True(t, math.IsNaN(open.EnergyBin))
	assert.True(t, math.IsNaN(open.ZPlane))

	energy := 5e-7
	z := 22.5
	bounded := InputConfig{Mesh: MeshConfig{EnergyBin: &energy, ZPlane: &z}}.MeshFilter()
	assert.InDelta(t, 5e-7, bounded.EnergyBin, 1e-20)
	assert.InDelta(t, 22.5, bounded.ZPlane, 1e-12)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	// An explicitly named but missing file is an error.
	require.Error(t, err)

	// No explicit path: defaults apply (run from a directory without a
	// config file). testing.T.Chdir needs Go 1.24, so chdir manually and
	// restore on cleanup.
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})

	cfg, err = LoadConfig("")
	require.NoError(t, err)

	assert.InDelta(t, DefaultAlpha, cfg.Alpha, 1e-12)
	assert.Equal(t, DefaultVerbose, cfg.Verbose)
	assert.Equal(t, sampleio.FormatAuto, cfg.Input.Format)
	assert.Equal(t, DefaultPlotOutput, cfg.Plot.Output)
	assert.True(t, cfg.Plot.RejectOnly)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tcompare.yaml")
	content := `alpha: 0.01
skip: true
verbose: 2
input:
  default_n: 1000
  mesh:
    energy_bin: 5.0e-7
    z_plane: 22.5
plot:
  kind: heatmap
  output: flux.html
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, cfg.Alpha, 1e-12)
	assert.True(t, cfg.Skip)
	assert.Equal(t, 2, cfg.Verbose)
	assert.Equal(t, 1000, cfg.Input.DefaultN)
	assert.Equal(t, "heatmap", cfg.Plot.Kind)
	assert.Equal(t, "flux.html", cfg.Plot.Output)

	filter := cfg.Input.MeshFilter()
	assert.InDelta(t, 5.0e-7, filter.EnergyBin, 1e-20)
	assert.InDelta(t, 22.5, filter.ZPlane, 1e-12)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alpha: 2.0\n"), 0o600))

	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidAlpha)
}
