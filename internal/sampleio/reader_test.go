package sampleio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nukestat/tcompare/internal/ttest"
)

func TestReadColumnar_Basic(t *testing.T) {
	t.Parallel()

	input := `# reference k-effective values
keff_core  1.00231 0.00045 250
keff_refl  0.99875 0.00051 250

flux_peak  4.2e14  2.1e12
`

	samples, err := ReadColumnar(strings.NewReader(input), 100)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, ttest.SampleSummary{Mean: 1.00231, StandardError: 0.00045, SampleSize: 250}, samples["keff_core"])

	// No explicit sample size: filled from the default.
	assert.Equal(t, 100, samples["flux_peak"].SampleSize)
	assert.InDelta(t, 4.2e14, samples["flux_peak"].Mean, 1e6)
}

func TestReadColumnar_DefaultSampleSizeFallback(t *testing.T) {
	t.Parallel()

	samples, err := ReadColumnar(strings.NewReader("a 1.0 0.1\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleSize, samples["a"].SampleSize)
}

func TestReadColumnar_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"too few fields", "a 1.0\n", "fields"},
		{"bad mean", "a x 0.1 30\n", "parse mean"},
		{"bad stderr", "a 1.0 x 30\n", "parse stderr"},
		{"bad size", "a 1.0 0.1 x\n", "parse sample size"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadColumnar(strings.NewReader(tc.input), 30)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestReadColumnar_DuplicateKey(t *testing.T) {
	t.Parallel()

	_, err := ReadColumnar(strings.NewReader("a 1.0 0.1\na 2.0 0.2\n"), 30)
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestReadColumnar_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadColumnar(strings.NewReader("# only comments\n\n"), 30)
	assert.ErrorIs(t, err, ErrEmptySampleSet)
}

func TestReadJSON_Basic(t *testing.T) {
	t.Parallel()

	input := `{
	  "keff_core": {"mean": 1.00231, "standard_error": 0.00045, "sample_size": 250},
	  "flux_peak": {"mean": 4.2e14, "standard_error": 2.1e12}
	}`

	samples, err := ReadJSON(strings.NewReader(input), 100)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, 250, samples["keff_core"].SampleSize)
	assert.Equal(t, 100, samples["flux_peak"].SampleSize)
}

func TestReadJSON_SchemaViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
	}{
		{"missing mean", `{"a": {"standard_error": 0.1}}`},
		{"negative stderr", `{"a": {"mean": 1.0, "standard_error": -0.1}}`},
		{"zero sample size", `{"a": {"mean": 1.0, "standard_error": 0.1, "sample_size": 0}}`},
		{"unknown field", `{"a": {"mean": 1.0, "standard_error": 0.1, "stddev": 0.5}}`},
		{"empty object", `{}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadJSON(strings.NewReader(tc.input), 30)
			assert.ErrorIs(t, err, ErrSchemaViolation)
		})
	}
}

func TestReadMeshTally_FilterAndKeying(t *testing.T) {
	t.Parallel()

	// Columns: energy x y z result rel_error.
	input := ` Mesh Tally Number 14
   Energy        X         Y         Z       Result    Rel Error
   5.000E-07   -10.0      5.0      22.5    1.2E+13    0.015
   5.000E-07    10.0      5.0      22.5    1.4E+13    0.012
   5.000E-07    10.0      7.5      30.0    9.9E+12    0.020
   1.000E-06    10.0      5.0      22.5    2.0E+13    0.010
   5.000E-07    12.5      5.0      22.5    0.0E+00    0.000
`

	filter := MeshFilter{EnergyBin: 5.000e-07, ZPlane: 22.5}

	samples, err := ReadMeshTally(strings.NewReader(input), filter, 1000)
	require.NoError(t, err)

	// Wrong energy, wrong z-plane, and zero-result voxels are dropped.
	require.Len(t, samples, 2)

	summary := samples[FormatXYKey(10.0, 5.0)]

	assert.InDelta(t, 1.4e13, summary.Mean, 1e3)
	assert.InDelta(t, 0.012*1.4e13, summary.StandardError, 1e3)
	assert.Equal(t, 1000, summary.SampleSize)
}

func TestReadMeshTally_DropsOneSidedZeroRecords(t *testing.T) {
	t.Parallel()

	// Zero result with a nonzero relative error, and vice versa, are both
	// unscored voxels and must not reach the engine as degenerate samples.
	input := "5.0e-7 1.0 2.0 3.0 0.0 0.5\n" +
		"5.0e-7 3.0 4.0 3.0 7.5 0.0\n" +
		"5.0e-7 5.0 6.0 3.0 10.0 0.1\n"

	samples, err := ReadMeshTally(strings.NewReader(input), NoMeshFilter(), 30)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.NotContains(t, samples, FormatXYKey(1.0, 2.0))
	assert.NotContains(t, samples, FormatXYKey(3.0, 4.0))
	assert.Contains(t, samples, FormatXYKey(5.0, 6.0))
}

func TestReadMeshTally_NoFilter(t *testing.T) {
	t.Parallel()

	input := "5.0e-7 1.0 2.0 3.0 10.0 0.1\n1.0e-6 4.0 5.0 6.0 20.0 0.2\n"

	samples, err := ReadMeshTally(strings.NewReader(input), NoMeshFilter(), 30)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestReadMeshTally_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadMeshTally(strings.NewReader("header only\n"), NoMeshFilter(), 30)
	assert.ErrorIs(t, err, ErrEmptySampleSet)
}

func TestParseXYKey(t *testing.T) {
	t.Parallel()

	x, y, ok := ParseXYKey("-10.5,7.25")
	require.True(t, ok)
	assert.InDelta(t, -10.5, x, 1e-12)
	assert.InDelta(t, 7.25, y, 1e-12)

	for _, key := range []string{"keff_core", "1,2,3", "a,b", "", "1,"} {
		_, _, ok = ParseXYKey(key)
		assert.False(t, ok, "key %q must not parse", key)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	t.Parallel()

	x, y, ok := ParseXYKey(FormatXYKey(-12.5, 0.003))
	require.True(t, ok)
	assert.InDelta(t, -12.5, x, 1e-12)
	assert.InDelta(t, 0.003, y, 1e-12)
}

func TestLoad_AutoDetect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	columnar := filepath.Join(dir, "ref.dat")
	require.NoError(t, os.WriteFile(columnar, []byte("a 1.0 0.1 30\n"), 0o600))

	jsonPath := filepath.Join(dir, "ref.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"a": {"mean": 1.0, "standard_error": 0.1}}`), 0o600))

	mesh := filepath.Join(dir, "flux.imsht")
	require.NoError(t, os.WriteFile(mesh, []byte("5.0e-7 1.0 2.0 3.0 10.0 0.1\n"), 0o600))

	opts := DefaultOptions()

	for _, path := range []string{columnar, jsonPath, mesh} {
		samples, err := Load(path, opts)
		require.NoError(t, err, "load %s", path)
		assert.Len(t, samples, 1)
	}
}

func TestLoad_UnknownFormat(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Format = "parquet"

	_, err := Load(filepath.Join(t.TempDir(), "missing.dat"), opts)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_ExplicitFormatOverride(t *testing.T) {
	t.Parallel()

	// A .dat extension read as JSON because the caller says so.
	path := filepath.Join(t.TempDir(), "ref.dat")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"mean": 1.0, "standard_error": 0.1}}`), 0o600))

	opts := DefaultOptions()
	opts.Format = FormatJSON

	samples, err := Load(path, opts)
	require.NoError(t, err)
	assert.Contains(t, samples, "a")
}
