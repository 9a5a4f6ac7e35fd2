package sampleio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nukestat/tcompare/internal/ttest"
)

// meshTallyFields is the record width of an MCNP mesh-tally line:
// energy, x, y, z, result, relative error.
const meshTallyFields = 6

// MeshFilter restricts mesh-tally records to one energy bin and one z-plane
// so the remaining (x, y) grid forms a comparable 2D slice. A NaN bound
// disables that filter.
type MeshFilter struct {
	EnergyBin float64
	ZPlane    float64
}

// NoMeshFilter returns a filter that accepts every record.
func NoMeshFilter() MeshFilter {
	return MeshFilter{EnergyBin: math.NaN(), ZPlane: math.NaN()}
}

func (f MeshFilter) accepts(energy, z float64) bool {
	if !math.IsNaN(f.EnergyBin) && energy != f.EnergyBin {
		return false
	}

	if !math.IsNaN(f.ZPlane) && z != f.ZPlane {
		return false
	}

	return true
}

// ReadMeshTally parses MCNP mesh-tally output. Records carry a tally result
// and a relative error; the standard error of the mean is their product.
// Header lines and records of the wrong width are skipped, as are records
// with a zero result or a zero relative error (voxels the tally never
// scored, or scored without an uncertainty estimate). Keys are "x,y" so
// downstream heatmaps can recover coordinates.
func ReadMeshTally(r io.Reader, filter MeshFilter, defaultN int) (ttest.SampleSet, error) {
	if defaultN <= 0 {
		defaultN = DefaultSampleSize
	}

	samples := make(ttest.SampleSet)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		rec, ok := parseMeshRecord(scanner.Text())
		if !ok {
			continue
		}

		if !filter.accepts(rec.energy, rec.z) {
			continue
		}

		if rec.result == 0 || rec.relErr == 0 {
			continue
		}

		key := FormatXYKey(rec.x, rec.y)
		samples[key] = ttest.SampleSummary{
			Mean:          rec.result,
			StandardError: rec.relErr * rec.result,
			SampleSize:    defaultN,
		}
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read mesh tally: %w", err)
	}

	if len(samples) == 0 {
		return nil, ErrEmptySampleSet
	}

	return samples, nil
}

type meshRecord struct {
	energy, x, y, z, result, relErr float64
}

func parseMeshRecord(line string) (meshRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) != meshTallyFields {
		return meshRecord{}, false
	}

	values := make([]float64, meshTallyFields)

	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return meshRecord{}, false
		}

		values[i] = v
	}

	return meshRecord{
		energy: values[0],
		x:      values[1],
		y:      values[2],
		z:      values[3],
		result: values[4],
		relErr: values[5],
	}, true
}

// FormatXYKey builds the "x,y" key used for mesh-tally records.
func FormatXYKey(x, y float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64) + "," + strconv.FormatFloat(y, 'g', -1, 64)
}

// ParseXYKey recovers (x, y) coordinates from a "x,y" key. It reports false
// for keys that do not carry exactly two comma-separated numbers.
func ParseXYKey(key string) (x, y float64, ok bool) {
	left, right, found := strings.Cut(key, ",")
	if !found || strings.Contains(right, ",") {
		return 0, 0, false
	}

	x, errX := strconv.ParseFloat(left, 64)
	y, errY := strconv.ParseFloat(right, 64)

	if errX != nil || errY != nil {
		return 0, 0, false
	}

	return x, y, true
}
