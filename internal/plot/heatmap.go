package plot

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nukestat/tcompare/internal/sampleio"
	"github.com/nukestat/tcompare/internal/ttest"
)

// ErrNoSpatialKeys indicates no result key parsed as "x,y" coordinates, so
// there is nothing to place on a 2D grid.
var ErrNoSpatialKeys = errors.New(`no keys of the form "x,y" to plot as a heatmap`)

// viridis-like ramp, low p-values dark.
var heatmapRamp = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}

// RenderHeatmap writes an HTML p-value heatmap to path.
func RenderHeatmap(path string, rep *ttest.Report, alpha float64, rejectOnly bool) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteHeatmap(w, rep, alpha, rejectOnly)
	})
}

// WriteHeatmap renders p-values on the (x, y) grid recovered from "x,y"
// keys, color-mapped through a visual map. In reject-only mode (the
// default), accepted cells are left blank and the color scale spans
// [0, alpha], detailing the rejection region; otherwise every cell is drawn
// over the full [0, 1] range. Keys that do not parse as coordinates are
// ignored.
func WriteHeatmap(w io.Writer, rep *ttest.Report, alpha float64, rejectOnly bool) error {
	cells, xs, ys := collectCells(rep)
	if len(cells) == 0 {
		return ErrNoSpatialKeys
	}

	xLabels := axisLabels(xs)
	yLabels := axisLabels(ys)

	var data []opts.HeatMapData

	plotted := 0

	for _, cell := range cells {
		if rejectOnly && !cell.rejected {
			continue
		}

		xIdx := slices.Index(xs, cell.x)
		yIdx := slices.Index(ys, cell.y)
		data = append(data, opts.HeatMapData{Value: []any{xIdx, yIdx, cell.p}})
		plotted++
	}

	scaleMax := 1.0
	subtitle := fmt.Sprintf("%d cases over full p-value range", plotted)

	if rejectOnly {
		scaleMax = alpha
		subtitle = fmt.Sprintf("%d rejected of %d spatial cases; accepted cells blank", plotted, len(cells))
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "p-value Heatmap",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: "p-value Heatmap", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "X [cm]", Type: "category", Data: xLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Y [cm]", Type: "category", Data: yLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(scaleMax),
			InRange:    &opts.VisualMapInRange{Color: heatmapRamp},
			Orient:     "horizontal",
			Left:       "center",
			Bottom:     "2%",
		}),
	)
	hm.AddSeries("p-value", data)

	err := hm.Render(w)
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}

	return nil
}

type heatmapCell struct {
	x, y, p  float64
	rejected bool
}

// collectCells parses spatial keys and returns the cells plus the sorted,
// de-duplicated axis coordinates.
func collectCells(rep *ttest.Report) (cells []heatmapCell, xs, ys []float64) {
	for key, res := range rep.Results {
		x, y, ok := sampleio.ParseXYKey(key)
		if !ok {
			continue
		}

		cells = append(cells, heatmapCell{x: x, y: y, p: res.PValue, rejected: res.Rejected})
		xs = append(xs, x)
		ys = append(ys, y)
	}

	slices.Sort(xs)
	slices.Sort(ys)
	xs = slices.Compact(xs)
	ys = slices.Compact(ys)

	return cells, xs, ys
}

func axisLabels(coords []float64) []string {
	labels := make([]string, len(coords))

	for i, c := range coords {
		labels[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}

	return labels
}
