package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nukestat/tcompare/internal/ttest"
)

const (
	chartWidth  = "900px"
	chartHeight = "520px"

	// maxHistogramBins caps the bin count for very small alphas.
	maxHistogramBins = 100

	rejectBinColor = "#d64541"
	acceptBinColor = "#5470c6"
)

// RenderHistogram writes an HTML p-value histogram to path.
func RenderHistogram(path string, rep *ttest.Report, alpha float64) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteHistogram(w, rep, alpha)
	})
}

// WriteHistogram renders a histogram of p-values over [0, 1]. The bin count
// is 1/alpha so every rejecting case lands in the first bin, which is
// colored distinctly; the first bar therefore reads as the rejection count.
func WriteHistogram(w io.Writer, rep *ttest.Report, alpha float64) error {
	bins := histogramBins(alpha)
	counts := binPValues(rep, bins)

	labels := make([]string, bins)
	data := make([]opts.BarData, bins)

	for i := 0; i < bins; i++ {
		lo := float64(i) / float64(bins)
		hi := float64(i+1) / float64(bins)
		labels[i] = fmt.Sprintf("%.3g-%.3g", lo, hi)

		binColor := acceptBinColor
		if i == 0 {
			binColor = rejectBinColor
		}

		data[i] = opts.BarData{
			Value:     counts[i],
			ItemStyle: &opts.ItemStyle{Color: binColor},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "p-value Histogram",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("p-value Histogram (p <= %g: Reject null)", alpha),
			Subtitle: fmt.Sprintf("%d cases", len(rep.Results)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "p-value [-]"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Counts [#]"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Counts", data)

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}

	return nil
}

// histogramBins mirrors the original tool's convention: one bin per alpha
// interval, so bin 0 spans exactly the rejection region.
func histogramBins(alpha float64) int {
	if alpha <= 0 || alpha >= 1 {
		return 1
	}

	bins := int(1 / alpha)
	if bins < 1 {
		bins = 1
	}

	if bins > maxHistogramBins {
		bins = maxHistogramBins
	}

	return bins
}

func binPValues(rep *ttest.Report, bins int) []int {
	counts := make([]int, bins)

	for _, res := range rep.Results {
		idx := int(res.PValue * float64(bins))
		if idx >= bins {
			idx = bins - 1
		}

		if idx < 0 {
			idx = 0
		}

		counts[idx]++
	}

	return counts
}
