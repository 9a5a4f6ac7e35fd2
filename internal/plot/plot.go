// Package plot renders t-test batch results as self-contained HTML charts:
// a histogram of p-values and a 2D heatmap of p-values over (x, y) keyed
// coordinates.
package plot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nukestat/tcompare/internal/ttest"
)

// Supported plot kinds.
const (
	KindHistogram = "histogram"
	KindHeatmap   = "heatmap"
)

// ErrUnknownKind indicates an unrecognized plot kind.
var ErrUnknownKind = errors.New("unknown plot kind")

// Render writes the requested plot kind to path.
func Render(kind, path string, rep *ttest.Report, alpha float64, rejectOnly bool) error {
	switch kind {
	case KindHistogram:
		return RenderHistogram(path, rep, alpha)
	case KindHeatmap:
		return RenderHeatmap(path, rep, alpha, rejectOnly)
	default:
		return fmt.Errorf("%w: %s (choices: %s, %s)", ErrUnknownKind, kind, KindHistogram, KindHeatmap)
	}
}

// outFilePerm is the permission mask for generated plot files.
const outFilePerm = 0o644

// writeFile renders through fn into path.
func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outFilePerm)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	renderErr := fn(f)

	closeErr := f.Close()
	if renderErr != nil {
		return renderErr
	}

	if closeErr != nil {
		return fmt.Errorf("close plot file: %w", closeErr)
	}

	return nil
}
