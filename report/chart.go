package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultChartPath is where the cluster chart is written when no path is
// configured.
const DefaultChartPath = "question_clusters.png"

// RenderError reports a chart that could not be written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render chart %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

var barColor = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff} // skyblue

// RenderChart draws one bar per summary, in the given order, and writes
// the image to path. The format follows the extension (png when absent).
// With no summaries nothing is written. The image is written to a
// temporary file in the same directory and renamed into place.
func RenderChart(path string, summaries []Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	if path == "" {
		path = DefaultChartPath
	}

	p := plot.New()
	p.Title.Text = "Top Frequently Asked Question Types"
	p.X.Label.Text = "Clusters (Grouped Question Types)"
	p.Y.Label.Text = "Frequency"
	p.Y.Min = 0

	values := make(plotter.Values, len(summaries))
	labels := make([]string, len(summaries))
	for i, s := range summaries {
		values[i] = float64(s.Size)
		labels[i] = fmt.Sprintf("Cluster %d", s.ClusterID)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.785 // 45°
	p.X.Tick.Label.XAlign = -1
	p.X.Tick.Label.YAlign = -0.5

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(12*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".chart-*."+format)
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := wt.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &RenderError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &RenderError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &RenderError{Path: path, Err: err}
	}
	return nil
}
