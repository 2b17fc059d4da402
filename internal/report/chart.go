// Package report renders stored finger counts as charts.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/fingercount/internal/store"
)

// ErrNoData is returned when there are no totals to chart.
var ErrNoData = errors.New("no frame totals to chart")

// Chart dimensions.
const (
	ChartWidth  = 10 * vg.Inch
	ChartHeight = 4 * vg.Inch
)

var (
	rawColor      = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	smoothedColor = color.RGBA{R: 0, G: 128, B: 0, A: 255}
)

// WriteCountChart draws the raw and smoothed totals per frame as a PNG line
// chart and writes it to w.
func WriteCountChart(w io.Writer, totals []store.FrameTotal, title string) error {
	if len(totals) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Fingers"

	rawPts := make(plotter.XYs, 0, len(totals))
	smoothPts := make(plotter.XYs, 0, len(totals))
	peak := 0
	for _, t := range totals {
		rawPts = append(rawPts, plotter.XY{X: float64(t.FrameIndex), Y: float64(t.Raw)})
		smoothPts = append(smoothPts, plotter.XY{X: float64(t.FrameIndex), Y: float64(t.Smoothed)})
		peak = max(peak, t.Raw, t.Smoothed)
	}

	rawLine, err := plotter.NewLine(rawPts)
	if err != nil {
		return fmt.Errorf("build raw line: %w", err)
	}
	rawLine.Color = rawColor
	rawLine.Width = vg.Points(1)
	rawLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	smoothLine, err := plotter.NewLine(smoothPts)
	if err != nil {
		return fmt.Errorf("build smoothed line: %w", err)
	}
	smoothLine.Color = smoothedColor
	smoothLine.Width = vg.Points(2)

	p.Add(plotter.NewGrid(), rawLine, smoothLine)
	p.Legend.Add("raw", rawLine)
	p.Legend.Add("smoothed", smoothLine)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	p.Y.Min = 0
	p.Y.Max = float64(max(peak, 5) + 1)

	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
