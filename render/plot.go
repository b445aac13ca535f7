package render

import (
	"fmt"
	"github.com/go-faster/errors"
	"github.com/imakiri/vive/pose"
	"github.com/imakiri/vive/receiver"
	"github.com/imakiri/vive/snapshot"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"image/color"
	"io"
)

const (
	PlotWidth  = 6 * vg.Inch
	PlotHeight = 6 * vg.Inch

	// length of the drawn heading axes in meters
	frameScale = 0.1
)

var (
	leftColor    = color.RGBA{B: 255, A: 255}
	rightColor   = color.RGBA{R: 255, A: 255}
	triggerColor = color.RGBA{G: 200, A: 255}
	axisColors   = [3]color.Color{
		color.RGBA{R: 220, A: 255},
		color.RGBA{G: 180, A: 255},
		color.RGBA{B: 220, A: 255},
	}
)

// Plot draws both controllers seen from above: X across, Z up the page.
func Plot(view receiver.View) (*plot.Plot, error) {
	var p = plot.New()
	p.Title.Text = title(view)
	p.X.Label.Text = fmt.Sprintf("X (m) | Scaling: %s | Data Age: %.1fs", onOff(view.AutoScale, "AUTO", "FIXED"), view.DataAge.Seconds())
	p.Y.Label.Text = "Z (m)"
	p.Add(plotter.NewGrid())

	for _, h := range view.Hands {
		var plotters, point, err = handPlotters(h)
		if err != nil {
			return nil, errors.Wrapf(err, "handPlotters(%s)", h.Hand)
		}
		if point == nil {
			continue
		}
		p.Add(plotters...)
		p.Legend.Add(capitalize(string(h.Hand)), point)
	}

	// Add widens the axes to fit the data, the limits win
	p.X.Min, p.X.Max = view.Limits.X.Min, view.Limits.X.Max
	p.Y.Min, p.Y.Max = view.Limits.Z.Min, view.Limits.Z.Max
	return p, nil
}

// WritePlot renders the view as a PNG.
func WritePlot(w io.Writer, view receiver.View) error {
	var p, err = Plot(view)
	if err != nil {
		return errors.Wrap(err, "Plot")
	}

	writer, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return errors.Wrap(err, "p.WriterTo")
	}
	if _, err = writer.WriteTo(w); err != nil {
		return errors.Wrap(err, "writer.WriteTo")
	}
	return nil
}

// SavePlot renders the view to path; the extension picks the format.
func SavePlot(path string, view receiver.View) error {
	var p, err = Plot(view)
	if err != nil {
		return errors.Wrap(err, "Plot")
	}
	if err = p.Save(PlotWidth, PlotHeight, path); err != nil {
		return errors.Wrapf(err, "p.Save(%s)", path)
	}
	return nil
}

// handPlotters returns the trail, heading axes and position glyph of a tracked hand,
// the glyph last. An untracked hand draws nothing.
func handPlotters(h receiver.HandView) ([]plot.Plotter, *plotter.Scatter, error) {
	if !h.Tracked {
		return nil, nil, nil
	}

	var c = handColor(h.Hand)
	var plotters []plot.Plotter

	if len(h.Trail) > 1 {
		var trail, err = plotter.NewLine(project(h.Trail...))
		if err != nil {
			return nil, nil, errors.Wrap(err, "plotter.NewLine")
		}
		trail.LineStyle.Color = c
		trail.LineStyle.Width = vg.Points(1)
		trail.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		plotters = append(plotters, trail)
	}

	for i, tip := range pose.Frame(h.Position, h.Rotation, frameScale) {
		var axis, err = plotter.NewLine(project(h.Position, tip))
		if err != nil {
			return nil, nil, errors.Wrap(err, "plotter.NewLine")
		}
		axis.LineStyle.Color = axisColors[i]
		axis.LineStyle.Width = vg.Points(2)
		plotters = append(plotters, axis)
	}

	var point, err = plotter.NewScatter(project(h.Position))
	if err != nil {
		return nil, nil, errors.Wrap(err, "plotter.NewScatter")
	}
	point.GlyphStyle.Shape = draw.CircleGlyph{}
	point.GlyphStyle.Radius = vg.Points(6)
	point.GlyphStyle.Color = c
	if h.TriggerPressed {
		point.GlyphStyle.Color = triggerColor
	}
	return append(plotters, point), point, nil
}

func title(view receiver.View) string {
	var status = func(h receiver.HandView) string {
		var s = onOff(h.Tracked, "TRACKED", "NOT TRACKED")
		if h.Tracked && h.TriggerPressed {
			s += " (TRIGGER PRESSED)"
		}
		return s
	}
	return fmt.Sprintf("HTC Vive Controllers - Left: %s, Right: %s",
		status(view.Hand(snapshot.Left)), status(view.Hand(snapshot.Right)))
}

func handColor(hand snapshot.Hand) color.Color {
	if hand == snapshot.Left {
		return leftColor
	}
	return rightColor
}

func project(points ...r3.Vec) plotter.XYs {
	var xys = make(plotter.XYs, len(points))
	for i, v := range points {
		xys[i] = plotter.XY{X: v.X, Y: v.Z}
	}
	return xys
}
