package fit

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// SavePlot writes the two-panel diagnostic plot (light curve with model
// overlays on top, residuals below) as a PNG. Plotting is optional and
// best-effort; callers must not let a plot failure mask a fit error.
func SavePlot(path string, time, flux []float64, res *Result) error {
	top := plot.New()
	top.Title.Text = "Transit Light Curve Fit"
	top.Y.Label.Text = "Relative Flux"

	data, err := plotter.NewScatter(toXYs(time, flux))
	if err != nil {
		return fmt.Errorf("failed to build data scatter: %w", err)
	}
	data.GlyphStyle.Radius = vg.Points(1)
	data.GlyphStyle.Color = color.Black
	top.Add(data)
	top.Legend.Add("Observed data", data)

	if len(res.GuessFit) == len(time) {
		guessLine, err := plotter.NewLine(toXYs(time, res.GuessFit))
		if err != nil {
			return fmt.Errorf("failed to build guess line: %w", err)
		}
		guessLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		top.Add(guessLine)
		top.Legend.Add("Initial guess", guessLine)
	}

	bestLine, err := plotter.NewLine(toXYs(time, res.BestFit))
	if err != nil {
		return fmt.Errorf("failed to build model line: %w", err)
	}
	bestLine.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	top.Add(bestLine)
	top.Legend.Add("Best-fit model", bestLine)

	t0Marker := verticalLine(res.Params.T0, minFloat(flux), maxFloat(flux))
	t0Marker.Color = color.Gray{Y: 128}
	t0Marker.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	top.Add(t0Marker)
	top.Legend.Add(fmt.Sprintf("Fitted t0 = %.6f BJD", res.Params.T0), t0Marker)

	bottom := plot.New()
	bottom.X.Label.Text = "Time (BJD)"
	bottom.Y.Label.Text = "Residuals"

	resScatter, err := plotter.NewScatter(toXYs(time, res.Residuals))
	if err != nil {
		return fmt.Errorf("failed to build residual scatter: %w", err)
	}
	resScatter.GlyphStyle.Radius = vg.Points(1)
	resScatter.GlyphStyle.Color = color.Black
	bottom.Add(resScatter)

	zero := horizontalLine(0, time[0], time[len(time)-1])
	zero.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	bottom.Add(zero)

	img := vgimg.New(8*vg.Inch, 6*vg.Inch)
	dc := draw.New(img)
	plots := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(plots, draw.Tiles{Rows: 2, Cols: 1}, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to encode plot: %w", err)
	}
	return nil
}

func toXYs(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

func verticalLine(x, y0, y1 float64) *plotter.Line {
	l, _ := plotter.NewLine(plotter.XYs{{X: x, Y: y0}, {X: x, Y: y1}})
	return l
}

func horizontalLine(y, x0, x1 float64) *plotter.Line {
	l, _ := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	return l
}

func minFloat(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxFloat(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
