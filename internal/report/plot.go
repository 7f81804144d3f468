package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/motion.review/internal/chart"
	"github.com/banshee-data/motion.review/internal/imu"
)

// axisColors mirrors the x/y/z palette used by the on-screen charts.
var axisColors = []color.Color{
	color.RGBA{R: 0xee, G: 0x66, B: 0x77, A: 0xff},
	color.RGBA{R: 0x22, G: 0x88, B: 0x33, A: 0xff},
	color.RGBA{R: 0x44, G: 0x77, B: 0xbb, A: 0xff},
}

// WriteGroupPNG renders one sensor group (accelerometer, gyroscope or
// magnetometer) over the full recording as a PNG.
func WriteGroupPNG(w io.Writer, series *imu.Series, group chart.Group) error {
	if series.Len() == 0 {
		return fmt.Errorf("no samples to plot")
	}

	p := plot.New()
	p.Title.Text = group.Name
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Value"

	for i, name := range group.Channels {
		values := series.Channel(name)
		pts := make(plotter.XYs, len(values))
		for j, v := range values {
			pts[j] = plotter.XY{X: series.Times[j], Y: v}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", name, err)
		}
		line.Color = axisColors[i%len(axisColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	wt, err := p.WriterTo(12*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render %s plot: %w", group.Name, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s plot: %w", group.Name, err)
	}
	return nil
}
