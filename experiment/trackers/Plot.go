package trackers

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot draws data saved by a Tracker as a line over episodes and saves
// the plot to file. The format is chosen by the extension of file,
// e.g. .png or .svg. If window > 1, a moving average over window
// episodes is drawn on top.
func Plot(data []float64, title, ylabel string, window int,
	file string) error {
	if len(data) == 0 {
		return fmt.Errorf("plot: no data to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "episode"
	p.Y.Label.Text = ylabel

	line, err := plotter.NewLine(series(data))
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	line.LineStyle.Width = vg.Points(1.0)
	p.Add(line)

	if window > 1 && len(data) >= window {
		pts := shift(series(MovingAverage(data, window)), float64(window-1))
		avg, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		avg.LineStyle.Width = vg.Points(2.5)
		avg.LineStyle.Color = color.RGBA{R: 204, G: 51, B: 51, A: 255}
		p.Add(avg)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, file); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	return nil
}

// MovingAverage returns the averages of all windows of length window
// in data
func MovingAverage(data []float64, window int) []float64 {
	if window < 1 || len(data) < window {
		return nil
	}

	avg := make([]float64, 0, len(data)-window+1)
	var sum float64
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			avg = append(avg, sum/float64(window))
		}
	}
	return avg
}

func series(data []float64) plotter.XYs {
	pts := make(plotter.XYs, len(data))
	for i, v := range data {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}

func shift(pts plotter.XYs, dx float64) plotter.XYs {
	for i := range pts {
		pts[i].X += dx
	}
	return pts
}
