package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	pixelsPerXLabel = 110.0
	pixelsPerYLabel = 45.0
)

func (r *Renderer) drawString(img *image.RGBA, s string, x, y int, src image.Image) {
	d := font.Drawer{
		Dst:  img,
		Src:  src,
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (r *Renderer) labelWidth(s string) int {
	return font.MeasureString(r.face, s).Round()
}

func (r *Renderer) drawXAxis(img *image.RGBA, plot image.Rectangle, min, max float64, format func(float64) string) {
	step := niceStep(max-min, plot.Dx(), pixelsPerXLabel)
	metrics := r.face.Metrics()
	textY := plot.Max.Y + tickLength + metrics.Ascent.Round() + 2

	for k := math.Ceil(min / step); k*step <= max+step*1e-6; k++ {
		v := k * step
		x := xAt(plot, v, min, max)

		if x > plot.Min.X && x < plot.Max.X-1 {
			for y := plot.Min.Y + 1; y < plot.Max.Y-1; y++ {
				img.Set(x, y, gridColor)
			}
		}
		for y := plot.Max.Y; y < plot.Max.Y+tickLength; y++ {
			img.Set(x, y, color.Black)
		}

		label := format(v)
		r.drawString(img, label, x-r.labelWidth(label)/2, textY, image.Black)
	}
}

func (r *Renderer) drawYAxis(img *image.RGBA, plot image.Rectangle, min, max float64, format func(float64) string) {
	step := niceStep(max-min, plot.Dy(), pixelsPerYLabel)
	metrics := r.face.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for k := math.Ceil(min / step); k*step <= max+step*1e-6; k++ {
		v := k * step
		y := yAt(plot, v, min, max)

		if y > plot.Min.Y && y < plot.Max.Y-1 {
			for x := plot.Min.X + 1; x < plot.Max.X-1; x++ {
				img.Set(x, y, gridColor)
			}
		}
		for x := plot.Min.X - tickLength; x < plot.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		label := format(v)
		textY := y + fontHeight/2 - metrics.Descent.Round()
		r.drawString(img, label, plot.Min.X-tickLength-4-r.labelWidth(label), textY, image.Black)
	}
}

func (r *Renderer) drawLegend(img *image.RGBA, plot image.Rectangle, traces []Trace) {
	metrics := r.face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Round() + 4
	y := plot.Min.Y + 6 + metrics.Ascent.Round()

	for i, trace := range traces {
		if trace.Label == "" {
			continue
		}
		x := plot.Max.X - 8 - r.labelWidth(trace.Label)
		r.drawString(img, trace.Label, x, y, image.NewUniform(traceColor(trace, i)))
		y += lineHeight
	}
}

// niceStep picks a 1-2-5 decade step so labels sit roughly
// pixelsPerLabel apart.
func niceStep(span float64, px int, pixelsPerLabel float64) float64 {
	if span <= 0 {
		return 1
	}

	target := span / (float64(px) / pixelsPerLabel)
	magnitude := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{1, 2, 5} {
		if step := m * magnitude; step >= target {
			return step
		}
	}
	return 10 * magnitude
}

func humanHz(hz float64) string {
	v, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", v, suffix)
}

func humanSeconds(sec float64) string {
	v, suffix := humanize.ComputeSI(sec)
	return fmt.Sprintf("%0.2f %ss", v, suffix)
}

func formatAmplitude(v float64) string {
	return fmt.Sprintf("%.3g", v)
}
