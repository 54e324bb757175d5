// Package render draws waveform and spectrum panels as PNG images.
//
// A Renderer labels axes and legends with a built-in bitmap font unless
// Config.FontPath points to a TrueType font file.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/cwbudde/algo-fdm/dsp/spectrum"
)

const (
	dpi             = 72.0
	defaultFontSize = 12.0
	defaultWidth    = 960
	defaultHeight   = 320
	minWidth        = 320
	minHeight       = 160

	tickLength = 5

	// Border sizes in pixels around the plot area.
	topBorder    = 32
	leftBorder   = 64
	bottomBorder = 40
	rightBorder  = 24
)

// Errors returned by render functions.
var (
	ErrImageSize         = errors.New("render: image size too small")
	ErrNoTraces          = errors.New("render: at least one trace required")
	ErrEmptyTrace        = errors.New("render: trace must not be empty")
	ErrTraceLength       = errors.New("render: traces must be the same length")
	ErrInvalidSampleRate = errors.New("render: sample rate must be positive")
	ErrNoSpectrum        = errors.New("render: analysis must not be empty")
)

var (
	gridColor  = color.RGBA{R: 225, G: 225, B: 225, A: 0xff}
	frameColor = color.RGBA{R: 70, G: 70, B: 70, A: 0xff}

	palette = []color.RGBA{
		{R: 31, G: 119, B: 180, A: 0xff},
		{R: 255, G: 127, B: 14, A: 0xff},
		{R: 44, G: 160, B: 44, A: 0xff},
		{R: 214, G: 39, B: 40, A: 0xff},
		{R: 148, G: 103, B: 189, A: 0xff},
		{R: 127, G: 127, B: 127, A: 0xff},
	}
)

// Trace is one labeled signal drawn into a waveform panel. A nil Color
// picks the next palette entry.
type Trace struct {
	Label string
	Data  []float64
	Color color.Color
}

// Config holds the panel geometry and label font.
type Config struct {
	Width    int     // Panel width in pixels (0 for default)
	Height   int     // Panel height in pixels (0 for default)
	FontPath string  // Optional TrueType font for labels
	FontSize float64 // Font size in points, TrueType only
}

// Renderer draws signal panels using a fixed layout.
type Renderer struct {
	config Config
	face   font.Face
}

// New creates a renderer with the given configuration.
func New(config Config) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.Width < minWidth || config.Height < minHeight {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageSize, config.Width, config.Height)
	}

	face := font.Face(basicfont.Face7x13)
	if config.FontPath != "" {
		data, err := os.ReadFile(config.FontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}

		parsedFont, err := freetype.ParseFont(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}

		face = truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		})
	}

	return &Renderer{config: config, face: face}, nil
}

// Close releases the label font.
func (r *Renderer) Close() error {
	return r.face.Close()
}

// Waveform draws the traces over a shared time axis. All traces must
// have the same length; the time axis is derived from sampleRate.
func (r *Renderer) Waveform(traces []Trace, sampleRate float64, title string) (*image.RGBA, error) {
	if len(traces) == 0 {
		return nil, ErrNoTraces
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidSampleRate, sampleRate)
	}

	n := len(traces[0].Data)
	maxAbs := 0.0
	for i, trace := range traces {
		if len(trace.Data) == 0 {
			return nil, fmt.Errorf("%w: trace %d", ErrEmptyTrace, i)
		}
		if len(trace.Data) != n {
			return nil, fmt.Errorf("%w: trace %d has %d samples, trace 0 has %d", ErrTraceLength, i, len(trace.Data), n)
		}
		for _, v := range trace.Data {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	yMax := maxAbs * 1.05
	yMin := -yMax
	xMax := float64(n-1) / sampleRate
	if xMax == 0 {
		xMax = 1 / sampleRate
	}

	info := fmt.Sprintf("fs = %s; %d samples", humanHz(sampleRate), n)
	img, plot := r.newPanel(title, info)

	r.drawXAxis(img, plot, 0, xMax, humanSeconds)
	r.drawYAxis(img, plot, yMin, yMax, formatAmplitude)
	for i, trace := range traces {
		drawTrace(img, plot, trace.Data, yMin, yMax, traceColor(trace, i))
	}
	r.drawLegend(img, plot, traces)

	return img, nil
}

// Spectrum draws the single-sided amplitude spectrum of an analysis.
func (r *Renderer) Spectrum(analysis *spectrum.Analysis, title string) (*image.RGBA, error) {
	if analysis == nil || len(analysis.Magnitudes) == 0 {
		return nil, ErrNoSpectrum
	}

	maxMag := 0.0
	for _, m := range analysis.Magnitudes {
		if m > maxMag {
			maxMag = m
		}
	}
	if maxMag == 0 {
		maxMag = 1
	}

	yMax := maxMag * 1.05
	xMax := analysis.Frequencies[len(analysis.Frequencies)-1]
	if xMax <= 0 {
		xMax = 1
	}

	info := fmt.Sprintf("bin = %s; fs = %s", humanHz(analysis.BinWidth), humanHz(analysis.SampleRate))
	img, plot := r.newPanel(title, info)

	r.drawXAxis(img, plot, 0, xMax, humanHz)
	r.drawYAxis(img, plot, 0, yMax, formatAmplitude)
	drawTrace(img, plot, analysis.Magnitudes, 0, yMax, palette[0])

	return img, nil
}

// WritePNG encodes an image to a PNG file at path.
func WritePNG(path string, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cErr)
		}
	}()

	if err = png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return
}

// newPanel creates a white panel with frame, title and info line, and
// returns it along with the inner plot area.
func (r *Renderer) newPanel(title, info string) (*image.RGBA, image.Rectangle) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plot := image.Rect(
		leftBorder,
		topBorder,
		r.config.Width-rightBorder,
		r.config.Height-bottomBorder,
	)

	for x := plot.Min.X; x < plot.Max.X; x++ {
		img.Set(x, plot.Min.Y, frameColor)
		img.Set(x, plot.Max.Y-1, frameColor)
	}
	for y := plot.Min.Y; y < plot.Max.Y; y++ {
		img.Set(plot.Min.X, y, frameColor)
		img.Set(plot.Max.X-1, y, frameColor)
	}

	metrics := r.face.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := (topBorder+fontHeight)/2 - metrics.Descent.Round()

	if title != "" {
		r.drawString(img, title, plot.Min.X, textY, image.Black)
	}
	if info != "" {
		r.drawString(img, info, plot.Max.X-r.labelWidth(info), textY, image.Black)
	}

	return img, plot
}

// drawTrace draws data as a per-column min/max envelope, bridged to the
// previous column so fast transitions stay connected.
func drawTrace(img *image.RGBA, plot image.Rectangle, data []float64, yMin, yMax float64, c color.Color) {
	n := len(data)
	width := plot.Dx()
	prevTop, prevBot := 0, 0

	for x := 0; x < width; x++ {
		i0 := x * n / width
		i1 := (x + 1) * n / width
		if i1 <= i0 {
			i1 = i0 + 1
		}

		lo, hi := data[i0], data[i0]
		for _, v := range data[i0+1 : i1] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		top := yAt(plot, hi, yMin, yMax)
		bot := yAt(plot, lo, yMin, yMax)

		drawTop, drawBot := top, bot
		if x > 0 {
			if drawTop > prevBot {
				drawTop = prevBot
			}
			if drawBot < prevTop {
				drawBot = prevTop
			}
		}
		for y := drawTop; y <= drawBot; y++ {
			img.Set(plot.Min.X+x, y, c)
		}

		prevTop, prevBot = top, bot
	}
}

func traceColor(trace Trace, i int) color.Color {
	if trace.Color != nil {
		return trace.Color
	}
	return palette[i%len(palette)]
}

func xAt(plot image.Rectangle, v, min, max float64) int {
	ratio := (v - min) / (max - min)
	x := plot.Min.X + int(ratio*float64(plot.Dx()-1)+0.5)
	return clampInt(x, plot.Min.X, plot.Max.X-1)
}

func yAt(plot image.Rectangle, v, min, max float64) int {
	ratio := (max - v) / (max - min)
	y := plot.Min.Y + int(ratio*float64(plot.Dy()-1)+0.5)
	return clampInt(y, plot.Min.Y, plot.Max.Y-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
