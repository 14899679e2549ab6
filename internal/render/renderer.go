package render

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/sim"
)

type colorMode string

const (
	colorModeSpectrum colorMode = "spectrum"
	colorModeEmber    colorMode = "ember"
	colorModeGlacier  colorMode = "glacier"
	colorModeMono     colorMode = "mono"
)

// ErrRendererQuit signals that the render backend was closed by the user.
var ErrRendererQuit = errors.New("renderer quit requested")

var colorModeNames = []string{
	string(colorModeSpectrum),
	string(colorModeEmber),
	string(colorModeGlacier),
	string(colorModeMono),
}

// ColorModeNames returns the supported color modes.
func ColorModeNames() []string {
	out := make([]string, len(colorModeNames))
	copy(out, colorModeNames)
	sort.Strings(out)
	return out
}

func parseColorMode(name string) colorMode {
	switch strings.ToLower(name) {
	case "ember", "fire", "warm":
		return colorModeEmber
	case "glacier", "ice", "cool":
		return colorModeGlacier
	case "mono", "monochrome", "bw", "gray":
		return colorModeMono
	default:
		return colorModeSpectrum
	}
}

// trailDecay is the per-frame fade applied to every cell before plotting.
const trailDecay = 0.80

type backend int

const (
	backendTerminal backend = iota
	backendSDL
)

// Renderer draws particle views as fading strokes. The terminal backend keeps
// a persistent intensity grid so each particle leaves a decaying trail; the
// SDL backend (build tag "sdl") does the same on a pixel buffer.
type Renderer struct {
	width  int
	height int

	mode        backend
	colorMode   colorMode
	sensitivity float64
	paletteName string
	palette     []rune
	useANSI     bool

	intensity []float64
	cellHue   []float64

	statusBuilder strings.Builder
	sdl           *sdlState
}

// Frame is one rendered frame. Lines is populated by the terminal backend;
// Present is set by windowed backends and flushes the frame when called.
type Frame struct {
	Lines   []string
	Status  string
	Present func(status string) error
}

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// New creates a Renderer. When windowed is true the SDL backend is
// initialized; building without the sdl tag makes that an error.
func New(width, height int, paletteName, colorModeName string, sensitivity float64, useANSI, windowed bool) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d height=%d", width, height)
	}

	r := &Renderer{
		width:   width,
		height:  height,
		useANSI: useANSI,
	}
	r.Configure(paletteName, colorModeName, sensitivity)
	if windowed {
		if err := r.initSDL(width, height); err != nil {
			return nil, err
		}
	}
	r.ensureGrid()
	return r, nil
}

// Configure updates palette, color mode, and color sensitivity live.
func (r *Renderer) Configure(paletteName, colorModeName string, sensitivity float64) {
	if paletteName == "" {
		paletteName = "soft"
	}
	r.palette = Palette(paletteName)
	r.paletteName = paletteName
	r.colorMode = parseColorMode(colorModeName)
	if sensitivity <= 0 {
		sensitivity = 1
	}
	r.sensitivity = sensitivity
}

// Resize updates grid dimensions and clears accumulated trails.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height
	r.intensity = nil
	r.cellHue = nil
	r.ensureGrid()
	r.resizeSDL()
}

func (r *Renderer) PaletteName() string   { return r.paletteName }
func (r *Renderer) ColorModeName() string { return string(r.colorMode) }
func (r *Renderer) Width() int            { return r.width }
func (r *Renderer) Height() int           { return r.height }

// Close releases backend resources.
func (r *Renderer) Close() error {
	return r.closeSDL()
}

// Render draws the particle views. Views are read-only and not retained.
func (r *Renderer) Render(views []sim.View, feat analyzer.Features, fps float64) Frame {
	if r.width <= 0 || r.height <= 0 {
		return Frame{}
	}
	if r.mode == backendSDL {
		return r.renderSDL(views, feat, fps)
	}
	return r.renderTerminal(views, feat, fps)
}

func (r *Renderer) renderTerminal(views []sim.View, feat analyzer.Features, fps float64) Frame {
	r.ensureGrid()

	for i := range r.intensity {
		r.intensity[i] *= trailDecay
	}

	for _, v := range views {
		r.plotStroke(v)
	}

	lines := make([]string, r.height)
	for y := 0; y < r.height; y++ {
		var builder strings.Builder
		builder.Grow(r.width * 8)
		lastColor := -1
		row := y * r.width
		for x := 0; x < r.width; x++ {
			val := r.intensity[row+x]
			idx := int(val*float64(len(r.palette)-1) + 0.5)
			if idx < 0 {
				idx = 0
			}
			if idx >= len(r.palette) {
				idx = len(r.palette) - 1
			}
			if r.useANSI {
				h, s, vv := r.colorFromMode(r.cellHue[row+x], val)
				fg := hsvToANSI(h, s, vv)
				if fg != lastColor {
					builder.WriteString(colorCode(fg))
					lastColor = fg
				}
			}
			builder.WriteRune(r.palette[idx])
		}
		if r.useANSI {
			builder.WriteString(resetANSI)
		}
		lines[y] = builder.String()
	}

	return Frame{
		Lines:  lines,
		Status: r.buildStatus(feat, fps, len(views)),
	}
}

// plotStroke stamps the segment from the particle's previous position to its
// current one into the intensity grid.
func (r *Renderer) plotStroke(v sim.View) {
	bright := 0.35 + float64(v.Size)*0.18
	bright *= 1.0 - float64(v.LifeRatio)*0.6
	if bright > 1 {
		bright = 1
	}

	dx := float64(v.X - v.PrevX)
	dy := float64(v.Y - v.PrevY)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.stamp(float64(v.PrevX)+dx*t, float64(v.PrevY)+dy*t, bright, float64(v.Hue))
	}
}

func (r *Renderer) stamp(x, y, bright, hue float64) {
	cx := int(x)
	cy := int(y)
	if cx < 0 || cx >= r.width || cy < 0 || cy >= r.height {
		return
	}
	i := cy*r.width + cx
	if bright > r.intensity[i] {
		r.intensity[i] = bright
		r.cellHue[i] = hue
	}
}

func (r *Renderer) ensureGrid() {
	n := r.width * r.height
	if len(r.intensity) != n {
		r.intensity = make([]float64, n)
		r.cellHue = make([]float64, n)
	}
}

// colorFromMode maps a particle hue (degrees) and cell intensity into HSV.
// Sensitivity widens or narrows how much of the palette the spectrum sweeps.
func (r *Renderer) colorFromMode(hueDeg, intensity float64) (float64, float64, float64) {
	base := math.Mod(hueDeg/360*r.sensitivity, 1.0)
	if base < 0 {
		base += 1.0
	}

	var h, s, v float64
	switch r.colorMode {
	case colorModeEmber:
		h = 0.01 + base*0.11
		s = clamp01(0.75 + intensity*0.2)
		v = clamp01(intensity * 1.1)
	case colorModeGlacier:
		h = 0.48 + base*0.22
		s = clamp01(0.55 + intensity*0.3)
		v = clamp01(intensity * 1.05)
	case colorModeMono:
		h = 0
		s = 0
		v = clamp01(intensity)
	default:
		h = base
		s = clamp01(0.55 + intensity*0.35)
		v = clamp01(intensity)
	}
	return h, s, v
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(precomputedANSI) {
		index = len(precomputedANSI) - 1
	}
	return precomputedANSI[index]
}

func hsvToANSI(h, s, v float64) int {
	r, g, b := hsvToRGB(h, s, v)
	return rgbToANSI(r, g, b)
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = math.Mod(clamp01(h)*6.0, 6.0)
	s = clamp01(s)
	v = clamp01(v)

	if s == 0 {
		return v, v, v
	}

	i := math.Floor(h)
	f := h - i
	p := v * (1.0 - s)
	q := v * (1.0 - s*f)
	t := v * (1.0 - s*(1.0-f))

	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for low saturation.
	if math.Abs(r-g) < 0.02 && math.Abs(g-b) < 0.02 {
		gray := int(clampFloat(math.Round(r*23), 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
}

func (r *Renderer) buildStatus(feat analyzer.Features, fps float64, particles int) string {
	builder := &r.statusBuilder
	builder.Reset()
	builder.Grow(128)
	builder.WriteString(strings.ToUpper(string(r.colorMode)))
	builder.WriteString(" | particles ")
	builder.WriteString(strconv.Itoa(particles))
	builder.WriteString(" | bass ")
	appendFloat(builder, feat.Bass, 2)
	builder.WriteString(" mid ")
	appendFloat(builder, feat.Mid, 2)
	builder.WriteString(" treble ")
	appendFloat(builder, feat.Treble, 2)
	if feat.Beat {
		builder.WriteString(" BEAT")
	}
	builder.WriteString(" | fps ")
	appendFloat(builder, fps, 1)
	return builder.String()
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], value, 'f', precision, 64)
	builder.Write(b)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
