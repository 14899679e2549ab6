package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/audio"
	"github.com/riazmb01/Audio-Canvas/internal/params"
	"github.com/riazmb01/Audio-Canvas/internal/render"
	"github.com/riazmb01/Audio-Canvas/internal/sim"
)

// Config configures the application runtime.
type Config struct {
	DeviceName    string
	Width         int
	Height        int
	TargetFPS     float64
	RingSize      int
	DisableAudio  bool
	ShowStatusBar bool
	Palette       string
	UseANSI       bool
	Windowed      bool
	ProfilePath   string
	Settings      params.Settings
	Log           *log.Logger
}

type inputEvent int

const (
	inputEventQuit inputEvent = iota
	inputEventReseed
	inputEventCycleColor
	inputEventMoreParticles
	inputEventFewerParticles
	inputEventStrongerField
	inputEventWeakerField
)

// App ties together capture, analysis, simulation, and rendering. The engine
// pipeline runs strictly in frame order: the spectrum and features for frame
// N are computed before the simulator tick that represents frame N.
type App struct {
	cfg      Config
	renderer *render.Renderer
	capture  *audio.Capture
	spectrum *analyzer.Spectrum
	extract  *analyzer.Extractor
	sim      *sim.Simulator
	demo     *demoGenerator
	prof     *profiler

	last         time.Time
	log          *log.Logger
	deviceLabel  string
	width        int
	height       int
	renderHeight int
	inputEvents  chan inputEvent
	rng          *rand.Rand

	mu           sync.RWMutex
	settings     params.Settings
	pending      *params.Settings
	lastFeatures analyzer.Features
	lastFPS      float64
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "", log.LstdFlags)
	}
	if cfg.Width <= 0 {
		cfg.Width = 120
	}
	if cfg.Height <= 0 {
		cfg.Height = 36
	}
	settings := cfg.Settings.Clamped()

	renderHeight := cfg.Height
	if cfg.ShowStatusBar && renderHeight > 1 && !cfg.Windowed {
		renderHeight--
	}

	renderer, err := render.New(cfg.Width, renderHeight, cfg.Palette,
		settings.ColorMode, settings.ColorSensitivity, cfg.UseANSI, cfg.Windowed)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:          cfg,
		renderer:     renderer,
		spectrum:     analyzer.NewSpectrum(analyzer.DefaultBins),
		extract:      analyzer.NewExtractor(analyzer.Config{Sensitivity: settings.BeatSensitivity}),
		log:          cfg.Log,
		width:        cfg.Width,
		height:       cfg.Height,
		renderHeight: renderHeight,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		settings:     settings,
	}
	a.sim = sim.New(float64(renderer.Width()), float64(renderer.Height()), settings, cfg.Log)

	if cfg.DisableAudio {
		a.demo = newDemoGenerator(a.spectrum.Bins())
		a.log.Println("audio disabled, using synthetic spectrum")
	} else {
		capture, err := audio.NewCapture(audio.Config{
			DeviceName: cfg.DeviceName,
			RingSize:   cfg.RingSize,
			Channels:   2,
		})
		if err != nil {
			return nil, fmt.Errorf("audio capture: %w", err)
		}
		a.capture = capture
		if info := capture.Device(); info != nil {
			a.deviceLabel = info.Name
			a.log.Printf("audio capture started on %q @ %.0f Hz", info.Name, capture.SampleRate())
		}
	}

	if cfg.ProfilePath != "" {
		a.prof = newProfiler(cfg.ProfilePath, cfg.Log)
	}

	a.last = time.Now()
	return a, nil
}

// Run drives the frame loop until context cancellation or quit.
func (a *App) Run(ctx context.Context) error {
	frameDuration := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	if !a.cfg.Windowed {
		enterAltScreen()
		clearScreen()
		hideCursor()
		defer func() {
			showCursor()
			exitAltScreen()
		}()
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)

	for {
		select {
		case <-ctx.Done():
			moveCursorHome()
			return ctx.Err()
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			if quit := a.handleInput(evt); quit {
				moveCursorHome()
				return nil
			}
		case <-ticker.C:
			if err := a.step(); err != nil {
				if err == render.ErrRendererQuit {
					return nil
				}
				return err
			}
		}
	}
}

// Close releases held resources.
func (a *App) Close() error {
	var firstErr error
	if a.capture != nil {
		firstErr = a.capture.Close()
	}
	if err := a.renderer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.prof != nil {
		if err := a.prof.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Settings returns the live tunables.
func (a *App) Settings() params.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.pending != nil {
		return *a.pending
	}
	return a.settings
}

// ApplySettings schedules new tunables; they land at the next frame boundary
// so the pipeline never observes a half-applied configuration.
func (a *App) ApplySettings(s params.Settings) {
	s = s.Clamped()
	a.mu.Lock()
	a.pending = &s
	a.mu.Unlock()
}

// Status returns the latest features and frame rate for external surfaces.
func (a *App) Status() (analyzer.Features, float64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastFeatures, a.lastFPS
}

func (a *App) step() error {
	a.prof.beginFrame()
	a.applyPending()
	a.ensureDimensions()

	now := time.Now()
	delta := now.Sub(a.last).Seconds()
	if delta <= 0 {
		delta = 1.0 / a.cfg.TargetFPS
	}
	a.last = now

	var frame []byte
	if a.capture != nil {
		frame = a.spectrum.Frame(a.capture.Latest())
	} else if a.demo != nil {
		frame = a.demo.Next(delta)
	}
	features := a.extract.Update(frame)
	a.prof.markSection("analyze")

	views := a.sim.Tick(delta*1000, features)
	a.prof.markSection("simulate")

	a.mu.RLock()
	colorMode := a.settings.ColorMode
	colorSens := a.settings.ColorSensitivity
	a.mu.RUnlock()
	// Busy material widens the color sweep a little.
	colorSens *= 1 + 0.5*a.extract.Variability()
	a.renderer.Configure(a.cfg.Palette, colorMode, colorSens)

	fps := 1.0 / delta
	rendered := a.renderer.Render(views, features, fps)
	a.prof.markSection("render")

	a.mu.Lock()
	a.lastFeatures = features
	a.lastFPS = fps
	a.mu.Unlock()

	status := rendered.Status
	if a.deviceLabel != "" {
		status = fmt.Sprintf("%s | in=%s", status, a.deviceLabel)
	}

	if rendered.Present != nil {
		if err := rendered.Present(status); err != nil {
			return err
		}
	} else {
		moveCursorHome()
		for _, line := range rendered.Lines {
			fmt.Println(line)
		}
		if a.cfg.ShowStatusBar {
			fmt.Println(statusBar(status, a.width))
		}
	}

	a.prof.endFrame()
	return nil
}

func (a *App) applyPending() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	var reseed bool
	if pending != nil {
		reseed = pending.Seed != a.settings.Seed
		a.settings = *pending
	}
	a.mu.Unlock()
	if pending == nil {
		return
	}

	a.extract.SetSensitivity(pending.BeatSensitivity)
	if reseed {
		a.rebuildSimulator()
		return
	}
	a.sim.Configure(*pending)
}

// rebuildSimulator replaces the engine instance wholesale. Used on reseed
// and on terminal resize; particle state is deliberately not preserved.
func (a *App) rebuildSimulator() {
	a.sim = sim.New(float64(a.renderer.Width()), float64(a.renderer.Height()), a.settings, a.log)
}

func (a *App) ensureDimensions() {
	if a.cfg.Windowed {
		return
	}
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}

	renderHeight := h
	if a.cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}
	if renderHeight <= 0 {
		renderHeight = 1
	}
	if w == a.width && h == a.height && renderHeight == a.renderHeight {
		return
	}

	a.width = w
	a.height = h
	a.renderHeight = renderHeight
	a.renderer.Resize(w, renderHeight)
	a.rebuildSimulator()
}

func (a *App) handleInput(evt inputEvent) (quit bool) {
	s := a.Settings()
	switch evt {
	case inputEventQuit:
		return true
	case inputEventReseed:
		s.Seed = a.rng.Int63()
		a.ApplySettings(s)
	case inputEventCycleColor:
		s.ColorMode = nextColorMode(s.ColorMode)
		a.ApplySettings(s)
	case inputEventMoreParticles:
		s.ParticleCount += 100
		a.ApplySettings(s)
	case inputEventFewerParticles:
		s.ParticleCount -= 100
		a.ApplySettings(s)
	case inputEventStrongerField:
		s.FieldStrength *= 1.2
		a.ApplySettings(s)
	case inputEventWeakerField:
		s.FieldStrength /= 1.2
		a.ApplySettings(s)
	}
	return false
}

func nextColorMode(current string) string {
	modes := render.ColorModeNames()
	for i, m := range modes {
		if m == current {
			return modes[(i+1)%len(modes)]
		}
	}
	if len(modes) > 0 {
		return modes[0]
	}
	return current
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}

			var evt inputEvent
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC || char == 'q' || char == 'Q':
				events <- inputEventQuit
				return
			case char == 'r' || char == 'R':
				evt = inputEventReseed
			case char == 'c' || char == 'C':
				evt = inputEventCycleColor
			case char == '+' || char == '=':
				evt = inputEventMoreParticles
			case char == '-' || char == '_':
				evt = inputEventFewerParticles
			case char == ']':
				evt = inputEventStrongerField
			case char == '[':
				evt = inputEventWeakerField
			default:
				continue
			}
			select {
			case events <- evt:
			default:
			}
		}
	}()
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}

func clearScreen() {
	fmt.Print("\x1b[2J")
	moveCursorHome()
}

func moveCursorHome() {
	fmt.Print("\x1b[H")
}

func hideCursor() {
	fmt.Print("\x1b[?25l")
}

func showCursor() {
	fmt.Print("\x1b[?25h")
}

func enterAltScreen() {
	fmt.Print("\x1b[?1049h")
}

func exitAltScreen() {
	fmt.Print("\x1b[?1049l\x1b[0m")
}
