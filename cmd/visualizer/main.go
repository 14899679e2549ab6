package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/riazmb01/Audio-Canvas/internal/app"
	"github.com/riazmb01/Audio-Canvas/internal/audio"
	"github.com/riazmb01/Audio-Canvas/internal/params"
	"github.com/riazmb01/Audio-Canvas/internal/web"
)

func main() {
	var (
		deviceName = flag.String("audio-device", "", "Optional PortAudio device name (substring match)")
		width      = flag.Int("width", 120, "Frame width (cells, or pixels with -windowed)")
		height     = flag.Int("height", 36, "Frame height (cells, or pixels with -windowed)")
		targetFPS  = flag.Float64("fps", 60, "Target frames per second")
		ringSize   = flag.Int("ring-size", 4096, "Capture ring size in samples")
		noAudio    = flag.Bool("no-audio", false, "Run with a synthetic spectrum (demo mode)")
		showStatus = flag.Bool("status", true, "Display status bar")
		palette    = flag.String("palette", "soft", "Glyph palette (soft|dense|lines)")
		colorMode  = flag.String("color-mode", "", "Color mode (spectrum|ember|glacier|mono)")
		particles  = flag.Int("particles", 0, "Particle count (200-2000, 0 = default)")
		seed       = flag.Int64("seed", 0, "Noise field seed (0 = default)")
		preset     = flag.String("preset", "", "YAML preset file for tunables")
		profile    = flag.String("profile", "", "Write frame timing CSV to this path")
		webPort    = flag.Int("web-port", 0, "Control server port (0 = disabled)")
		windowed   = flag.Bool("windowed", false, "Render into an SDL window (requires -tags sdl build)")
		listDevs   = flag.Bool("list-audio-devices", false, "List available audio input devices and exit")
		noColor    = flag.Bool("no-color", false, "Disable ANSI color output")
	)

	flag.Parse()

	if *width <= 0 || *height <= 0 {
		log.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}
	if *targetFPS <= 0 {
		log.Fatalf("fps must be positive (got %.2f)", *targetFPS)
	}

	logger := log.New(os.Stderr, "[audio-canvas] ", log.LstdFlags)

	settings := params.Defaults()
	if *preset != "" {
		loaded, err := params.LoadFile(*preset)
		if err != nil {
			logger.Fatalf("preset: %v", err)
		}
		settings = loaded
	}
	if *particles > 0 {
		settings.ParticleCount = *particles
	}
	if *colorMode != "" {
		settings.ColorMode = *colorMode
	}
	if *seed != 0 {
		settings.Seed = *seed
	}
	settings = settings.Clamped()

	if !*windowed {
		if fd := int(os.Stdout.Fd()); fd >= 0 {
			if w, h, err := term.GetSize(fd); err == nil {
				if w > 0 {
					*width = w
				}
				if h > 0 {
					*height = h
				}
			}
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	needAudio := !*noAudio || *listDevs
	if needAudio {
		if err := audio.Initialize(); err != nil {
			logger.Fatalf("failed to initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
	}

	if *listDevs {
		devices, err := audio.ListDevices()
		if err != nil {
			logger.Fatalf("list devices: %v", err)
		}
		fmt.Printf("\n=== Audio Input Devices ===\n\n")
		for _, dev := range devices {
			if dev.MaxInput == 0 {
				continue
			}
			marker := ""
			if dev.IsDefaultInput {
				marker = " (default)"
			}
			fmt.Printf("- %s [%s]%s\n    inputs:%d outputs:%d sample:%.0f Hz\n",
				dev.Name, dev.HostAPI, marker, dev.MaxInput, dev.MaxOutput, dev.DefaultSampleHz)
		}
		return
	}

	a, err := app.New(app.Config{
		DeviceName:    *deviceName,
		Width:         *width,
		Height:        *height,
		TargetFPS:     *targetFPS,
		RingSize:      *ringSize,
		DisableAudio:  *noAudio,
		ShowStatusBar: *showStatus,
		Palette:       *palette,
		UseANSI:       !*noColor,
		Windowed:      *windowed,
		ProfilePath:   *profile,
		Settings:      settings,
		Log:           logger,
	})
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if *webPort > 0 {
		server := web.NewServer(a, logger)
		go func() {
			if err := server.Start(ctx, *webPort); err != nil {
				logger.Printf("control server: %v", err)
			}
		}()
	}

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}
}
