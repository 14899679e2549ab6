//go:build !sdl

package render

import (
	"errors"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/sim"
)

type sdlState struct{}

func (r *Renderer) initSDL(width, height int) error {
	return errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func (r *Renderer) renderSDL(views []sim.View, feat analyzer.Features, fps float64) Frame {
	return Frame{
		Status: "SDL backend unavailable (build without -tags sdl)",
		Present: func(string) error {
			return ErrRendererQuit
		},
	}
}

func (r *Renderer) resizeSDL() {}

func (r *Renderer) closeSDL() error { return nil }

// SupportsSDL reports whether the binary was built with the sdl tag.
func SupportsSDL() bool { return false }
