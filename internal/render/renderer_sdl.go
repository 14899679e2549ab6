//go:build sdl

package render

import (
	"fmt"
	"math"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/sim"
)

// pixelDecay fades the persistent pixel buffer each frame; slightly slower
// than the terminal decay because pixels are much smaller than cells.
const pixelDecay = 0.88

type sdlState struct {
	initialized bool
	window      *sdl.Window
	renderer    *sdl.Renderer
	texture     *sdl.Texture
	pixelBuffer []byte
	width       int
	height      int
	pitch       int
	windowTitle string
}

func (r *Renderer) initSDL(width, height int) error {
	if r.sdl != nil {
		r.mode = backendSDL
		r.useANSI = false
		return nil
	}
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return err
	}
	r.sdl = &sdlState{initialized: true}
	r.mode = backendSDL
	r.useANSI = false
	return nil
}

func (r *Renderer) ensureSDLResources() error {
	if r.sdl == nil {
		return fmt.Errorf("SDL backend not initialized")
	}
	state := r.sdl
	if !state.initialized {
		if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
			return err
		}
		state.initialized = true
	}
	if state.window == nil {
		window, err := sdl.CreateWindow(
			"audio-canvas",
			sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
			int32(r.width), int32(r.height),
			sdl.WINDOW_SHOWN,
		)
		if err != nil {
			return err
		}
		state.window = window
	}
	if state.renderer == nil {
		renderer, err := sdl.CreateRenderer(state.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
		if err != nil {
			return err
		}
		state.renderer = renderer
		_ = renderer.SetLogicalSize(int32(r.width), int32(r.height))
	}
	if state.texture == nil || state.width != r.width || state.height != r.height {
		if state.texture != nil {
			state.texture.Destroy()
			state.texture = nil
		}
		tex, err := state.renderer.CreateTexture(
			sdl.PIXELFORMAT_ABGR8888,
			sdl.TEXTUREACCESS_STREAMING,
			int32(r.width), int32(r.height),
		)
		if err != nil {
			return err
		}
		state.texture = tex
		state.width = r.width
		state.height = r.height
		state.pitch = r.width * 4
		state.pixelBuffer = make([]byte, state.pitch*r.height)
	}
	return nil
}

func (r *Renderer) renderSDL(views []sim.View, feat analyzer.Features, fps float64) Frame {
	if err := r.ensureSDLResources(); err != nil {
		return Frame{
			Status: fmt.Sprintf("SDL init error: %v", err),
			Present: func(string) error {
				return err
			},
		}
	}
	state := r.sdl
	buf := state.pixelBuffer

	for i := 0; i < len(buf); i += 4 {
		buf[i+0] = byte(float64(buf[i+0]) * pixelDecay)
		buf[i+1] = byte(float64(buf[i+1]) * pixelDecay)
		buf[i+2] = byte(float64(buf[i+2]) * pixelDecay)
		buf[i+3] = 255
	}

	for _, v := range views {
		r.strokeSDL(state, v)
	}

	status := r.buildStatus(feat, fps, len(views))

	return Frame{
		Status: status,
		Present: func(status string) error {
			if status != "" && status != state.windowTitle && state.window != nil {
				_ = state.window.SetTitle(status)
				state.windowTitle = status
			}
			if err := state.texture.Update(nil, state.pixelBuffer, state.pitch); err != nil {
				return err
			}
			if err := state.renderer.Clear(); err != nil {
				return err
			}
			if err := state.renderer.Copy(state.texture, nil, nil); err != nil {
				return err
			}
			state.renderer.Present()
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch event.(type) {
				case *sdl.QuitEvent:
					return ErrRendererQuit
				}
			}
			return nil
		},
	}
}

// strokeSDL draws the prev-to-current segment as a short bright line.
func (r *Renderer) strokeSDL(state *sdlState, v sim.View) {
	bright := 0.45 + float64(v.Size)*0.14
	bright *= 1.0 - float64(v.LifeRatio)*0.55
	if bright > 1 {
		bright = 1
	}
	h, s, val := r.colorFromMode(float64(v.Hue), bright)
	rr, gg, bb := hsvToRGB(h, s, val)
	cr := byte(clampFloat(rr*255, 0, 255))
	cg := byte(clampFloat(gg*255, 0, 255))
	cb := byte(clampFloat(bb*255, 0, 255))

	dx := float64(v.X - v.PrevX)
	dy := float64(v.Y - v.PrevY)
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(float64(v.PrevX) + dx*t)
		y := int(float64(v.PrevY) + dy*t)
		if x < 0 || x >= state.width || y < 0 || y >= state.height {
			continue
		}
		offset := y*state.pitch + x*4
		if cr > state.pixelBuffer[offset+0] {
			state.pixelBuffer[offset+0] = cr
		}
		if cg > state.pixelBuffer[offset+1] {
			state.pixelBuffer[offset+1] = cg
		}
		if cb > state.pixelBuffer[offset+2] {
			state.pixelBuffer[offset+2] = cb
		}
		state.pixelBuffer[offset+3] = 255
	}
}

func (r *Renderer) resizeSDL() {
	if r.sdl == nil {
		return
	}
	r.sdl.width = 0
	r.sdl.height = 0
}

func (r *Renderer) closeSDL() error {
	if r.sdl == nil {
		return nil
	}
	if r.sdl.texture != nil {
		r.sdl.texture.Destroy()
		r.sdl.texture = nil
	}
	if r.sdl.renderer != nil {
		r.sdl.renderer.Destroy()
		r.sdl.renderer = nil
	}
	if r.sdl.window != nil {
		r.sdl.window.Destroy()
		r.sdl.window = nil
	}
	r.sdl.pixelBuffer = nil
	if r.sdl.initialized {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		r.sdl.initialized = false
	}
	r.sdl = nil
	return nil
}

// SupportsSDL reports whether the binary was built with the sdl tag.
func SupportsSDL() bool { return true }
