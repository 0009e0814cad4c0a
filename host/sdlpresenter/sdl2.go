//go:build sdl2

// Package sdlpresenter implements an OnVBlank presenter that blits the
// emulator's FrameBuffer to a real window via SDL2, grounded on the
// teacher's jeebie/backend/sdl2.go (same CreateWindow/CreateRenderer/
// CreateTexture/streaming-texture-update sequence, same build-tag-gated
// stub fallback for hosts without the SDL2 development libraries).
package sdlpresenter

import (
	"fmt"
	"unsafe"

	"github.com/ohirose/dmgcore/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Presenter owns an SDL2 window, renderer and streaming texture sized to
// the DMG's 160x144 frame buffer, scaled up by an integer factor.
type Presenter struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	quit     bool
}

// New opens an SDL2 window titled title, scaled by scale.
func New(title string, scale int) (*Presenter, error) {
	if scale <= 0 {
		scale = 1
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdlpresenter: init: %w", err)
	}

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdlpresenter: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlpresenter: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(video.FramebufferWidth),
		int32(video.FramebufferHeight),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlpresenter: create texture: %w", err)
	}

	return &Presenter{window: window, renderer: renderer, texture: texture}, nil
}

// Present implements the host.Harness OnVBlank callback contract: it
// reads fb's pixels during the call and never retains the pointer.
func (p *Presenter) Present(fb *video.FrameBuffer) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			p.quit = true
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
				p.quit = true
			}
		}
	}
	if p.quit {
		return
	}

	rgba := fb.ToRGBA()
	pixels := make([]byte, len(rgba)*4)
	for i, px := range rgba {
		pixels[i*4+0] = byte(px)
		pixels[i*4+1] = byte(px >> 8)
		pixels[i*4+2] = byte(px >> 16)
		pixels[i*4+3] = byte(px >> 24)
	}

	p.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*4)
	p.renderer.Clear()
	p.renderer.Copy(p.texture, nil, nil)
	p.renderer.Present()
}

// ShouldClose reports whether the window has been asked to close, for
// wiring into host.Harness.ShouldClose.
func (p *Presenter) ShouldClose() bool { return p.quit }

// Close releases the SDL2 window, renderer, texture and subsystem.
func (p *Presenter) Close() {
	if p.texture != nil {
		p.texture.Destroy()
	}
	if p.renderer != nil {
		p.renderer.Destroy()
	}
	if p.window != nil {
		p.window.Destroy()
	}
	sdl.Quit()
}
