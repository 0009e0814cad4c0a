//go:build !sdl2

package sdlpresenter

import (
	"fmt"

	"github.com/ohirose/dmgcore/video"
)

// Presenter stub for builds without the sdl2 tag (and the SDL2
// development libraries it requires). Mirrors the teacher's
// jeebie/backend/sdl2_stub.go fallback.
type Presenter struct{}

// New always fails on a non-sdl2 build; the caller should fall back to
// termpresenter or headless mode.
func New(title string, scale int) (*Presenter, error) {
	return nil, fmt.Errorf("sdlpresenter: built without -tags sdl2, SDL2 window unavailable")
}

func (p *Presenter) Present(fb *video.FrameBuffer) {}
func (p *Presenter) ShouldClose() bool             { return true }
func (p *Presenter) Close()                        {}
