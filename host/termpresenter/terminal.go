// Package termpresenter implements an OnVBlank presenter that renders
// the frame buffer as half-block characters in a terminal, using tcell.
// Grounded on the teacher's jeebie/backend/terminal package (tcell
// screen lifecycle, ESC-to-quit handling) and jeebie/render/utils.go's
// half-block convention (two vertical pixels per character cell via
// '▀' with independently colored foreground/background).
package termpresenter

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/ohirose/dmgcore/video"
)

const upperHalfBlock = '▀'

// Presenter owns a tcell terminal screen and renders each delivered
// frame as 160x72 half-block cells (two DMG pixel rows per cell).
type Presenter struct {
	screen tcell.Screen
	quit   bool
}

// New initializes a tcell terminal screen.
func New() (*Presenter, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("termpresenter: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("termpresenter: init screen: %w", err)
	}
	screen.Clear()
	return &Presenter{screen: screen}, nil
}

// Present implements the host.Harness OnVBlank callback contract.
func (p *Presenter) Present(fb *video.FrameBuffer) {
	for p.screen.HasPendingEvent() {
		switch ev := p.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				p.quit = true
			}
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}
	if p.quit {
		return
	}

	for row := 0; row < video.FramebufferHeight/2; row++ {
		top := row * 2
		bottom := top + 1
		for x := 0; x < video.FramebufferWidth; x++ {
			fg := shadeColor(fb.At(x, top))
			bg := shadeColor(fb.At(x, bottom))
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			p.screen.SetContent(x, row, upperHalfBlock, nil, style)
		}
	}
	p.screen.Show()
}

// ShouldClose reports whether the terminal presenter observed a quit key.
func (p *Presenter) ShouldClose() bool { return p.quit }

// Close restores the terminal to its pre-screen state.
func (p *Presenter) Close() { p.screen.Fini() }

func shadeColor(c video.Color) tcell.Color {
	switch c {
	case video.White:
		return tcell.NewRGBColor(0xFF, 0xFF, 0xFF)
	case video.LightGray:
		return tcell.NewRGBColor(0xA9, 0xA9, 0xA9)
	case video.DarkGray:
		return tcell.NewRGBColor(0x54, 0x54, 0x54)
	case video.Black:
		return tcell.NewRGBColor(0x00, 0x00, 0x00)
	default:
		return tcell.ColorWhite
	}
}
