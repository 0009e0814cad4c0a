// Command dmgcore is the CLI surface spec.md §6 describes as an external
// collaborator: positional ROM path, --debug/--trace/--silent/
// --exit-on-infinite-jr advisory hints, plus the presentation and
// profiling flags this module's expansion wires in (see SPEC_FULL.md
// DOMAIN STACK). Grounded on the teacher's cmd/jeebie/main.go
// (urfave/cli.App construction, flag shape, slog setup).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ohirose/dmgcore/host"
	"github.com/ohirose/dmgcore/host/sdlpresenter"
	"github.com/ohirose/dmgcore/host/termpresenter"
	"github.com/ohirose/dmgcore/video"
	"github.com/pkg/profile"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Description = "A Game Boy (DMG) core: cartridge/MBC, MMU and PPU driven by a tick loop"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "debug", Usage: "enable debug-level logging"},
		cli.BoolFlag{Name: "trace", Usage: "enable per-instruction/scanline trace logging (very verbose)"},
		cli.BoolFlag{Name: "silent", Usage: "suppress all logging below error level"},
		cli.BoolFlag{Name: "exit-on-infinite-jr", Usage: "stop the run if the program counter stalls on a tight backward jump"},
		cli.BoolFlag{Name: "headless", Usage: "run without any presenter, counting frames only"},
		cli.BoolFlag{Name: "term", Usage: "present frames in the terminal via tcell instead of an SDL2 window"},
		cli.IntFlag{Name: "frames", Usage: "stop after this many frames (0 = run until closed)", Value: 0},
		cli.IntFlag{Name: "scale", Usage: "SDL2 window integer pixel scale", Value: 3},
		cli.BoolFlag{Name: "profile", Usage: "wrap the run in a pkg/profile CPU profile"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configureLogging(c)

	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().Get(0)

	if c.Bool("profile") {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	romData, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	h, err := host.New(romData)
	if err != nil {
		return fmt.Errorf("constructing core: %w", err)
	}

	closer, err := wirePresenter(c, h)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	if frames := c.Int("frames"); frames > 0 {
		wireFrameLimit(h, frames)
	}
	if c.Bool("exit-on-infinite-jr") {
		wireInfiniteJRGuard(h)
	}

	return h.Run(context.Background())
}

func configureLogging(c *cli.Context) {
	level := slog.LevelInfo
	switch {
	case c.Bool("silent"):
		level = slog.LevelError
	case c.Bool("trace"):
		level = slog.LevelDebug - 4
	case c.Bool("debug"):
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// wirePresenter attaches the requested presentation backend's Present
// method as the harness's OnVBlank callback and its ShouldClose as the
// harness's cancellation poll, replacing whatever those fields already
// hold. It returns a cleanup func, or nil for headless mode.
func wirePresenter(c *cli.Context, h *host.Harness) (func(), error) {
	if c.Bool("headless") {
		return nil, nil
	}

	if c.Bool("term") {
		p, err := termpresenter.New()
		if err != nil {
			return nil, err
		}
		h.OnVBlank = p.Present
		h.ShouldClose = p.ShouldClose
		return p.Close, nil
	}

	p, err := sdlpresenter.New("dmgcore", c.Int("scale"))
	if err != nil {
		slog.Warn("SDL2 presenter unavailable, falling back to headless", "error", err)
		return nil, nil
	}
	h.OnVBlank = p.Present
	h.ShouldClose = p.ShouldClose
	return p.Close, nil
}

// wireFrameLimit stops the run after the requested number of frames by
// composing onto whatever ShouldClose the presenter already installed.
func wireFrameLimit(h *host.Harness, frames int) {
	prevOnVBlank := h.OnVBlank
	prevShouldClose := h.ShouldClose
	done := false

	h.OnVBlank = func(fb *video.FrameBuffer) {
		if prevOnVBlank != nil {
			prevOnVBlank(fb)
		}
		if h.FrameCount() >= uint64(frames) {
			done = true
		}
	}
	h.ShouldClose = func() bool {
		return done || (prevShouldClose != nil && prevShouldClose())
	}
}

// wireInfiniteJRGuard stops the run if the CPU's program counter has not
// moved across a run of consecutive instructions, the usual signature of
// a deliberate "halt here forever" JR $-2 spin a test ROM uses to signal
// completion or failure.
func wireInfiniteJRGuard(h *host.Harness) {
	const stallLimit = 1 << 20

	prevShouldClose := h.ShouldClose
	lastPC := h.CPU().GetPC()
	stall := 0

	h.ShouldClose = func() bool {
		pc := h.CPU().GetPC()
		if pc == lastPC {
			stall++
		} else {
			stall = 0
			lastPC = pc
		}
		if stall >= stallLimit {
			slog.Warn("stopping: program counter stalled", "pc", pc, "instructions", stall)
			return true
		}
		return prevShouldClose != nil && prevShouldClose()
	}
}
