// Package host wires the cartridge, bus and PPU into the tick loop an
// embedder (a CLI, a presenter, a test) drives to run a ROM.
package host

import (
	"context"
	"log/slog"

	"github.com/ohirose/dmgcore/bus"
	"github.com/ohirose/dmgcore/cartridge"
	"github.com/ohirose/dmgcore/cpu"
	"github.com/ohirose/dmgcore/memory"
	"github.com/ohirose/dmgcore/video"
)

// Harness owns the cartridge and the wired CPU/MMU/PPU bus, and runs the
// tick loop spec.md §4.5 describes: while not cancelled, step the CPU
// and feed its cycles to the PPU.
type Harness struct {
	bus  *bus.Bus
	cart *cartridge.Cartridge

	// ShouldClose, if set, is polled between instructions in addition to
	// ctx.Err(); it exists to match spec.md §6's should_close() callback
	// contract for embedders that prefer a poll function over a context.
	ShouldClose func() bool

	// OnVBlank is invoked once per completed frame with a borrowed
	// FrameBuffer reference that must not be retained past the call.
	OnVBlank func(*video.FrameBuffer)

	frameCount       uint64
	instructionCount uint64
}

// New creates a Harness for the given ROM image. An empty image is
// rejected with a *FatalError. Any other malformed or unsupported header
// is logged and degrades to a plain ROM-only cartridge rather than
// failing construction (spec §7).
func New(romData []byte) (*Harness, error) {
	if len(romData) == 0 {
		return nil, newFatal("empty ROM image", nil)
	}

	cart, err := cartridge.New(romData)
	if err != nil {
		slog.Warn("cartridge header degraded to NoMBC fallback", "error", err)
	}

	mmu := memory.New(cart)
	h := &Harness{
		bus:  bus.New(mmu),
		cart: cart,
	}
	return h, nil
}

// MMU returns the harness's memory management unit, for embedders that
// need direct peek/poke access (e.g. a debugger or a test).
func (h *Harness) MMU() *memory.MMU { return h.bus.MMU }

// CPU returns the harness's CPU.
func (h *Harness) CPU() *cpu.CPU { return h.bus.CPU }

// FrameCount reports how many complete frames have been delivered.
func (h *Harness) FrameCount() uint64 { return h.frameCount }

// InstructionCount reports how many CPU instructions have executed.
func (h *Harness) InstructionCount() uint64 { return h.instructionCount }

// DumpRAM returns a copy of the cartridge's battery-backed RAM, for save
// file persistence.
func (h *Harness) DumpRAM() []byte { return append([]byte(nil), h.cart.RAM()...) }

// LoadRAM restores previously dumped cartridge RAM.
func (h *Harness) LoadRAM(data []byte) { h.cart.LoadRAM(data) }

// Run executes the tick loop until ctx is cancelled or ShouldClose
// reports true, checking both only between whole instructions: an
// in-flight instruction is never aborted mid-execution, and a
// cancellation observed while a VBlank callback would otherwise fire
// this iteration is naturally deferred, since TickInstruction delivers
// the callback (if any) before returning.
func (h *Harness) Run(ctx context.Context) error {
	h.bus.GPU.OnVBlank = func(fb *video.FrameBuffer) {
		h.frameCount++
		if h.OnVBlank != nil {
			h.OnVBlank(fb)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.ShouldClose != nil && h.ShouldClose() {
			return nil
		}

		h.bus.TickInstruction()
		h.instructionCount++
	}
}
