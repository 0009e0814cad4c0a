// Package bus aggregates the CPU, MMU and PPU behind the single
// TickInstruction entry point the host harness drives, so the harness
// never has to sequence the three components' calls itself.
package bus

import (
	"github.com/ohirose/dmgcore/addr"
	"github.com/ohirose/dmgcore/cpu"
	"github.com/ohirose/dmgcore/memory"
	"github.com/ohirose/dmgcore/video"
)

// Bus owns a fully wired CPU/MMU/PPU triple.
type Bus struct {
	CPU *cpu.CPU
	MMU *memory.MMU
	GPU *video.GPU
}

// New builds a Bus around mmu, constructing a CPU and GPU bound to it.
func New(mmu *memory.MMU) *Bus {
	return &Bus{
		CPU: cpu.New(mmu),
		MMU: mmu,
		GPU: video.NewGPU(mmu),
	}
}

func (b *Bus) Read(address uint16) byte         { return b.MMU.Read(address) }
func (b *Bus) Write(address uint16, value byte) { b.MMU.Write(address, value) }

func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.MMU.RequestInterrupt(interrupt)
}

// TickInstruction executes exactly one CPU instruction, then advances the
// PPU by the cycles it took, satisfying the spec's ordering guarantee
// that an instruction's full cycle cost reaches the PPU before the next
// instruction begins.
func (b *Bus) TickInstruction() int {
	cycles := b.CPU.Step()
	b.GPU.Tick(cycles)
	return cycles
}
