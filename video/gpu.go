package video

import (
	"github.com/ohirose/dmgcore/addr"
)

// Mode is one of the PPU's four scanline states.
type Mode int

const (
	OAMSearch Mode = iota
	PixelTransfer
	HBlank
	VBlank
)

const (
	oamSearchCycles     = 80
	pixelTransferCycles = 172
	hblankCycles        = 204
	vblankLineCycles    = 456

	visibleLines = 144
	totalLines   = 154
)

// bus is the minimal MMU surface the PPU needs.
type bus interface {
	MemoryReader
	Write(addr uint16, value byte)
	WriteLY(value byte)
	RequestInterrupt(interrupt addr.Interrupt)
}

// GPU drives one frame every 70,224 cycles (154 scanlines x 456 cycles),
// advancing on CPU cycle grants and rendering into an owned FrameBuffer.
type GPU struct {
	mmu bus

	mode    Mode
	line    int // current scanline, mirrors LY
	counter int // cycles remaining budget within the current mode

	windowLine int // internal window scanline counter, resets each frame

	frame      *FrameBuffer
	colorIndex [FramebufferSize]ColorIndex // pre-palette BG/window color index, for sprite priority

	// OnVBlank is invoked once per completed frame with a borrowed
	// reference to the frame buffer; the callback must not retain it
	// past the call (see Design Notes, frame buffer ownership).
	OnVBlank func(*FrameBuffer)
}

// NewGPU creates a GPU bound to mmu, starting in OAMSearch at line 0.
func NewGPU(mmu bus) *GPU {
	return &GPU{
		mmu:   mmu,
		frame: NewFrameBuffer(),
		mode:  OAMSearch,
	}
}

// FrameBuffer returns the PPU's owned frame buffer.
func (g *GPU) FrameBuffer() *FrameBuffer { return g.frame }

// Mode reports the PPU's current scanline mode.
func (g *GPU) Mode() Mode { return g.mode }

// Line reports the current scanline (LY), 0-153.
func (g *GPU) Line() int { return g.line }

// Tick advances the PPU by the given number of CPU cycles. Cycle grants
// may arrive in arbitrary quanta, including ones spanning a mode
// boundary; Tick loops internally so it never assumes a single grant
// crosses at most one boundary.
func (g *GPU) Tick(cycles int) {
	g.counter += cycles
	for g.step() {
	}
}

// step consumes one mode's worth of budget if enough has accumulated,
// returning true if it transitioned (so the caller should check again:
// an overshoot may span more than one mode).
func (g *GPU) step() bool {
	switch g.mode {
	case OAMSearch:
		if g.counter < oamSearchCycles {
			return false
		}
		g.counter -= oamSearchCycles
		g.setMode(PixelTransfer)
		return true

	case PixelTransfer:
		if g.counter < pixelTransferCycles {
			return false
		}
		g.counter -= pixelTransferCycles
		g.setMode(HBlank)
		return true

	case HBlank:
		if g.counter < hblankCycles {
			return false
		}
		g.counter -= hblankCycles
		g.renderScanline(g.line)
		g.line++
		g.setLY(g.line)
		if g.line == visibleLines {
			g.setMode(VBlank)
			g.mmu.RequestInterrupt(addr.VBlankInterrupt)
		} else {
			g.setMode(OAMSearch)
		}
		return true

	case VBlank:
		if g.counter < vblankLineCycles {
			return false
		}
		g.counter -= vblankLineCycles
		g.line++
		if g.line >= totalLines {
			g.line = 0
			g.setLY(0)
			g.renderSprites()
			if g.OnVBlank != nil {
				g.OnVBlank(g.frame)
			}
			g.frame.Reset()
			g.colorIndex = [FramebufferSize]ColorIndex{}
			g.windowLine = 0
			g.setMode(OAMSearch)
		} else {
			g.setLY(g.line)
		}
		return true
	}
	return false
}

func (g *GPU) setMode(mode Mode) {
	g.mode = mode
	stat := g.mmu.Read(addr.STAT)
	stat = stat&0xFC | byte(mode)
	g.mmu.Write(addr.STAT, stat)
}

// setLY writes the current scanline into the LY register, bypassing the
// guest write-resets-to-zero special case: that rule governs guest
// writes arriving through the bus, not the PPU's own state updates.
func (g *GPU) setLY(line int) {
	g.mmu.WriteLY(byte(line))
}

func (g *GPU) lcdc() lcdc { return lcdc(g.mmu.Read(addr.LCDC)) }

// renderScanline draws one background+window line into the frame buffer.
// When the LCD is disabled (LCDC.bit7 clear) it draws no tiles and fills
// the line with White instead; the mode machine still advances regardless
// (spec §4.4, "LCD disable").
func (g *GPU) renderScanline(line int) {
	if line < 0 || line >= visibleLines {
		return
	}

	ctrl := g.lcdc()
	if !ctrl.displayEnabled() {
		for x := 0; x < FramebufferWidth; x++ {
			g.frame.Set(x, line, White)
			g.colorIndex[line*FramebufferWidth+x] = Color0
		}
		return
	}

	g.drawBackground(line, ctrl)
	g.drawWindow(line, ctrl)
}

func (g *GPU) tileAddress(ctrl lcdc, tileID byte) uint16 {
	if ctrl.bgWindowDataUnsigned() {
		return addr.TileData0 + uint16(tileID)*16
	}
	return 0x8800 + uint16((int(int8(tileID))+128)*16)
}

func (g *GPU) drawBackground(line int, ctrl lcdc) {
	scy := g.mmu.Read(addr.SCY)
	scx := g.mmu.Read(addr.SCX)
	bgp := DecodePalette(g.mmu.Read(addr.BGP))

	tileMapBase := tileMapBase(ctrl.bgTileMapHigh())

	if !ctrl.bgEnabled() {
		// Background disabled: DMG still shows color 0 of BGP, not a
		// hardcoded shade (the background "layer" still exists, it is
		// just forced transparent/color-0 rather than tile-driven).
		shade := bgp.Apply(Color0)
		for x := 0; x < FramebufferWidth; x++ {
			g.frame.Set(x, line, shade)
			g.colorIndex[line*FramebufferWidth+x] = Color0
		}
		return
	}

	sy := (line + int(scy)) & 0xFF
	tileRow := sy % 8

	for x := 0; x < FramebufferWidth; x++ {
		sx := (x + int(scx)) & 0xFF
		tileID := g.mmu.Read(tileMapBase + uint16((sy/8)*32+sx/8))
		tileAddr := g.tileAddress(ctrl, tileID) + uint16(tileRow*2)

		low := g.mmu.Read(tileAddr)
		high := g.mmu.Read(tileAddr + 1)
		idx := decodePixel(low, high, sx%8)

		g.frame.Set(x, line, bgp.Apply(idx))
		g.colorIndex[line*FramebufferWidth+x] = idx
	}
}

func (g *GPU) drawWindow(line int, ctrl lcdc) {
	if !ctrl.windowEnabled() {
		return
	}

	wy := int(g.mmu.Read(addr.WY))
	if line < wy {
		return
	}

	wx := int(g.mmu.Read(addr.WX)) - 7
	if wx >= FramebufferWidth {
		return
	}

	bgp := DecodePalette(g.mmu.Read(addr.BGP))
	tileMapBase := tileMapBase(ctrl.windowTileMapHigh())

	winY := g.windowLine
	tileRow := winY % 8

	for x := 0; x < FramebufferWidth; x++ {
		if x < wx {
			continue
		}
		winX := x - wx
		tileID := g.mmu.Read(tileMapBase + uint16((winY/8)*32+winX/8))
		tileAddr := g.tileAddress(ctrl, tileID) + uint16(tileRow*2)

		low := g.mmu.Read(tileAddr)
		high := g.mmu.Read(tileAddr + 1)
		idx := decodePixel(low, high, winX%8)

		g.frame.Set(x, line, bgp.Apply(idx))
		g.colorIndex[line*FramebufferWidth+x] = idx
	}

	g.windowLine++
}

// decodePixel applies the bitplane formula from spec §3:
// colorIndex(x) = (bit(b2, 7-x) << 1) | bit(b1, 7-x).
func decodePixel(low, high byte, x int) ColorIndex {
	return TileRow{Low: low, High: high}.GetPixel(x)
}

// renderSprites composes all 40 OAM entries over the already-rendered
// background+window, once per frame at the end of VBlank (spec §4.4).
// It iterates every visible scanline rather than drawing in real time,
// honoring the per-line 10-sprite limit and DMG priority rules via
// spritePriority (Open Question (d)).
func (g *GPU) renderSprites() {
	ctrl := g.lcdc()
	if !ctrl.spritesEnabled() {
		return
	}

	height := 8
	if ctrl.spriteSizeTall() {
		height = 16
	}

	obp0 := DecodePalette(g.mmu.Read(addr.OBP0))
	obp1 := DecodePalette(g.mmu.Read(addr.OBP1))

	for line := 0; line < visibleLines; line++ {
		g.renderSpriteLine(line, height, obp0, obp1)
	}
}

func (g *GPU) renderSpriteLine(line, height int, obp0, obp1 Palette) {
	visible := selectVisibleSprites(g.mmu, line, height)
	if len(visible) == 0 {
		return
	}

	priority := newSpritePriority()
	for _, s := range visible {
		for px := 0; px < 8; px++ {
			priority.claim(s.X+px, s.Index, s.X)
		}
	}

	lineBase := line * FramebufferWidth

	for _, s := range visible {
		tileAddr := s.TileAddressForLine(line, height)
		low := g.mmu.Read(tileAddr)
		high := g.mmu.Read(tileAddr + 1)
		row := TileRow{Low: low, High: high}

		palette := obp0
		if s.usesOBP1() {
			palette = obp1
		}

		for px := 0; px < 8; px++ {
			x := s.X + px
			if x < 0 || x >= FramebufferWidth {
				continue
			}
			if priority.ownerOf(x) != s.Index {
				continue
			}

			var idx ColorIndex
			if s.flipX() {
				idx = row.GetPixelFlipped(px)
			} else {
				idx = row.GetPixel(px)
			}
			if idx == Color0 {
				continue // sprite color 0 is always transparent
			}

			if s.behindBG() && g.colorIndex[lineBase+x] != Color0 {
				continue // background priority: hidden behind non-zero BG/window color
			}

			g.frame.Set(x, line, palette.Apply(idx))
		}
	}
}
