package video

// spritePriority resolves, per screen column, which of several
// overlapping sprites owns that pixel under DMG (non-color) priority
// rules: lower X coordinate wins; ties go to the lower OAM index. It
// also enforces the 10-sprites-per-scanline hardware limit by virtue of
// the caller only ever feeding it the (at most 10) sprites selected for
// a line.
//
// This supplies Open Question (d)'s required sprite priority and
// per-line sprite cap, adapting the per-pixel ownership model the
// teacher's `sprite_priority_buffer.go` uses for real-time per-scanline
// drawing to this core's once-per-frame sprite composition pass (spec
// §4.4): the same ownership algorithm runs once per virtual scanline,
// all 144 of them, at the end of VBlank instead of once per HBlank.
type spritePriority struct {
	owner [FramebufferWidth]int // sprite index owning this column, -1 if none
	ownerX [FramebufferWidth]int
}

func newSpritePriority() *spritePriority {
	sp := &spritePriority{}
	sp.clear()
	return sp
}

func (sp *spritePriority) clear() {
	for i := range sp.owner {
		sp.owner[i] = -1
		sp.ownerX[i] = 0
	}
}

// claim attempts to give sprite ownership of screen column x. It wins if
// the column is unowned, or owned by a sprite with a strictly higher X
// (ties keep the earlier-claimed, lower-index sprite: claim is always
// called in ascending OAM-index order for a given line).
func (sp *spritePriority) claim(x, spriteIndex, spriteX int) {
	if x < 0 || x >= FramebufferWidth {
		return
	}
	if sp.owner[x] == -1 || spriteX < sp.ownerX[x] {
		sp.owner[x] = spriteIndex
		sp.ownerX[x] = spriteX
	}
}

func (sp *spritePriority) ownerOf(x int) int {
	if x < 0 || x >= FramebufferWidth {
		return -1
	}
	return sp.owner[x]
}

// selectVisibleSprites scans all 40 OAM entries and returns, in OAM
// order, at most the first 10 whose Y range overlaps `line` — the
// hardware's per-scanline sprite limit (only Y affects selection; X and
// tile data are irrelevant at this stage).
func selectVisibleSprites(mem MemoryReader, line, height int) []Sprite {
	var visible []Sprite
	for n := 0; n < 40; n++ {
		s := ReadSprite(mem, n)
		if !s.VisibleOnLine(line, height) {
			continue
		}
		visible = append(visible, s)
		if len(visible) == 10 {
			break
		}
	}
	return visible
}
