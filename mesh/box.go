// box.go implements the transient geometry object used to compute the
// overlap between a block's own footprint and a neighbor's (or "extra"
// block's) footprint under a face/child configuration and padding.
package mesh

// Frame selects whose coordinate system Box.GetLimits expresses its result
// in.
type Frame int

const (
	FrameSelf Frame = iota
	FrameNeighbor
	FrameExtra
)

// Box is parameterized by (rank, block shape, ghost depth) at construction,
// then configured per-neighbor via SetBlock/SetPadding before each
// ComputeRegion/GetLimits call. SetBlock and SetPadding clear the computed
// state, so one Box can be reconfigured for another neighbor.
type Box struct {
	rank  int
	shape [3]int // interior cell count per axis
	ghost [3]int // ghost depth this refresh requests per axis

	if3      [3]int
	ic3      [3]int
	relLevel int // other block's level minus this block's level: -1, 0, +1
	padding  int

	im3, ip3   [3]int // self-frame region, half-open
	blockStart [3]int // other block's local origin, expressed in self-frame coordinates
	computed   bool
}

// NewBox constructs a Box for a block of the given rank, interior shape and
// the ghost depth this refresh is exchanging.
func NewBox(rank int, shape, ghost [3]int) *Box {
	return &Box{rank: rank, shape: shape, ghost: ghost}
}

// SetBlock positions the "other" block relative to "this" one: relLevel is
// other.Level()-this.Level(), if3 is the face vector from this block toward
// other, and ic3 disambiguates the child sub-face (the finer side's child
// index, whichever side is finer).
func (b *Box) SetBlock(relLevel int, if3, ic3 [3]int) {
	b.relLevel = relLevel
	b.if3 = if3
	b.ic3 = ic3
	b.computed = false
}

// SetPadding inflates the region by p cells on every side — used when a
// prolongation stencil needs more than the nominal ghost depth.
func (b *Box) SetPadding(p int) { b.padding = p; b.computed = false }

// ComputeRegion derives the self-frame footprint of the data this face
// exchange touches: the ghost-depth-plus-padding slab on a face axis, the
// full interior extent on a tangential axis.
func (b *Box) ComputeRegion() {
	for a := 0; a < b.rank; a++ {
		g := b.ghost[a] + b.padding
		switch b.if3[a] {
		case -1:
			b.im3[a] = -g
			b.ip3[a] = 0
		case 1:
			b.im3[a] = b.shape[a]
			b.ip3[a] = b.shape[a] + g
		case 0:
			b.im3[a] = 0
			b.ip3[a] = b.shape[a]
		}
	}
	for a := b.rank; a < 3; a++ {
		b.im3[a], b.ip3[a] = 0, 1
	}
	b.computed = true
}

// ComputeBlockStart derives where the other block's local index-space
// origin sits in this block's coordinate frame, accounting for a level
// change (a finer other block occupies half the tangential extent, selected
// by ic3; a coarser other block's tangential origin is offset by this
// block's own child position, also carried in ic3 per SetBlock's contract).
func (b *Box) ComputeBlockStart() {
	for a := 0; a < b.rank; a++ {
		switch b.if3[a] {
		case 1:
			b.blockStart[a] = b.shape[a]
		case -1:
			b.blockStart[a] = -b.shape[a]
		case 0:
			switch b.relLevel {
			case 1: // other is finer: tangential half selected by ic3
				b.blockStart[a] = b.ic3[a] * (b.shape[a] / 2)
			case -1: // other is coarser: our own child position offsets us
				b.blockStart[a] = -b.ic3[a] * (b.shape[a] / 2)
			default:
				b.blockStart[a] = 0
			}
		}
	}
	for a := b.rank; a < 3; a++ {
		b.blockStart[a] = 0
	}
}

// GetLimits returns the computed region's bounds expressed in the requested
// frame, and whether the region is non-empty (a real overlap). Self-frame
// limits are exactly [im3,ip3) from ComputeRegion; neighbor/extra-frame
// limits are translated by blockStart (ComputeBlockStart must have been
// called first for those two frames).
func (b *Box) GetLimits(frame Frame) (lo, hi [3]int, overlap bool) {
	if !b.computed {
		b.ComputeRegion()
	}
	lo, hi = b.im3, b.ip3
	if frame != FrameSelf {
		for a := 0; a < 3; a++ {
			lo[a] -= b.blockStart[a]
			hi[a] -= b.blockStart[a]
		}
	}
	overlap = true
	for a := 0; a < b.rank; a++ {
		if lo[a] >= hi[a] {
			overlap = false
		}
	}
	return lo, hi, overlap
}

// Overlaps reports whether this box's self-frame region intersects other's,
// both expressed in the same (self) coordinate frame — used to decide
// whether a given extra neighbor's padded footprint actually contributes
// data.
func (b *Box) Overlaps(other *Box) bool {
	aLo, aHi, aOK := b.GetLimits(FrameSelf)
	if !aOK {
		return false
	}
	bLo, bHi, bOK := other.GetLimits(FrameSelf)
	if !bOK {
		return false
	}
	for axis := 0; axis < b.rank; axis++ {
		if aHi[axis] <= bLo[axis] || bHi[axis] <= aLo[axis] {
			return false
		}
	}
	return true
}
