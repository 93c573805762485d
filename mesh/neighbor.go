// neighbor.go implements the same-level and cross-level face-neighbor
// iterator over a forest of octrees.
package mesh

import "sort"

// NeighborType selects how face neighbors are enumerated for a refresh.
type NeighborType int

const (
	// NeighborLeaf: leaves at any level sharing a face.
	NeighborLeaf NeighborType = iota
	// NeighborTree: walk the subtree.
	NeighborTree
	// NeighborLevel: same-level face neighbors regardless of leaf status.
	NeighborLevel
)

// Periodicity reports, per axis, whether the domain wraps. A BlockIndex walk
// that overflows the root of its tree along a periodic axis wraps back to
// tree 0 at the same level (single-tree domains are assumed periodic-within
// the tree; multi-tree forests resolve wraparound via the forest's own tree
// adjacency, which is out of this package's scope and supplied by Forest).
type Periodicity [3]bool

// Forest answers the structural questions BlockIndex alone cannot: does a
// given index currently exist, is it a leaf, and where does a root overflow
// across a periodic boundary land. coordinator's tests and meshtest provide
// concrete (in-memory, map-based)
// implementations; mesh itself stays free of global state, per the §9 design
// note rejecting hidden globals.
type Forest interface {
	Exists(idx BlockIndex) bool
	IsLeaf(idx BlockIndex) bool
	// WrapTree resolves a same-tree root overflow (out[axis]==true) across
	// a periodic boundary to a neighbor index in (possibly) another tree.
	// ok is false if the axis is not periodic and the walk should be
	// dropped (no neighbor across a non-periodic domain boundary).
	WrapTree(idx BlockIndex, overflow [3]bool) (wrapped BlockIndex, ok bool)
}

// NeighborInfo is one tuple yielded by Neighbors: the face vector, the
// neighbor's index, the refinement level actually facing this block across
// that face, and (only when the neighbor is finer) the child selector
// disambiguating which fine sub-face this tuple names.
type NeighborInfo struct {
	IF3       [3]int
	Index     BlockIndex
	FaceLevel int
	IC3       [3]int // valid only when FaceLevel > this block's level
	HasIC3    bool
}

// faceVectors returns every if3 in {-1,0,1}^3 \ {0,0,0}, in a fixed
// lexicographic order (z outermost, then y, then x) for deterministic
// tie-breaking.
func faceVectors() [][3]int {
	out := make([][3]int, 0, 26)
	for z := -1; z <= 1; z++ {
		for y := -1; y <= 1; y++ {
			for x := -1; x <= 1; x++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				out = append(out, [3]int{x, y, z})
			}
		}
	}
	return out
}

// rankOf returns the number of nonzero components of if3 — 1 for a face,
// 2 for an edge, 3 for a corner.
func rankOf(if3 [3]int) int {
	n := 0
	for _, c := range if3 {
		if c != 0 {
			n++
		}
	}
	return n
}

// passesFaceRank implements the min_face_rank filter: min_face_rank==rank-1
// is faces-only (codimension-1 contacts, single nonzero axis),
// min_face_rank==rank-2 additionally allows edges, lower values additionally
// allow corners. The filter keeps any if3 whose nonzero count does not
// exceed (problemRank - minFaceRank); see DESIGN.md for the reasoning
// behind this direction.
func passesFaceRank(if3 [3]int, problemRank, minFaceRank int) bool {
	return rankOf(if3) <= problemRank-minFaceRank
}

// childrenForFace enumerates the fine-child selectors adjacent to this block
// across if3: the near-side bit on every nonzero axis, the full {0,1} range
// on every zero axis, visited in Morton order (bit-encoded value ascending)
// for a deterministic tie-break.
func childrenForFace(if3 [3]int) [][3]int {
	var zeroAxes []int
	fixed := [3]int{}
	for axis, d := range if3 {
		if d == 0 {
			zeroAxes = append(zeroAxes, axis)
		} else if d > 0 {
			fixed[axis] = 0 // near side of a +face is the neighbor's low half
		} else {
			fixed[axis] = 1
		}
	}
	n := 1 << uint(len(zeroAxes))
	out := make([][3]int, 0, n)
	for m := 0; m < n; m++ {
		ic3 := fixed
		for bit, axis := range zeroAxes {
			ic3[axis] = (m >> uint(bit)) & 1
		}
		out = append(out, ic3)
	}
	sort.Slice(out, func(i, j int) bool {
		return mortonCode(out[i]) < mortonCode(out[j])
	})
	return out
}

func mortonCode(ic3 [3]int) int {
	return ic3[0] | (ic3[1] << 1) | (ic3[2] << 2)
}

// Neighbors enumerates (face vector, neighbor index, face level[, child])
// tuples for bi under the given configuration, honoring min_face_rank,
// neighborType, minLevel and rootLevel. problemRank is the simulation's
// spatial rank (1/2/3); periodicity and forest resolve domain boundaries
// and refinement state.
func Neighbors(
	bi BlockIndex,
	forest Forest,
	periodic Periodicity,
	problemRank, minFaceRank int,
	neighborType NeighborType,
	minLevel, rootLevel int,
) []NeighborInfo {
	level := bi.Level()
	if level < minLevel {
		return nil
	}
	var out []NeighborInfo
	for _, if3 := range faceVectors() {
		if !passesFaceRank(if3, problemRank, minFaceRank) {
			continue
		}
		same, overflow := bi.FaceNeighbor(if3)
		hasOverflow := overflow[0] || overflow[1] || overflow[2]
		if hasOverflow {
			var ok bool
			var axis int
			for a, o := range overflow {
				if o {
					axis = a
					break
				}
			}
			if !periodic[axis] {
				continue
			}
			same, ok = forest.WrapTree(same, overflow)
			if !ok {
				continue
			}
		}

		switch neighborType {
		case NeighborLevel:
			out = append(out, NeighborInfo{IF3: if3, Index: same, FaceLevel: level})
			continue
		case NeighborTree:
			// Tree walk considers the same-level index as the subtree root
			// to descend from; callers needing the full subtree enumerate
			// via repeated Neighbors/Forest.IsLeaf calls starting here.
			out = append(out, NeighborInfo{IF3: if3, Index: same, FaceLevel: level})
			continue
		}

		// NeighborLeaf: resolve actual refinement state relative to us.
		switch {
		case forest.Exists(same) && forest.IsLeaf(same):
			out = append(out, NeighborInfo{IF3: if3, Index: same, FaceLevel: level})
		case forest.Exists(same) && !forest.IsLeaf(same):
			for _, ic3 := range childrenForFace(if3) {
				child := same.Descend(ic3)
				out = append(out, NeighborInfo{
					IF3: if3, Index: child, FaceLevel: level + 1, IC3: ic3, HasIC3: true,
				})
			}
		default:
			if same.Level() == 0 {
				continue
			}
			parent := same.Parent()
			if parent.Level() < rootLevel {
				continue
			}
			out = append(out, NeighborInfo{IF3: if3, Index: parent, FaceLevel: level - 1})
		}
	}
	return out
}
