// Package mesh implements the block-structured AMR data model: the
// octree-indexed BlockIndex, its neighbor iterator, Box geometry, the Block
// value type, field-face packing, and the flux register. It is the direct
// analogue of aistore's cluster/meta package — the small, dependency-light
// layer every other package in this module builds on.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package mesh

import (
	"fmt"
	"strings"
)

// BlockIndex is a path into the forest of octrees: a tree id plus a sequence
// of three-bit child selectors. It is immutable after construction — every
// method returns a new value rather than mutating the receiver.
type BlockIndex struct {
	Tree int
	path []uint8 // one entry per level; each byte's low 3 bits select (x,y,z)
}

// NewRoot constructs the root BlockIndex of tree id t.
func NewRoot(tree int) BlockIndex {
	return BlockIndex{Tree: tree}
}

// Level returns the refinement level: zero at the root.
func (bi BlockIndex) Level() int { return len(bi.path) }

// Child returns the child selector ic3 chosen at the given level (0-indexed,
// 0 <= level < bi.Level()).
func (bi BlockIndex) Child(level int) (ic3 [3]int, ok bool) {
	if level < 0 || level >= len(bi.path) {
		return ic3, false
	}
	b := bi.path[level]
	ic3[0] = int(b & 1)
	ic3[1] = int((b >> 1) & 1)
	ic3[2] = int((b >> 2) & 1)
	return ic3, true
}

// Parent returns the BlockIndex one level up. Calling Parent on the root
// panics — callers must check Level() > 0 first (a precondition violation,
// not a recoverable condition).
func (bi BlockIndex) Parent() BlockIndex {
	if len(bi.path) == 0 {
		panic("mesh: Parent() of root BlockIndex")
	}
	out := BlockIndex{Tree: bi.Tree, path: make([]uint8, len(bi.path)-1)}
	copy(out.path, bi.path[:len(bi.path)-1])
	return out
}

// Descend returns the child of bi selected by ic3 (each component 0 or 1).
func (bi BlockIndex) Descend(ic3 [3]int) BlockIndex {
	out := BlockIndex{Tree: bi.Tree, path: make([]uint8, len(bi.path)+1)}
	copy(out.path, bi.path)
	out.path[len(bi.path)] = encodeChild(ic3)
	return out
}

func encodeChild(ic3 [3]int) uint8 {
	var b uint8
	if ic3[0] != 0 {
		b |= 1
	}
	if ic3[1] != 0 {
		b |= 2
	}
	if ic3[2] != 0 {
		b |= 4
	}
	return b
}

// FaceNeighbor returns the same-level neighbor across face vector if3
// (components in {-1,0,1}), and reports, per axis, whether the walk
// overflowed the root of the tree (i.e. the neighbor lies across the domain
// boundary of this tree and must be resolved via periodicity by the
// caller — mesh itself has no notion of domain extents).
//
// The algorithm treats each axis's per-level child bits as the binary
// expansion of the block's coordinate along that axis and ripples a ±1
// across it, exactly the classic octree same-level-neighbor-finding
// recursion (ascend while the direction would flip a bit out of range,
// then descend back down flipping the opposite bit).
func (bi BlockIndex) FaceNeighbor(if3 [3]int) (neighbor BlockIndex, overflow [3]bool) {
	path := make([]uint8, len(bi.path))
	copy(path, bi.path)

	for axis := 0; axis < 3; axis++ {
		d := if3[axis]
		if d == 0 {
			continue
		}
		carry := d
		for i := len(path) - 1; i >= 0 && carry != 0; i-- {
			bit := bitAt(path[i], axis)
			sum := bit + carry
			switch sum {
			case 1:
				path[i] = setBit(path[i], axis, 1)
				carry = 0
			case 0:
				path[i] = setBit(path[i], axis, 0)
				carry = 0
			case 2:
				path[i] = setBit(path[i], axis, 0)
				carry = 1
			case -1:
				path[i] = setBit(path[i], axis, 1)
				carry = -1
			}
		}
		if carry != 0 {
			overflow[axis] = true
		}
	}
	return BlockIndex{Tree: bi.Tree, path: path}, overflow
}

func bitAt(b uint8, axis int) int { return int((b >> uint(axis)) & 1) }

func setBit(b uint8, axis int, v int) uint8 {
	mask := uint8(1) << uint(axis)
	if v != 0 {
		return b | mask
	}
	return b &^ mask
}

// Equal reports whether two BlockIndex values name the same block.
func (bi BlockIndex) Equal(other BlockIndex) bool {
	if bi.Tree != other.Tree || len(bi.path) != len(other.path) {
		return false
	}
	for i := range bi.path {
		if bi.path[i] != other.path[i] {
			return false
		}
	}
	return true
}

// String renders a compact, stable textual name — used as map keys and in
// log/error messages throughout the core.
func (bi BlockIndex) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "B%02d:", bi.Tree)
	for _, b := range bi.path {
		fmt.Fprintf(&sb, "%d", b)
	}
	return sb.String()
}

// Key returns a value usable as a map key; BlockIndex itself is not
// comparable (path is a slice) — Key is the comparable form.
func (bi BlockIndex) Key() string { return bi.String() }
