// Package particlesort bins departing particles into a 4×4×4 array of
// neighbor-addressed bags and applies periodic coordinate correction at
// domain boundaries.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package particlesort

import (
	"fmt"

	"github.com/cello-mesh/refresh/cmn/debug"
	"github.com/cello-mesh/refresh/cmn/errs"
	"github.com/cello-mesh/refresh/mesh"
)

// DomainInfo carries the extents the sorter needs to normalize a particle's
// position and detect periodic-boundary crossings — the Hierarchy
// collaborator.
type DomainInfo struct {
	BlockLower, BlockUpper   [3]float64
	DomainLower, DomainUpper [3]float64
	Periodic                 [3]bool
}

// NeighborBin pairs one neighbor with the bag AllocateNeighborBags allocated
// for it; SubIndex is left zero.
type NeighborBin struct {
	SubIndex [3]int
	Bag      *mesh.Bag
	Neighbor mesh.BlockIndex
}

// Sorter owns the 4×4×4 array of bag pointers for one refresh instance on
// one block.
type Sorter struct {
	domain DomainInfo
	rank   int
	cells  [4][4][4]*mesh.Bag
	bins   []NeighborBin
}

func NewSorter(domain DomainInfo, rank int) *Sorter {
	return &Sorter{domain: domain, rank: rank}
}

// AllocateNeighborBags allocates one bag per neighbor in neighbors and
// assigns it to every sub-block cell that neighbor's face/child
// configuration covers. Overlapping neighbors with the same coverage
// footprint never arise in a 2:1-balanced forest, but sub-block cells are
// always assigned the single bag pointer computed here — never duplicated
// storage — so overlapping cells share a bag pointer, not bag contents.
func (s *Sorter) AllocateNeighborBags(neighbors []mesh.NeighborInfo, particleType string) {
	for _, nb := range neighbors {
		bag := &mesh.Bag{Type: particleType}
		ranges := subRanges(nb, s.rank)
		s.bins = append(s.bins, NeighborBin{Bag: bag, Neighbor: nb.Index})
		for _, ix := range ranges[0] {
			for _, iy := range ranges[1] {
				for _, iz := range ranges[2] {
					s.cells[ix][iy][iz] = bag
				}
			}
		}
	}
}

// subRanges computes, per axis, the set of sub-block indices {0..3} a
// neighbor's face vector (and, for a finer neighbor, its child selector)
// covers: the outer index on the face axis, both middle indices on a
// tangential axis for a same-level or coarser neighbor, or just one of the
// two middle indices — selected by the child bit — for a finer neighbor.
func subRanges(nb mesh.NeighborInfo, rank int) [3][]int {
	var out [3][]int
	for a := 0; a < 3; a++ {
		if a >= rank {
			out[a] = []int{1, 2}
			continue
		}
		switch nb.IF3[a] {
		case -1:
			out[a] = []int{0}
		case 1:
			out[a] = []int{3}
		case 0:
			if nb.HasIC3 {
				out[a] = []int{1 + nb.IC3[a]}
			} else {
				out[a] = []int{1, 2}
			}
		}
	}
	return out
}

// subIndex normalizes p's position onto the block's [0,1) interior extent
// per axis and buckets it into {0,1,2,3}: 1/2 are the two halves of the
// interior, 0/3 mean the particle has left through the lower/upper
// boundary. A particle landing outside {0,1,2,3} is a CFL violation
// upstream and is fatal (ParticleOutOfRange).
func (s *Sorter) subIndex(p mesh.Particle, blockName string, refreshID int) [3]int {
	var out [3]int
	for a := 0; a < s.rank; a++ {
		extent := s.domain.BlockUpper[a] - s.domain.BlockLower[a]
		norm := (p.Pos[a] - s.domain.BlockLower[a]) / extent
		switch {
		case norm < -1:
			errs.Abort(errs.New(errs.ParticleOutOfRange, blockName, refreshID,
				fmt.Sprintf("particle %d axis %d normalized pos %.6f outside 4x4x4 window", p.ID, a, norm)))
		case norm < 0:
			out[a] = 0
		case norm < 0.5:
			out[a] = 1
		case norm < 1:
			out[a] = 2
		case norm <= 2:
			out[a] = 3
		default:
			errs.Abort(errs.New(errs.ParticleOutOfRange, blockName, refreshID,
				fmt.Sprintf("particle %d axis %d normalized pos %.6f outside 4x4x4 window", p.ID, a, norm)))
		}
	}
	for a := s.rank; a < 3; a++ {
		out[a] = 1
	}
	return out
}

// Scatter bins every particle in src into the neighbor bags allocated by
// AllocateNeighborBags, applying periodic coordinate correction, then
// deletes the moved particles from src.
func (s *Sorter) Scatter(src *mesh.Bag, blockName string, refreshID int) {
	moved := map[int64]bool{}
	for _, p := range src.Items {
		idx := s.subIndex(p, blockName, refreshID)
		if interior(idx, s.rank) {
			continue // owned by this block: not sent
		}
		bag := s.cells[idx[0]][idx[1]][idx[2]]
		debug.Assert(bag != nil, "particlesort: populated neighbor slot with nil bag")

		shifted := s.applyPeriodicShift(p, idx)
		bag.Append(shifted)
		moved[p.ID] = true
	}
	src.DeleteWhere(func(p mesh.Particle) bool { return !moved[p.ID] })
}

// interior reports whether idx names the 2x2x2 (or lower-rank equivalent)
// core that is never sent to a neighbor.
func interior(idx [3]int, rank int) bool {
	for a := 0; a < rank; a++ {
		if idx[a] != 1 && idx[a] != 2 {
			return false
		}
	}
	return true
}

// applyPeriodicShift corrects particles bound for a neighbor across a
// periodic domain face: every particle is shifted by ±(domain extent) along
// that axis, sign following the crossing direction.
func (s *Sorter) applyPeriodicShift(p mesh.Particle, idx [3]int) mesh.Particle {
	for a := 0; a < s.rank; a++ {
		extent := s.domain.DomainUpper[a] - s.domain.DomainLower[a]
		onBoundaryLo := s.domain.BlockLower[a] == s.domain.DomainLower[a]
		onBoundaryHi := s.domain.BlockUpper[a] == s.domain.DomainUpper[a]
		switch {
		case idx[a] == 0 && onBoundaryLo && s.domain.Periodic[a]:
			p.Pos[a] += extent
		case idx[a] == 3 && onBoundaryHi && s.domain.Periodic[a]:
			p.Pos[a] -= extent
		}
	}
	return p
}

// Bins returns the allocated neighbor bags, one per neighbor, for the
// caller (coordinator) to hand off to transport — empty bags still produce
// an entry so an empty heartbeat can be sent.
func (s *Sorter) Bins() []NeighborBin { return s.bins }
