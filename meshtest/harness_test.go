// Package meshtest is the end-to-end integration suite, mirroring aistore's
// ais/test package: a small in-process forest of blocks driven through a
// real coordinator.Coordinator over the in-memory transport substrate, not
// fakes of those packages.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package meshtest

import (
	"context"
	"fmt"
	"time"

	"github.com/cello-mesh/refresh/coordinator"
	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"
	"github.com/cello-mesh/refresh/transport"
)

// localPE is the single processing-element name every block in the harness
// is assigned to: the harness exercises the coordinator/transport wiring in
// one process, not real multi-PE placement.
const localPE = "local"

// forest is a Forest backed by an explicit leaf/internal set, built up by
// the harness as blocks are added or refined.
type forest struct {
	leaves   map[string]bool
	internal map[string]bool
}

func newForest() *forest {
	return &forest{leaves: map[string]bool{}, internal: map[string]bool{}}
}

func (f *forest) addLeaf(idx mesh.BlockIndex)     { f.leaves[idx.Key()] = true }
func (f *forest) addInternal(idx mesh.BlockIndex) { f.internal[idx.Key()] = true; delete(f.leaves, idx.Key()) }

func (f *forest) Exists(idx mesh.BlockIndex) bool { return f.leaves[idx.Key()] || f.internal[idx.Key()] }
func (f *forest) IsLeaf(idx mesh.BlockIndex) bool { return f.leaves[idx.Key()] }
func (f *forest) WrapTree(idx mesh.BlockIndex, overflow [3]bool) (mesh.BlockIndex, bool) {
	// Single-tree domains wrap back onto tree 0 at the same level: the
	// harness only exercises one tree.
	return idx, true
}

// harness wires one coordinator.Coordinator over a real in-memory transport
// substrate and a set of in-process mesh.Block values.
type harness struct {
	registry *refresh.Registry
	forest   *forest
	dir      *transport.Directory
	cache    *transport.LocationCache
	sub      *transport.Substrate
	coord    *coordinator.Coordinator
	blocks   map[string]*mesh.Block
	rank     int

	corrections *corrections
}

func newHarness(rank int, periodic mesh.Periodicity, minLevel int) *harness {
	dir, err := transport.NewDirectory(":memory:")
	if err != nil {
		panic(err)
	}
	cache, err := transport.NewLocationCache(dir, 256)
	if err != nil {
		panic(err)
	}
	sub := transport.NewSubstrate(cache, 256, nil)
	f := newForest()
	registry := refresh.NewRegistry()
	coord := coordinator.New(f, sub, registry, periodic, rank, minLevel)
	return &harness{
		registry: registry, forest: f, dir: dir, cache: cache, sub: sub,
		coord: coord, blocks: map[string]*mesh.Block{}, rank: rank,
		corrections: newCorrections(),
	}
}

// addBlock registers a leaf block at idx with the coordinator, forest and
// directory (all blocks live on localPE).
func (h *harness) addBlock(idx mesh.BlockIndex, interior [3]int, ghost int) *mesh.Block {
	b := mesh.NewBlock(idx, interior, ghost)
	h.blocks[idx.Key()] = b
	h.forest.addLeaf(idx)
	h.coord.AddBlock(b)
	if err := h.dir.Assign(idx.Key(), localPE); err != nil {
		panic(err)
	}
	return b
}

// addRefinedSubtree marks idx as an internal (non-leaf) node — never itself
// registered with the coordinator — and adds its 8 children as ordinary
// leaf blocks, the harness's way of modeling a refined region without ever
// needing to retire a block the coordinator already tracks.
func (h *harness) addRefinedSubtree(idx mesh.BlockIndex, interior [3]int, ghost int) []*mesh.Block {
	h.forest.addInternal(idx)
	var children []*mesh.Block
	for _, ic3 := range [][3]int{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	} {
		children = append(children, h.addBlock(idx.Descend(ic3), interior, ghost))
	}
	return children
}

// run is runMany for a single refresh id.
func (h *harness) run(refreshID int) error { return h.runMany(refreshID) }

// runMany starts every listed refresh id on every registered block, drains
// each id's pre-start pending queue, then pumps the substrate until it goes
// idle — letting ids started together interleave through the same message
// loop rather than resolving one before the next begins.
func (h *harness) runMany(refreshIDs ...int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, id := range refreshIDs {
		if err := h.coord.Start(ctx, id); err != nil {
			return fmt.Errorf("meshtest: start %d: %w", id, err)
		}
		for _, b := range h.blocks {
			h.coord.Drain(b, id)
		}
	}
	return h.pump(ctx)
}

// pump drains every message currently queued for localPE, applying each to
// its destination block and draining that message's own refresh id, until
// no message arrives within a short idle window — the harness's stand-in
// for "every started refresh has quiesced".
func (h *harness) pump(ctx context.Context) error {
	for {
		dctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		key, msg, err := h.sub.Deliver(dctx, localPE)
		cancel()
		if err != nil {
			return nil // idle: nothing pending within the window
		}
		b, ok := h.blocks[key]
		if !ok {
			return fmt.Errorf("meshtest: message for unknown block %s", key)
		}
		apply := h.applyFunc(b, msg)
		if err := h.coord.Recv(key, msg, apply); err != nil {
			return err
		}
		h.coord.Drain(b, msg.RefreshID)
	}
}

func (h *harness) allReady(refreshID int) bool {
	for _, b := range h.blocks {
		if b.Sync(refreshID).State != mesh.Ready {
			return false
		}
	}
	return true
}
