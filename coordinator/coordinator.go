// Package coordinator drives the per-block, per-refresh state machine
// (Start, Recv, checkDone, Drain, Reset) that closes a refresh's quorum, fanning the
// enumerate+pack+send step across workers with an errgroup the way
// aistore's xact builders fan object-copy batches across goroutines.
package coordinator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cello-mesh/refresh/cmn/debug"
	"github.com/cello-mesh/refresh/cmn/errs"
	"github.com/cello-mesh/refresh/cmn/nlog"
	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"
)

// Sender is the narrow face of the transport substrate (H) this package
// depends on: hand it an encoded message and a destination block, forget
// about it. Reductions and caching live below this line, not here.
type Sender interface {
	Send(ctx context.Context, dest mesh.BlockIndex, msg refresh.Msg) error
}

// Forest supplies neighbor topology to mesh.Neighbors.
type Forest = mesh.Forest

// Coordinator owns the refresh state for every block assigned to one
// processing element.
type Coordinator struct {
	blocks   map[string]*mesh.Block
	forest   Forest
	sender   Sender
	registry *refresh.Registry
	periodic mesh.Periodicity
	rank     int
	minLevel int
}

func New(forest Forest, sender Sender, registry *refresh.Registry, periodic mesh.Periodicity, rank, minLevel int) *Coordinator {
	return &Coordinator{
		blocks:   map[string]*mesh.Block{},
		forest:   forest,
		sender:   sender,
		registry: registry,
		periodic: periodic,
		rank:     rank,
		minLevel: minLevel,
	}
}

func (c *Coordinator) AddBlock(b *mesh.Block) { c.blocks[b.Index.Key()] = b }

func (c *Coordinator) Block(key string) (*mesh.Block, bool) {
	b, ok := c.blocks[key]
	return b, ok
}

// Start begins refreshID on every block this coordinator owns, moving each
// block's Sync from INACTIVE to ACTIVE and computing the quorum (how many
// neighbor deliveries close it), then dispatching enumerate+pack+send
// concurrently.
func (c *Coordinator) Start(ctx context.Context, refreshID int) error {
	d := c.registry.Get(refreshID)
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range c.blocks {
		b := b
		g.Go(func() error { return c.startBlock(gctx, b, d) })
	}
	return g.Wait()
}

func (c *Coordinator) startBlock(ctx context.Context, b *mesh.Block, d *refresh.Descriptor) error {
	sync := b.Sync(d.ID())
	debug.Assert(sync.State == mesh.Inactive, "coordinator: start() on a non-inactive sync")

	neighbors := mesh.Neighbors(b.Index, c.forest, c.periodic, c.rank, d.MinFaceRank(), d.NeighborType(), c.minLevel, d.RootLevel())

	type outbound struct {
		dest mesh.BlockIndex
		msg  refresh.Msg
	}
	var sends []outbound
	for _, nb := range neighbors {
		for _, msg := range c.pack(b, nb, d) {
			sends = append(sends, outbound{dest: nb.Index, msg: msg})
		}
	}

	// count_field also carries one extra expected delivery per padded-
	// prolongation overlap found on the receive side (spec.md §4.G step 3;
	// DESIGN.md Open Question #1).
	extra := c.extraFieldFaceCount(b, d, neighbors)

	sync.Start(len(sends) + extra)
	if sync.Done() {
		sync.EnterReady()
		return nil
	}

	for _, s := range sends {
		if err := c.sender.Send(ctx, s.dest, s.msg); err != nil {
			return fmt.Errorf("coordinator: send to %s: %w", s.dest, err)
		}
	}
	return nil
}

// pack builds the outgoing messages for one neighbor: field, particle and
// flux categories are independent descriptor flags (spec.md §4.F/§4.G) and
// each contributes its own message when requested and applicable, so a
// combined descriptor ships (and counts) one message per category, not just
// the first that matches. An empty (heartbeat) message is sent only when
// the descriptor requests no category at all, so the recipient's quorum
// still closes on a pure-synchronization refresh.
func (c *Coordinator) pack(b *mesh.Block, nb mesh.NeighborInfo, d *refresh.Descriptor) []refresh.Msg {
	var msgs []refresh.Msg

	names, all := d.Fields()
	wantFields := all || len(names) > 0
	if wantFields {
		msgs = append(msgs, c.packFields(b, nb, d, names, all))
	}

	ptypes, pall := d.Particles()
	wantParticles := pall || len(ptypes) > 0
	if wantParticles {
		msgs = append(msgs, c.packParticles(b, nb, d, ptypes, pall))
	}

	if d.IncludeFluxes() {
		if msg, ok := c.packFlux(b, nb, d.ID()); ok {
			msgs = append(msgs, msg)
		}
	}

	if !wantFields && !wantParticles && !d.IncludeFluxes() {
		return []refresh.Msg{refresh.NewEmpty(d.ID())}
	}
	return msgs
}

// extraFieldFaceCount implements the receive-side half of spec.md §4.G step
// 3's padded-prolongation accounting (DESIGN.md Open Question #1): for each
// coarser neighbor that will prolong a field face to b, any of that
// neighbor's own neighbors whose own padded footprint overlaps b's padded
// receive region (grounded on control_new_refresh.cpp's
// refresh_extra_field_faces_, box_face/box_Bsbe/box_Bebr) contributes one
// more expected field delivery.
func (c *Coordinator) extraFieldFaceCount(b *mesh.Block, d *refresh.Descriptor, primary []mesh.NeighborInfo) int {
	names, all := d.Fields()
	if !all && len(names) == 0 {
		return 0
	}
	ownIC3, hasParent := b.Index.Child(b.Index.Level() - 1)
	if !hasParent {
		return 0 // a root-level block has no coarser parent to receive a prolongation from
	}
	ghost := [3]int{b.Ghost, b.Ghost, b.Ghost}

	seen := map[string]bool{b.Index.Key(): true}
	for _, nb := range primary {
		seen[nb.Index.Key()] = true
	}

	var count int
	for _, nb := range primary {
		if nb.FaceLevel >= b.Index.Level() {
			continue // only a coarser neighbor prolongs; same/finer need no extras
		}
		selfBox := mesh.NewBox(c.rank, b.Interior, ghost)
		selfBox.SetBlock(nb.FaceLevel-b.Index.Level(), nb.IF3, ownIC3)
		selfBox.SetPadding(d.GhostDepth())

		for _, extra := range mesh.Neighbors(nb.Index, c.forest, c.periodic, c.rank, d.MinFaceRank(), d.NeighborType(), c.minLevel, d.RootLevel()) {
			if seen[extra.Index.Key()] {
				continue
			}
			extraBox := mesh.NewBox(c.rank, b.Interior, ghost)
			extraBox.SetBlock(extra.FaceLevel-nb.FaceLevel, extra.IF3, extra.IC3)
			extraBox.SetPadding(d.GhostDepth())
			extraBox.ComputeRegion()
			extraBox.ComputeBlockStart()
			if selfBox.Overlaps(extraBox) {
				count++
			}
		}
	}
	return count
}

func (c *Coordinator) packFields(b *mesh.Block, nb mesh.NeighborInfo, d *refresh.Descriptor, names []string, all bool) refresh.Msg {
	var entries []refresh.FieldEntry
	for name, f := range b.Fields {
		if !all && !contains(names, name) {
			continue
		}
		op := refreshOpFor(b.Index.Level(), nb.FaceLevel)
		lo, hi := faceRegion(f, nb.IF3, d.GhostDepth())
		var slab mesh.Slab
		switch op {
		case mesh.RefreshCoarse:
			slab = mesh.PackCoarse(f, lo, hi, c.rank)
		case mesh.RefreshFine:
			slab = mesh.PackFine(f, lo, hi, d.GhostDepth(), mesh.ProlongLinear, c.rank)
		default:
			slab = mesh.PackSame(f, lo, hi)
			// Same level: the strip sits just across the shared face in the
			// receiver's frame, so shift it into the receiver's ghost cells.
			for a := 0; a < 3; a++ {
				shift := nb.IF3[a] * (f.Shape[a] - 2*f.Ghost)
				slab.Lo[a] -= shift
				slab.Hi[a] -= shift
			}
		}
		entries = append(entries, refresh.FieldEntry{
			FieldID: name, Lo: slab.Lo, Hi: slab.Hi, Dims: slab.Dims, Data: slab.Data,
		})
	}
	var if3, ic3 [3]int8
	for a := 0; a < 3; a++ {
		if3[a] = int8(nb.IF3[a])
		if nb.HasIC3 {
			ic3[a] = int8(nb.IC3[a])
		}
	}
	return refresh.NewField(d.ID(), &refresh.FieldPayload{
		IF3: if3, IC3: ic3, Op: refreshOpFor(b.Index.Level(), nb.FaceLevel), Fields: entries,
	})
}

func (c *Coordinator) packParticles(b *mesh.Block, nb mesh.NeighborInfo, d *refresh.Descriptor, types []string, all bool) refresh.Msg {
	var batches []refresh.ParticleTypeBatch
	for typ, bag := range b.Particles {
		if !all && !contains(types, typ) {
			continue
		}
		batches = append(batches, refresh.ParticleTypeBatch{TypeID: typ, Particles: bag.Items})
	}
	return refresh.NewParticle(d.ID(), &refresh.ParticlePayload{Types: batches})
}

// packFlux builds the flux message for one neighbor, or reports ok=false
// when no flux exchange is due: spec.md §4.E requires no message at all for
// a same-level neighbor, and none from the coarse side of a level boundary
// (the fine side always initiates the correction). Only the fine→coarse
// direction (this block finer than the neighbor) ships anything, and it
// coarsens its own slab before sending.
func (c *Coordinator) packFlux(b *mesh.Block, nb mesh.NeighborInfo, refreshID int) (refresh.Msg, bool) {
	if refreshOpFor(b.Index.Level(), nb.FaceLevel) != mesh.RefreshCoarse {
		return refresh.Msg{}, false
	}
	axis, hi := faceAxis(nb.IF3)
	face := mesh.FluxFace{Axis: axis, Hi: hi}
	var entries []refresh.FluxEntry
	for _, name := range b.Flux.Fields(face) {
		slab, ok := b.Flux.Get(face, name)
		if !ok {
			continue
		}
		coarse := mesh.Coarsen(slab)
		entries = append(entries, refresh.FluxEntry{FieldID: name, Dims: coarse.Dims, Data: coarse.Data})
	}
	return refresh.NewFlux(refreshID, &refresh.FluxPayload{Axis: int8(axis), Hi: hi, Fields: entries}), true
}

// Recv applies an inbound message to the destination block. While the
// block's Sync is ACTIVE, apply immediately; if it hasn't started locally
// yet (still INACTIVE, a late-bound delivery that arrived before Start()
// ran), buffer the message until Start() catches up.
func (c *Coordinator) Recv(dest string, msg refresh.Msg, apply func()) error {
	b, ok := c.blocks[dest]
	if !ok {
		return fmt.Errorf("coordinator: recv for unknown block %s", dest)
	}
	sync := b.Sync(msg.RefreshID)
	switch sync.State {
	case mesh.Inactive:
		b.Enqueue(msg.RefreshID, mesh.PendingMsg{RefreshID: msg.RefreshID, Apply: apply})
		return nil
	case mesh.Active:
		apply()
		sync.Advance()
		c.checkDone(b, msg.RefreshID)
		return nil
	case mesh.Ready:
		errs.Abort(errs.New(errs.PreconditionViolation, dest, msg.RefreshID,
			"recv() on a refresh already in READY: quorum overshoot"))
		return nil
	default:
		return nil
	}
}

// checkDone moves a block to READY once its Sync's Value reaches Stop; any
// messages buffered during start() for a later refresh id on this block are
// replayed separately via Drain.
func (c *Coordinator) checkDone(b *mesh.Block, refreshID int) {
	sync := b.Sync(refreshID)
	if !sync.QuorumReached() {
		return
	}
	sync.EnterReady()
	nlog.Infof("coordinator: block %s refresh %d READY", b.Index, refreshID)
}

// Drain replays buffered messages queued for refreshID before Start() ran,
// called once Start() has installed the Sync's quorum.
func (c *Coordinator) Drain(b *mesh.Block, refreshID int) {
	for _, pm := range b.DrainPending(refreshID) {
		pm.Apply()
		sync := b.Sync(refreshID)
		sync.Advance()
		c.checkDone(b, refreshID)
	}
}

// Reset returns refreshID's Sync to INACTIVE on b, the closing transition
// once a dependent continuation has consumed the READY state.
func (c *Coordinator) Reset(b *mesh.Block, refreshID int) {
	debug.Assert(b.PendingLen(refreshID) == 0, "coordinator: reset with nonempty pending queue")
	b.Sync(refreshID).Reset()
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func refreshOpFor(selfLevel, neighborLevel int) mesh.RefreshOp {
	switch {
	case neighborLevel < selfLevel:
		return mesh.RefreshCoarse
	case neighborLevel > selfLevel:
		return mesh.RefreshFine
	default:
		return mesh.RefreshSame
	}
}

// faceRegion returns the sender's interior strip, ghost cells deep, next to
// face if3 (the full allocated extent on tangential axes).
func faceRegion(f *mesh.Field, if3 [3]int, ghost int) (lo, hi [3]int) {
	for a := 0; a < 3; a++ {
		switch if3[a] {
		case -1:
			lo[a], hi[a] = f.Ghost, f.Ghost+ghost
		case 1:
			lo[a], hi[a] = f.Shape[a]-f.Ghost-ghost, f.Shape[a]-f.Ghost
		default:
			lo[a], hi[a] = 0, f.Shape[a]
		}
	}
	return lo, hi
}

func faceAxis(if3 [3]int) (axis int, hi bool) {
	for a := 0; a < 3; a++ {
		if if3[a] != 0 {
			return a, if3[a] > 0
		}
	}
	return 0, false
}
