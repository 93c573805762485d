// Package refresh implements the immutable refresh descriptor, its
// builder, the process-wide registry that assigns and validates refresh
// ids, and the wire message the refresh protocol exchanges.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package refresh

import "github.com/cello-mesh/refresh/mesh"

// NeighborType mirrors mesh.NeighborType at the descriptor level so callers
// configuring a refresh don't need to import mesh directly for this one
// enum.
type NeighborType = mesh.NeighborType

const (
	NeighborLeaf  = mesh.NeighborLeaf
	NeighborTree  = mesh.NeighborTree
	NeighborLevel = mesh.NeighborLevel
)

// SyncType selects the exit synchronization a refresh's continuation is
// dispatched through.
type SyncType int

const (
	SyncNone SyncType = iota
	SyncBarrier
	SyncQuiescence
	SyncNeighbor
)

// Callback identifies the continuation a completed refresh invokes — a
// stable token, not a function value, since descriptors are shared
// read-only process-wide state and the actual dispatch happens on whichever
// block the completion occurs on.
type Callback string

// Descriptor is the immutable refresh configuration. Construct one with
// NewBuilder and Build(); Descriptor itself exposes no mutators.
type Descriptor struct {
	id            int
	fieldSet      []string
	allFields     bool
	particleSet   []string
	allParticles  bool
	includeFluxes bool
	ghostDepth    int
	neighborType  NeighborType
	minFaceRank   int
	syncType      SyncType
	rootLevel     int
	callback      Callback
}

func (d *Descriptor) ID() int                    { return d.id }
func (d *Descriptor) Fields() ([]string, bool)    { return d.fieldSet, d.allFields }
func (d *Descriptor) Particles() ([]string, bool) { return d.particleSet, d.allParticles }
func (d *Descriptor) IncludeFluxes() bool         { return d.includeFluxes }
func (d *Descriptor) GhostDepth() int             { return d.ghostDepth }
func (d *Descriptor) NeighborType() NeighborType  { return d.neighborType }
func (d *Descriptor) MinFaceRank() int            { return d.minFaceRank }
func (d *Descriptor) SyncType() SyncType          { return d.syncType }
func (d *Descriptor) RootLevel() int              { return d.rootLevel }
func (d *Descriptor) Callback() Callback          { return d.callback }

// Builder accumulates a Descriptor's configuration before Build() freezes
// it, mirroring an add_field/add_all_fields/... style configuration API.
type Builder struct {
	d Descriptor
}

func NewBuilder() *Builder {
	return &Builder{d: Descriptor{minFaceRank: 2, neighborType: NeighborLeaf}}
}

func (b *Builder) AddField(name string) *Builder {
	b.d.fieldSet = append(b.d.fieldSet, name)
	return b
}

func (b *Builder) AddAllFields() *Builder {
	b.d.allFields = true
	return b
}

func (b *Builder) AddParticle(typ string) *Builder {
	b.d.particleSet = append(b.d.particleSet, typ)
	return b
}

func (b *Builder) AddAllParticles() *Builder {
	b.d.allParticles = true
	return b
}

func (b *Builder) IncludeFluxes() *Builder {
	b.d.includeFluxes = true
	return b
}

func (b *Builder) SetGhostDepth(g int) *Builder {
	b.d.ghostDepth = g
	return b
}

func (b *Builder) SetNeighborType(t NeighborType) *Builder {
	b.d.neighborType = t
	return b
}

func (b *Builder) SetMinFaceRank(r int) *Builder {
	b.d.minFaceRank = r
	return b
}

func (b *Builder) SetSyncType(s SyncType) *Builder {
	b.d.syncType = s
	return b
}

func (b *Builder) SetRootLevel(l int) *Builder {
	b.d.rootLevel = l
	return b
}

func (b *Builder) SetCallback(k Callback) *Builder {
	b.d.callback = k
	return b
}

// Build freezes the accumulated configuration into an immutable Descriptor.
// The id is assigned by Registry.Register, not here — a Descriptor built
// but never registered has id -1.
func (b *Builder) Build() *Descriptor {
	d := b.d
	d.id = -1
	return &d
}
