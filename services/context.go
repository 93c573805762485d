// Package services bundles the process-wide, read-only-after-init state: the
// domain hierarchy, the refresh descriptor registry, the particle
// descriptor, and simulation config, passed by explicit reference rather
// than reached for as a hidden global.
package services

import "github.com/cello-mesh/refresh/refresh"

// Hierarchy is the domain-geometry collaborator.
type Hierarchy struct {
	Lower, Upper [3]float64
	Periodic     [3]bool
	MinLevel     int
	Rank         int
}

// ParticleDescrEntry mirrors mesh.ParticleType at the services layer so
// schema-loading code doesn't need to import mesh for this one shape.
type ParticleDescrEntry struct {
	Name   string
	Attrs  []string
	Stride int
}

// Context is the single handle every entry method receives: Hierarchy,
// the refresh registry, particle schema, and config, constructed once in
// cmd/meshd and threaded through explicitly.
type Context struct {
	Hierarchy Hierarchy
	Refreshes *refresh.Registry
	Particles []ParticleDescrEntry
	Config    *Config
}

func NewContext(h Hierarchy, particles []ParticleDescrEntry, cfg *Config) *Context {
	return &Context{
		Hierarchy: h,
		Refreshes: refresh.NewRegistry(),
		Particles: particles,
		Config:    cfg,
	}
}
