package meshtest

import (
	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"
)

// corrections accumulates flux-correction results per block/face/field,
// since mesh.Block has no conserved-state buffer of its own for the
// harness to correct — the real hydrodynamic state lives in a collaborator
// outside this module's scope.
type corrections struct {
	byBlock map[string]map[string][]float64 // blockKey -> "axis:hi:field" -> corr
}

func newCorrections() *corrections {
	return &corrections{byBlock: map[string]map[string][]float64{}}
}

func (c *corrections) record(blockKey, faceKey string, corr []float64) {
	m, ok := c.byBlock[blockKey]
	if !ok {
		m = map[string][]float64{}
		c.byBlock[blockKey] = m
	}
	m[faceKey] = corr
}

func (c *corrections) get(blockKey, faceKey string) ([]float64, bool) {
	m, ok := c.byBlock[blockKey]
	if !ok {
		return nil, false
	}
	v, ok := m[faceKey]
	return v, ok
}

// applyFuncWith builds the deferred-apply closure coordinator.Recv requires: it
// unpacks msg's payload into dest's own state, the way a real refresh
// consumer (field store, particle bag, flux register) would on delivery.
func (h *harness) applyFuncWith(dest *mesh.Block, msg refresh.Msg, corr *corrections) func() {
	switch msg.Kind {
	case refresh.KindField:
		return func() { applyField(dest, msg.Field) }
	case refresh.KindParticle:
		return func() { applyParticle(dest, msg.Particle) }
	case refresh.KindFlux:
		return func() { applyFlux(dest, msg.Flux, corr) }
	default:
		return func() {} // heartbeat: nothing to apply, only the quorum count matters
	}
}

func applyField(dest *mesh.Block, p *refresh.FieldPayload) {
	for _, e := range p.Fields {
		f, ok := dest.Fields[e.FieldID]
		if !ok {
			f = dest.AddField(e.FieldID)
		}
		mesh.Unpack(f, mesh.Slab{FieldName: e.FieldID, Lo: e.Lo, Hi: e.Hi, Dims: e.Dims, Data: e.Data})
	}
}

func applyParticle(dest *mesh.Block, p *refresh.ParticlePayload) {
	for _, batch := range p.Types {
		bag, ok := dest.Particles[batch.TypeID]
		if !ok {
			bag = &mesh.Bag{Type: batch.TypeID}
			dest.Particles[batch.TypeID] = bag
		}
		for _, particle := range batch.Particles {
			bag.Append(particle)
		}
	}
}

// applyFlux records the conservative correction against dest's own recorded
// boundary flux for the same field. packFlux only ever sends a fine→coarse
// message and coarsens on the sender side before shipping it (spec.md
// §4.E), so the payload arriving here is already at dest's own resolution.
func applyFlux(dest *mesh.Block, p *refresh.FluxPayload, corr *corrections) {
	// The sender names the face from its own side (e.g. its +x face); the
	// receiver's matching boundary is the opposite side of the same
	// physical interface (its -x face), so the axis carries over but Hi
	// flips.
	face := mesh.FluxFace{Axis: int(p.Axis), Hi: !p.Hi}
	for _, e := range p.Fields {
		coarsened := &mesh.FluxSlab{Field: e.FieldID, Dims: e.Dims, Data: e.Data}
		own, ok := dest.Flux.Get(face, e.FieldID)
		if !ok {
			continue
		}
		out := make([]float64, len(own.Data))
		mesh.ApplyCorrection(own, coarsened, out)
		corr.record(dest.Index.Key(), faceKey(face, e.FieldID), out)
	}
}

func faceKey(f mesh.FluxFace, field string) string {
	axis := "xyz"[f.Axis : f.Axis+1]
	side := "lo"
	if f.Hi {
		side = "hi"
	}
	return axis + side + ":" + field
}

// applyFunc is the harness-wide entry point used by pump; it threads the
// harness's own corrections sink into the per-message closure.
func (h *harness) applyFunc(b *mesh.Block, msg refresh.Msg) func() {
	return h.applyFuncWith(b, msg, h.corrections)
}
