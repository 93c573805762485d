// flux.go implements per-face, per-field flux registers and the
// conservative correction applied at level boundaries.
package mesh

// FluxFace names one of a block's six faces.
type FluxFace struct {
	Axis int // 0=x,1=y,2=z
	Hi   bool
}

// FluxSlab is a 2D slab of recorded fluxes for one field on one face.
type FluxSlab struct {
	Field string
	Dims  [2]int
	Data  []float64
}

func NewFluxSlab(field string, dims [2]int) *FluxSlab {
	return &FluxSlab{Field: field, Dims: dims, Data: make([]float64, dims[0]*dims[1])}
}

func (s *FluxSlab) At(i, j int) float64     { return s.Data[i+s.Dims[0]*j] }
func (s *FluxSlab) Set(i, j int, v float64) { s.Data[i+s.Dims[0]*j] = v }

// FluxRegister holds, per face and per conserved field, the slab recorded
// during the hydrodynamic update.
type FluxRegister struct {
	slabs map[FluxFace]map[string]*FluxSlab
}

func NewFluxRegister() *FluxRegister {
	return &FluxRegister{slabs: map[FluxFace]map[string]*FluxSlab{}}
}

func (r *FluxRegister) Record(face FluxFace, slab *FluxSlab) {
	m, ok := r.slabs[face]
	if !ok {
		m = map[string]*FluxSlab{}
		r.slabs[face] = m
	}
	m[slab.Field] = slab
}

func (r *FluxRegister) Get(face FluxFace, field string) (*FluxSlab, bool) {
	m, ok := r.slabs[face]
	if !ok {
		return nil, false
	}
	s, ok := m[field]
	return s, ok
}

// Fields lists the field names recorded for face, in no particular order.
func (r *FluxRegister) Fields(face FluxFace) []string {
	m := r.slabs[face]
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	return out
}

// Coarsen sums fine flux cells along the refinement ratio (2 per tangential
// axis) and divides by the ratio's area, the sender-side transform for a
// fine→coarse flux exchange.
func Coarsen(fine *FluxSlab) *FluxSlab {
	outDims := [2]int{(fine.Dims[0] + 1) / 2, (fine.Dims[1] + 1) / 2}
	out := NewFluxSlab(fine.Field, outDims)
	ratio := 2
	for j := 0; j < outDims[1]; j++ {
		for i := 0; i < outDims[0]; i++ {
			var sum float64
			var n int
			for dy := 0; dy < ratio; dy++ {
				for dx := 0; dx < ratio; dx++ {
					fi, fj := i*ratio+dx, j*ratio+dy
					if fi < fine.Dims[0] && fj < fine.Dims[1] {
						sum += fine.At(fi, fj)
						n++
					}
				}
			}
			out.Set(i, j, sum/float64(n))
		}
	}
	return out
}

// ApplyCorrection restores conservation on the coarse receiver: subtract its
// own boundary flux for the same face/field and add the coarsened remote
// flux, writing the correction into corr (the adjacent interior-cell
// correction buffer the caller adds into its conserved-variable state).
func ApplyCorrection(ownBoundary, coarsenedRemote *FluxSlab, corr []float64) {
	for i := range corr {
		corr[i] += coarsenedRemote.Data[i] - ownBoundary.Data[i]
	}
}
