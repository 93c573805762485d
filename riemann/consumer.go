package riemann

import "fmt"

// InterfaceState is one reconstructed cell-interface's left/right primitive
// pair, keyed by the interior cell index it borders.
type InterfaceState struct {
	I, J, K   int
	Left      Primitive
	Right     Primitive
	LeftEint  float64
	RightEint float64
}

// Result is the per-interface flux output: the active flux vector, the
// resolved interface velocity, and any passive-scalar or dual-energy
// upwind contributions.
type Result struct {
	I, J, K     int
	Flux        map[string]float64
	VInterface  float64
	PassiveFlux map[string]float64
	EintFlux    float64
}

// PassiveScalar names a passively advected scalar and its left/right
// concentration at the interface.
type PassiveScalar struct {
	Name        string
	Left, Right float64
}

// Run drives the flux loop over every non-stale interior interface: convert
// to conserved form, invoke solver, upwind passive scalars by the sign of
// the density flux, and optionally route dual-energy internal energy
// through the same upwind rule.
func Run(
	states []InterfaceState,
	axis int,
	lut LUT,
	eos EOS,
	solver Solver,
	staleDepth int,
	dims [3]int,
	passives func(i, j, k int) []PassiveScalar,
	wantVInterface bool,
	dualEnergy bool,
) ([]Result, error) {
	results := make([]Result, 0, len(states))
	for _, st := range states {
		if stale(st.I, st.J, st.K, dims, staleDepth) {
			continue
		}
		ul := ToConserved(st.Left, eos)
		ur := ToConserved(st.Right, eos)
		fl := activeFlux(axis, st.Left, ul)
		fr := activeFlux(axis, st.Right, ur)

		flux, vi, err := solver.Solve(axis, st.Left, st.Right, ul, ur, fl, fr, eos, lut)
		if err != nil {
			return nil, fmt.Errorf("riemann: interface (%d,%d,%d): %w", st.I, st.J, st.K, err)
		}

		r := Result{I: st.I, J: st.J, K: st.K, Flux: map[string]float64{}}
		fields := lut.Fields()
		for idx, name := range fields {
			if idx < len(flux) {
				r.Flux[name] = flux[idx]
			}
		}
		if wantVInterface {
			r.VInterface = vi
		}

		fRho := r.Flux["density"]
		if passives != nil {
			r.PassiveFlux = map[string]float64{}
			for _, ps := range passives(st.I, st.J, st.K) {
				upwind := ps.Right
				if fRho >= 0 {
					upwind = ps.Left
				}
				r.PassiveFlux[ps.Name] = upwind * fRho
			}
		}
		if dualEnergy {
			eintUpwind := st.RightEint
			if fRho >= 0 {
				eintUpwind = st.LeftEint
			}
			r.EintFlux = eintUpwind * fRho
		}
		results = append(results, r)
	}
	return results, nil
}

func stale(i, j, k int, dims [3]int, depth int) bool {
	return i < depth || j < depth || k < depth ||
		i >= dims[0]-depth || j >= dims[1]-depth || k >= dims[2]-depth
}
