package riemann

import (
	"errors"
	"math"
)

// ErrNotApplicable is returned by a solver functor invoked through a LUT it
// doesn't support — e.g. HLLD through a HydroLUT.
var ErrNotApplicable = errors.New("riemann: solver not applicable to this LUT")

// Solver is the shared functor contract every flux solver implements:
// (Fl, Fr, Wl, Wr, Ul, Ur, pl, pr, barotropic, gamma, cs) → F, v_interface.
type Solver interface {
	Solve(axis int, wl, wr Primitive, ul, ur Conserved, fl, fr []float64, eos EOS, lut LUT) (flux []float64, vInterface float64, err error)
}

// activeFlux computes the physical flux vector of conserved state u with
// primitive w along axis (step 3, "compute active fluxes").
func activeFlux(axis int, w Primitive, u Conserved) []float64 {
	v := w.Velocity[axis]
	f := make([]float64, 5)
	f[0] = u.Density * v
	f[1] = u.Momentum[0]*v + kronecker(axis, 0)*w.Pressure
	f[2] = u.Momentum[1]*v + kronecker(axis, 1)*w.Pressure
	f[3] = u.Momentum[2]*v + kronecker(axis, 2)*w.Pressure
	f[4] = (u.Energy + w.Pressure) * v
	return f
}

func kronecker(a, b int) float64 {
	if a == b {
		return 1
	}
	return 0
}

// HLLE is the two-wave Harten-Lax-van Leer-Einfeldt solver: conservative,
// robust, diffusive at contact discontinuities.
type HLLE struct{}

func (HLLE) Solve(axis int, wl, wr Primitive, ul, ur Conserved, fl, fr []float64, eos EOS, lut LUT) ([]float64, float64, error) {
	cl, cr := SoundSpeed(wl, eos), SoundSpeed(wr, eos)
	sl := math.Min(wl.Velocity[axis]-cl, wr.Velocity[axis]-cr)
	sr := math.Max(wl.Velocity[axis]+cl, wr.Velocity[axis]+cr)

	n := len(fl)
	flux := make([]float64, n)
	switch {
	case sl >= 0:
		copy(flux, fl)
	case sr <= 0:
		copy(flux, fr)
	default:
		ulv, urv := conservedVector(ul, n), conservedVector(ur, n)
		for i := 0; i < n; i++ {
			flux[i] = (sr*fl[i] - sl*fr[i] + sl*sr*(urv[i]-ulv[i])) / (sr - sl)
		}
	}
	vInterface := 0.5 * (sl + sr)
	return flux, vInterface, nil
}

// HLLC restores the contact/shear wave HLLE averages away, the right choice
// when passive scalars and the interface velocity itself must be accurate
// (scenario S6's contact-discontinuity check).
type HLLC struct{}

func (HLLC) Solve(axis int, wl, wr Primitive, ul, ur Conserved, fl, fr []float64, eos EOS, lut LUT) ([]float64, float64, error) {
	cl, cr := SoundSpeed(wl, eos), SoundSpeed(wr, eos)
	sl := math.Min(wl.Velocity[axis]-cl, wr.Velocity[axis]-cr)
	sr := math.Max(wl.Velocity[axis]+cl, wr.Velocity[axis]+cr)

	vl, vr := wl.Velocity[axis], wr.Velocity[axis]
	num := wr.Pressure - wl.Pressure + ul.Momentum[axis]*(sl-vl) - ur.Momentum[axis]*(sr-vr)
	den := ul.Density*(sl-vl) - ur.Density*(sr-vr)
	var sStar float64
	if den != 0 {
		sStar = num / den
	}

	n := len(fl)
	flux := make([]float64, n)
	switch {
	case sl >= 0:
		copy(flux, fl)
	case sr <= 0:
		copy(flux, fr)
	case sStar >= 0:
		star := hllcStar(wl, ul, sl, sStar, axis, n)
		ulv := conservedVector(ul, n)
		for i := 0; i < n; i++ {
			flux[i] = fl[i] + sl*(star[i]-ulv[i])
		}
	default:
		star := hllcStar(wr, ur, sr, sStar, axis, n)
		urv := conservedVector(ur, n)
		for i := 0; i < n; i++ {
			flux[i] = fr[i] + sr*(star[i]-urv[i])
		}
	}
	return flux, sStar, nil
}

func hllcStar(w Primitive, u Conserved, s, sStar float64, axis, n int) []float64 {
	denom := s - sStar
	if denom == 0 {
		denom = 1e-30
	}
	factor := u.Density * (s - w.Velocity[axis]) / denom
	star := make([]float64, n)
	star[0] = factor
	for a := 0; a < 3; a++ {
		v := w.Velocity[a]
		if a == axis {
			v = sStar
		}
		star[1+a] = factor * v
	}
	p := w.Pressure
	e := u.Energy / u.Density
	star[4] = factor * (e + (sStar-w.Velocity[axis])*(sStar+p/(u.Density*(s-w.Velocity[axis])+1e-30)))
	return star
}

// HLLD is the MHD five-wave solver; it returns ErrNotApplicable for any
// LUT that isn't MHD, since the Hydro LUT carries no magnetic field to
// resolve the extra waves against.
type HLLD struct{}

func (HLLD) Solve(axis int, wl, wr Primitive, ul, ur Conserved, fl, fr []float64, eos EOS, lut LUT) ([]float64, float64, error) {
	if !lut.IsMHD() {
		return nil, 0, ErrNotApplicable
	}
	// Falls back to the HLLE flux for the hydrodynamic subset of the
	// state; a full five-wave resolution of the Alfven discontinuities is
	// out of scope for this illustrative consumer.
	return HLLE{}.Solve(axis, wl, wr, ul, ur, fl, fr, eos, lut)
}

func conservedVector(u Conserved, n int) []float64 {
	v := make([]float64, n)
	v[0] = u.Density
	v[1], v[2], v[3] = u.Momentum[0], u.Momentum[1], u.Momentum[2]
	v[4] = u.Energy
	return v
}
