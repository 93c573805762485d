package riemann

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Primitive is the reconstructed state on one side of a cell interface.
type Primitive struct {
	Density  float64
	Velocity [3]float64
	Pressure float64
	B        [3]float64 // magnetic field; zero for pure hydro
}

// Conserved is the same state in conservative variables.
type Conserved struct {
	Density  float64
	Momentum [3]float64
	Energy   float64
	B        [3]float64
}

// ToConserved converts a primitive state using eos for the internal-energy
// closure.
func ToConserved(p Primitive, eos EOS) Conserved {
	mom := [3]float64{p.Density * p.Velocity[0], p.Density * p.Velocity[1], p.Density * p.Velocity[2]}
	ke := 0.5 * p.Density * floats.Dot(p.Velocity[:], p.Velocity[:])
	eint := eos.EintFromPrimitive(p.Density, p.Pressure)
	magEnergy := 0.5 * floats.Dot(p.B[:], p.B[:])
	return Conserved{
		Density:  p.Density,
		Momentum: mom,
		Energy:   p.Density*eint + ke + magEnergy,
		B:        p.B,
	}
}

// SoundSpeed returns the adiabatic sound speed for p under eos, or the
// fixed isothermal speed when eos is barotropic.
func SoundSpeed(p Primitive, eos EOS) float64 {
	if eos.IsBarotropic() {
		return eos.IsothermalSoundSpeed()
	}
	if p.Density <= 0 {
		return 0
	}
	return math.Sqrt(eos.Gamma() * p.Pressure / p.Density)
}
