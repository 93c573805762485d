// field.go implements packing/unpacking a rectangular slab of named
// fields, applying restriction (fine→coarse) or prolongation (coarse→fine)
// depending on the relative level of sender and receiver.
package mesh

import "github.com/cello-mesh/refresh/cmn/debug"

// RefreshOp selects which operator a field face exchange applies.
type RefreshOp int

const (
	RefreshSame   RefreshOp = iota
	RefreshCoarse           // sender finer than receiver: restrict
	RefreshFine             // sender coarser than receiver: prolong
)

// ProlongKind selects the prolongation stencil.
type ProlongKind int

const (
	ProlongLinear ProlongKind = iota
	ProlongQuadratic
	ProlongEnzo
)

// Field is one named cell-centered array, dense over (mx,my,mz) =
// (nx+2g, ny+2g, nz+2g).
type Field struct {
	Name  string
	Shape [3]int // mx,my,mz including ghosts
	Ghost int
	Data  []float64 // row-major, x fastest
}

func NewField(name string, interior [3]int, ghost int) *Field {
	shape := [3]int{interior[0] + 2*ghost, interior[1] + 2*ghost, interior[2] + 2*ghost}
	return &Field{Name: name, Shape: shape, Ghost: ghost, Data: make([]float64, shape[0]*shape[1]*shape[2])}
}

func (f *Field) index(i, j, k int) int {
	return i + f.Shape[0]*(j+f.Shape[1]*k)
}

func (f *Field) At(i, j, k int) float64 { return f.Data[f.index(i, j, k)] }
func (f *Field) Set(i, j, k int, v float64) {
	f.Data[f.index(i, j, k)] = v
}

// Slab is a packed rectangular region of one field, the unit transport
// carries as a field-face payload.
type Slab struct {
	FieldName string
	Lo, Hi    [3]int // half-open region, in the sender's local coordinates
	Dims      [3]int
	Data      []float64
}

// PackSame copies the slab [lo,hi) out of f verbatim — the refresh_same
// operator for an equal-level neighbor.
func PackSame(f *Field, lo, hi [3]int) Slab {
	dims := [3]int{hi[0] - lo[0], hi[1] - lo[1], hi[2] - lo[2]}
	debug.Assert(dims[0] > 0 && dims[1] > 0 && dims[2] > 0, "mesh: PackSame empty region")
	data := make([]float64, dims[0]*dims[1]*dims[2])
	n := 0
	for k := lo[2]; k < hi[2]; k++ {
		for j := lo[1]; j < hi[1]; j++ {
			for i := lo[0]; i < hi[0]; i++ {
				data[n] = f.At(i, j, k)
				n++
			}
		}
	}
	return Slab{FieldName: f.Name, Lo: lo, Hi: hi, Dims: dims, Data: data}
}

// PackCoarse restricts a fine slab down by the refinement ratio (2): each
// output cell is the average of the 2^rank fine cells beneath it. Used when
// the sender is finer than the receiver.
func PackCoarse(f *Field, lo, hi [3]int, rank int) Slab {
	ratio := 2
	outLo := [3]int{divFloor(lo[0], ratio), divFloor(lo[1], ratio), divFloor(lo[2], ratio)}
	outHi := [3]int{divFloor(hi[0]-1, ratio) + 1, divFloor(hi[1]-1, ratio) + 1, divFloor(hi[2]-1, ratio) + 1}
	dims := [3]int{outHi[0] - outLo[0], outHi[1] - outLo[1], outHi[2] - outLo[2]}
	data := make([]float64, dims[0]*dims[1]*dims[2])

	nFine := 1
	for a := 0; a < rank; a++ {
		nFine *= ratio
	}
	n := 0
	for k := outLo[2]; k < outHi[2]; k++ {
		for j := outLo[1]; j < outHi[1]; j++ {
			for i := outLo[0]; i < outHi[0]; i++ {
				var sum float64
				for dz := 0; dz < pick(rank, 2, ratio); dz++ {
					for dy := 0; dy < pick(rank, 1, ratio); dy++ {
						for dx := 0; dx < ratio; dx++ {
							sum += f.At(i*ratio+dx, j*ratio+dy, k*ratio+dz)
						}
					}
				}
				data[n] = sum / float64(nFine)
				n++
			}
		}
	}
	return Slab{FieldName: f.Name, Lo: outLo, Hi: outHi, Dims: dims, Data: data}
}

// pick returns size if axis < rank, else 1 — collapses averaging along axes
// the problem rank doesn't use.
func pick(rank, axis, size int) int {
	if axis < rank {
		return size
	}
	return 1
}

func divFloor(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// PackFine prolongs a coarse slab up by the refinement ratio using the
// configured stencil, reading padding extra cells beyond the nominal face
// region. Used when the sender is coarser than the receiver.
func PackFine(f *Field, lo, hi [3]int, padding int, kind ProlongKind, rank int) Slab {
	paddedLo, paddedHi := lo, hi
	for a := 0; a < rank; a++ {
		paddedLo[a] -= padding
		paddedHi[a] += padding
	}
	coarse := PackSame(f, paddedLo, paddedHi)

	ratio := 2
	fineDims := [3]int{}
	for a := 0; a < 3; a++ {
		fineDims[a] = pick(rank, a, ratio) * coarse.Dims[a]
		if a >= rank {
			fineDims[a] = coarse.Dims[a]
		}
	}
	data := make([]float64, fineDims[0]*fineDims[1]*fineDims[2])
	n := 0
	for k := 0; k < fineDims[2]; k++ {
		for j := 0; j < fineDims[1]; j++ {
			for i := 0; i < fineDims[0]; i++ {
				data[n] = prolongSample(&coarse, i, j, k, rank, kind)
				n++
			}
		}
	}
	fineLo := [3]int{paddedLo[0] * pick(rank, 0, ratio), paddedLo[1] * pick(rank, 1, ratio), paddedLo[2] * pick(rank, 2, ratio)}
	fineHi := [3]int{fineLo[0] + fineDims[0], fineLo[1] + fineDims[1], fineLo[2] + fineDims[2]}
	return Slab{FieldName: f.Name, Lo: fineLo, Hi: fineHi, Dims: fineDims, Data: data}
}

// prolongSample evaluates the configured stencil at fine-local (i,j,k).
// ProlongLinear returns the covering coarse cell's value unchanged
// (piecewise-constant injection); it does not interpolate between coarse
// cells. The quadratic and enzo kinds share one stencil: the covering value
// plus a quarter of the one-sided difference toward the nearer coarse
// neighbor on each refined axis.
func prolongSample(coarse *Slab, i, j, k, rank int, kind ProlongKind) float64 {
	ci, fi := i/2, i%2
	cj, fj := 0, 0
	ck, fk := 0, 0
	if rank > 1 {
		cj, fj = j/2, j%2
	}
	if rank > 2 {
		ck, fk = k/2, k%2
	}
	idx := func(a, b, c int) float64 {
		a = clampIdx(a, coarse.Dims[0])
		b = clampIdx(b, coarse.Dims[1])
		c = clampIdx(c, coarse.Dims[2])
		return coarse.Data[a+coarse.Dims[0]*(b+coarse.Dims[1]*c)]
	}
	center := idx(ci, cj, ck)
	if kind == ProlongLinear || rank == 0 {
		return center
	}
	// quadratic / enzo: blend with the nearest-neighbor slope along each
	// refined axis, weighted by which half-cell (fi/fj/fk) we're in.
	v := center
	if fi == 0 {
		v += 0.25 * (center - idx(ci-1, cj, ck))
	} else {
		v += 0.25 * (idx(ci+1, cj, ck) - center)
	}
	if rank > 1 {
		if fj == 0 {
			v += 0.25 * (center - idx(ci, cj-1, ck))
		} else {
			v += 0.25 * (idx(ci, cj+1, ck) - center)
		}
	}
	if rank > 2 {
		if fk == 0 {
			v += 0.25 * (center - idx(ci, cj, ck-1))
		} else {
			v += 0.25 * (idx(ci, cj, ck+1) - center)
		}
	}
	return v
}

func clampIdx(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Unpack writes a received slab's values verbatim into f at the slab's own
// Lo..Hi coordinates, skipping cells outside f. It applies no operator of
// its own: any restriction or prolongation was done by the pack side.
func Unpack(f *Field, s Slab) {
	n := 0
	for k := s.Lo[2]; k < s.Hi[2]; k++ {
		for j := s.Lo[1]; j < s.Hi[1]; j++ {
			for i := s.Lo[0]; i < s.Hi[0]; i++ {
				if inBounds(f, i, j, k) {
					f.Set(i, j, k, s.Data[n])
				}
				n++
			}
		}
	}
}

func inBounds(f *Field, i, j, k int) bool {
	return i >= 0 && i < f.Shape[0] && j >= 0 && j < f.Shape[1] && k >= 0 && k < f.Shape[2]
}
