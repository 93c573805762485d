package meshtest

import (
	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("same-level field refresh", func() {
	It("fills every block's ghost cells and returns every Sync to INACTIVE after Reset", func() {
		h := newHarness(3, mesh.Periodicity{true, true, true}, 0)
		const marker = -999.0

		var blocks []*mesh.Block
		before := map[string][32]byte{}
		for _, ic3 := range [][3]int{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
		} {
			b := h.addBlock(mesh.NewRoot(0).Descend(ic3), [3]int{4, 4, 4}, 1)
			f := b.AddField("rho")
			fill(f, marker)
			fillInterior(f, float64(ic3[0]+2*ic3[1]+4*ic3[2]+1))
			before[b.Index.Key()] = fieldChecksum(f)
			blocks = append(blocks, b)
		}

		d := refresh.NewBuilder().AddField("rho").SetGhostDepth(1).Build()
		id := h.registry.Register(d)

		Expect(h.run(id)).To(Succeed())
		Expect(h.allReady(id)).To(BeTrue())

		for _, b := range blocks {
			sync := b.Sync(id)
			Expect(sync.State).To(Equal(mesh.Ready))
			Expect(b.PendingLen(id)).To(Equal(0))

			f := b.Fields["rho"]
			Expect(allEqual(f.Data, marker)).To(BeFalse(), "ghost exchange should have overwritten at least one marker cell")
			Expect(fieldChecksum(f)).NotTo(Equal(before[b.Index.Key()]), "post-refresh field bytes must differ from the pristine marker snapshot")

			h.coord.Reset(b, id)
			Expect(b.Sync(id).State).To(Equal(mesh.Inactive))
		}
	})
})

func fill(f *mesh.Field, v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

func allEqual(data []float64, v float64) bool {
	for _, x := range data {
		if x != v {
			return false
		}
	}
	return true
}

func fillInterior(f *mesh.Field, v float64) {
	g := f.Ghost
	for k := g; k < f.Shape[2]-g; k++ {
		for j := g; j < f.Shape[1]-g; j++ {
			for i := g; i < f.Shape[0]-g; i++ {
				f.Set(i, j, k, v)
			}
		}
	}
}
