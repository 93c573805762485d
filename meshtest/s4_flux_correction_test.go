package meshtest

import (
	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("conservative flux correction at a level boundary", func() {
	It("corrects the coarse side by sum(F_fine)/4 minus its own recorded boundary flux", func() {
		h := newHarness(3, mesh.Periodicity{true, true, true}, 0)
		root := mesh.NewRoot(0)

		// Octant {0,0,0} is refined into 8 level-2 children so a real
		// coarse/fine level boundary exists; every other octant, including
		// {1,0,0}, stays a level-1 leaf.
		var a, b *mesh.Block
		for _, ic3 := range [][3]int{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
		} {
			if ic3 == [3]int{0, 0, 0} {
				for _, child := range h.addRefinedSubtree(root.Descend(ic3), [3]int{4, 4, 4}, 1) {
					// The child selected as {1,0,0} within its refined
					// parent sits on the parent's +x face, directly
					// adjacent to octant {1,0,0}'s -x face.
					if child.Index.Key() == root.Descend(ic3).Descend([3]int{1, 0, 0}).Key() {
						a = child
					}
				}
				continue
			}
			blk := h.addBlock(root.Descend(ic3), [3]int{4, 4, 4}, 1)
			if ic3 == [3]int{1, 0, 0} {
				b = blk
			}
		}

		// a models the finer side: its own +x face carries a 4x4 fine flux
		// of 1.5 everywhere.
		fine := mesh.NewFluxSlab("mass", [2]int{4, 4})
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				fine.Set(i, j, 1.5)
			}
		}
		a.Flux.Record(mesh.FluxFace{Axis: 0, Hi: true}, fine)

		// b models the coarser side: its own -x face (the matching boundary)
		// carries its already-recorded 2x2 coarse flux of 1.0 everywhere.
		coarse := mesh.NewFluxSlab("mass", [2]int{2, 2})
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				coarse.Set(i, j, 1.0)
			}
		}
		b.Flux.Record(mesh.FluxFace{Axis: 0, Hi: false}, coarse)

		d := refresh.NewBuilder().IncludeFluxes().Build()
		id := h.registry.Register(d)

		Expect(h.run(id)).To(Succeed())
		Expect(h.allReady(id)).To(BeTrue())

		corr, ok := h.corrections.get(b.Index.Key(), "xlo:mass")
		Expect(ok).To(BeTrue())
		Expect(corr).To(HaveLen(4))
		for _, v := range corr {
			// coarsened fine average (1.5, since Coarsen divides the sum of
			// the four fine cells by 4) minus the coarse side's own
			// recorded flux (1.0).
			Expect(v).To(BeNumerically("~", 0.5, 1e-12))
		}
	})
})
