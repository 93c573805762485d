package meshtest

import (
	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("two interleaved refresh ids on the same blocks", func() {
	It("advances each id's Sync independently and closes each id's quorum on its own count", func() {
		h := newHarness(3, mesh.Periodicity{true, true, true}, 0)
		root := mesh.NewRoot(0)

		var blocks []*mesh.Block
		for _, ic3 := range [][3]int{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
		} {
			b := h.addBlock(root.Descend(ic3), [3]int{4, 4, 4}, 1)
			b.AddField("rho")
			b.AddField("temperature")
			blocks = append(blocks, b)
		}

		dRho := refresh.NewBuilder().AddField("rho").SetGhostDepth(1).Build()
		idRho := h.registry.Register(dRho)
		dTemp := refresh.NewBuilder().AddField("temperature").SetGhostDepth(1).Build()
		idTemp := h.registry.Register(dTemp)

		Expect(h.runMany(idRho, idTemp)).To(Succeed())

		for _, b := range blocks {
			Expect(b.Sync(idRho).State).To(Equal(mesh.Ready))
			Expect(b.Sync(idTemp).State).To(Equal(mesh.Ready))

			// Each id's quorum closed on its own count: the two ids must
			// not have advanced each other's counter.
			Expect(b.Sync(idRho).Value).To(Equal(b.Sync(idRho).Stop))
			Expect(b.Sync(idTemp).Value).To(Equal(b.Sync(idTemp).Stop))
			Expect(b.PendingLen(idRho)).To(Equal(0))
			Expect(b.PendingLen(idTemp)).To(Equal(0))
		}
	})
})
