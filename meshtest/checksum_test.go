package meshtest

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/cello-mesh/refresh/mesh"
)

// fieldChecksum hashes a field's full data array, ghosts included, so a
// scenario can snapshot a block's ghost state before a refresh and confirm
// afterward that it actually changed (or, run twice, that it settles to the
// same bytes) without comparing float slices cell by cell.
func fieldChecksum(f *mesh.Field) [32]byte {
	h, _ := blake2b.New256(nil)
	buf := make([]byte, 8)
	for _, v := range f.Data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
