// block.go implements the Block value type: owner of a BlockIndex, field
// arrays, particle batches, a flux register, and the per-refresh Sync
// counters and pending-message queues coordinator drives.
package mesh

// PendingMsg is a refresh message buffered while its Sync is still
// INACTIVE; it is applied once Start has moved the Sync to ACTIVE.
type PendingMsg struct {
	RefreshID int
	Apply     func()
}

// Block is a plain value type, moved between processing elements by the
// transport layer without the application observing address changes — a
// virtual migratable object.
type Block struct {
	Index BlockIndex

	Ghost     int
	Interior  [3]int
	Fields    map[string]*Field
	Particles map[string]*Bag
	Flux      *FluxRegister

	syncs   map[int]*Sync
	pending map[int][]PendingMsg
}

func NewBlock(idx BlockIndex, interior [3]int, ghost int) *Block {
	return &Block{
		Index:     idx,
		Ghost:     ghost,
		Interior:  interior,
		Fields:    map[string]*Field{},
		Particles: map[string]*Bag{},
		Flux:      NewFluxRegister(),
		syncs:     map[int]*Sync{},
		pending:   map[int][]PendingMsg{},
	}
}

// AddField registers a new named field, allocated to this block's shape.
func (b *Block) AddField(name string) *Field {
	f := NewField(name, b.Interior, b.Ghost)
	b.Fields[name] = f
	return f
}

// Sync returns the Sync record for refreshID, creating an INACTIVE one the
// first time it is referenced: a freshly allocated Sync is the zero value,
// so any refresh id that has never started is already INACTIVE.
func (b *Block) Sync(refreshID int) *Sync {
	s, ok := b.syncs[refreshID]
	if !ok {
		s = &Sync{}
		b.syncs[refreshID] = s
	}
	return s
}

// Enqueue buffers a message for refreshID while its Sync is INACTIVE.
func (b *Block) Enqueue(refreshID int, msg PendingMsg) {
	b.pending[refreshID] = append(b.pending[refreshID], msg)
}

// DrainPending removes and returns every buffered message for refreshID.
func (b *Block) DrainPending(refreshID int) []PendingMsg {
	q := b.pending[refreshID]
	delete(b.pending, refreshID)
	return q
}

// PendingLen reports how many messages are buffered for refreshID — used to
// assert the pending-queue-empty half of invariants 1/4.G.check_done.
func (b *Block) PendingLen(refreshID int) int {
	return len(b.pending[refreshID])
}
