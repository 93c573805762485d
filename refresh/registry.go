// registry.go holds the process-wide, id-indexed table of refresh
// descriptors, grounded on aistore's xreg.Registry register/renew idiom
// (xact/xs/tcb.go's tcbFactory.New).
package refresh

import (
	"fmt"

	"github.com/cello-mesh/refresh/cmn/errs"
	"github.com/cello-mesh/refresh/cmn/nlog"
)

// Registry assigns small non-negative integer ids to descriptors at
// startup and validates lookups against them afterward: an id outside
// [0, num_registered) is a fatal precondition violation.
type Registry struct {
	descriptors []*Descriptor
}

func NewRegistry() *Registry { return &Registry{} }

// Register assigns the next id to d and freezes it into the registry.
func (r *Registry) Register(d *Descriptor) int {
	id := len(r.descriptors)
	d.id = id
	r.descriptors = append(r.descriptors, d)
	nlog.Infof("refresh: registered descriptor %d callback=%s neighborType=%v", id, d.callback, d.neighborType)
	return id
}

// Get returns the descriptor for id, aborting the process if id is out of
// range: an id outside this range is a fatal precondition violation.
func (r *Registry) Get(id int) *Descriptor {
	if id < 0 || id >= len(r.descriptors) {
		errs.Abort(errs.New(errs.PreconditionViolation, "", id,
			fmt.Sprintf("refresh id %d out of range [0,%d)", id, len(r.descriptors))))
	}
	return r.descriptors[id]
}

// Count returns num_registered_refreshes.
func (r *Registry) Count() int { return len(r.descriptors) }
