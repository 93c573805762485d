// Package transport is the async messaging substrate: a directory mapping
// a BlockIndex to its owning processing element, a channel-based stream for
// point-to-point delivery, an LRU cache in front of the directory, retrying
// send, and a collective reduction — grounded on aistore's transport/bundle
// Streams+Smap-resync idiom.
package transport

import (
	"fmt"
	"sync"

	"github.com/tidwall/buntdb"

	"github.com/cello-mesh/refresh/cmn/nlog"
)

// Directory resolves a block's stable index to the processing element that
// currently owns it — a virtual proxy, persisted in an embedded indexed KV
// store the way aistore resyncs its Smap across targets.
type Directory struct {
	db *buntdb.DB
	mu sync.RWMutex
}

// NewDirectory opens an in-memory buntdb-backed directory. path may be
// ":memory:" for a pure in-process substrate, or a file path for a
// durable one.
func NewDirectory(path string) (*Directory, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transport: open directory: %w", err)
	}
	return &Directory{db: db}, nil
}

func (d *Directory) Close() error { return d.db.Close() }

// Assign records that blockKey is currently owned by pe.
func (d *Directory) Assign(blockKey, pe string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(blockKey, pe, nil)
		return err
	})
}

// Lookup resolves blockKey to its owning processing element.
func (d *Directory) Lookup(blockKey string) (pe string, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	err := d.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(blockKey)
		if err != nil {
			return err
		}
		pe = v
		return nil
	})
	return pe, err == nil
}

// Migrate moves blockKey's ownership from one processing element to
// another, logging the change the way aistore logs Smap resyncs.
func (d *Directory) Migrate(blockKey, from, to string) error {
	cur, ok := d.Lookup(blockKey)
	if ok && cur != from {
		nlog.Warnf("transport: migrate %s expected owner %s, found %s", blockKey, from, cur)
	}
	if err := d.Assign(blockKey, to); err != nil {
		return err
	}
	nlog.Infof("transport: %s migrated %s -> %s", blockKey, from, to)
	return nil
}
