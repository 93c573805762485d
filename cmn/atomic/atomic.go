// Package atomic wraps sync/atomic with named types for the handful of
// counters the core needs (Sync.value, message/byte tallies). It mirrors the
// teacher's own cmn/atomic: a thin wrapper, not a third-party atomics
// package, since the pack never reaches for one either.
/*
 * Copyright (c) 2024, Cello Mesh Project. All rights reserved.
 */
package atomic

import "sync/atomic"

type Int32 struct{ v int32 }

func (i *Int32) Store(n int32)      { atomic.StoreInt32(&i.v, n) }
func (i *Int32) Load() int32        { return atomic.LoadInt32(&i.v) }
func (i *Int32) Add(n int32) int32  { return atomic.AddInt32(&i.v, n) }
func (i *Int32) Inc() int32         { return i.Add(1) }
func (i *Int32) CAS(old, n int32) bool {
	return atomic.CompareAndSwapInt32(&i.v, old, n)
}

type Int64 struct{ v int64 }

func (i *Int64) Store(n int64)     { atomic.StoreInt64(&i.v, n) }
func (i *Int64) Load() int64       { return atomic.LoadInt64(&i.v) }
func (i *Int64) Add(n int64) int64 { return atomic.AddInt64(&i.v, n) }
func (i *Int64) Inc() int64        { return i.Add(1) }

type Bool struct{ v int32 }

func (b *Bool) Store(val bool) {
	if val {
		atomic.StoreInt32(&b.v, 1)
	} else {
		atomic.StoreInt32(&b.v, 0)
	}
}
func (b *Bool) Load() bool { return atomic.LoadInt32(&b.v) != 0 }
