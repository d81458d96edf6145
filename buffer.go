// buffer.go: MPSC ring buffers carrying records to the writer
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"math/bits"
	"sync/atomic"
	"time"
)

// DefaultQueueCapacity is the per-channel record capacity.
const DefaultQueueCapacity = 1_000_000

// ringBuffer is a bounded lock-free FIFO of records.
// Multi-Producer Single-Consumer: any goroutine may push, only the writer pops.
type ringBuffer struct {
	slots []atomic.Pointer[Record] // power-of-2 storage
	mask  uint64
	limit uint64        // logical capacity, <= len(slots)
	head  atomic.Uint64 // next slot to consume
	tail  atomic.Uint64 // next slot to reserve
}

// nextPow2 returns the next power of 2 greater than or equal to x
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(x-1))
}

// newRingBuffer creates a ring that holds exactly capacity records.
func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	size := nextPow2(uint64(capacity))
	return &ringBuffer{
		slots: make([]atomic.Pointer[Record], size),
		mask:  size - 1,
		limit: uint64(capacity),
	}
}

// push appends rec, returning false when the ring is full.
//
// The slot is reserved with CAS before the pointer is published, so two
// producers can never write the same slot.
func (rb *ringBuffer) push(rec *Record) bool {
	for {
		tail := rb.tail.Load()
		head := rb.head.Load()
		if tail-head >= rb.limit {
			return false
		}
		if rb.tail.CompareAndSwap(tail, tail+1) {
			rb.slots[tail&rb.mask].Store(rec)
			return true
		}
		// CAS failed → another producer reserved this slot, retry
	}
}

// pop removes the oldest record. It returns false when the ring is empty
// or when the oldest slot is reserved but not yet published; in the latter
// case head is left untouched and the record is picked up on a later call.
// Single consumer only.
func (rb *ringBuffer) pop() (*Record, bool) {
	head := rb.head.Load()
	if head >= rb.tail.Load() {
		return nil, false
	}
	slot := &rb.slots[head&rb.mask]
	rec := slot.Load()
	if rec == nil {
		return nil, false
	}
	// Clear before advancing head so a producer reusing this slot
	// never has its store overwritten.
	slot.Store(nil)
	rb.head.Store(head + 1)
	return rec, true
}

// len returns the number of reserved slots not yet consumed.
func (rb *ringBuffer) len() int {
	head := rb.head.Load()
	tail := rb.tail.Load()
	if tail <= head {
		return 0
	}
	return int(tail - head) // #nosec G115 -- bounded by limit
}

// capacity returns the logical capacity.
func (rb *ringBuffer) capacity() int {
	return int(rb.limit) // #nosec G115 -- set from an int
}

// dualQueue holds the quick and normal channels and a shared wake-up signal
// for the writer.
type dualQueue struct {
	quick  *ringBuffer
	normal *ringBuffer
	notify chan struct{}
}

func newDualQueue(capacity int) *dualQueue {
	return &dualQueue{
		quick:  newRingBuffer(capacity),
		normal: newRingBuffer(capacity),
		notify: make(chan struct{}, 1),
	}
}

func (q *dualQueue) pushQuick(rec *Record) bool {
	if !q.quick.push(rec) {
		return false
	}
	q.wake()
	return true
}

func (q *dualQueue) pushNormal(rec *Record) bool {
	if !q.normal.push(rec) {
		return false
	}
	q.wake()
	return true
}

// wake signals the writer without blocking.
func (q *dualQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// wait blocks until a push is signalled or d elapses.
func (q *dualQueue) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-q.notify:
	case <-t.C:
	}
}

func (q *dualQueue) empty() bool {
	return q.quick.len() == 0 && q.normal.len() == 0
}

// bufferPool recycles scratch buffers for producers that build messages
// (the slog bridge). A channel keeps a buffer out of circulation until Put.
type bufferPool struct {
	ch      chan []byte
	maxSize int
}

func newBufferPool(poolSize, maxSize int) *bufferPool {
	return &bufferPool{ch: make(chan []byte, poolSize), maxSize: maxSize}
}

// Get returns an empty buffer, pooled when one is available.
func (bp *bufferPool) Get() []byte {
	select {
	case buf := <-bp.ch:
		return buf[:0]
	default:
		return make([]byte, 0, 256)
	}
}

// Put returns buf to the pool. Oversized buffers are left to the GC.
func (bp *bufferPool) Put(buf []byte) {
	if cap(buf) > bp.maxSize {
		return
	}
	select {
	case bp.ch <- buf[:0]:
	default:
	}
}

var messagePool = newBufferPool(128, 64*1024)
