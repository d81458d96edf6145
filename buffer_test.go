// buffer_test.go: Ring buffer and dual queue tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package eplog

import (
	"sync"
	"testing"
	"time"
)

func TestNextPow2(t *testing.T) {
	tests := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 64: 64, 65: 128, 1_000_000: 1 << 20}
	for in, want := range tests {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRingBuffer_ExactCapacity(t *testing.T) {
	// 100 is not a power of two: storage rounds up, capacity must not.
	for _, capacity := range []int{1, 7, 64, 100} {
		rb := newRingBuffer(capacity)
		accepted := 0
		for i := 0; i < capacity+10; i++ {
			if rb.push(&Record{Seq: uint64(i)}) {
				accepted++
			}
		}
		if accepted != capacity {
			t.Errorf("capacity %d accepted %d records", capacity, accepted)
		}
		if rb.len() != capacity || rb.capacity() != capacity {
			t.Errorf("capacity %d: len=%d capacity()=%d", capacity, rb.len(), rb.capacity())
		}
	}
}

func TestRingBuffer_FIFOAndWrap(t *testing.T) {
	rb := newRingBuffer(4)
	next := uint64(0)
	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			if !rb.push(&Record{Seq: next + uint64(i)}) {
				t.Fatalf("push failed in round %d", round)
			}
		}
		for i := 0; i < 3; i++ {
			rec, ok := rb.pop()
			if !ok || rec.Seq != next {
				t.Fatalf("round %d: pop = %v, %v; want seq %d", round, rec, ok, next)
			}
			next++
		}
	}
	if _, ok := rb.pop(); ok {
		t.Error("pop on empty ring succeeded")
	}
}

func TestRingBuffer_PopWaitsForUnpublishedSlot(t *testing.T) {
	rb := newRingBuffer(4)

	// A producer that reserved a slot but has not stored yet.
	rb.tail.Add(1)
	if _, ok := rb.pop(); ok {
		t.Fatal("pop returned an unpublished slot")
	}
	if rb.head.Load() != 0 {
		t.Fatal("pop advanced head past an unpublished slot")
	}

	rb.slots[0].Store(&Record{Seq: 99})
	rec, ok := rb.pop()
	if !ok || rec.Seq != 99 {
		t.Fatalf("record lost after publish: %v, %v", rec, ok)
	}
}

func TestRingBuffer_ConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 2000
	rb := newRingBuffer(producers * perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !rb.push(&Record{Seq: uint64(p*perProducer + i)}) {
					t.Errorf("push refused below capacity")
					return
				}
			}
		}(p)
	}

	seen := make([]bool, producers*perProducer)
	got := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for got < len(seen) {
		rec, ok := rb.pop()
		if !ok {
			select {
			case <-done:
				if rb.len() == 0 {
					t.Fatalf("only %d of %d records popped", got, len(seen))
				}
			default:
			}
			continue
		}
		if seen[rec.Seq] {
			t.Fatalf("record %d popped twice", rec.Seq)
		}
		seen[rec.Seq] = true
		got++
	}
}

func TestDualQueue_WakeAndWait(t *testing.T) {
	q := newDualQueue(8)

	start := time.Now()
	q.wait(20 * time.Millisecond)
	if time.Since(start) < 15*time.Millisecond {
		t.Error("wait returned early without a push")
	}

	q.pushNormal(&Record{})
	start = time.Now()
	q.wait(5 * time.Second)
	if time.Since(start) > time.Second {
		t.Error("wait did not return after a push")
	}

	if q.empty() {
		t.Error("queue reported empty with a pending record")
	}
	q.normal.pop()
	if !q.empty() {
		t.Error("queue not empty after drain")
	}
}

func TestBufferPool(t *testing.T) {
	bp := newBufferPool(2, 1024)
	b := bp.Get()
	if len(b) != 0 {
		t.Fatalf("Get returned non-empty buffer")
	}
	b = append(b, "hello"...)
	bp.Put(b)
	if got := bp.Get(); len(got) != 0 || cap(got) < 5 {
		t.Errorf("pooled buffer len=%d cap=%d", len(got), cap(got))
	}
	bp.Put(make([]byte, 0, 4096)) // oversized, discarded
	if got := bp.Get(); cap(got) == 4096 {
		t.Error("oversized buffer was pooled")
	}
}
