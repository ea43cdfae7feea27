// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"errors"
	"fmt"
)

var errMempoolFull = errors.New("mempool is at capacity")

// mempool is a bounded FIFO of datums waiting for inclusion in a block.
// A full mempool rejects new proposals; nothing already queued is evicted.
// Datums are not deduplicated: proposing the same datum twice is legal and
// yields two blocks.
type mempool struct {
	datums chan [DatumLen]byte
}

func newMempool(size int) *mempool {
	return &mempool{
		datums: make(chan [DatumLen]byte, size),
	}
}

// Add queues [datum] at the tail, or fails if the mempool is full.
func (m *mempool) Add(datum [DatumLen]byte) error {
	select {
	case m.datums <- datum:
		return nil
	default:
		return fmt.Errorf("%w (%d)", errMempoolFull, cap(m.datums))
	}
}

// Next dequeues the oldest datum. The second return value is false when the
// mempool is empty.
func (m *mempool) Next() ([DatumLen]byte, bool) {
	select {
	case datum := <-m.datums:
		return datum, true
	default:
		return [DatumLen]byte{}, false
	}
}

// Len returns the number of queued datums.
func (m *mempool) Len() int {
	return len(m.datums)
}
