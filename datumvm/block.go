// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/choices"
	"github.com/ava-labs/avalanchego/snow/consensus/snowman"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

// maxClockSkew is how far into the future a block's timestamp may be,
// relative to this node's clock, and still verify. The bound is inclusive.
const maxClockSkew = time.Hour

var (
	errParentLookup      = errors.New("couldn't resolve the block's parent")
	errHeightMismatch    = errors.New("block height does not follow its parent")
	errTimestampTooEarly = errors.New("block timestamp is earlier than its parent's")
	errTimestampTooLate  = errors.New("block timestamp is more than 1 hour ahead of local time")

	_ snowman.Block = (*Block)(nil)
)

// Block is one record in the datum chain. The serialized fields are fixed at
// construction or parse time; id, bytes and status are runtime-only and are
// set exactly once by initialize.
type Block struct {
	Prnt   ids.ID         `serialize:"true" json:"parentID"`  // parent's ID
	Hght   uint64         `serialize:"true" json:"height"`    // the genesis block is at height 0
	Tmstmp int64          `serialize:"true" json:"timestamp"` // time this block was proposed at
	Dtm    [DatumLen]byte `serialize:"true" json:"datum"`     // datum this block commits

	id     ids.ID         // this block's ID, the hash of [bytes]
	bytes  []byte         // canonical encoding of the serialized fields
	status choices.Status // Processing until the engine decides this block
	vm     *VM            // the VM this block belongs to
}

// initialize sets this block's runtime fields: [b.bytes] to [bytes], [b.id]
// to hash([bytes]), [b.status] to [status] and [b.vm] to [vm]. Neither the
// bytes nor the id are ever recomputed afterward.
func (b *Block) initialize(bytes []byte, status choices.Status, vm *VM) {
	b.bytes = bytes
	b.id = hashing.ComputeHash256Array(bytes)
	b.status = status
	b.vm = vm
}

// Verify returns nil iff this block is valid against its parent:
// the height follows the parent's exactly, and the timestamp lies in
// [parent timestamp, local time + maxClockSkew]. A valid block is registered
// in the VM's verified set; an invalid one changes no state.
func (b *Block) Verify() error {
	parent, err := b.vm.getBlock(b.Prnt)
	if err != nil {
		// The parent couldn't be fetched. That doesn't prove this block
		// invalid, so surface a dependency error rather than a validity one.
		return fmt.Errorf("%w: %s", errParentLookup, err)
	}

	if expected := parent.Height() + 1; b.Hght != expected {
		return fmt.Errorf("%w: expected height %d, found %d",
			errHeightMismatch,
			expected,
			b.Hght,
		)
	}

	if b.Tmstmp < parent.Tmstmp {
		return errTimestampTooEarly
	}

	if b.Tmstmp > time.Now().Add(maxClockSkew).Unix() {
		return errTimestampTooLate
	}

	// The block verified; track it until the engine accepts or rejects it.
	b.vm.verifiedBlocks[b.id] = b
	return nil
}

// Accept marks this block as final, persists it together with the advanced
// chain pointer, and flushes the write batch. Accepted is terminal.
func (b *Block) Accept() error {
	b.setStatus(choices.Accepted)
	blkID := b.ID()

	if err := b.vm.state.PutBlock(b); err != nil {
		return fmt.Errorf("couldn't persist accepted block %s: %w", blkID, err)
	}

	// Accepting [b] accepts the chain it represents.
	if err := b.vm.state.SetLastAccepted(blkID); err != nil {
		return fmt.Errorf("couldn't move chain pointer to %s: %w", blkID, err)
	}

	delete(b.vm.verifiedBlocks, blkID)
	b.vm.metrics.blksAccepted.Inc()

	return b.vm.state.Commit()
}

// Reject marks this block as permanently rejected and persists that status.
// The record is kept for audit; only the chain pointer is left untouched.
func (b *Block) Reject() error {
	b.setStatus(choices.Rejected)

	if err := b.vm.state.PutBlock(b); err != nil {
		return fmt.Errorf("couldn't persist rejected block %s: %w", b.ID(), err)
	}

	delete(b.vm.verifiedBlocks, b.ID())
	b.vm.metrics.blksRejected.Inc()

	return b.vm.state.Commit()
}

// ID returns this block's ID
func (b *Block) ID() ids.ID { return b.id }

// Parent returns the ID of this block's parent
func (b *Block) Parent() ids.ID { return b.Prnt }

// Height returns this block's height. The genesis block has height 0.
func (b *Block) Height() uint64 { return b.Hght }

// Timestamp returns this block's time. The genesis block has time 0.
func (b *Block) Timestamp() time.Time { return time.Unix(b.Tmstmp, 0) }

// Status returns this block's lifecycle status
func (b *Block) Status() choices.Status { return b.status }

// Bytes returns the canonical encoding of this block
func (b *Block) Bytes() []byte { return b.bytes }

// Datum returns the datum this block commits
func (b *Block) Datum() [DatumLen]byte { return b.Dtm }

func (b *Block) setStatus(status choices.Status) { b.status = status }
