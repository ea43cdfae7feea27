// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/choices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyValidBlock(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	blk, err := vm.NewBlock(genesis.ID(), genesis.Height()+1, [DatumLen]byte{1}, time.Now())
	assert.NoError(err)

	assert.NoError(blk.Verify())
	assert.Contains(vm.verifiedBlocks, blk.ID())
	assert.Equal(choices.Processing, blk.Status())
}

func TestVerifyMissingParent(t *testing.T) {
	assert := assert.New(t)
	vm, _ := newTestChain(t)

	blk, err := vm.NewBlock(ids.GenerateTestID(), 1, [DatumLen]byte{1}, time.Now())
	assert.NoError(err)

	assert.ErrorIs(blk.Verify(), errParentLookup)
	assert.NotContains(vm.verifiedBlocks, blk.ID())
}

func TestVerifyHeightMismatch(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	for _, height := range []uint64{0, genesis.Height() + 2, 100} {
		blk, err := vm.NewBlock(genesis.ID(), height, [DatumLen]byte{1}, time.Now())
		assert.NoError(err)

		assert.ErrorIs(blk.Verify(), errHeightMismatch)
		assert.NotContains(vm.verifiedBlocks, blk.ID())
	}
}

func TestVerifyTimestampTooEarly(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	// Make a verified (not yet decided) parent with a recent timestamp
	parent, err := vm.NewBlock(genesis.ID(), genesis.Height()+1, [DatumLen]byte{1}, time.Now())
	assert.NoError(err)
	assert.NoError(parent.Verify())

	blk, err := vm.NewBlock(parent.ID(), parent.Height()+1, [DatumLen]byte{2}, parent.Timestamp().Add(-time.Second))
	assert.NoError(err)
	assert.ErrorIs(blk.Verify(), errTimestampTooEarly)

	// The parent's exact timestamp is allowed: monotonicity is non-strict
	equal, err := vm.NewBlock(parent.ID(), parent.Height()+1, [DatumLen]byte{3}, parent.Timestamp())
	assert.NoError(err)
	assert.NoError(equal.Verify())
}

func TestVerifyTimestampTooLate(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	// One second past the tolerated skew fails
	late, err := vm.NewBlock(genesis.ID(), genesis.Height()+1, [DatumLen]byte{1}, time.Now().Add(maxClockSkew+time.Second))
	assert.NoError(err)
	assert.ErrorIs(late.Verify(), errTimestampTooLate)
	assert.NotContains(vm.verifiedBlocks, late.ID())

	// Exactly the skew bound is tolerated: the bound is inclusive, and the
	// clock only moves forward between construction and verification
	boundary, err := vm.NewBlock(genesis.ID(), genesis.Height()+1, [DatumLen]byte{2}, time.Now().Add(maxClockSkew))
	assert.NoError(err)
	assert.NoError(boundary.Verify())
}

func TestAccept(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	blk, err := vm.NewBlock(genesis.ID(), genesis.Height()+1, [DatumLen]byte{1}, time.Now())
	assert.NoError(err)
	assert.NoError(blk.Verify())

	assert.NoError(blk.Accept())

	assert.Equal(choices.Accepted, blk.Status())
	assert.NotContains(vm.verifiedBlocks, blk.ID())

	lastAccepted, err := vm.LastAccepted()
	assert.NoError(err)
	assert.Equal(blk.ID(), lastAccepted)

	stored, err := vm.state.GetBlock(blk.ID())
	assert.NoError(err)
	assert.Equal(choices.Accepted, stored.Status())
}

func TestReject(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	blk, err := vm.NewBlock(genesis.ID(), genesis.Height()+1, [DatumLen]byte{1}, time.Now())
	assert.NoError(err)
	assert.NoError(blk.Verify())

	lastAcceptedBefore, err := vm.LastAccepted()
	assert.NoError(err)

	assert.NoError(blk.Reject())

	assert.Equal(choices.Rejected, blk.Status())
	assert.NotContains(vm.verifiedBlocks, blk.ID())

	// The chain pointer must not move; the rejected record is retained
	lastAcceptedAfter, err := vm.LastAccepted()
	assert.NoError(err)
	assert.Equal(lastAcceptedBefore, lastAcceptedAfter)

	stored, err := vm.state.GetBlock(blk.ID())
	assert.NoError(err)
	assert.Equal(choices.Rejected, stored.Status())
}

// Identical fields produce identical encodings and identical IDs
func TestBlockIDDeterminism(t *testing.T) {
	assert := assert.New(t)
	vm, genesis := newTestChain(t)

	now := time.Now()
	blk1, err := vm.NewBlock(genesis.ID(), 1, [DatumLen]byte{9}, now)
	assert.NoError(err)
	blk2, err := vm.NewBlock(genesis.ID(), 1, [DatumLen]byte{9}, now)
	assert.NoError(err)

	assert.Equal(blk1.Bytes(), blk2.Bytes())
	assert.Equal(blk1.ID(), blk2.ID())

	blk3, err := vm.NewBlock(genesis.ID(), 1, [DatumLen]byte{10}, now)
	assert.NoError(err)
	assert.NotEqual(blk1.ID(), blk3.ID())
}

// newTestChain returns an initialized VM and its genesis block
func newTestChain(t *testing.T) (*VM, *Block) {
	require := require.New(t)
	vm, _, _, err := newTestVM([]byte{0}, nil)
	require.NoError(err)

	lastAccepted, err := vm.LastAccepted()
	require.NoError(err)
	genesis, err := vm.getBlock(lastAccepted)
	require.NoError(err)
	return vm, genesis
}
