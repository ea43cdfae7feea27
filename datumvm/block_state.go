// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/choices"
)

const (
	lastAcceptedByte byte = iota
)

const (
	// maximum block capacity of the cache
	blockCacheSize = 8192
)

// lastAcceptedKey is the reserved key the chain pointer lives under. Block
// records are keyed by their 32-byte IDs, so a single-byte key can't collide.
var lastAcceptedKey = []byte{lastAcceptedByte}

var _ BlockState = (*blockState)(nil)

// BlockState is the durable, cached store of block records and of the
// last-accepted chain pointer.
type BlockState interface {
	GetBlock(blkID ids.ID) (*Block, error)
	PutBlock(blk *Block) error
	DeleteBlock(blkID ids.ID) error

	GetLastAccepted() (ids.ID, error)
	SetLastAccepted(ids.ID) error
}

// blockState implements BlockState over a database with a write-through LRU
// in front of it. Cache entries are explicitly either a block or a recorded
// absence, so repeated lookups of missing blocks never reach the database;
// an ID not in the cache at all is simply unknown.
type blockState struct {
	blkCache cache.Cacher
	blockDB  database.Database

	// in-memory copy of the chain pointer; ids.Empty until first read
	lastAccepted ids.ID

	vm *VM
}

// blockRecord pairs a block's canonical bytes with its lifecycle status so
// both persist under one key.
type blockRecord struct {
	Bytes  []byte         `serialize:"true"`
	Status choices.Status `serialize:"true"`
}

// blockCacheEntry is one cached lookup result. Absent marks an ID that was
// looked up and wasn't in the database; it can't be confused with any real
// block, however empty.
type blockCacheEntry struct {
	blk    *Block
	absent bool
}

// NewBlockState returns a BlockState backed by [db]. Blocks read through it
// are initialized against [vm].
func NewBlockState(db database.Database, vm *VM) BlockState {
	return &blockState{
		blkCache: &cache.LRU{Size: blockCacheSize},
		blockDB:  db,
		vm:       vm,
	}
}

// GetBlock returns the block with [blkID], from cache when possible.
func (s *blockState) GetBlock(blkID ids.ID) (*Block, error) {
	if entryIntf, cached := s.blkCache.Get(blkID); cached {
		entry := entryIntf.(*blockCacheEntry)
		if entry.absent {
			return nil, database.ErrNotFound
		}
		return entry.blk, nil
	}

	recordBytes, err := s.blockDB.Get(blkID[:])
	if err != nil {
		if err == database.ErrNotFound {
			// Remember the miss so the next lookup of this ID short-circuits.
			s.blkCache.Put(blkID, &blockCacheEntry{absent: true})
		}
		return nil, err
	}

	// Decode the stored record first to recover the status and the block's
	// canonical bytes, then decode the block itself.
	record := blockRecord{}
	if _, err := Codec.Unmarshal(recordBytes, &record); err != nil {
		return nil, err
	}

	blk := &Block{}
	if _, err := Codec.Unmarshal(record.Bytes, blk); err != nil {
		return nil, err
	}
	blk.initialize(record.Bytes, record.Status, s.vm)

	s.blkCache.Put(blkID, &blockCacheEntry{blk: blk})
	return blk, nil
}

// PutBlock writes [blk] and its status to the database and caches the live
// block object so subsequent reads skip decoding.
func (s *blockState) PutBlock(blk *Block) error {
	record := blockRecord{
		Bytes:  blk.Bytes(),
		Status: blk.Status(),
	}

	recordBytes, err := Codec.Marshal(CodecVersion, &record)
	if err != nil {
		return err
	}

	blkID := blk.ID()
	s.blkCache.Put(blkID, &blockCacheEntry{blk: blk})
	return s.blockDB.Put(blkID[:], recordBytes)
}

// DeleteBlock removes the record for [blkID] and marks the ID absent in the
// cache. Not used on the accept/reject path.
func (s *blockState) DeleteBlock(blkID ids.ID) error {
	s.blkCache.Put(blkID, &blockCacheEntry{absent: true})
	return s.blockDB.Delete(blkID[:])
}

// GetLastAccepted returns the chain pointer, reading the database only on
// the first call after startup.
func (s *blockState) GetLastAccepted() (ids.ID, error) {
	if s.lastAccepted != ids.Empty {
		return s.lastAccepted, nil
	}

	lastAcceptedBytes, err := s.blockDB.Get(lastAcceptedKey)
	if err != nil {
		return ids.ID{}, err
	}
	lastAccepted, err := ids.ToID(lastAcceptedBytes)
	if err != nil {
		return ids.ID{}, err
	}

	s.lastAccepted = lastAccepted
	return lastAccepted, nil
}

// SetLastAccepted moves the chain pointer to [lastAccepted]. Setting the
// pointer to its current value writes nothing. The caller must have already
// persisted the block the pointer names.
func (s *blockState) SetLastAccepted(lastAccepted ids.ID) error {
	if s.lastAccepted == lastAccepted {
		return nil
	}
	s.lastAccepted = lastAccepted
	return s.blockDB.Put(lastAcceptedKey, lastAccepted[:])
}
