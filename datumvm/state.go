// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
)

// Key prefixes for the two record namespaces. Distinct prefixes keep
// unrelated record kinds from colliding under the shared database.
var (
	singletonStatePrefix = []byte("singleton")
	blockStatePrefix     = []byte("block")

	_ State = (*state)(nil)
)

// State is the VM's whole durable state: block records and the chain pointer
// in one namespace, the initialization flag in another, all buffered by a
// versioned database that commits atomically.
type State interface {
	InitializedState
	BlockState

	// Commit flushes every write buffered since the last Commit in one
	// durable batch.
	Commit() error

	// Close releases the underlying database handle.
	Close() error
}

type state struct {
	InitializedState
	BlockState

	baseDB *versiondb.Database
}

func NewState(db database.Database, vm *VM) State {
	baseDB := versiondb.New(db)

	singletonDB := prefixdb.New(singletonStatePrefix, baseDB)
	blockDB := prefixdb.New(blockStatePrefix, baseDB)

	return &state{
		InitializedState: NewInitializedState(singletonDB),
		BlockState:       NewBlockState(blockDB, vm),
		baseDB:           baseDB,
	}
}

func (s *state) Commit() error {
	return s.baseDB.Commit()
}

func (s *state) Close() error {
	return s.baseDB.Close()
}
