// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
)

var (
	errBadDatum              = errors.New("datum must be the checksummed hex encoding of exactly 32 bytes")
	errCannotGetLastAccepted = errors.New("couldn't get last accepted block ID")
	errNoSuchBlock           = errors.New("couldn't get block from state")
)

// Service is the API service over this VM's chain state
type Service struct {
	vm *VM
}

// ProposeBlockArgs are the arguments to ProposeBlock
type ProposeBlockArgs struct {
	// Datum for the new block. Must be the checksummed hex encoding of
	// exactly [DatumLen] bytes.
	Datum string `json:"datum"`
}

// ProposeBlockReply is the reply from ProposeBlock
type ProposeBlockReply struct {
	Success bool `json:"success"`
}

// ProposeBlock queues [args.Datum] for inclusion in a future block
func (s *Service) ProposeBlock(_ *http.Request, args *ProposeBlockArgs, reply *ProposeBlockReply) error {
	bytes, err := formatting.Decode(formatting.Hex, args.Datum)
	if err != nil || len(bytes) != DatumLen {
		return errBadDatum
	}

	var datum [DatumLen]byte
	copy(datum[:], bytes)

	if err := s.vm.proposeBlock(datum); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// GetBlockArgs are the arguments to GetBlock
type GetBlockArgs struct {
	// ID of the block to fetch. Left blank, the last accepted block.
	ID *ids.ID `json:"id"`
}

// GetBlockReply is the reply from GetBlock
type GetBlockReply struct {
	ID        ids.ID      `json:"id"`        // ID of this block
	ParentID  ids.ID      `json:"parentID"`  // ID of this block's parent
	Height    json.Uint64 `json:"height"`    // height of this block
	Timestamp json.Uint64 `json:"timestamp"` // time this block was proposed at
	Datum     string      `json:"datum"`     // checksummed hex encoding of this block's datum
}

// GetBlock returns the block with ID [args.ID], or the last accepted block
// when no ID is given
func (s *Service) GetBlock(_ *http.Request, args *GetBlockArgs, reply *GetBlockReply) error {
	var (
		id  ids.ID
		err error
	)
	if args.ID == nil {
		id, err = s.vm.state.GetLastAccepted()
		if err != nil {
			return fmt.Errorf("%w: %s", errCannotGetLastAccepted, err)
		}
	} else {
		id = *args.ID
	}

	block, err := s.vm.getBlock(id)
	if err != nil {
		return fmt.Errorf("%w: %s", errNoSuchBlock, err)
	}

	reply.ID = block.ID()
	reply.ParentID = block.Parent()
	reply.Height = json.Uint64(block.Height())
	reply.Timestamp = json.Uint64(block.Timestamp().Unix())
	datum := block.Datum()
	reply.Datum, err = formatting.EncodeWithChecksum(formatting.Hex, datum[:])
	return err
}
