// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/datum-labs/datumvm/datumvm"
)

// Client defines datumvm client operations
type Client interface {
	// ProposeBlock submits a datum for inclusion in a block
	ProposeBlock(ctx context.Context, datum [datumvm.DatumLen]byte) (bool, error)

	// GetBlock fetches the block with [blkID], or the last accepted block
	// when [blkID] is nil
	GetBlock(ctx context.Context, blkID *ids.ID) (*BlockInfo, error)
}

// BlockInfo is a client-side view of one block
type BlockInfo struct {
	ID        ids.ID
	ParentID  ids.ID
	Height    uint64
	Timestamp uint64
	Datum     []byte
}

// New creates a client for the datumvm instance running on chain [chain] at
// [uri]
func New(uri string, chain string) Client {
	req := rpc.NewEndpointRequester(uri, fmt.Sprintf("/ext/bc/%s", chain), datumvm.Name)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) ProposeBlock(ctx context.Context, datum [datumvm.DatumLen]byte) (bool, error) {
	encoded, err := formatting.EncodeWithChecksum(formatting.Hex, datum[:])
	if err != nil {
		return false, err
	}

	resp := new(datumvm.ProposeBlockReply)
	err = cli.req.SendRequest(ctx,
		"proposeBlock",
		&datumvm.ProposeBlockArgs{Datum: encoded},
		resp,
	)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (cli *client) GetBlock(ctx context.Context, blkID *ids.ID) (*BlockInfo, error) {
	resp := new(datumvm.GetBlockReply)
	err := cli.req.SendRequest(ctx,
		"getBlock",
		&datumvm.GetBlockArgs{ID: blkID},
		resp,
	)
	if err != nil {
		return nil, err
	}

	datum, err := formatting.Decode(formatting.Hex, resp.Datum)
	if err != nil {
		return nil, err
	}
	return &BlockInfo{
		ID:        resp.ID,
		ParentID:  resp.ParentID,
		Height:    uint64(resp.Height),
		Timestamp: uint64(resp.Timestamp),
		Datum:     datum,
	}, nil
}
