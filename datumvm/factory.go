// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/vms"
)

// ID is the unique identifier this VM registers under
var (
	ID              = ids.ID{'d', 'a', 't', 'u', 'm', 'v', 'm'}
	_   vms.Factory = (*Factory)(nil)
)

type Factory struct{}

func (f *Factory) New(*snow.Context) (interface{}, error) { return &VM{}, nil }
