// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/manager"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/avalanchego/snow/choices"
	"github.com/ava-labs/avalanchego/snow/consensus/snowman"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/snow/engine/snowman/block"
	"github.com/ava-labs/avalanchego/utils"
	"github.com/ava-labs/avalanchego/version"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

const (
	// Name of this VM
	Name = "datumvm"

	// DatumLen is the fixed width, in bytes, of the payload every block
	// commits
	DatumLen = 32
)

var (
	Version = version.NewDefaultVersion(0, 1, 0)

	errNoPendingBlocks = errors.New("there is no datum to build a block with")
	errBadGenesisDatum = fmt.Errorf("genesis datum must be at most %d bytes", DatumLen)

	_ block.ChainVM = (*VM)(nil)
)

// VM chains fixed-width datums into blocks, one datum per block. The
// consensus engine drives every mutating call; the VM only decides what a
// block looks like, whether it is valid, and how it persists.
type VM struct {
	ctx       *snow.Context
	dbManager manager.Manager

	// Durable chain state, with its caches
	state State

	config  Config
	metrics *metrics

	// ID of the block this node prefers to build on top of. Not necessarily
	// accepted yet.
	preferred ids.ID

	// Used to nudge the consensus engine when a block is ready to be built.
	// Sends never block; a full engine inbox drops the nudge.
	toEngine chan<- common.Message

	// Datums waiting to be put into blocks
	mempool *mempool

	// Block ID --> block. Every block that passed Verify but hasn't been
	// accepted or rejected yet.
	verifiedBlocks map[ids.ID]*Block

	// Set when the engine reports normal operation
	bootstrapped utils.AtomicBool
}

// Initialize this VM.
// [ctx] is this VM's context.
// [dbManager] manages this VM's database.
// [toEngine] notifies the consensus engine that blocks are ready to build.
// The genesis block commits [genesisData], zero-padded to DatumLen bytes.
func (vm *VM) Initialize(
	ctx *snow.Context,
	dbManager manager.Manager,
	genesisData []byte,
	upgradeData []byte,
	configData []byte,
	toEngine chan<- common.Message,
	_ []*common.Fx,
	_ common.AppSender,
) error {
	version, err := vm.Version()
	if err != nil {
		log.Error("error while fetching vm version", "error", err)
		return err
	}

	config, err := parseConfig(configData)
	if err != nil {
		log.Error("error while parsing vm config", "error", err)
		return err
	}
	log.Info("initializing datum vm", "version", version, "mempoolSize", config.MempoolSize)

	vm.ctx = ctx
	vm.dbManager = dbManager
	vm.toEngine = toEngine
	vm.config = config
	vm.mempool = newMempool(config.MempoolSize)
	vm.verifiedBlocks = make(map[ids.ID]*Block)

	registry := prometheus.NewRegistry()
	if vm.metrics, err = newMetrics(Name, registry); err != nil {
		return err
	}
	if ctx.Metrics != nil {
		if err := ctx.Metrics.Register(registry); err != nil {
			return err
		}
	}

	vm.state = NewState(vm.dbManager.Current().Database, vm)

	if err := vm.initGenesis(genesisData); err != nil {
		return err
	}

	lastAccepted, err := vm.state.GetLastAccepted()
	if err != nil {
		return err
	}
	log.Info("setting last accepted block", "id", lastAccepted)

	// Build off the most recently accepted block until the engine says
	// otherwise
	return vm.SetPreference(lastAccepted)
}

// initGenesis bootstraps the chain on a cold store: it builds the genesis
// block out of [genesisData], accepts it, and flags the store so a restart
// skips all of this.
func (vm *VM) initGenesis(genesisData []byte) error {
	initialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	if len(genesisData) > DatumLen {
		return errBadGenesisDatum
	}

	// The genesis block has no parent, height 0 and time 0.
	genesisBlock, err := vm.NewBlock(ids.Empty, 0, BytesToDatum(genesisData), time.Unix(0, 0))
	if err != nil {
		log.Error("error while creating genesis block", "error", err)
		return err
	}

	if err := vm.state.PutBlock(genesisBlock); err != nil {
		log.Error("error while saving genesis block", "error", err)
		return err
	}

	// Accepting writes the chain pointer and commits.
	if err := genesisBlock.Accept(); err != nil {
		return fmt.Errorf("error accepting genesis block: %w", err)
	}

	if err := vm.state.SetInitialized(); err != nil {
		return fmt.Errorf("error while marking state initialized: %w", err)
	}

	return vm.state.Commit()
}

// CreateHandlers returns this VM's API handlers, keyed by path extension
func (vm *VM) CreateHandlers() (map[string]*common.HTTPHandler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(cjson.NewCodec(), "application/json")
	server.RegisterCodec(cjson.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&Service{vm: vm}, Name); err != nil {
		return nil, err
	}

	return map[string]*common.HTTPHandler{
		"": {
			LockOptions: common.WriteLock,
			Handler:     server,
		},
	}, nil
}

// CreateStaticHandlers returns this VM's static API handlers, keyed by path
// extension. The static API only exposes the stateless encoding helpers.
func (vm *VM) CreateStaticHandlers() (map[string]*common.HTTPHandler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(cjson.NewCodec(), "application/json")
	server.RegisterCodec(cjson.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&StaticService{}, Name); err != nil {
		return nil, err
	}

	return map[string]*common.HTTPHandler{
		"": {
			LockOptions: common.NoLock,
			Handler:     server,
		},
	}, nil
}

// HealthCheck implements the common.VM interface
func (vm *VM) HealthCheck() (interface{}, error) { return nil, nil }

// BuildBlock packs the oldest queued datum into a block on top of the
// preferred tip and verifies it before handing it to the engine.
func (vm *VM) BuildBlock() (snowman.Block, error) {
	datum, ok := vm.mempool.Next()
	if !ok {
		return nil, errNoPendingBlocks
	}

	// If datums are still queued once this block is built, nudge the engine
	// to come back for them.
	if vm.mempool.Len() > 0 {
		defer vm.NotifyBlockReady()
	}

	preferred, err := vm.getBlock(vm.preferred)
	if err != nil {
		return nil, fmt.Errorf("couldn't get preferred block: %w", err)
	}

	newBlock, err := vm.NewBlock(vm.preferred, preferred.Height()+1, datum, time.Now())
	if err != nil {
		return nil, fmt.Errorf("couldn't build block: %w", err)
	}

	// A block this VM just built must verify against its own rules; failing
	// here is a bug worth surfacing, not discarding.
	if err := newBlock.Verify(); err != nil {
		return nil, fmt.Errorf("built an invalid block: %w", err)
	}

	vm.metrics.blksBuilt.Inc()
	vm.metrics.mempoolLen.Set(float64(vm.mempool.Len()))
	return newBlock, nil
}

// NotifyBlockReady tells the consensus engine that at least one block is
// ready to be built. The send is best-effort: a full engine inbox drops it.
func (vm *VM) NotifyBlockReady() {
	select {
	case vm.toEngine <- common.PendingTxs:
	default:
		vm.ctx.Log.Debug("dropping block-ready notification to engine")
	}
}

// GetBlock implements the block.ChainVM interface
func (vm *VM) GetBlock(blkID ids.ID) (snowman.Block, error) { return vm.getBlock(blkID) }

// getBlock prefers the verified-but-undecided set; only decided blocks live
// in state.
func (vm *VM) getBlock(blkID ids.ID) (*Block, error) {
	if blk, exists := vm.verifiedBlocks[blkID]; exists {
		return blk, nil
	}
	return vm.state.GetBlock(blkID)
}

// LastAccepted returns the ID of the most recently accepted block
func (vm *VM) LastAccepted() (ids.ID, error) { return vm.state.GetLastAccepted() }

// proposeBlock queues [datum] for inclusion in a block and nudges the
// consensus engine.
func (vm *VM) proposeBlock(datum [DatumLen]byte) error {
	if err := vm.mempool.Add(datum); err != nil {
		return err
	}
	vm.metrics.mempoolLen.Set(float64(vm.mempool.Len()))
	vm.NotifyBlockReady()
	return nil
}

// ParseBlock decodes [bytes] into a block. When a block with the same ID is
// already known (verified or stored), that instance is returned instead, so
// every ID maps to at most one live block object.
func (vm *VM) ParseBlock(bytes []byte) (snowman.Block, error) {
	blk := &Block{}
	if _, err := Codec.Unmarshal(bytes, blk); err != nil {
		return nil, fmt.Errorf("couldn't parse block: %w", err)
	}
	blk.initialize(bytes, choices.Processing, vm)
	vm.metrics.blksParsed.Inc()

	if known, err := vm.getBlock(blk.ID()); err == nil {
		return known, nil
	}
	return blk, nil
}

// NewBlock assembles a block committing [datum] on top of [parentID] at
// [height], encodes it, and fixes its runtime ID and bytes.
func (vm *VM) NewBlock(parentID ids.ID, height uint64, datum [DatumLen]byte, timestamp time.Time) (*Block, error) {
	blk := &Block{
		Prnt:   parentID,
		Hght:   height,
		Tmstmp: timestamp.Unix(),
		Dtm:    datum,
	}

	blkBytes, err := Codec.Marshal(CodecVersion, blk)
	if err != nil {
		return nil, err
	}

	blk.initialize(blkBytes, choices.Processing, vm)
	return blk, nil
}

// Shutdown releases the database handle. Safe to call before Initialize.
func (vm *VM) Shutdown() error {
	if vm.state == nil {
		return nil
	}
	return vm.state.Close()
}

// SetPreference records [id] as the tip to build on. The caller is trusted
// to hand over an ID it got from this VM.
func (vm *VM) SetPreference(id ids.ID) error {
	vm.preferred = id
	return nil
}

// SetState tracks the engine's lifecycle announcements
func (vm *VM) SetState(state snow.State) error {
	switch state {
	case snow.Bootstrapping:
		vm.bootstrapped.SetValue(false)
		return nil
	case snow.NormalOp:
		vm.bootstrapped.SetValue(true)
		return nil
	default:
		return snow.ErrUnknownState
	}
}

// Version returns this VM's version
func (vm *VM) Version() (string, error) {
	return Version.String(), nil
}

func (vm *VM) Connected(id ids.NodeID, nodeVersion version.Application) error {
	return nil // noop
}

func (vm *VM) Disconnected(id ids.NodeID) error {
	return nil // noop
}

// This VM has no app-specific messages
func (vm *VM) AppGossip(nodeID ids.NodeID, msg []byte) error {
	return nil
}

// This VM has no app-specific messages
func (vm *VM) AppRequest(nodeID ids.NodeID, requestID uint32, deadline time.Time, request []byte) error {
	return nil
}

// This VM has no app-specific messages
func (vm *VM) AppResponse(nodeID ids.NodeID, requestID uint32, response []byte) error {
	return nil
}

// This VM has no app-specific messages
func (vm *VM) AppRequestFailed(nodeID ids.NodeID, requestID uint32) error {
	return nil
}
