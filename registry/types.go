// Package registry implements the PNS name registry: owner, resolver and TTL
// records keyed by node hash, with hierarchical delegation of subnodes.
package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/gpns/fault"
)

// Record is the registry entry of a node.
type Record struct {
	Owner    common.Address
	Resolver common.Address
	TTL      uint64
}

// Sentinel errors returned by registry operations.
var (
	ErrAlreadyInitialized = fault.New(fault.ErrConflict, "registry: already initialized")
	ErrNotAuthorized      = fault.New(fault.ErrNotAuthorized, "registry: caller is not node owner or admin")
)

// Event signatures.
const (
	EventTransfer      = "Transfer(bytes32,address)"
	EventNewOwner      = "NewOwner(bytes32,bytes32,address)"
	EventNewResolver   = "NewResolver(bytes32,address)"
	EventNewTTL        = "NewTTL(bytes32,uint64)"
	EventRecordUpdated = "RecordUpdated(bytes32,address,address,uint64)"
)

// TransferEvent is emitted by SetOwner.
type TransferEvent struct {
	Node  common.Hash
	Owner common.Address
}

// NewOwnerEvent is emitted by SetSubnodeOwner.
type NewOwnerEvent struct {
	Node  common.Hash
	Label common.Hash
	Owner common.Address
}

type NewResolverEvent struct {
	Node     common.Hash
	Resolver common.Address
}

type NewTTLEvent struct {
	Node common.Hash
	TTL  uint64
}

type RecordUpdatedEvent struct {
	Node     common.Hash
	Owner    common.Address
	Resolver common.Address
	TTL      uint64
}
