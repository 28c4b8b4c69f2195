// Package sysaction implements the PNS system action protocol.
//
// System actions are messages addressed to one of the PNS system contracts.
// Their data field is a JSON-encoded SysAction message. No bytecode is ever
// interpreted; the host calls sysaction.Execute which dispatches to the
// handler owning the action kind (registry, registrar, router, ...).
package sysaction

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ActionKind identifies the type of system action.
type ActionKind string

const (
	// Name registry
	ActionRegistryInit      ActionKind = "REGISTRY_INIT"
	ActionSetOwner          ActionKind = "REGISTRY_SET_OWNER"
	ActionSetSubnodeOwner   ActionKind = "REGISTRY_SET_SUBNODE_OWNER"
	ActionSetResolver       ActionKind = "REGISTRY_SET_RESOLVER"
	ActionSetTTL            ActionKind = "REGISTRY_SET_TTL"
	ActionSetRecord         ActionKind = "REGISTRY_SET_RECORD"
	ActionResolverInit      ActionKind = "RESOLVER_INIT"
	ActionResolverSetAddr   ActionKind = "RESOLVER_SET_ADDR"
	ActionTokenRegistryInit ActionKind = "NFT_INIT"
	ActionTokenMint         ActionKind = "NFT_MINT"
	ActionTokenBurn         ActionKind = "NFT_BURN"

	// Collaborators
	ActionTokenInit         ActionKind = "TOKEN_INIT"
	ActionTokenTransfer     ActionKind = "TOKEN_TRANSFER"
	ActionTokenApprove      ActionKind = "TOKEN_APPROVE"
	ActionTokenTransferFrom ActionKind = "TOKEN_TRANSFER_FROM"
	ActionPointsInit        ActionKind = "POINTS_INIT"

	// Domain rental registrar
	ActionRegistrarInit      ActionKind = "REGISTRAR_INIT"
	ActionRegister           ActionKind = "REGISTRAR_REGISTER"
	ActionRenew              ActionKind = "REGISTRAR_RENEW"
	ActionTransferDomain     ActionKind = "REGISTRAR_TRANSFER"
	ActionRegistrarWithdraw  ActionKind = "REGISTRAR_WITHDRAW"
	ActionRegistrarSetPrices ActionKind = "REGISTRAR_SET_PRICES"

	// Payment router
	ActionRouterInit          ActionKind = "ROUTER_INIT"
	ActionPayName             ActionKind = "ROUTER_PAY_NAME"
	ActionPayNameToken        ActionKind = "ROUTER_PAY_NAME_TOKEN"
	ActionPayDirect           ActionKind = "ROUTER_PAY_DIRECT"
	ActionPayDirectToken      ActionKind = "ROUTER_PAY_DIRECT_TOKEN"
	ActionPayBatchToken       ActionKind = "ROUTER_PAY_BATCH_TOKEN"
	ActionSetFeeCollector     ActionKind = "ROUTER_SET_FEE_COLLECTOR"
	ActionSetFeePercentage    ActionKind = "ROUTER_SET_FEE_PERCENTAGE"
	ActionSetTokenSupport     ActionKind = "ROUTER_SET_TOKEN_SUPPORT"
	ActionSetAllowlistEnabled ActionKind = "ROUTER_SET_ALLOWLIST_ENABLED"
	ActionSetPaused           ActionKind = "ROUTER_SET_PAUSED"
	ActionWithdrawNative      ActionKind = "ROUTER_WITHDRAW_NATIVE"
	ActionWithdrawToken       ActionKind = "ROUTER_WITHDRAW_TOKEN"
)

// SysAction is the top-level envelope stored in the message data.
type SysAction struct {
	Action  ActionKind      `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetOwnerPayload is the payload for REGISTRY_SET_OWNER.
type SetOwnerPayload struct {
	Node  common.Hash    `json:"node"`
	Owner common.Address `json:"owner"`
}

// SetSubnodeOwnerPayload is the payload for REGISTRY_SET_SUBNODE_OWNER.
// Label is the keccak256 hash of the child label.
type SetSubnodeOwnerPayload struct {
	Node  common.Hash    `json:"node"`
	Label common.Hash    `json:"label"`
	Owner common.Address `json:"owner"`
}

type SetResolverPayload struct {
	Node     common.Hash    `json:"node"`
	Resolver common.Address `json:"resolver"`
}

type SetTTLPayload struct {
	Node common.Hash `json:"node"`
	TTL  uint64      `json:"ttl"`
}

type SetRecordPayload struct {
	Node     common.Hash    `json:"node"`
	Owner    common.Address `json:"owner"`
	Resolver common.Address `json:"resolver"`
	TTL      uint64         `json:"ttl"`
}

// ResolverInitPayload binds a resolver to the registry gating its writes.
type ResolverInitPayload struct {
	Registry common.Address `json:"registry"`
}

type SetAddrPayload struct {
	Node common.Hash    `json:"node"`
	Addr common.Address `json:"addr"`
}

// TokenRegistryInitPayload is the payload for NFT_INIT. Points may be zero
// to disable the loyalty hook.
type TokenRegistryInitPayload struct {
	Minter common.Address `json:"minter"`
	Points common.Address `json:"points"`
}

type MintPayload struct {
	To      common.Address `json:"to"`
	TokenID *big.Int       `json:"token_id"`
	URI     string         `json:"uri"`
	Domain  string         `json:"domain"`
}

type BurnPayload struct {
	TokenID *big.Int `json:"token_id"`
}

// TokenInitPayload deploys a fungible token, crediting Supply to the caller.
type TokenInitPayload struct {
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
	Supply *big.Int `json:"supply"`
}

type TokenTransferPayload struct {
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}

type TokenApprovePayload struct {
	Spender common.Address `json:"spender"`
	Amount  *big.Int       `json:"amount"`
}

type TokenTransferFromPayload struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}

// Prices holds the per-year rent for each name length tier.
type Prices struct {
	Price3      *big.Int `json:"price_3"`
	Price4To5   *big.Int `json:"price_4_5"`
	Price6To9   *big.Int `json:"price_6_9"`
	Price10Plus *big.Int `json:"price_10_plus"`
}

// RegistrarInitPayload is the payload for REGISTRAR_INIT.
type RegistrarInitPayload struct {
	Registry       common.Address `json:"registry"`
	TokenRegistrar common.Address `json:"token_registrar"`
	RootNode       common.Hash    `json:"root_node"`
	Prices         Prices         `json:"prices"`
}

// RegisterPayload is the payload for REGISTRAR_REGISTER. The payment is the
// message value.
type RegisterPayload struct {
	Name     string         `json:"name"`
	Owner    common.Address `json:"owner"`
	Years    uint64         `json:"years"`
	TokenURI string         `json:"token_uri"`
}

type RenewPayload struct {
	Name  string `json:"name"`
	Years uint64 `json:"years"`
}

type TransferDomainPayload struct {
	Name     string         `json:"name"`
	NewOwner common.Address `json:"new_owner"`
}

// RouterInitPayload is the payload for ROUTER_INIT.
type RouterInitPayload struct {
	Registry     common.Address `json:"registry"`
	FeeCollector common.Address `json:"fee_collector"`
	FeeBPS       uint64         `json:"fee_bps"`
}

// PayNamePayload is the payload for ROUTER_PAY_NAME. Node, when set, skips
// hashing Name.
type PayNamePayload struct {
	Name string       `json:"name"`
	Node *common.Hash `json:"node,omitempty"`
}

type PayNameTokenPayload struct {
	Token  common.Address `json:"token"`
	Name   string         `json:"name"`
	Node   *common.Hash   `json:"node,omitempty"`
	Amount *big.Int       `json:"amount"`
}

type PayDirectPayload struct {
	Recipient common.Address `json:"recipient"`
}

type PayDirectTokenPayload struct {
	Token     common.Address `json:"token"`
	Recipient common.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
}

// PayBatchTokenPayload carries parallel arrays; element i pays Amounts[i]
// of Tokens[i] to the address Names[i] resolves to.
type PayBatchTokenPayload struct {
	Tokens  []common.Address `json:"tokens"`
	Names   []string         `json:"names"`
	Amounts []*big.Int       `json:"amounts"`
}

type SetFeeCollectorPayload struct {
	Collector common.Address `json:"collector"`
}

type SetFeePercentagePayload struct {
	BPS uint64 `json:"bps"`
}

type SetTokenSupportPayload struct {
	Token   common.Address `json:"token"`
	Allowed bool           `json:"allowed"`
}

// TogglePayload is shared by ROUTER_SET_ALLOWLIST_ENABLED and ROUTER_SET_PAUSED.
type TogglePayload struct {
	Enabled bool `json:"enabled"`
}

type WithdrawTokenPayload struct {
	Token common.Address `json:"token"`
}
