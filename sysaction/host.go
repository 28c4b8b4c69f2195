package sysaction

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
)

// Token is the fungible token contract the router moves value through.
// A false result and an error are both failures.
type Token interface {
	BalanceOf(db vm.StateDB, owner common.Address) *big.Int
	Transfer(ctx *Context, to common.Address, amount *big.Int) (bool, error)
	TransferFrom(ctx *Context, from, to common.Address, amount *big.Int) (bool, error)
}

// Receiver is the code that runs when an address receives native value.
// Returning an error refuses the transfer.
type Receiver interface {
	Receive(ctx *Context, from common.Address, amount *big.Int) error
}

// AddrResolver maps a node to a payout address.
type AddrResolver interface {
	Addr(db vm.StateDB, node common.Hash) common.Address
}

// Host binds contract addresses to the code running behind them. A nil
// *Host has no bindings.
type Host struct {
	mu        sync.RWMutex
	tokens    map[common.Address]Token
	receivers map[common.Address]Receiver
	resolvers map[common.Address]AddrResolver
}

func NewHost() *Host {
	return &Host{
		tokens:    make(map[common.Address]Token),
		receivers: make(map[common.Address]Receiver),
		resolvers: make(map[common.Address]AddrResolver),
	}
}

func (h *Host) BindToken(addr common.Address, t Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tokens[addr] = t
}

func (h *Host) BindReceiver(addr common.Address, r Receiver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.receivers[addr] = r
}

func (h *Host) BindResolver(addr common.Address, r AddrResolver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolvers[addr] = r
}

// Token returns the token deployed at addr.
func (h *Host) Token(addr common.Address) (Token, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.tokens[addr]
	return t, ok
}

// Receiver returns the receive hook of addr, if it has one.
func (h *Host) Receiver(addr common.Address) (Receiver, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.receivers[addr]
	return r, ok
}

// Resolver returns the resolver deployed at addr.
func (h *Host) Resolver(addr common.Address) (AddrResolver, bool) {
	if h == nil {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.resolvers[addr]
	return r, ok
}

// Tokens returns the addresses of all bound tokens.
func (h *Host) Tokens() []common.Address {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	addrs := make([]common.Address, 0, len(h.tokens))
	for addr := range h.tokens {
		addrs = append(addrs, addr)
	}
	return addrs
}
