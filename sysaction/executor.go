package sysaction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/fault"
	"github.com/tos-network/gpns/params"
)

// ErrUnknownAction is returned when no registered handler owns an action kind.
var ErrUnknownAction = fault.New(fault.ErrInvalidInput, "unknown system action")

// Context carries information available to a system-action handler.
type Context struct {
	From        common.Address
	To          common.Address
	Value       *big.Int
	Time        uint64
	BlockNumber *big.Int
	StateDB     vm.StateDB
	Host        *Host
}

// Nested returns the context seen by a contract that caller invokes during
// the current action. Value is never forwarded; native value moves only
// through Transfer.
func (c *Context) Nested(caller common.Address) *Context {
	return &Context{
		From:        caller,
		Value:       new(big.Int),
		Time:        c.Time,
		BlockNumber: c.BlockNumber,
		StateDB:     c.StateDB,
		Host:        c.Host,
	}
}

// WithValue returns a copy of c carrying value.
func (c *Context) WithValue(value *big.Int) *Context {
	cpy := *c
	cpy.Value = value
	return &cpy
}

// Target returns the contract the action is addressed to, or def when the
// message went to the shared system action address.
func (c *Context) Target(def common.Address) common.Address {
	if c.To == (common.Address{}) || c.To == params.SystemActionAddress {
		return def
	}
	return c.To
}

func (c *Context) value() *big.Int {
	if c.Value == nil {
		return new(big.Int)
	}
	return c.Value
}

// Handler is implemented by every PNS system contract.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) error
}

// Registry holds registered handlers.
type Registry struct{ handlers []Handler }

// DefaultRegistry is the process-wide handler registry.
var DefaultRegistry = &Registry{}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) { r.handlers = append(r.handlers, h) }

// Lookup returns the handler owning kind.
func (r *Registry) Lookup(kind ActionKind) (Handler, bool) {
	for _, h := range r.handlers {
		if h.CanHandle(kind) {
			return h, true
		}
	}
	return nil, false
}

// Msg is the minimal message interface for Execute.
type Msg interface {
	From() common.Address
	To() *common.Address
	Value() *big.Int
	Data() []byte
}

// Env is the block environment an action executes in.
type Env struct {
	Time        uint64
	BlockNumber *big.Int
	Host        *Host
}

// Execute decodes msg and dispatches it to the owning handler. The state is
// reverted to its pre-action snapshot on any failure.
func Execute(msg Msg, db vm.StateDB, env Env) error {
	ctx := &Context{
		From:        msg.From(),
		Value:       msg.Value(),
		Time:        env.Time,
		BlockNumber: env.BlockNumber,
		StateDB:     db,
		Host:        env.Host,
	}
	if to := msg.To(); to != nil {
		ctx.To = *to
	}
	return ExecuteWithContext(ctx, msg.Data())
}

// ExecuteWithContext dispatches using a pre-built Context.
func ExecuteWithContext(ctx *Context, data []byte) error {
	sa, err := Decode(data)
	if err != nil {
		return err
	}
	h, ok := DefaultRegistry.Lookup(sa.Action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, sa.Action)
	}
	return Atomic(ctx.StateDB, func() error {
		if err := h.Handle(ctx, sa); err != nil {
			log.Debug("System action failed", "action", sa.Action, "from", ctx.From, "err", err)
			return err
		}
		return nil
	})
}

// Atomic runs fn and discards every state change it made if it fails.
func Atomic(db vm.StateDB, fn func() error) error {
	snap := db.Snapshot()
	if err := fn(); err != nil {
		db.RevertToSnapshot(snap)
		return err
	}
	return nil
}
