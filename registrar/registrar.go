package registrar

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/namehash"
	"github.com/tos-network/gpns/nft"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/registry"
	"github.com/tos-network/gpns/sysaction"
)

// Registrar is a handle to a rental registrar deployed at an address.
type Registrar struct {
	addr common.Address
}

func At(addr common.Address) *Registrar { return &Registrar{addr: addr} }

// Default returns the registrar at params.RegistrarAddress.
func Default() *Registrar { return At(params.RegistrarAddress) }

func (r *Registrar) Address() common.Address { return r.addr }

// Init deploys the registrar with the caller as administrator. The caller
// or the registrar itself must already own root in the registry.
func (r *Registrar) Init(ctx *sysaction.Context, p *sysaction.RegistrarInitPayload) error {
	db := ctx.StateDB
	if r.initialized(db) {
		return ErrAlreadyInitialized
	}
	if p.Registry == (common.Address{}) || p.TokenRegistrar == (common.Address{}) {
		return ErrZeroAddress
	}
	if p.RootNode == (common.Hash{}) {
		return ErrInvalidRootNode
	}
	if owner := registry.At(p.Registry).Owner(db, p.RootNode); owner != ctx.From && owner != r.addr {
		return fmt.Errorf("%w: root %x owned by %x", ErrRootNotOwned, p.RootNode, owner)
	}
	if !validPrices(p.Prices) {
		return ErrInvalidPriceAmount
	}
	if err := sysaction.Claim(db, r.addr, sysaction.KindRegistrar); err != nil {
		return err
	}
	r.writeConfig(db, Config{
		Admin:          ctx.From,
		Registry:       p.Registry,
		TokenRegistrar: p.TokenRegistrar,
		RootNode:       p.RootNode,
	})
	r.writePrices(db, p.Prices)
	return nil
}

func (r *Registrar) onlyAdmin(ctx *sysaction.Context) error {
	if !r.initialized(ctx.StateDB) {
		return ErrNotInitialized
	}
	if ctx.From != r.Config(ctx.StateDB).Admin {
		return ErrNotAuthorized
	}
	return nil
}

// State returns the lifecycle state of name at time now.
func (r *Registrar) State(db vm.StateDB, name string, now uint64) State {
	d := r.Domain(db, name)
	switch {
	case d.Owner == (common.Address{}) && d.Expires == 0:
		return Unregistered
	case d.Expires < now:
		return Expired
	}
	return Active
}

// IsAvailable reports whether name can be registered at time now.
func (r *Registrar) IsAvailable(db vm.StateDB, name string, now uint64) bool {
	return r.Domain(db, name).Expires < now
}

func (r *Registrar) DomainExpires(db vm.StateDB, name string) uint64 {
	return r.Domain(db, name).Expires
}

func (r *Registrar) DomainOwner(db vm.StateDB, name string) common.Address {
	return r.Domain(db, name).Owner
}

// TokenID returns the proof-of-ownership token id of name.
func TokenID(name string) *big.Int {
	return namehash.TokenID(name)
}

// expiry returns base + years flat 365-day years.
func expiry(base, years uint64) (uint64, error) {
	if years > (math.MaxUint64-base)/params.RentYear {
		return 0, ErrDurationOverflow
	}
	return base + years*params.RentYear, nil
}

// charge checks the attached value against the rent and moves it into the
// registrar. Overpayment is kept.
func (r *Registrar) charge(ctx *sysaction.Context, years uint64, name string) error {
	price, err := r.RentPrice(ctx.StateDB, years, name)
	if err != nil {
		return err
	}
	provided := ctx.Value
	if provided == nil {
		provided = new(big.Int)
	}
	if provided.Cmp(price) < 0 {
		return &InsufficientPaymentError{Required: price, Provided: new(big.Int).Set(provided)}
	}
	_, err = sysaction.CollectValue(ctx, r.addr)
	return err
}

// assignSubnode re-checks that the registrar controls the root node and
// hands the child of name to owner. With reset set, a resolver or TTL left
// by a previous registration is dropped so the name pays the new owner.
func (r *Registrar) assignSubnode(ctx *sysaction.Context, cfg Config, name string, owner common.Address, reset bool) error {
	db := ctx.StateDB
	reg := registry.At(cfg.Registry)
	if got := reg.Owner(db, cfg.RootNode); got != r.addr {
		return fmt.Errorf("%w: root %x owned by %x", ErrRootNotOwned, cfg.RootNode, got)
	}
	nctx := ctx.Nested(r.addr)
	label := namehash.LabelHash(name)
	child := namehash.Subnode(cfg.RootNode, label)
	if !reset || (reg.Resolver(db, child) == (common.Address{}) && reg.TTL(db, child) == 0) {
		_, err := reg.SetSubnodeOwner(nctx, cfg.RootNode, label, owner)
		return err
	}
	if _, err := reg.SetSubnodeOwner(nctx, cfg.RootNode, label, r.addr); err != nil {
		return err
	}
	return reg.SetRecord(nctx, child, owner, common.Address{}, 0)
}

// remint burns the token of name if it exists and mints a fresh one to owner.
func (r *Registrar) remint(ctx *sysaction.Context, cfg Config, name string, owner common.Address, uri string) error {
	tokens := nft.At(cfg.TokenRegistrar)
	id := TokenID(name)
	nctx := ctx.Nested(r.addr)
	if tokens.Exists(ctx.StateDB, id) {
		if err := tokens.Burn(nctx, id); err != nil {
			return err
		}
	}
	return tokens.Mint(nctx, owner, id, uri, name)
}

// Register rents name to owner for years, paid with the attached value.
func (r *Registrar) Register(ctx *sysaction.Context, name string, owner common.Address, years uint64, tokenURI string) error {
	db := ctx.StateDB
	if !r.initialized(db) {
		return ErrNotInitialized
	}
	if NameLength(name) < params.MinNameLength {
		return ErrNameTooShort
	}
	if years < 1 {
		return ErrInsufficientDuration
	}
	if owner == (common.Address{}) {
		return ErrInvalidNewOwner
	}
	if err := namehash.ValidateLabel(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if !r.IsAvailable(db, name, ctx.Time) {
		return fmt.Errorf("%w: %q", ErrDomainNotAvailable, name)
	}
	expires, err := expiry(ctx.Time, years)
	if err != nil {
		return err
	}
	if err := r.charge(ctx, years, name); err != nil {
		return err
	}
	cfg := r.Config(db)
	r.writeDomain(db, name, Domain{Owner: owner, Expires: expires})
	if err := r.assignSubnode(ctx, cfg, name, owner, true); err != nil {
		return err
	}
	if err := r.remint(ctx, cfg, name, owner, tokenURI); err != nil {
		return err
	}
	registerMeter.Mark(1)
	log.Debug("Domain registered", "name", name, "owner", owner, "expires", expires)

	id := TokenID(name)
	ev := &NameRegisteredEvent{Name: name, Owner: owner, Expires: expires, TokenID: id}
	return sysaction.Emit(ctx, r.addr, EventNameRegistered, ev, namehash.LabelHash(name), common.BytesToHash(owner.Bytes()))
}

// Renew extends name by years. An expired domain restarts from now; an
// active one is extended from its current expiry.
func (r *Registrar) Renew(ctx *sysaction.Context, name string, years uint64) error {
	db := ctx.StateDB
	if !r.initialized(db) {
		return ErrNotInitialized
	}
	d := r.Domain(db, name)
	if r.State(db, name, ctx.Time) == Unregistered {
		return fmt.Errorf("%w: %q", ErrDomainNotRegistered, name)
	}
	if ctx.From != d.Owner {
		return ErrNotDomainOwner
	}
	if years < 1 {
		return ErrInsufficientDuration
	}
	base := d.Expires
	if d.Expires < ctx.Time {
		base = ctx.Time
	}
	expires, err := expiry(base, years)
	if err != nil {
		return err
	}
	if err := r.charge(ctx, years, name); err != nil {
		return err
	}
	d.Expires = expires
	r.writeDomain(db, name, d)
	renewMeter.Mark(1)
	log.Debug("Domain renewed", "name", name, "expires", expires)

	ev := &NameRenewedEvent{Name: name, Owner: d.Owner, Expires: expires}
	return sysaction.Emit(ctx, r.addr, EventNameRenewed, ev, namehash.LabelHash(name))
}

// TransferOwnership hands an active domain, its registry subnode and its
// token to newOwner. Expiry is unchanged.
func (r *Registrar) TransferOwnership(ctx *sysaction.Context, name string, newOwner common.Address) error {
	db := ctx.StateDB
	if !r.initialized(db) {
		return ErrNotInitialized
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidNewOwner
	}
	state := r.State(db, name, ctx.Time)
	if state == Unregistered {
		return fmt.Errorf("%w: %q", ErrDomainNotRegistered, name)
	}
	d := r.Domain(db, name)
	if ctx.From != d.Owner {
		return ErrNotDomainOwner
	}
	if state == Expired {
		return fmt.Errorf("%w: %q expired at %d", ErrDomainExpired, name, d.Expires)
	}
	cfg := r.Config(db)
	previous := d.Owner
	d.Owner = newOwner
	r.writeDomain(db, name, d)
	if err := r.assignSubnode(ctx, cfg, name, newOwner, false); err != nil {
		return err
	}
	id := TokenID(name)
	uri := nft.At(cfg.TokenRegistrar).TokenURI(db, id)
	if err := r.remint(ctx, cfg, name, newOwner, uri); err != nil {
		return err
	}
	transferMeter.Mark(1)
	log.Debug("Domain transferred", "name", name, "from", previous, "to", newOwner)

	ev := &DomainTransferredEvent{Name: name, PreviousOwner: previous, NewOwner: newOwner, TokenID: id}
	return sysaction.Emit(ctx, r.addr, EventDomainTransferred, ev, namehash.LabelHash(name))
}

// Withdraw sends the registrar's whole balance to the administrator.
func (r *Registrar) Withdraw(ctx *sysaction.Context) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	db := ctx.StateDB
	amount := new(big.Int).Set(db.GetBalance(r.addr))
	if amount.Sign() == 0 {
		return ErrNoFundsToWithdraw
	}
	admin := r.Config(db).Admin
	if err := sysaction.Transfer(ctx, r.addr, admin, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	withdrawMeter.Mark(1)
	log.Info("Registrar funds withdrawn", "to", admin, "amount", amount)
	return sysaction.Emit(ctx, r.addr, EventFundsWithdrawn, &FundsWithdrawnEvent{To: admin, Amount: amount})
}
