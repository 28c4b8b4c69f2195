package nft

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/internal/stateword"
	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/points"
	"github.com/tos-network/gpns/sysaction"
)

var (
	initSlot   = stateword.Slot("nft", nil, "init")
	minterSlot = stateword.Slot("nft", nil, "minter")
	pointsSlot = stateword.Slot("nft", nil, "points")
)

func tokenSlot(id *big.Int, field string) common.Hash {
	return stateword.Slot("nft-token", common.BigToHash(id).Bytes(), field)
}

func balanceSlot(owner common.Address) common.Hash {
	return stateword.Slot("nft-balance", owner.Bytes(), "")
}

// Registrar is a handle to a token registrar deployed at an address.
type Registrar struct {
	addr common.Address
}

func At(addr common.Address) *Registrar { return &Registrar{addr: addr} }

// Default returns the token registrar at params.TokenRegistrarAddress.
func Default() *Registrar { return At(params.TokenRegistrarAddress) }

func (r *Registrar) Address() common.Address { return r.addr }

// Init sets the only account allowed to mint and burn, and the points ledger
// notified of both. A zero ledger address disables the hook.
func (r *Registrar) Init(ctx *sysaction.Context, minter, ledger common.Address) error {
	db := ctx.StateDB
	if stateword.ReadBool(db, r.addr, initSlot) {
		return ErrAlreadyInitialized
	}
	if minter == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := sysaction.Claim(db, r.addr, sysaction.KindNFT); err != nil {
		return err
	}
	stateword.WriteBool(db, r.addr, initSlot, true)
	stateword.WriteAddress(db, r.addr, minterSlot, minter)
	stateword.WriteAddress(db, r.addr, pointsSlot, ledger)
	return nil
}

func (r *Registrar) Minter(db vm.StateDB) common.Address {
	return stateword.ReadAddress(db, r.addr, minterSlot)
}

// OwnerOf returns the owner of id and whether the token exists.
func (r *Registrar) OwnerOf(db vm.StateDB, id *big.Int) (common.Address, bool) {
	owner := stateword.ReadAddress(db, r.addr, tokenSlot(id, "owner"))
	return owner, owner != (common.Address{})
}

func (r *Registrar) Exists(db vm.StateDB, id *big.Int) bool {
	_, ok := r.OwnerOf(db, id)
	return ok
}

func (r *Registrar) TokenURI(db vm.StateDB, id *big.Int) string {
	return stateword.ReadString(db, r.addr, tokenSlot(id, "uri"))
}

// DomainOf returns the domain name id was minted for.
func (r *Registrar) DomainOf(db vm.StateDB, id *big.Int) string {
	return stateword.ReadString(db, r.addr, tokenSlot(id, "domain"))
}

func (r *Registrar) BalanceOf(db vm.StateDB, owner common.Address) uint64 {
	return stateword.ReadUint64(db, r.addr, balanceSlot(owner))
}

func (r *Registrar) checkMinter(ctx *sysaction.Context) error {
	if m := r.Minter(ctx.StateDB); m == (common.Address{}) || m != ctx.From {
		return ErrNotMinter
	}
	return nil
}

func validID(id *big.Int) bool {
	return id != nil && id.Sign() >= 0 && id.BitLen() <= 256
}

// Mint creates token id owned by to.
func (r *Registrar) Mint(ctx *sysaction.Context, to common.Address, id *big.Int, uri, domain string) error {
	if err := r.checkMinter(ctx); err != nil {
		return err
	}
	if !validID(id) {
		return ErrInvalidTokenID
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	db := ctx.StateDB
	if r.Exists(db, id) {
		return ErrTokenExists
	}
	stateword.WriteAddress(db, r.addr, tokenSlot(id, "owner"), to)
	stateword.WriteString(db, r.addr, tokenSlot(id, "uri"), uri)
	stateword.WriteString(db, r.addr, tokenSlot(id, "domain"), domain)
	stateword.WriteUint64(db, r.addr, balanceSlot(to), r.BalanceOf(db, to)+1)

	if err := sysaction.Emit(ctx, r.addr, EventTransfer, &TransferEvent{To: to, TokenID: id}, common.BigToHash(id)); err != nil {
		return err
	}
	r.award(ctx, to, points.ActivityMint)
	return nil
}

// Burn destroys token id together with its metadata.
func (r *Registrar) Burn(ctx *sysaction.Context, id *big.Int) error {
	if err := r.checkMinter(ctx); err != nil {
		return err
	}
	if !validID(id) {
		return ErrInvalidTokenID
	}
	db := ctx.StateDB
	owner, ok := r.OwnerOf(db, id)
	if !ok {
		return ErrTokenNotFound
	}
	stateword.WriteAddress(db, r.addr, tokenSlot(id, "owner"), common.Address{})
	stateword.WriteString(db, r.addr, tokenSlot(id, "uri"), "")
	stateword.WriteString(db, r.addr, tokenSlot(id, "domain"), "")
	if bal := r.BalanceOf(db, owner); bal > 0 {
		stateword.WriteUint64(db, r.addr, balanceSlot(owner), bal-1)
	}
	if err := sysaction.Emit(ctx, r.addr, EventTransfer, &TransferEvent{From: owner, TokenID: id}, common.BigToHash(id)); err != nil {
		return err
	}
	r.award(ctx, owner, points.ActivityBurn)
	return nil
}

// award notifies the points ledger. Its failures are undone locally and
// never fail the mint or burn.
func (r *Registrar) award(ctx *sysaction.Context, account common.Address, activity points.Activity) {
	db := ctx.StateDB
	ledger := stateword.ReadAddress(db, r.addr, pointsSlot)
	if ledger == (common.Address{}) {
		return
	}
	err := sysaction.Atomic(db, func() error {
		return points.At(ledger).Award(ctx.Nested(r.addr), account, activity)
	})
	if err != nil {
		log.Warn("Points hook failed", "ledger", ledger, "account", account, "activity", activity, "err", err)
	}
}
