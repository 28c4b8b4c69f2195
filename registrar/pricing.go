package registrar

import (
	"math/big"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/tos-network/gpns/params"
	"github.com/tos-network/gpns/sysaction"
)

// NameLength is the length of name in code points. The minimum-length check
// and the price tiers both use it.
func NameLength(name string) int {
	return utf8.RuneCountInString(name)
}

// tierRate returns the per-year rent for a name of n code points.
func tierRate(p sysaction.Prices, n int) *big.Int {
	switch {
	case n == 3:
		return p.Price3
	case n <= 5:
		return p.Price4To5
	case n <= 9:
		return p.Price6To9
	default:
		return p.Price10Plus
	}
}

// RentPrice returns the rent of name for the given number of years at the
// current rates.
func (r *Registrar) RentPrice(db vm.StateDB, years uint64, name string) (*big.Int, error) {
	n := NameLength(name)
	if n < params.MinNameLength {
		return nil, ErrNameTooShort
	}
	rate := tierRate(r.readPrices(db), n)
	return new(big.Int).Mul(rate, new(big.Int).SetUint64(years)), nil
}

// Prices returns the current per-year rates.
func (r *Registrar) Prices(db vm.StateDB) sysaction.Prices {
	return r.readPrices(db)
}

func validPrice(p *big.Int) bool {
	return p != nil && p.Sign() > 0 && p.BitLen() <= 256
}

func validPrices(p sysaction.Prices) bool {
	return validPrice(p.Price3) && validPrice(p.Price4To5) && validPrice(p.Price6To9) && validPrice(p.Price10Plus)
}

// SetPrices replaces all four tier rates at once.
func (r *Registrar) SetPrices(ctx *sysaction.Context, p sysaction.Prices) error {
	if err := r.onlyAdmin(ctx); err != nil {
		return err
	}
	if !validPrices(p) {
		return ErrInvalidPriceAmount
	}
	r.writePrices(ctx.StateDB, p)
	ev := &PriceUpdatedEvent{Price3: p.Price3, Price4To5: p.Price4To5, Price6To9: p.Price6To9, Price10Plus: p.Price10Plus}
	return sysaction.Emit(ctx, r.addr, EventPriceUpdated, ev)
}

// DefaultPrices returns the rates used when a deployment specifies none.
func DefaultPrices() sysaction.Prices {
	return sysaction.Prices{
		Price3:      new(big.Int).Set(params.DefaultPrice3Char),
		Price4To5:   new(big.Int).Set(params.DefaultPrice4To5Char),
		Price6To9:   new(big.Int).Set(params.DefaultPrice6To9Char),
		Price10Plus: new(big.Int).Set(params.DefaultPrice10Plus),
	}
}
