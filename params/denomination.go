package params

// These are the multipliers for tos denominations.
// Example: To get the wei value of an amount in 'milli', use
//
//	new(big.Int).Mul(value, big.NewInt(params.Milli))
const (
	Wei   = 1
	GWei  = 1e9
	Milli = 1e15
	TOS   = 1e18
)
