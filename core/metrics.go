package core

import "github.com/ethereum/go-ethereum/metrics"

var (
	appliedMeter = metrics.NewRegisteredMeter("pns/chain/applied", nil)
	failedMeter  = metrics.NewRegisteredMeter("pns/chain/failed", nil)
	applyTimer   = metrics.NewRegisteredTimer("pns/chain/apply", nil)
)
