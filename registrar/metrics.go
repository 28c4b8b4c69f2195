package registrar

import "github.com/ethereum/go-ethereum/metrics"

var (
	registerMeter = metrics.NewRegisteredMeter("pns/registrar/register", nil)
	renewMeter    = metrics.NewRegisteredMeter("pns/registrar/renew", nil)
	transferMeter = metrics.NewRegisteredMeter("pns/registrar/transfer", nil)
	withdrawMeter = metrics.NewRegisteredMeter("pns/registrar/withdraw", nil)
)
