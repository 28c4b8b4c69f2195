package router

import "github.com/ethereum/go-ethereum/metrics"

var (
	paymentMeter      = metrics.NewRegisteredMeter("pns/router/payments", nil)
	batchMeter        = metrics.NewRegisteredMeter("pns/router/batches", nil)
	feeSentMeter      = metrics.NewRegisteredMeter("pns/router/fee/sent", nil)
	feeRecoveredMeter = metrics.NewRegisteredMeter("pns/router/fee/recovered", nil)
)
