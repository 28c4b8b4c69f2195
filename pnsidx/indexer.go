package pnsidx

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/gpns/core"
	"github.com/tos-network/gpns/registrar"
	"github.com/tos-network/gpns/sysaction"
)

// Chain is the minimal chain interface consumed by Indexer. Satisfied by
// core.Chain.
type Chain interface {
	SubscribeLogsEvent(ch chan<- core.LogsEvent) event.Subscription
	LogsAt(number uint64) (core.LogsEvent, bool)
	Head() core.Head
}

var (
	registeredID  = sysaction.EventID(registrar.EventNameRegistered)
	renewedID     = sysaction.EventID(registrar.EventNameRenewed)
	transferredID = sysaction.EventID(registrar.EventDomainTransferred)
)

// Indexer keeps an Index up to date with the events of one registrar.
type Indexer struct {
	chain     Chain
	index     *Index
	registrar common.Address
	quit      chan struct{}
	done      chan struct{}
}

// NewIndexer creates an Indexer following the registrar at addr.
func NewIndexer(chain Chain, index *Index, addr common.Address) *Indexer {
	return &Indexer{
		chain:     chain,
		index:     index,
		registrar: addr,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Sync folds every stored block up to the chain head into the index.
func (idx *Indexer) Sync() {
	head := idx.chain.Head().Number
	for n := idx.index.Head() + 1; n <= head; n++ {
		if ev, ok := idx.chain.LogsAt(n); ok {
			idx.Process(ev)
		}
		idx.index.setHead(n)
	}
}

// Start catches up with the chain and then follows new blocks in a
// background goroutine.
func (idx *Indexer) Start() {
	ch := make(chan core.LogsEvent, 64)
	sub := idx.chain.SubscribeLogsEvent(ch)
	idx.Sync()
	go idx.loop(ch, sub)
}

// Stop shuts down the indexer and waits for it to exit.
func (idx *Indexer) Stop() {
	close(idx.quit)
	<-idx.done
}

func (idx *Indexer) loop(ch <-chan core.LogsEvent, sub event.Subscription) {
	defer close(idx.done)
	defer sub.Unsubscribe()

	for {
		select {
		case ev := <-ch:
			if ev.Number <= idx.index.Head() {
				continue
			}
			idx.Process(ev)
		case err := <-sub.Err():
			if err != nil {
				log.Warn("Domain indexer subscription error", "err", err)
			}
			return
		case <-idx.quit:
			return
		}
	}
}

// Process folds the registrar events of one block into the index.
func (idx *Indexer) Process(ev core.LogsEvent) {
	for _, l := range ev.Logs {
		if l.Address != idx.registrar || len(l.Topics) == 0 {
			continue
		}
		switch l.Topics[0] {
		case registeredID:
			idx.handleRegistered(l, ev.Number)
		case renewedID:
			idx.handleRenewed(l, ev.Number)
		case transferredID:
			idx.handleTransferred(l, ev.Number)
		}
	}
	idx.index.setHead(ev.Number)
}

func (idx *Indexer) handleRegistered(l *types.Log, number uint64) {
	var e registrar.NameRegisteredEvent
	if err := sysaction.DecodeEvent(l, &e); err != nil {
		log.Debug("Domain indexer: bad NameRegistered", "err", err)
		return
	}
	idx.index.Upsert(DomainRecord{
		Name:            e.Name,
		Owner:           e.Owner,
		Expires:         e.Expires,
		TokenID:         e.TokenID,
		RegisteredBlock: number,
		UpdatedBlock:    number,
	})
	log.Debug("Domain indexer: registered", "name", e.Name, "owner", e.Owner, "block", number)
}

func (idx *Indexer) handleRenewed(l *types.Log, number uint64) {
	var e registrar.NameRenewedEvent
	if err := sysaction.DecodeEvent(l, &e); err != nil {
		log.Debug("Domain indexer: bad NameRenewed", "err", err)
		return
	}
	ok := idx.index.update(e.Name, func(r *DomainRecord) {
		r.Expires = e.Expires
		r.UpdatedBlock = number
	})
	if !ok {
		log.Debug("Domain indexer: renewal of unknown domain", "name", e.Name)
	}
}

func (idx *Indexer) handleTransferred(l *types.Log, number uint64) {
	var e registrar.DomainTransferredEvent
	if err := sysaction.DecodeEvent(l, &e); err != nil {
		log.Debug("Domain indexer: bad DomainTransferred", "err", err)
		return
	}
	idx.index.update(e.Name, func(r *DomainRecord) {
		r.Owner = e.NewOwner
		r.TokenID = e.TokenID
		r.UpdatedBlock = number
	})
}
