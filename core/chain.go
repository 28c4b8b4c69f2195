package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tos-network/gpns/sysaction"
)

var (
	headKey    = []byte("pns-head")
	genesisKey = []byte("pns-genesis")
	logsPrefix = []byte("pns-logs-")

	// ErrNoGenesis is returned by OpenChain when the database holds no chain
	// and no genesis was supplied.
	ErrNoGenesis = errors.New("chain: database not initialized")
)

// Head is the persisted chain head.
type Head struct {
	Root   common.Hash
	Number uint64
	Time   uint64
}

// Message is a plain system-action message.
type Message struct {
	from  common.Address
	to    *common.Address
	value *big.Int
	data  []byte
}

// NewMessage creates a message. A nil value carries no native amount.
func NewMessage(from common.Address, to common.Address, value *big.Int, data []byte) Message {
	if value == nil {
		value = new(big.Int)
	}
	return Message{from: from, to: &to, value: value, data: data}
}

func (m Message) From() common.Address { return m.from }
func (m Message) To() *common.Address   { return m.to }
func (m Message) Value() *big.Int       { return m.value }
func (m Message) Data() []byte          { return m.data }

// Receipt describes one applied action.
type Receipt struct {
	TxHash common.Hash
	Number uint64
	Time   uint64
	Root   common.Hash
	Logs   []*types.Log
}

// LogsEvent is posted on the chain feed after an action commits.
type LogsEvent struct {
	Number uint64
	Time   uint64
	Logs   []*types.Log
}

// Chain applies system actions one per block against a committed state.
// Apply calls are serialized.
type Chain struct {
	mu      sync.Mutex
	db      ethdb.Database
	sdb     state.Database
	statedb *state.StateDB
	head    Head
	genesis *Genesis
	host    *sysaction.Host
	clock   func() uint64

	logsFeed event.Feed
	scope    event.SubscriptionScope
}

// WallClock returns the current unix time.
func WallClock() uint64 { return uint64(time.Now().Unix()) }

// OpenChain opens the chain stored in db. If db is empty, the chain is
// created from genesis; a nil genesis then yields ErrNoGenesis. A nil clock
// uses WallClock.
func OpenChain(db ethdb.Database, genesis *Genesis, clock func() uint64) (*Chain, error) {
	if clock == nil {
		clock = WallClock
	}
	c := &Chain{db: db, sdb: state.NewDatabase(db), clock: clock}
	if enc, err := db.Get(headKey); err == nil && len(enc) > 0 {
		if err := rlp.DecodeBytes(enc, &c.head); err != nil {
			return nil, fmt.Errorf("chain: corrupt head: %w", err)
		}
		genc, err := db.Get(genesisKey)
		if err != nil {
			return nil, fmt.Errorf("chain: missing genesis: %w", err)
		}
		if c.genesis, err = unmarshalGenesis(genc); err != nil {
			return nil, fmt.Errorf("chain: corrupt genesis: %w", err)
		}
		c.host = c.genesis.Host()
		if c.statedb, err = state.New(c.head.Root, c.sdb, nil); err != nil {
			return nil, err
		}
		log.Debug("Opened PNS chain", "number", c.head.Number, "root", c.head.Root)
		return c, nil
	}
	if genesis == nil {
		return nil, ErrNoGenesis
	}
	if err := c.initGenesis(genesis); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chain) initGenesis(g *Genesis) error {
	if g.Time == 0 {
		g.Time = c.clock()
	}
	statedb, err := state.New(common.Hash{}, c.sdb, nil)
	if err != nil {
		return err
	}
	host := g.Host()
	if err := g.Deploy(statedb, host); err != nil {
		return err
	}
	enc, err := g.marshal()
	if err != nil {
		return err
	}
	if err := c.db.Put(genesisKey, enc); err != nil {
		return err
	}
	c.statedb, c.genesis, c.host = statedb, g, host
	return c.commit(Head{Number: 0, Time: g.Time})
}

func logsKey(number uint64) []byte {
	key := make([]byte, len(logsPrefix)+8)
	copy(key, logsPrefix)
	binary.BigEndian.PutUint64(key[len(logsPrefix):], number)
	return key
}

type storedLogs struct {
	Time uint64
	Logs []*types.Log
}

// LogsAt returns the logs committed in block number. Only the consensus
// fields of each log are stored; the positional fields are restored from the
// block.
func (c *Chain) LogsAt(number uint64) (LogsEvent, bool) {
	enc, err := c.db.Get(logsKey(number))
	if err != nil {
		return LogsEvent{}, false
	}
	var stored storedLogs
	if err := rlp.DecodeBytes(enc, &stored); err != nil {
		log.Error("Corrupt stored logs", "number", number, "err", err)
		return LogsEvent{}, false
	}
	for i, l := range stored.Logs {
		l.BlockNumber = number
		l.Index = uint(i)
	}
	return LogsEvent{Number: number, Time: stored.Time, Logs: stored.Logs}, true
}

// commit flushes the state to disk and records head.
func (c *Chain) commit(head Head) error {
	root, err := c.statedb.Commit(false)
	if err != nil {
		return err
	}
	if err := c.sdb.TrieDB().Commit(root, false, nil); err != nil {
		return err
	}
	head.Root = root
	enc, err := rlp.EncodeToBytes(&head)
	if err != nil {
		return err
	}
	if err := c.db.Put(headKey, enc); err != nil {
		return err
	}
	if c.statedb, err = state.New(root, c.sdb, nil); err != nil {
		return err
	}
	c.head = head
	return nil
}

// Apply executes msg in a new block. On failure the state is left at the
// previous head and no block is produced.
func (c *Chain) Apply(msg sysaction.Msg) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	now := c.clock()
	if now < c.head.Time {
		now = c.head.Time
	}
	number := c.head.Number + 1
	txHash := crypto.Keccak256Hash(msg.From().Bytes(), new(big.Int).SetUint64(number).Bytes(), msg.Data())
	c.statedb.Prepare(txHash, 0)

	env := sysaction.Env{Time: now, BlockNumber: new(big.Int).SetUint64(number), Host: c.host}
	if err := sysaction.Execute(msg, c.statedb, env); err != nil {
		failedMeter.Mark(1)
		statedb, serr := state.New(c.head.Root, c.sdb, nil)
		if serr != nil {
			return nil, serr
		}
		c.statedb = statedb
		return nil, err
	}
	logs := c.statedb.Logs()
	if len(logs) > 0 {
		enc, err := rlp.EncodeToBytes(&storedLogs{Time: now, Logs: logs})
		if err != nil {
			return nil, err
		}
		if err := c.db.Put(logsKey(number), enc); err != nil {
			return nil, err
		}
	}
	if err := c.commit(Head{Number: number, Time: now}); err != nil {
		return nil, err
	}
	appliedMeter.Mark(1)
	applyTimer.UpdateSince(start)

	if len(logs) > 0 {
		c.logsFeed.Send(LogsEvent{Number: number, Time: now, Logs: logs})
	}
	return &Receipt{TxHash: txHash, Number: number, Time: now, Root: c.head.Root, Logs: logs}, nil
}

// Act builds and applies an action of kind from sender.
func (c *Chain) Act(from, to common.Address, value *big.Int, kind sysaction.ActionKind, payload interface{}) (*Receipt, error) {
	data, err := sysaction.MakeSysAction(kind, payload)
	if err != nil {
		return nil, err
	}
	return c.Apply(NewMessage(from, to, value, data))
}

// View runs fn against the head state. fn must not modify it.
func (c *Chain) View(fn func(db vm.StateDB, now uint64) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	if now < c.head.Time {
		now = c.head.Time
	}
	return fn(c.statedb.Copy(), now)
}

// Head returns the current chain head.
func (c *Chain) Head() Head {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

// Genesis returns the genesis the chain was created from.
func (c *Chain) Genesis() *Genesis { return c.genesis }

// Host returns the contract bindings of the chain.
func (c *Chain) Host() *sysaction.Host { return c.host }

// SubscribeLogsEvent registers a subscription for committed logs.
func (c *Chain) SubscribeLogsEvent(ch chan<- LogsEvent) event.Subscription {
	return c.scope.Track(c.logsFeed.Subscribe(ch))
}

// Close unsubscribes every feed subscriber. The database is owned by the
// caller.
func (c *Chain) Close() {
	c.scope.Close()
}
