// Package pnsidx keeps an in-memory index of registered domains, built from
// the events the registrar commits to the chain.
package pnsidx

import (
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// DomainRecord is the indexed view of one registrar domain.
type DomainRecord struct {
	Name            string
	Owner           common.Address
	Expires         uint64
	TokenID         *big.Int
	RegisteredBlock uint64
	UpdatedBlock    uint64
}

// Active reports whether the record is unexpired at now.
func (r DomainRecord) Active(now uint64) bool { return r.Expires >= now }

// Index is a concurrency-safe domain index keyed by label.
type Index struct {
	mu      sync.RWMutex
	records map[string]*DomainRecord
	head    uint64
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{records: make(map[string]*DomainRecord)}
}

// Upsert inserts or replaces a record.
func (x *Index) Upsert(rec DomainRecord) {
	x.mu.Lock()
	defer x.mu.Unlock()
	clone := rec
	x.records[rec.Name] = &clone
}

// Get returns the record of name, or false if it was never registered.
func (x *Index) Get(name string) (DomainRecord, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.records[name]
	if !ok {
		return DomainRecord{}, false
	}
	return *p, true
}

func (x *Index) update(name string, fn func(*DomainRecord)) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	p, ok := x.records[name]
	if ok {
		fn(p)
	}
	return ok
}

// Filter selects records in Query. A zero Owner matches every owner.
type Filter struct {
	Owner         common.Address
	Now           uint64
	IncludeExpiry bool
	Limit         int
}

// Query returns records matching f ordered by name.
func (x *Index) Query(f Filter) []DomainRecord {
	x.mu.RLock()
	var out []DomainRecord
	for _, rec := range x.records {
		if f.Owner != (common.Address{}) && rec.Owner != f.Owner {
			continue
		}
		if !f.IncludeExpiry && !rec.Active(f.Now) {
			continue
		}
		out = append(out, *rec)
	}
	x.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Len returns the number of indexed domains.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Head returns the last block folded into the index.
func (x *Index) Head() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.head
}

func (x *Index) setHead(number uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if number > x.head {
		x.head = number
	}
}
