package namehash

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of resolved names kept by NewCache(0).
const DefaultCacheSize = 4096

// Cache memoizes NodeHash. Only successfully hashed names are cached.
type Cache struct {
	nodes *lru.ARCCache // name -> common.Hash
}

// NewCache creates a Cache holding up to size names.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	nodes, _ := lru.NewARC(size)
	return &Cache{nodes: nodes}
}

// NodeHash returns the node of name, computing it on a miss.
func (c *Cache) NodeHash(name string) (common.Hash, error) {
	if v, ok := c.nodes.Get(name); ok {
		return v.(common.Hash), nil
	}
	node, err := NodeHash(name)
	if err != nil {
		return common.Hash{}, err
	}
	c.nodes.Add(name, node)
	return node, nil
}

// Len returns the number of cached names.
func (c *Cache) Len() int {
	return c.nodes.Len()
}
