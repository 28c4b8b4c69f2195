// Package namehash implements the hierarchical PNS name hash.
//
// A name is a dot-separated label path. Its node is computed right to left:
//
//	node("")      = 0x00…00
//	node(l.rest)  = keccak256(node(rest) || keccak256(l))
//
// so the node of a subdomain depends only on the parent node and the label,
// which is what lets the registry delegate subtrees independently.
package namehash

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tos-network/gpns/fault"
)

// ErrInvalidName is returned for names containing characters outside
// [A-Za-z0-9-.], and for labels that are empty or contain a dot.
var ErrInvalidName = fault.New(fault.ErrInvalidInput, "namehash: invalid name")

// Root is the node of the empty name.
var Root = common.Hash{}

func validChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.':
		return true
	}
	return false
}

func validate(name string) error {
	for i := 0; i < len(name); i++ {
		if !validChar(name[i]) {
			return fmt.Errorf("%w: %q has invalid character %q at offset %d", ErrInvalidName, name, name[i], i)
		}
	}
	return nil
}

// Labels validates name and returns its labels, left to right. Empty labels
// are dropped, so "a..b", ".a.b" and "a.b." all yield [a b].
func Labels(name string) ([]string, error) {
	if err := validate(name); err != nil {
		return nil, err
	}
	parts := strings.Split(name, ".")
	labels := parts[:0]
	for _, p := range parts {
		if p != "" {
			labels = append(labels, p)
		}
	}
	return labels, nil
}

// Normalize returns name with empty labels removed.
func Normalize(name string) (string, error) {
	labels, err := Labels(name)
	if err != nil {
		return "", err
	}
	return strings.Join(labels, "."), nil
}

// NodeHash computes the node of name.
func NodeHash(name string) (common.Hash, error) {
	labels, err := Labels(name)
	if err != nil {
		return common.Hash{}, err
	}
	node := Root
	for i := len(labels) - 1; i >= 0; i-- {
		node = Subnode(node, LabelHash(labels[i]))
	}
	return node, nil
}

// LabelHash returns keccak256(label).
func LabelHash(label string) common.Hash {
	return crypto.Keccak256Hash([]byte(label))
}

// Subnode returns the node of the child labelled label under parent.
func Subnode(parent, label common.Hash) common.Hash {
	return crypto.Keccak256Hash(parent[:], label[:])
}

// ValidateLabel checks that label is a single non-empty label.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidName)
	}
	if err := validate(label); err != nil {
		return err
	}
	if strings.IndexByte(label, '.') >= 0 {
		return fmt.Errorf("%w: %q is not a single label", ErrInvalidName, label)
	}
	return nil
}

// TokenID is the numeric value of the label hash, used as the id of the
// proof-of-ownership token of a domain.
func TokenID(label string) *big.Int {
	return LabelHash(label).Big()
}
