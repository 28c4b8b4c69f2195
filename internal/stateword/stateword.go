// Package stateword derives storage slots and reads/writes typed 32-byte
// words in a contract's storage.
package stateword

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
)

const chunkSize = 32

// Slot hashes (tag || 0x00 || key || 0x00 || field). The separators keep
// variable-length keys from colliding with fields.
func Slot(tag string, key []byte, field string) common.Hash {
	buf := make([]byte, 0, len(tag)+len(key)+len(field)+2)
	buf = append(buf, tag...)
	buf = append(buf, 0x00)
	buf = append(buf, key...)
	buf = append(buf, 0x00)
	buf = append(buf, field...)
	return common.BytesToHash(crypto.Keccak256(buf))
}

// Field derives a sub-slot of base.
func Field(base common.Hash, field string) common.Hash {
	buf := make([]byte, 0, len(base)+1+len(field))
	buf = append(buf, base[:]...)
	buf = append(buf, 0x00)
	buf = append(buf, field...)
	return common.BytesToHash(crypto.Keccak256(buf))
}

func chunkSlot(base common.Hash, index uint64) common.Hash {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	buf := make([]byte, 0, len(base)+1+len("chunk")+8)
	buf = append(buf, base[:]...)
	buf = append(buf, 0x00)
	buf = append(buf, []byte("chunk")...)
	buf = append(buf, idx[:]...)
	return common.BytesToHash(crypto.Keccak256(buf))
}

func ReadUint64(db vm.StateDB, contract common.Address, slot common.Hash) uint64 {
	raw := db.GetState(contract, slot)
	return binary.BigEndian.Uint64(raw[24:])
}

func WriteUint64(db vm.StateDB, contract common.Address, slot common.Hash, n uint64) {
	var word common.Hash
	binary.BigEndian.PutUint64(word[24:], n)
	db.SetState(contract, slot, word)
}

func ReadBool(db vm.StateDB, contract common.Address, slot common.Hash) bool {
	return db.GetState(contract, slot)[31] != 0
}

func WriteBool(db vm.StateDB, contract common.Address, slot common.Hash, v bool) {
	var word common.Hash
	if v {
		word[31] = 1
	}
	db.SetState(contract, slot, word)
}

// ReadAddress reads a right-aligned address.
func ReadAddress(db vm.StateDB, contract common.Address, slot common.Hash) common.Address {
	raw := db.GetState(contract, slot)
	return common.BytesToAddress(raw[12:])
}

func WriteAddress(db vm.StateDB, contract common.Address, slot common.Hash, addr common.Address) {
	var word common.Hash
	copy(word[12:], addr.Bytes())
	db.SetState(contract, slot, word)
}

// ReadBig reads an unsigned 256-bit integer.
func ReadBig(db vm.StateDB, contract common.Address, slot common.Hash) *big.Int {
	return db.GetState(contract, slot).Big()
}

// WriteBig stores v, which must be non-negative and at most 256 bits wide.
func WriteBig(db vm.StateDB, contract common.Address, slot common.Hash, v *big.Int) {
	db.SetState(contract, slot, common.BigToHash(v))
}

func chunkCount(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return (n + chunkSize - 1) / chunkSize
}

// ReadString reads a string stored by WriteString at base.
func ReadString(db vm.StateDB, contract common.Address, base common.Hash) string {
	n := ReadUint64(db, contract, Field(base, "len"))
	if n == 0 {
		return ""
	}
	value := make([]byte, n)
	for i := uint64(0); i < chunkCount(n); i++ {
		word := db.GetState(contract, chunkSlot(base, i))
		start := i * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		copy(value[start:end], word[:end-start])
	}
	return string(value)
}

// WriteString stores s in 32-byte chunks at base, clearing any chunks left
// over from a longer previous value.
func WriteString(db vm.StateDB, contract common.Address, base common.Hash, s string) {
	oldLen := ReadUint64(db, contract, Field(base, "len"))
	value := []byte(s)
	n := uint64(len(value))
	for i := uint64(0); i < chunkCount(n); i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		var word common.Hash
		copy(word[:], value[start:end])
		db.SetState(contract, chunkSlot(base, i), word)
	}
	for i := chunkCount(n); i < chunkCount(oldLen); i++ {
		db.SetState(contract, chunkSlot(base, i), common.Hash{})
	}
	WriteUint64(db, contract, Field(base, "len"), n)
}
