package sysaction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// EventID returns the topic identifying an event signature such as
// "NameRegistered(string,address,uint64,uint256)".
func EventID(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

// Emit records an event of contract. topics[0] is the event id; data is RLP
// encoded. Logs are journalled and disappear if the action reverts.
func Emit(ctx *Context, contract common.Address, signature string, data interface{}, topics ...common.Hash) error {
	enc, err := rlp.EncodeToBytes(data)
	if err != nil {
		return err
	}
	var number uint64
	if ctx.BlockNumber != nil {
		number = ctx.BlockNumber.Uint64()
	}
	ctx.StateDB.AddLog(&types.Log{
		Address:     contract,
		Topics:      append([]common.Hash{EventID(signature)}, topics...),
		Data:        enc,
		BlockNumber: number,
	})
	return nil
}

// DecodeEvent decodes the data of a log emitted by Emit into dst.
func DecodeEvent(l *types.Log, dst interface{}) error {
	return rlp.DecodeBytes(l.Data, dst)
}
