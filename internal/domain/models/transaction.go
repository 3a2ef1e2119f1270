package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt is the part of a transaction receipt the deployment flow inspects.
type Receipt struct {
	TxHash          common.Hash
	BlockNumber     uint64
	Status          uint64
	GasUsed         uint64
	ContractAddress common.Address
	Logs            []*types.Log
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == types.ReceiptStatusSuccessful
}
