package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// ContractCreation records how and when a contract came to exist. Creation facts
// never change, so stores keep the first value they are given.
type ContractCreation struct {
	TxHash   common.Hash     `json:"txnHash" yaml:"txnHash"`
	Block    uint64          `json:"block" yaml:"block"`
	Deployer common.Address  `json:"deployer" yaml:"deployer"`
	Factory  *common.Address `json:"factory,omitempty" yaml:"factory,omitempty"`
}
