package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// DeploymentRecord is one entry of the deployment history of a contract type on a network
type DeploymentRecord struct {
	Address     common.Address `json:"address" yaml:"address"`
	TxHash      *common.Hash   `json:"transactionHash,omitempty" yaml:"transactionHash,omitempty"`
	BlockNumber *uint64        `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
}
