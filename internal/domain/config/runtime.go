package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Network the cache is scoped to, never nil after resolution
	Network *Network

	// Execution settings
	Debug   bool
	JSON    bool // Output in JSON format
	YAML    bool // Output in YAML format
	Timeout time.Duration

	// Resolved configurations
	FoundryConfig *FoundryConfig
}

// Network represents network configuration
type Network struct {
	Ecosystem string          `json:"ecosystem" yaml:"ecosystem"`
	Name      string          `json:"name" yaml:"name"`
	ChainID   uint64          `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	RPCURL    string          `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	Explorer  *ExplorerConfig `json:"explorer,omitempty" yaml:"explorer,omitempty"`
	Ephemeral bool            `json:"ephemeral" yaml:"ephemeral"`
}

// ID returns the "<ecosystem>:<network>" identifier stores are keyed by
func (n *Network) ID() string {
	return n.Ecosystem + ":" + n.Name
}

// ExplorerConfig describes the block explorer serving a network
type ExplorerConfig struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url" yaml:"url"`
	APIKey string `json:"-" yaml:"-"`
}
