package config

// FoundryConfig is the part of foundry.toml the cache reads network settings from
type FoundryConfig struct {
	RpcEndpoints map[string]string          `toml:"rpc_endpoints"`
	Etherscan    map[string]EtherscanConfig `toml:"etherscan,omitempty"`
}

// EtherscanConfig represents Etherscan configuration for a network
// This matches Foundry's expected structure
type EtherscanConfig struct {
	Key   string `toml:"key,omitempty"`   // API key
	URL   string `toml:"url,omitempty"`   // API URL (for custom explorers)
	Chain any    `toml:"chain,omitempty"` // chain id or alias
}
