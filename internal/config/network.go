package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/trebuchet-org/treb-contracts/internal/domain/config"
)

const (
	// DefaultEcosystem prefixes network names given without one
	DefaultEcosystem = "ethereum"
	// DefaultNetwork is used when no network is configured
	DefaultNetwork = "local"

	etherscanAPIURL = "https://api.etherscan.io/v2"
)

type knownNetwork struct {
	chainID   uint64
	name      string
	rpcURL    string
	explorer  string
	ephemeral bool
}

// well-known networks, served by the unified Etherscan API unless ephemeral
var knownNetworks = []knownNetwork{
	{chainID: 1, name: "mainnet", explorer: "etherscan"},
	{chainID: 11155111, name: "sepolia", explorer: "etherscan"},
	{chainID: 17000, name: "holesky", explorer: "etherscan"},
	{chainID: 10, name: "optimism", explorer: "optimistic-etherscan"},
	{chainID: 42161, name: "arbitrum", explorer: "arbiscan"},
	{chainID: 137, name: "polygon", explorer: "polygonscan"},
	{chainID: 8453, name: "base", explorer: "basescan"},
	{chainID: 43114, name: "avalanche", explorer: "snowtrace"},
	{chainID: 250, name: "fantom", explorer: "ftmscan"},
	{chainID: 56, name: "bsc", explorer: "bscscan"},
	{chainID: 42220, name: "celo", explorer: "celoscan"},
	{chainID: 31337, name: "local", rpcURL: "http://localhost:8545", ephemeral: true},
	{chainID: 31337, name: "localhost", rpcURL: "http://localhost:8545", ephemeral: true},
	{chainID: 31337, name: "anvil", rpcURL: "http://localhost:8545", ephemeral: true},
	{chainID: 31337, name: "hardhat", rpcURL: "http://localhost:8545", ephemeral: true},
	{chainID: 1337, name: "ganache", rpcURL: "http://localhost:8545", ephemeral: true},
}

// ephemeralChainIDs are development chains whose state does not outlive the node
var ephemeralChainIDs = map[uint64]bool{31337: true, 1337: true}

// NetworkOverrides carries per-invocation settings that win over foundry.toml
type NetworkOverrides struct {
	RPCURL         string
	ExplorerURL    string
	ExplorerAPIKey string
	Ephemeral      bool
}

// NetworkResolver resolves network names to configurations
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
	byName        map[string]knownNetwork
	byChainID     map[uint64]knownNetwork
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	if foundryConfig == nil {
		foundryConfig = &config.FoundryConfig{}
	}
	r := &NetworkResolver{
		foundryConfig: foundryConfig,
		byName:        make(map[string]knownNetwork),
		byChainID:     make(map[uint64]knownNetwork),
	}
	for _, n := range knownNetworks {
		r.byName[n.name] = n
		if _, ok := r.byChainID[n.chainID]; !ok {
			r.byChainID[n.chainID] = n
		}
	}
	return r
}

// Resolve turns "<ecosystem>:<network>", a bare network name or a chain id
// into a network configuration. Unknown networks resolve without an RPC
// endpoint or explorer so cached data stays reachable offline.
func (r *NetworkResolver) Resolve(input string, overrides NetworkOverrides) (*config.Network, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		input = DefaultNetwork
	}

	ecosystem, name := DefaultEcosystem, input
	if before, after, ok := strings.Cut(input, ":"); ok {
		ecosystem, name = strings.TrimSpace(before), strings.TrimSpace(after)
	}
	if ecosystem == "" || name == "" {
		return nil, fmt.Errorf("invalid network %q: expected <ecosystem>:<network>", input)
	}
	name = strings.ToLower(name)

	known, isKnown := r.byName[name]
	if chainID, err := strconv.ParseUint(name, 10, 64); err == nil {
		known, isKnown = r.byChainID[chainID]
		if isKnown {
			name = known.name
		} else {
			known = knownNetwork{chainID: chainID}
			name = fmt.Sprintf("chain-%d", chainID)
		}
	}

	network := &config.Network{
		Ecosystem: strings.ToLower(ecosystem),
		Name:      name,
		ChainID:   known.chainID,
		RPCURL:    firstNonEmpty(overrides.RPCURL, r.foundryConfig.RpcEndpoints[name], known.rpcURL),
	}
	network.Ephemeral = overrides.Ephemeral || known.ephemeral || ephemeralChainIDs[network.ChainID]

	etherscan := r.foundryConfig.Etherscan[name]
	if network.ChainID == 0 {
		network.ChainID = chainIDOf(etherscan.Chain)
	}

	if !network.Ephemeral {
		explorerURL := firstNonEmpty(overrides.ExplorerURL, etherscan.URL)
		explorerName := explorerNameFromURL(explorerURL)
		if explorerURL == "" && isKnown && known.explorer != "" {
			explorerURL, explorerName = etherscanAPIURL, known.explorer
		}
		if explorerURL != "" {
			network.Explorer = &config.ExplorerConfig{
				Name:   explorerName,
				URL:    explorerURL,
				APIKey: firstNonEmpty(overrides.ExplorerAPIKey, etherscan.Key, os.Getenv("ETHERSCAN_API_KEY")),
			}
		}
	}

	return network, nil
}

// explorerNameFromURL names an explorer after its domain, e.g. api.etherscan.io -> etherscan
func explorerNameFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "explorer"
	}
	labels := strings.Split(u.Hostname(), ".")
	if len(labels) < 2 {
		return labels[0]
	}
	return labels[len(labels)-2]
}

func chainIDOf(v any) uint64 {
	switch c := v.(type) {
	case int64:
		if c > 0 {
			return uint64(c)
		}
	case string:
		if id, err := strconv.ParseUint(c, 10, 64); err == nil {
			return id
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
