package adapters

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/wire"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/blockchain"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/explorer"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/network"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/progress"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/proxy"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/repository/cache"
	"github.com/trebuchet-org/treb-contracts/internal/domain/config"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

const chainIDLookupTimeout = 5 * time.Second

// ProvideStoreFactory provides the cache store factory rooted at the data dir
func ProvideStoreFactory(cfg *config.RuntimeConfig, log *slog.Logger) *cache.Factory {
	return cache.NewFactory(cfg.DataDir, log)
}

// ProvideChainClient dials the network's RPC endpoint. Networks without one get
// no client and the cache works from stored data only.
func ProvideChainClient(cfg *config.RuntimeConfig, log *slog.Logger) (*blockchain.Client, func(), error) {
	if cfg.Network.RPCURL == "" {
		return nil, func() {}, nil
	}
	client, err := blockchain.Dial(context.Background(), cfg.Network.RPCURL, log)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// ProvideChainReader exposes the client as a port, keeping the interface nil
// when there is no client
func ProvideChainReader(client *blockchain.Client) usecase.ChainReader {
	if client == nil {
		return nil
	}
	return client
}

// ProvideExplorerClient creates the explorer client of the active network.
// Unknown chain ids are asked from the node.
func ProvideExplorerClient(cfg *config.RuntimeConfig, client *blockchain.Client, log *slog.Logger) (usecase.ExplorerClient, error) {
	exp := cfg.Network.Explorer
	if exp == nil {
		return nil, nil
	}

	chainID := cfg.Network.ChainID
	if chainID == 0 && client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), chainIDLookupTimeout)
		defer cancel()
		id, err := client.ChainID(ctx)
		if err != nil {
			log.Debug("could not determine chain id for explorer", "network", cfg.Network.ID(), "error", err)
		} else {
			chainID = id
			cfg.Network.ChainID = id
		}
	}

	c, err := explorer.NewClient(explorer.Config{
		Name:    exp.Name,
		BaseURL: exp.URL,
		APIKey:  exp.APIKey,
		ChainID: chainID,
		Timeout: cfg.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ProvideProgressSink shows a spinner unless output is machine readable
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON || cfg.YAML {
		return progress.NewNopSink()
	}
	return progress.NewSpinnerSink()
}

// CacheSet provides the file-backed stores
var CacheSet = wire.NewSet(
	ProvideStoreFactory,
	wire.Bind(new(usecase.StoreFactory), new(*cache.Factory)),
)

// ProxySet provides bytecode proxy detection
var ProxySet = wire.NewSet(
	proxy.NewDetector,
	wire.Bind(new(usecase.ProxyDetector), new(*proxy.Detector)),
)

// BlockchainSet provides node access
var BlockchainSet = wire.NewSet(
	ProvideChainClient,
	ProvideChainReader,
)

// ExplorerSet provides block explorer access
var ExplorerSet = wire.NewSet(
	ProvideExplorerClient,
)

// NetworkSet provides the active network
var NetworkSet = wire.NewSet(
	network.ProvideContext,
)

// ProgressSet provides progress reporting
var ProgressSet = wire.NewSet(
	ProvideProgressSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	CacheSet,
	ProxySet,
	BlockchainSet,
	ExplorerSet,
	NetworkSet,
	ProgressSet,
)
