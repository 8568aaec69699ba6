package usecase

import (
	"context"
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// AddressStore is an address-keyed map whose writes go straight to durable storage
type AddressStore[V any] interface {
	Get(addr common.Address) (V, bool)
	Set(addr common.Address, value V) error
	Delete(addr common.Address) error
	Has(addr common.Address) bool
	Keys() iter.Seq[common.Address]
	Len() int
	// ClearMemory drops cached values without touching durable storage
	ClearMemory()
	// Clear drops cached values and durable storage
	Clear() error
}

// ContractTypeStore maps addresses to contract types
type ContractTypeStore = AddressStore[models.ContractType]

// ProxyInfoStore maps proxy addresses to their descriptors. Set rejects
// descriptors that are not proxies or have no target.
type ProxyInfoStore = AddressStore[models.ProxyInfo]

// CreationStore records contract creation metadata, first writer wins
type CreationStore interface {
	AddressStore[models.ContractCreation]
	GetOrFetch(ctx context.Context, addr common.Address, fetch func(context.Context, common.Address) (*models.ContractCreation, error)) (*models.ContractCreation, error)
}

// NetworkStores groups the stores of one network
type NetworkStores interface {
	Network() string
	Live() bool
	ContractTypes() ContractTypeStore
	Blueprints() ContractTypeStore
	ProxyInfos() ProxyInfoStore
	Creations() CreationStore
	ClearMemory()
	Clear() error
}

// DeploymentIndex keeps the ordered deployment history of contract types per network
type DeploymentIndex interface {
	Append(contractName, network string, record models.DeploymentRecord) error
	GetAll(contractName, network string) []models.DeploymentRecord
	ContractNames(network string) []string
	ClearMemory(network string)
	Clear(network string) error
}

// StoreFactory opens stores lazily per network
type StoreFactory interface {
	Stores(network string, live bool) (NetworkStores, error)
	Deployments() (DeploymentIndex, error)
}

// ProxyDetector recognises proxies from runtime bytecode without doing I/O
type ProxyDetector interface {
	Detect(code []byte) models.ProxyInfo
}

// BytecodeFetcher retrieves deployed code
type BytecodeFetcher interface {
	GetRuntimeBytecode(ctx context.Context, addr common.Address) ([]byte, error)
}

// ProxyStateReader reads the state a proxy keeps its target in
type ProxyStateReader interface {
	GetStorageAt(ctx context.Context, addr common.Address, slot common.Hash) (common.Hash, error)
	CallContract(ctx context.Context, addr common.Address, data []byte) ([]byte, error)
}

// CreationFetcher looks up how a contract was created. It returns nil, nil when
// the node cannot tell.
type CreationFetcher interface {
	GetContractCreation(ctx context.Context, addr common.Address) (*models.ContractCreation, error)
}

// ChainReader is everything the cache needs from a node
type ChainReader interface {
	BytecodeFetcher
	ProxyStateReader
	CreationFetcher
}

// ExplorerClient fetches verified contract types from a block explorer
type ExplorerClient interface {
	Name() string
	GetContractType(ctx context.Context, addr common.Address) (*models.ContractType, error)
}

// NetworkContext describes the network the cache is scoped to
type NetworkContext interface {
	// NetworkID is "<ecosystem>:<network>", e.g. "ethereum:sepolia"
	NetworkID() string
	// IsLive is false for local development chains whose state does not outlive the process
	IsLive() bool
	// ExplorerName is empty when no explorer is configured
	ExplorerName() string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
