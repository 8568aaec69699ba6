package cache

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-contracts/internal/domain"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

const (
	ContractTypesFile    = "contract_types.json"
	BlueprintsFile       = "blueprints.json"
	ProxyInfoFile        = "proxy_info.json"
	ContractCreationFile = "contract_creation.json"
)

// AddressKeys encodes addresses in checksum form and accepts any case when loading
var AddressKeys = KeyCodec[common.Address]{
	Encode: domain.ChecksumAddress,
	Decode: domain.NormalizeAddress,
}

func newAddressMap[V any](dir, file string, log *slog.Logger) (*PersistentMap[common.Address, V], error) {
	if dir == "" {
		return NewMemoryMap[common.Address, V](AddressKeys, log), nil
	}
	return NewPersistentMap[common.Address, V](filepath.Join(dir, file), AddressKeys, log)
}

// ContractTypeStore maps deployed addresses to their contract types
type ContractTypeStore struct {
	*PersistentMap[common.Address, models.ContractType]
}

// NewContractTypeStore opens contract_types.json in dir; an empty dir keeps it in memory
func NewContractTypeStore(dir string, log *slog.Logger) (*ContractTypeStore, error) {
	m, err := newAddressMap[models.ContractType](dir, ContractTypesFile, log)
	if err != nil {
		return nil, err
	}
	return &ContractTypeStore{m}, nil
}

// BlueprintStore maps EIP-5202 blueprint addresses to the contract type they deploy
type BlueprintStore struct {
	*PersistentMap[common.Address, models.ContractType]
}

func NewBlueprintStore(dir string, log *slog.Logger) (*BlueprintStore, error) {
	m, err := newAddressMap[models.ContractType](dir, BlueprintsFile, log)
	if err != nil {
		return nil, err
	}
	return &BlueprintStore{m}, nil
}

// ProxyInfoStore maps proxy addresses to their proxy descriptors
type ProxyInfoStore struct {
	*PersistentMap[common.Address, models.ProxyInfo]
}

func NewProxyInfoStore(dir string, log *slog.Logger) (*ProxyInfoStore, error) {
	m, err := newAddressMap[models.ProxyInfo](dir, ProxyInfoFile, log)
	if err != nil {
		return nil, err
	}
	return &ProxyInfoStore{m}, nil
}

// Set stores info after checking it describes a real proxy with a target
func (s *ProxyInfoStore) Set(addr common.Address, info models.ProxyInfo) error {
	if !info.IsProxy() {
		return fmt.Errorf("%w: refusing to store proxy type none for %s", domain.ErrInvalidProxyInfo, addr.Hex())
	}
	if err := info.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidProxyInfo, err)
	}
	return s.PersistentMap.Set(addr, info)
}

// CreationFetcher looks up creation metadata for an address, returning nil when unknown
type CreationFetcher = func(ctx context.Context, addr common.Address) (*models.ContractCreation, error)

// CreationMetadataStore maps addresses to how they were created. Entries are immutable.
type CreationMetadataStore struct {
	*PersistentMap[common.Address, models.ContractCreation]
}

func NewCreationMetadataStore(dir string, log *slog.Logger) (*CreationMetadataStore, error) {
	m, err := newAddressMap[models.ContractCreation](dir, ContractCreationFile, log)
	if err != nil {
		return nil, err
	}
	return &CreationMetadataStore{m}, nil
}

// Set records creation for addr unless something is already recorded
func (s *CreationMetadataStore) Set(addr common.Address, creation models.ContractCreation) error {
	if s.Has(addr) {
		return nil
	}
	return s.PersistentMap.Set(addr, creation)
}

// GetOrFetch returns the recorded creation or calls fetch once and records a non-nil result
func (s *CreationMetadataStore) GetOrFetch(ctx context.Context, addr common.Address, fetch CreationFetcher) (*models.ContractCreation, error) {
	if creation, ok := s.Get(addr); ok {
		return &creation, nil
	}
	if fetch == nil {
		return nil, nil
	}

	creation, err := fetch(ctx, addr)
	if err != nil {
		return nil, err
	}
	if creation == nil {
		return nil, nil
	}
	if err := s.Set(addr, *creation); err != nil {
		return nil, fmt.Errorf("failed to cache creation metadata: %w", err)
	}
	return creation, nil
}
