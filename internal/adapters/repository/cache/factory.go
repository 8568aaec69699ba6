package cache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// NetworkStores groups the address-keyed stores of a single network
type NetworkStores struct {
	network       string
	live          bool
	contractTypes *ContractTypeStore
	blueprints    *BlueprintStore
	proxyInfos    *ProxyInfoStore
	creations     *CreationMetadataStore
}

func (s *NetworkStores) Network() string { return s.network }
func (s *NetworkStores) Live() bool      { return s.live }

func (s *NetworkStores) ContractTypes() usecase.ContractTypeStore { return s.contractTypes }
func (s *NetworkStores) Blueprints() usecase.ContractTypeStore    { return s.blueprints }
func (s *NetworkStores) ProxyInfos() usecase.ProxyInfoStore       { return s.proxyInfos }
func (s *NetworkStores) Creations() usecase.CreationStore         { return s.creations }

// ClearMemory drops every overlay without touching disk
func (s *NetworkStores) ClearMemory() {
	s.contractTypes.ClearMemory()
	s.blueprints.ClearMemory()
	s.proxyInfos.ClearMemory()
	s.creations.ClearMemory()
}

// Clear drops every overlay and removes the persisted documents
func (s *NetworkStores) Clear() error {
	for _, clearFn := range []func() error{
		s.contractTypes.Clear,
		s.blueprints.Clear,
		s.proxyInfos.Clear,
		s.creations.Clear,
	} {
		if err := clearFn(); err != nil {
			return err
		}
	}
	return nil
}

// Factory lazily opens the stores of each network under a data directory
type Factory struct {
	dataDir     string
	log         *slog.Logger
	stores      map[string]*NetworkStores
	ephemeral   map[string]bool
	deployments *DeploymentIndex
}

// NewFactory creates a factory rooted at dataDir. An empty dataDir keeps every
// network in memory.
func NewFactory(dataDir string, log *slog.Logger) *Factory {
	return &Factory{
		dataDir:   dataDir,
		log:       log.With("component", "cache"),
		stores:    make(map[string]*NetworkStores),
		ephemeral: make(map[string]bool),
	}
}

// DataDir returns the root of the cache
func (f *Factory) DataDir() string {
	return f.dataDir
}

// NetworkDir maps a network id such as "ethereum:sepolia" to its directory
func (f *Factory) NetworkDir(network string) string {
	if f.dataDir == "" {
		return ""
	}
	parts := strings.FieldsFunc(network, func(r rune) bool {
		return r == ':' || r == '/' || r == '\\'
	})
	return filepath.Join(append([]string{f.dataDir}, parts...)...)
}

// Stores returns the stores of network, opening them on first use. Stores of
// non-live networks are memory-only.
func (f *Factory) Stores(network string, live bool) (usecase.NetworkStores, error) {
	if network == "" {
		return nil, fmt.Errorf("network id is required")
	}
	if s, ok := f.stores[network]; ok {
		return s, nil
	}

	dir := ""
	if live {
		dir = f.NetworkDir(network)
	}
	f.ephemeral[network] = !live

	s := &NetworkStores{network: network, live: live}
	var err error
	if s.contractTypes, err = NewContractTypeStore(dir, f.log); err != nil {
		return nil, fmt.Errorf("failed to open contract types for %s: %w", network, err)
	}
	if s.blueprints, err = NewBlueprintStore(dir, f.log); err != nil {
		return nil, fmt.Errorf("failed to open blueprints for %s: %w", network, err)
	}
	if s.proxyInfos, err = NewProxyInfoStore(dir, f.log); err != nil {
		return nil, fmt.Errorf("failed to open proxy info for %s: %w", network, err)
	}
	if s.creations, err = NewCreationMetadataStore(dir, f.log); err != nil {
		return nil, fmt.Errorf("failed to open creation metadata for %s: %w", network, err)
	}

	f.log.Debug("opened network stores", "network", network, "live", live, "dir", dir)
	f.stores[network] = s
	return s, nil
}

// Deployments returns the deployment index shared by every network
func (f *Factory) Deployments() (usecase.DeploymentIndex, error) {
	if f.deployments != nil {
		return f.deployments, nil
	}
	index, err := NewDeploymentIndex(f.dataDir, f.isEphemeral, f.log)
	if err != nil {
		return nil, err
	}
	f.deployments = index
	return index, nil
}

func (f *Factory) isEphemeral(network string) bool {
	return f.ephemeral[network]
}
