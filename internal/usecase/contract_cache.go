package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-contracts/internal/domain"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// maxProxyDepth bounds proxy-of-proxy chains
const maxProxyDepth = 8

// ResolveOptions tunes a single resolution. The zero value detects proxies and
// falls back to the explorer.
type ResolveOptions struct {
	// ContractType is merged into whatever is cached and returned without remote lookups
	ContractType *models.ContractType
	// ABI is used when nothing with an ABI is cached
	ABI []models.ABIEntry
	// ProxyInfo skips detection and resolves through the given target
	ProxyInfo          *models.ProxyInfo
	SkipProxyDetection bool
	SkipExplorer       bool
}

// ContractCache resolves, merges and caches contract metadata for the active network
type ContractCache struct {
	network  NetworkContext
	stores   StoreFactory
	detector ProxyDetector
	chain    ChainReader
	explorer ExplorerClient
	progress ProgressSink
	log      *slog.Logger
}

// NewContractCache creates a new contract cache. chain and explorer may be nil,
// in which case the corresponding sources are skipped.
func NewContractCache(
	network NetworkContext,
	stores StoreFactory,
	detector ProxyDetector,
	chain ChainReader,
	explorer ExplorerClient,
	progress ProgressSink,
	log *slog.Logger,
) *ContractCache {
	if progress == nil {
		progress = NopProgress{}
	}
	return &ContractCache{
		network:  network,
		stores:   stores,
		detector: detector,
		chain:    chain,
		explorer: explorer,
		progress: progress,
		log:      log.With("component", "contract-cache"),
	}
}

// NetworkID returns the id of the network the cache is scoped to
func (c *ContractCache) NetworkID() string {
	return c.network.NetworkID()
}

func (c *ContractCache) current() (NetworkStores, error) {
	id := c.network.NetworkID()
	if id == "" {
		return nil, fmt.Errorf("not connected to a network")
	}
	return c.stores.Stores(id, c.network.IsLive())
}

// ContractTypes returns the contract type store of the active network
func (c *ContractCache) ContractTypes() (ContractTypeStore, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}
	return s.ContractTypes(), nil
}

// Blueprints returns the blueprint store of the active network
func (c *ContractCache) Blueprints() (ContractTypeStore, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}
	return s.Blueprints(), nil
}

// ProxyInfos returns the proxy info store of the active network
func (c *ContractCache) ProxyInfos() (ProxyInfoStore, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}
	return s.ProxyInfos(), nil
}

// Creations returns the creation metadata store of the active network
func (c *ContractCache) Creations() (CreationStore, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}
	return s.Creations(), nil
}

// Deployments returns the deployment index
func (c *ContractCache) Deployments() (DeploymentIndex, error) {
	return c.stores.Deployments()
}

// Resolve parses address and resolves its contract type
func (c *ContractCache) Resolve(ctx context.Context, address string, opts ResolveOptions) (*models.ContractType, error) {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return c.ResolveAddress(ctx, addr, opts)
}

// ResolveAddress returns the contract type of addr, consulting in order the
// explicit options, the cache, proxy detection and the explorer. Every success
// is written to the cache before it is returned.
func (c *ContractCache) ResolveAddress(ctx context.Context, addr common.Address, opts ResolveOptions) (*models.ContractType, error) {
	defer c.progress.OnProgress(ctx, ProgressEvent{Stage: "resolved"})
	return c.resolve(ctx, addr, opts, map[common.Address]bool{})
}

func (c *ContractCache) resolve(ctx context.Context, addr common.Address, opts ResolveOptions, visiting map[common.Address]bool) (*models.ContractType, error) {
	stores, err := c.current()
	if err != nil {
		return nil, err
	}
	types := stores.ContractTypes()

	if opts.ProxyInfo != nil {
		if err := opts.ProxyInfo.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProxyInfo, err)
		}
	}

	if opts.ContractType != nil {
		if opts.ContractType.IsEmpty() {
			return nil, fmt.Errorf("%w: empty contract type given for %s", domain.ErrInvalidContractType, addr.Hex())
		}
		base, _ := types.Get(addr)
		merged := models.MergeContractTypes(base, *opts.ContractType)
		return c.store(types, addr, merged)
	}

	cached, hasCached := types.Get(addr)

	if len(opts.ABI) > 0 && (!hasCached || !cached.HasABI()) {
		incoming := models.ContractType{ABI: opts.ABI}
		base := cached
		if !hasCached {
			fetched, err := c.resolveRemote(ctx, stores, addr, opts, visiting)
			switch {
			case err == nil:
				base = *fetched
			case errors.Is(err, domain.ErrContractNotFound):
				c.log.Warn("could not fetch contract type, using the given ABI", "address", addr.Hex(), "error", err)
			default:
				return nil, err
			}
		}
		merged := models.MergeContractTypes(base, incoming.Clone())
		return c.store(types, addr, merged)
	}

	if ct, ok := c.fromCache(stores, addr); ok {
		return ct, nil
	}

	return c.resolveRemote(ctx, stores, addr, opts, visiting)
}

// fromCache serves proxies through their target's cached type. The alias is
// the target merged with whatever was cached for the proxy itself, so entries
// given explicitly for the proxy address survive target updates.
func (c *ContractCache) fromCache(stores NetworkStores, addr common.Address) (*models.ContractType, bool) {
	types := stores.ContractTypes()

	if info, ok := stores.ProxyInfos().Get(addr); ok {
		if target, ok := types.Get(info.Target); ok {
			alias, hasAlias := types.Get(addr)
			merged := models.MergeContractTypes(target, alias)
			if !hasAlias || !reflect.DeepEqual(alias, merged) {
				if err := types.Set(addr, merged); err != nil {
					c.log.Warn("failed to refresh proxy alias", "proxy", addr.Hex(), "error", err)
				}
			}
			return &merged, true
		}
	}

	if ct, ok := types.Get(addr); ok {
		return &ct, true
	}
	return nil, false
}

func (c *ContractCache) resolveRemote(ctx context.Context, stores NetworkStores, addr common.Address, opts ResolveOptions, visiting map[common.Address]bool) (*models.ContractType, error) {
	if opts.ProxyInfo != nil {
		info := *opts.ProxyInfo
		if info.IsProxy() {
			return c.resolveProxy(ctx, stores, addr, info, opts, visiting)
		}
	} else if !opts.SkipProxyDetection {
		info, err := c.detectProxy(ctx, stores, addr)
		if err != nil {
			if errors.Is(err, domain.ErrNotAContract) {
				return nil, c.notFound(addr, "", err)
			}
			c.log.Warn("proxy detection failed", "address", addr.Hex(), "error", err)
		} else if info.IsProxy() {
			return c.resolveProxy(ctx, stores, addr, info, opts, visiting)
		}
	}

	if ct := c.fromExplorer(ctx, stores, addr, opts); ct != nil {
		return ct, nil
	}
	hint := c.explorerHint()
	var cause error
	if hint != "" {
		cause = domain.ErrNoExplorer
	}
	return nil, c.notFound(addr, hint, cause)
}

// detectProxy returns the cached proxy info of addr or detects it from its code
func (c *ContractCache) detectProxy(ctx context.Context, stores NetworkStores, addr common.Address) (models.ProxyInfo, error) {
	if info, ok := stores.ProxyInfos().Get(addr); ok {
		return info, nil
	}
	if c.chain == nil {
		return models.NoProxy(), nil
	}

	c.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "bytecode",
		Message: fmt.Sprintf("Fetching code at %s", addr.Hex()),
		Spinner: true,
	})
	code, err := c.chain.GetRuntimeBytecode(ctx, addr)
	if err != nil {
		return models.NoProxy(), fmt.Errorf("failed to fetch code: %w", err)
	}
	if len(code) == 0 {
		return models.NoProxy(), domain.ErrNotAContract
	}

	info := c.detector.Detect(code)
	if !info.IsProxy() {
		return info, nil
	}

	info, err = c.completeProxy(ctx, addr, info)
	if err != nil {
		c.log.Debug("could not read proxy target", "address", addr.Hex(), "type", info.Type, "error", err)
		return models.NoProxy(), nil
	}
	return info, nil
}

// completeProxy reads the target of proxies that keep it in storage or behind a call
func (c *ContractCache) completeProxy(ctx context.Context, addr common.Address, info models.ProxyInfo) (models.ProxyInfo, error) {
	if info.HasTarget() {
		return info, nil
	}
	if c.chain == nil {
		return models.NoProxy(), fmt.Errorf("no chain reader available")
	}

	switch info.Type {
	case models.ProxyTypeBeacon:
		word, err := c.chain.GetStorageAt(ctx, addr, models.BeaconSlot)
		if err != nil {
			return models.NoProxy(), err
		}
		beacon := common.BytesToAddress(word.Bytes())
		if beacon == (common.Address{}) {
			return models.NoProxy(), nil
		}
		info.Beacon = &beacon
		out, err := c.chain.CallContract(ctx, beacon, models.ImplementationSelector[:])
		if err != nil {
			return models.NoProxy(), err
		}
		info.Target = addressFromReturn(out)

	case models.ProxyTypeDelegate:
		out, err := c.chain.CallContract(ctx, addr, models.ImplementationSelector[:])
		if err != nil {
			return models.NoProxy(), err
		}
		info.Target = addressFromReturn(out)

	default:
		if info.Slot == nil {
			return models.NoProxy(), fmt.Errorf("proxy type %s has no slot to read", info.Type)
		}
		word, err := c.chain.GetStorageAt(ctx, addr, *info.Slot)
		if err != nil {
			return models.NoProxy(), err
		}
		info.Target = common.BytesToAddress(word.Bytes())

		if info.Type == models.ProxyTypeTransparent {
			if adminWord, err := c.chain.GetStorageAt(ctx, addr, models.AdminSlot); err == nil {
				if admin := common.BytesToAddress(adminWord.Bytes()); admin != (common.Address{}) {
					info.Admin = &admin
				}
			}
		}
	}

	if !info.HasTarget() {
		return models.NoProxy(), nil
	}
	return info, nil
}

func addressFromReturn(out []byte) common.Address {
	if len(out) < common.HashLength {
		return common.Address{}
	}
	return common.BytesToAddress(out[common.HashLength-common.AddressLength : common.HashLength])
}

// resolveProxy persists info, resolves the target and caches its type under the
// proxy address
func (c *ContractCache) resolveProxy(ctx context.Context, stores NetworkStores, addr common.Address, info models.ProxyInfo, opts ResolveOptions, visiting map[common.Address]bool) (*models.ContractType, error) {
	if err := stores.ProxyInfos().Set(addr, info); err != nil {
		return nil, err
	}

	visiting[addr] = true
	defer delete(visiting, addr)

	var targetErr error
	var target *models.ContractType
	switch {
	case visiting[info.Target]:
		targetErr = fmt.Errorf("proxy cycle through %s", info.Target.Hex())
	case len(visiting) >= maxProxyDepth:
		targetErr = fmt.Errorf("proxy chain deeper than %d", maxProxyDepth)
	default:
		target, targetErr = c.resolve(ctx, info.Target, ResolveOptions{SkipExplorer: opts.SkipExplorer}, visiting)
	}

	if targetErr == nil {
		return c.store(stores.ContractTypes(), addr, target.Clone())
	}
	c.log.Debug("proxy target has no contract type", "proxy", addr.Hex(), "target", info.Target.Hex(), "error", targetErr)

	if ct := c.fromExplorer(ctx, stores, addr, opts); ct != nil {
		return ct, nil
	}
	hint := fmt.Sprintf("Proxy target '%s' (%s) has no known contract type.", info.Target.Hex(), info.Type)
	return nil, c.notFound(addr, hint, nil)
}

func (c *ContractCache) fromExplorer(ctx context.Context, stores NetworkStores, addr common.Address, opts ResolveOptions) *models.ContractType {
	if opts.SkipExplorer || c.explorer == nil {
		return nil
	}

	c.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "explorer",
		Message: fmt.Sprintf("Querying %s for %s", c.explorer.Name(), addr.Hex()),
		Spinner: true,
	})
	ct, err := c.explorer.GetContractType(ctx, addr)
	if err != nil {
		if domain.IsRateLimited(err) {
			c.log.Info(err.Error())
			return nil
		}
		c.log.Warn(fmt.Sprintf(
			"Attempted to retrieve contract type from explorer '%s' from address '%s' but encountered an exception: %s",
			c.explorer.Name(), addr.Hex(), err,
		))
		return nil
	}
	if ct.IsEmpty() {
		return nil
	}

	stored, err := c.store(stores.ContractTypes(), addr, *ct)
	if err != nil {
		c.log.Warn("failed to cache explorer contract type", "address", addr.Hex(), "error", err)
		return ct
	}
	return stored
}

func (c *ContractCache) store(types ContractTypeStore, addr common.Address, ct models.ContractType) (*models.ContractType, error) {
	if err := types.Set(addr, ct); err != nil {
		return nil, fmt.Errorf("failed to cache contract type of %s: %w", addr.Hex(), err)
	}
	return &ct, nil
}

func (c *ContractCache) explorerHint() string {
	if !c.network.IsLive() || c.explorer != nil {
		return ""
	}
	return fmt.Sprintf(
		"Current network '%s' has no associated explorer. Configure an explorer for it, or use a network with explorer support.",
		c.network.NetworkID(),
	)
}

func (c *ContractCache) notFound(addr common.Address, hint string, cause error) error {
	return &domain.ContractNotFoundError{
		Address: addr,
		Network: c.network.NetworkID(),
		Hint:    hint,
		Cause:   cause,
	}
}

// ResolveMany resolves several addresses, skipping those that have no contract
// type. Any invalid address fails the whole call.
func (c *ContractCache) ResolveMany(ctx context.Context, addresses []string) (map[common.Address]*models.ContractType, error) {
	result := make(map[common.Address]*models.ContractType)
	if len(addresses) == 0 {
		c.log.Warn("No addresses provided.")
		return result, nil
	}

	parsed := make([]common.Address, 0, len(addresses))
	for _, raw := range addresses {
		addr, err := domain.NormalizeAddress(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, addr)
	}

	for _, addr := range lo.Uniq(parsed) {
		ct, err := c.ResolveAddress(ctx, addr, ResolveOptions{})
		switch {
		case err == nil:
			result[addr] = ct
		case errors.Is(err, domain.ErrNotAContract):
			c.log.Debug("skipping address without code", "address", addr.Hex())
		case errors.Is(err, domain.ErrContractNotFound):
			c.log.Warn("skipping address without contract type", "address", addr.Hex(), "error", err)
		default:
			return nil, err
		}
	}
	return result, nil
}

// Contains reports whether addr has a cached contract type or proxy info
func (c *ContractCache) Contains(addr common.Address) bool {
	stores, err := c.current()
	if err != nil {
		return false
	}
	return stores.ContractTypes().Has(addr) || stores.ProxyInfos().Has(addr)
}

// Evict forgets the contract type and proxy info of addr. A proxy's target is untouched.
func (c *ContractCache) Evict(addr common.Address) error {
	stores, err := c.current()
	if err != nil {
		return err
	}
	if err := stores.ContractTypes().Delete(addr); err != nil {
		return fmt.Errorf("failed to evict contract type: %w", err)
	}
	if err := stores.ProxyInfos().Delete(addr); err != nil {
		return fmt.Errorf("failed to evict proxy info: %w", err)
	}
	return nil
}

// ClearAll drops the in-memory caches of the active network. Persisted data stays.
func (c *ContractCache) ClearAll() error {
	stores, err := c.current()
	if err != nil {
		return err
	}
	stores.ClearMemory()

	deployments, err := c.stores.Deployments()
	if err != nil {
		return err
	}
	deployments.ClearMemory(stores.Network())
	return nil
}

// Purge drops everything cached for the active network, including persisted data
func (c *ContractCache) Purge() error {
	stores, err := c.current()
	if err != nil {
		return err
	}
	if err := stores.Clear(); err != nil {
		return err
	}

	deployments, err := c.stores.Deployments()
	if err != nil {
		return err
	}
	return deployments.Clear(stores.Network())
}
