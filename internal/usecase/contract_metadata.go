package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-contracts/internal/domain"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// CacheContractType stores ct for addr, replacing anything cached
func (c *ContractCache) CacheContractType(addr common.Address, ct models.ContractType) error {
	if ct.IsEmpty() {
		return fmt.Errorf("%w: nothing to cache for %s", domain.ErrInvalidContractType, addr.Hex())
	}
	types, err := c.ContractTypes()
	if err != nil {
		return err
	}
	_, err = c.store(types, addr, ct)
	return err
}

// CacheBlueprint records the contract type an EIP-5202 blueprint deploys
func (c *ContractCache) CacheBlueprint(addr common.Address, ct models.ContractType) error {
	if ct.IsEmpty() {
		return fmt.Errorf("%w: nothing to cache for blueprint %s", domain.ErrInvalidContractType, addr.Hex())
	}
	blueprints, err := c.Blueprints()
	if err != nil {
		return err
	}
	if err := blueprints.Set(addr, ct); err != nil {
		return fmt.Errorf("failed to cache blueprint %s: %w", addr.Hex(), err)
	}
	return nil
}

// GetBlueprint returns the cached contract type of a blueprint
func (c *ContractCache) GetBlueprint(addr common.Address) (*models.ContractType, error) {
	blueprints, err := c.Blueprints()
	if err != nil {
		return nil, err
	}
	ct, ok := blueprints.Get(addr)
	if !ok {
		return nil, fmt.Errorf("blueprint %s: %w", addr.Hex(), domain.ErrNotFound)
	}
	return &ct, nil
}

// CacheProxyInfo records how the proxy at addr forwards its calls
func (c *ContractCache) CacheProxyInfo(addr common.Address, info models.ProxyInfo) error {
	infos, err := c.ProxyInfos()
	if err != nil {
		return err
	}
	return infos.Set(addr, info)
}

// GetProxyInfo returns the cached proxy info of addr, detecting it when unknown.
// Addresses that are not proxies yield a none descriptor, which is never cached.
func (c *ContractCache) GetProxyInfo(ctx context.Context, addr common.Address) (models.ProxyInfo, error) {
	defer c.progress.OnProgress(ctx, ProgressEvent{Stage: "resolved"})

	stores, err := c.current()
	if err != nil {
		return models.NoProxy(), err
	}
	if c.chain == nil {
		if info, ok := stores.ProxyInfos().Get(addr); ok {
			return info, nil
		}
		return models.NoProxy(), fmt.Errorf("cannot detect proxy %s: no RPC endpoint configured", addr.Hex())
	}

	info, err := c.detectProxy(ctx, stores, addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotAContract) {
			return models.NoProxy(), c.notFound(addr, "", err)
		}
		return models.NoProxy(), err
	}
	if info.IsProxy() {
		if err := stores.ProxyInfos().Set(addr, info); err != nil {
			return models.NoProxy(), err
		}
	}
	return info, nil
}

// CacheDeployment caches the contract type of a freshly deployed contract and
// appends it to the deployment history of its contract type
func (c *ContractCache) CacheDeployment(ctx context.Context, addr common.Address, ct models.ContractType, txHash *common.Hash, block *uint64) error {
	if err := c.CacheContractType(addr, ct); err != nil {
		return err
	}

	if ct.Name != "" {
		deployments, err := c.stores.Deployments()
		if err != nil {
			return err
		}
		record := models.DeploymentRecord{Address: addr, TxHash: txHash, BlockNumber: block}
		if err := deployments.Append(ct.Name, c.network.NetworkID(), record); err != nil {
			return err
		}
	}

	if c.chain != nil {
		if _, err := c.GetCreationMetadata(ctx, addr); err != nil {
			c.log.Debug("creation metadata unavailable", "address", addr.Hex(), "error", err)
		}
	}
	return nil
}

// GetDeployments returns the deployment history of contractName on the active
// network, oldest first
func (c *ContractCache) GetDeployments(contractName string) ([]models.DeploymentRecord, error) {
	deployments, err := c.stores.Deployments()
	if err != nil {
		return nil, err
	}
	return deployments.GetAll(contractName, c.network.NetworkID()), nil
}

// GetCreationMetadata returns how addr was created, asking the node once when unknown
func (c *ContractCache) GetCreationMetadata(ctx context.Context, addr common.Address) (*models.ContractCreation, error) {
	creations, err := c.Creations()
	if err != nil {
		return nil, err
	}

	var fetch func(context.Context, common.Address) (*models.ContractCreation, error)
	if c.chain != nil {
		fetch = c.chain.GetContractCreation
	}

	creation, err := creations.GetOrFetch(ctx, addr, fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to get creation metadata for %s: %w", addr.Hex(), err)
	}
	if creation == nil {
		return nil, fmt.Errorf("creation metadata for %s: %w", addr.Hex(), domain.ErrNotFound)
	}
	return creation, nil
}
