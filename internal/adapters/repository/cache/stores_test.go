package cache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/repository/cache"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

func TestCreationMetadataStore(t *testing.T) {
	ctx := context.Background()
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	first := models.ContractCreation{TxHash: common.HexToHash("0x01"), Block: 10, Deployer: common.HexToAddress("0xdead")}
	second := models.ContractCreation{TxHash: common.HexToHash("0x02"), Block: 20, Deployer: common.HexToAddress("0xbeef")}

	t.Run("first writer wins", func(t *testing.T) {
		store, err := cache.NewCreationMetadataStore(t.TempDir(), discardLogger())
		require.NoError(t, err)

		require.NoError(t, store.Set(addr, first))
		require.NoError(t, store.Set(addr, second))
		got, _ := store.Get(addr)
		assert.Equal(t, first, got)
	})

	t.Run("fetches once", func(t *testing.T) {
		store, err := cache.NewCreationMetadataStore(t.TempDir(), discardLogger())
		require.NoError(t, err)

		calls := 0
		fetch := func(context.Context, common.Address) (*models.ContractCreation, error) {
			calls++
			c := first
			return &c, nil
		}

		got, err := store.GetOrFetch(ctx, addr, fetch)
		require.NoError(t, err)
		assert.Equal(t, first, *got)

		got, err = store.GetOrFetch(ctx, addr, fetch)
		require.NoError(t, err)
		assert.Equal(t, first, *got)
		assert.Equal(t, 1, calls)
	})

	t.Run("unknown creation is not cached", func(t *testing.T) {
		store, err := cache.NewCreationMetadataStore(t.TempDir(), discardLogger())
		require.NoError(t, err)

		calls := 0
		fetch := func(context.Context, common.Address) (*models.ContractCreation, error) {
			calls++
			return nil, nil
		}
		got, err := store.GetOrFetch(ctx, addr, fetch)
		require.NoError(t, err)
		assert.Nil(t, got)
		_, _ = store.GetOrFetch(ctx, addr, fetch)
		assert.Equal(t, 2, calls)
		assert.False(t, store.Has(addr))
	})

	t.Run("fetch errors propagate", func(t *testing.T) {
		store, err := cache.NewCreationMetadataStore(t.TempDir(), discardLogger())
		require.NoError(t, err)

		boom := errors.New("rpc down")
		_, err = store.GetOrFetch(ctx, addr, func(context.Context, common.Address) (*models.ContractCreation, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDeploymentIndex(t *testing.T) {
	addrs := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000000001"),
		common.HexToAddress("0x0000000000000000000000000000000000000002"),
		common.HexToAddress("0x0000000000000000000000000000000000000003"),
	}
	isEphemeral := func(network string) bool { return network == "ethereum:local" }

	t.Run("records keep append order", func(t *testing.T) {
		dir := t.TempDir()
		index, err := cache.NewDeploymentIndex(dir, isEphemeral, discardLogger())
		require.NoError(t, err)

		for _, a := range addrs {
			require.NoError(t, index.Append("Token", "ethereum:mainnet", models.DeploymentRecord{Address: a}))
		}

		reopened, err := cache.NewDeploymentIndex(dir, isEphemeral, discardLogger())
		require.NoError(t, err)
		got := reopened.GetAll("Token", "ethereum:mainnet")
		require.Len(t, got, 3)
		for i, a := range addrs {
			assert.Equal(t, a, got[i].Address)
		}
		assert.Equal(t, []string{"Token"}, reopened.ContractNames("ethereum:mainnet"))
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		index, err := cache.NewDeploymentIndex(t.TempDir(), isEphemeral, discardLogger())
		require.NoError(t, err)
		rec := models.DeploymentRecord{Address: addrs[0]}
		require.NoError(t, index.Append("Token", "ethereum:mainnet", rec))
		require.NoError(t, index.Append("Token", "ethereum:mainnet", rec))
		assert.Len(t, index.GetAll("Token", "ethereum:mainnet"), 2)
	})

	t.Run("empty results are never nil", func(t *testing.T) {
		index, err := cache.NewDeploymentIndex(t.TempDir(), isEphemeral, discardLogger())
		require.NoError(t, err)
		assert.NotNil(t, index.GetAll("Unknown", "ethereum:mainnet"))
		assert.Empty(t, index.GetAll("Unknown", "ethereum:mainnet"))
		assert.NotNil(t, index.GetAll("Token", ""))
		assert.Error(t, index.Append("Token", "", models.DeploymentRecord{Address: addrs[0]}))
	})

	t.Run("ephemeral networks stay in memory", func(t *testing.T) {
		dir := t.TempDir()
		index, err := cache.NewDeploymentIndex(dir, isEphemeral, discardLogger())
		require.NoError(t, err)

		require.NoError(t, index.Append("Token", "ethereum:local", models.DeploymentRecord{Address: addrs[0]}))
		assert.Len(t, index.GetAll("Token", "ethereum:local"), 1)

		_, err = os.Stat(filepath.Join(dir, cache.DeploymentsMapFile))
		assert.True(t, os.IsNotExist(err))

		index.ClearMemory("ethereum:local")
		assert.Empty(t, index.GetAll("Token", "ethereum:local"))
	})

	t.Run("networks are isolated", func(t *testing.T) {
		index, err := cache.NewDeploymentIndex(t.TempDir(), isEphemeral, discardLogger())
		require.NoError(t, err)
		require.NoError(t, index.Append("Token", "ethereum:mainnet", models.DeploymentRecord{Address: addrs[0]}))
		assert.Empty(t, index.GetAll("Token", "ethereum:sepolia"))

		require.NoError(t, index.Clear("ethereum:mainnet"))
		assert.Empty(t, index.GetAll("Token", "ethereum:mainnet"))
	})
}

func TestFactory(t *testing.T) {
	addr := common.HexToAddress("0x4444444444444444444444444444444444444444")

	t.Run("live network persists under nested dirs", func(t *testing.T) {
		dir := t.TempDir()
		factory := cache.NewFactory(dir, discardLogger())

		stores, err := factory.Stores("ethereum:sepolia", true)
		require.NoError(t, err)
		require.NoError(t, stores.ContractTypes().Set(addr, models.ContractType{Name: "Token"}))

		_, err = os.Stat(filepath.Join(dir, "ethereum", "sepolia", cache.ContractTypesFile))
		require.NoError(t, err)

		again, err := factory.Stores("ethereum:sepolia", true)
		require.NoError(t, err)
		assert.Same(t, stores, again)
	})

	t.Run("ephemeral network is memory only", func(t *testing.T) {
		dir := t.TempDir()
		factory := cache.NewFactory(dir, discardLogger())

		stores, err := factory.Stores("ethereum:local", false)
		require.NoError(t, err)
		require.NoError(t, stores.ContractTypes().Set(addr, models.ContractType{Name: "Token"}))
		assert.False(t, stores.ContractTypes().(*cache.ContractTypeStore).IsPersistent())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)

		index, err := factory.Deployments()
		require.NoError(t, err)
		require.NoError(t, index.Append("Token", "ethereum:local", models.DeploymentRecord{Address: addr}))
		_, err = os.Stat(filepath.Join(dir, cache.DeploymentsMapFile))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("clear removes documents", func(t *testing.T) {
		dir := t.TempDir()
		factory := cache.NewFactory(dir, discardLogger())
		stores, err := factory.Stores("ethereum:mainnet", true)
		require.NoError(t, err)
		require.NoError(t, stores.ContractTypes().Set(addr, models.ContractType{Name: "Token"}))

		stores.ClearMemory()
		assert.False(t, stores.ContractTypes().Has(addr))
		_, err = os.Stat(filepath.Join(dir, "ethereum", "mainnet", cache.ContractTypesFile))
		require.NoError(t, err)

		require.NoError(t, stores.Clear())
		_, err = os.Stat(filepath.Join(dir, "ethereum", "mainnet", cache.ContractTypesFile))
		assert.True(t, os.IsNotExist(err))
	})
}
