package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenAddress = "0x4a986a6dca6dbf99bc3d17f8d71afb0d60e740f8"
	tokenType    = `{"contractName":"Token","abi":[{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]}`
	extraABI     = `[{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256"}]}]`
)

type harness struct {
	t       *testing.T
	root    string
	dataDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	color.NoColor = true
	return &harness{t: t, root: t.TempDir(), dataDir: t.TempDir()}
}

func (h *harness) file(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.root, name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the CLI against an offline network
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--project-root", h.root,
		"--data-dir", h.dataDir,
		"--network", "ethereum:offline",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"get"}, {"get-many"}, {"proxy"}, {"creation"},
		{"deployments", "list"}, {"deployments", "add"},
		{"blueprint", "set"}, {"blueprint", "get"},
		{"evict"}, {"clear"}, {"version"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	for _, flag := range []string{"network", "rpc-url", "explorer-url", "explorer-api-key", "data-dir", "debug", "json", "yaml", "ephemeral", "timeout"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersion(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "treb-contracts version "))
}

func TestGetCachesAcrossRuns(t *testing.T) {
	h := newHarness(t)
	typeFile := h.file("Token.json", tokenType)
	abiFile := h.file("extra.json", extraABI)

	out, err := h.run("get", tokenAddress, "--contract-type", typeFile, "--abi", abiFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Contract: Token")
	assert.Contains(t, out, "balanceOf(address)")
	assert.Contains(t, out, "Transfer(address,address,uint256)")

	// a fresh process answers from disk
	out, err = h.run("--json", "get", tokenAddress)
	require.NoError(t, err)
	var result struct {
		Address      string `json:"address"`
		ContractType struct {
			Name string            `json:"contractName"`
			ABI  []json.RawMessage `json:"abi"`
		} `json:"contractType"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, tokenAddress, result.Address)
	assert.Equal(t, "Token", result.ContractType.Name)
	assert.Len(t, result.ContractType.ABI, 2)

	assert.FileExists(t, filepath.Join(h.dataDir, "ethereum", "offline", "contract_types.json"))
}

func TestGetUnknownAddress(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("get", tokenAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to get contract type for address '"+common.HexToAddress(tokenAddress).Hex()+"'.")

	_, err = h.run("get", "vitalik.eth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown address value 'vitalik.eth'")
}

func TestGetMany(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("get", tokenAddress, "--contract-type", h.file("Token.json", tokenType))
	require.NoError(t, err)

	other := "0x00000000000000000000000000000000000000aa"
	out, err := h.run("--json", "get-many", tokenAddress, other, strings.ToUpper(tokenAddress[2:]))
	require.NoError(t, err)

	var results []struct {
		Address string `json:"address"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, tokenAddress, results[0].Address)
}

func TestProxyFlags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("get", tokenAddress, "--proxy-type", "transparent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--proxy-type and --proxy-target must be given together")

	_, err = h.run("get", tokenAddress, "--proxy-type", "teleporter", "--proxy-target", tokenAddress)
	require.Error(t, err)
}

func TestDeployments(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("deployments", "add", "Token", tokenAddress, "--block", "12", "--tx", "0x"+strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded Token at "+common.HexToAddress(tokenAddress).Hex()+" on ethereum:offline")

	_, err = h.run("deployments", "add", "Token", "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	out, err = h.run("--json", "deployments", "list", "Token")
	require.NoError(t, err)
	var result struct {
		Network     string `json:"network"`
		Deployments []struct {
			Address     string  `json:"address"`
			BlockNumber *uint64 `json:"blockNumber"`
		} `json:"deployments"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "ethereum:offline", result.Network)
	require.Len(t, result.Deployments, 2)
	assert.Equal(t, tokenAddress, result.Deployments[0].Address)
	require.NotNil(t, result.Deployments[0].BlockNumber)
	assert.Equal(t, uint64(12), *result.Deployments[0].BlockNumber)
	assert.Nil(t, result.Deployments[1].BlockNumber)

	// the deployment also cached the contract type by name
	out, err = h.run("get", tokenAddress)
	require.NoError(t, err)
	assert.Contains(t, out, "Contract: Token")

	_, err = h.run("deployments", "add", "Token", tokenAddress, "--tx", "0x1234")
	assert.Error(t, err)
}

func TestBlueprints(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("blueprint", "get", tokenAddress)
	require.Error(t, err)

	out, err := h.run("blueprint", "set", tokenAddress, h.file("Token.json", tokenType))
	require.NoError(t, err)
	assert.Contains(t, out, "Cached blueprint")

	out, err = h.run("--yaml", "blueprint", "get", tokenAddress)
	require.NoError(t, err)
	assert.Contains(t, out, "contractName: Token")

	// blueprints are not contract types of the address itself
	_, err = h.run("get", tokenAddress)
	assert.Error(t, err)
}

func TestEvictAndClear(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("get", tokenAddress, "--contract-type", h.file("Token.json", tokenType))
	require.NoError(t, err)

	out, err := h.run("clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared in-memory cache of ethereum:offline")
	_, err = h.run("get", tokenAddress)
	require.NoError(t, err, "clear keeps documents on disk")

	_, err = h.run("evict", tokenAddress)
	require.NoError(t, err)
	_, err = h.run("get", tokenAddress)
	assert.Error(t, err)

	_, err = h.run("get", tokenAddress, "--contract-type", h.file("Token.json", tokenType))
	require.NoError(t, err)
	out, err = h.run("clear", "--purge")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged cache of ethereum:offline")
	assert.NoFileExists(t, filepath.Join(h.dataDir, "ethereum", "offline", "contract_types.json"))
}

func TestJSONAndYAMLConflict(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--json", "--yaml", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
