package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

func init() {
	color.NoColor = true
}

var (
	tokenAddr = common.HexToAddress("0x4a986a6dCA6dbf99bC3d17F8D71aFb0d60e740f8")
	implAddr  = common.HexToAddress("0xBEbeBeBEbeBebeBeBEBEbebEBeBeBebeBeBebebe")
)

func token() *models.ContractType {
	return &models.ContractType{
		Name: "Token",
		ABI: []models.ABIEntry{
			{Type: models.ABIConstructor, Inputs: []models.ABIParam{{Name: "supply", Type: "uint256"}}},
			{Type: models.ABIFunction, Name: "transfer", StateMutability: "nonpayable",
				Inputs:  []models.ABIParam{{Name: "to", Type: "address"}, {Name: "amount", Type: "uint256"}},
				Outputs: []models.ABIParam{{Type: "bool"}}},
			{Type: models.ABIEvent, Name: "Transfer", Inputs: []models.ABIParam{{Type: "address", Indexed: true}, {Type: "address", Indexed: true}, {Type: "uint256"}}},
		},
	}
}

func TestContractRenderer(t *testing.T) {
	var buf bytes.Buffer
	proxy := models.ProxyInfo{Type: models.ProxyTypeTransparent, Target: implAddr}
	require.NoError(t, NewContractRenderer(&buf).Render(&ContractResult{Address: tokenAddr, ContractType: token(), Proxy: &proxy}))

	out := buf.String()
	assert.Contains(t, out, "Address: "+tokenAddr.Hex())
	assert.Contains(t, out, "Contract: Token")
	assert.Contains(t, out, "Proxy: Transparent → "+implAddr.Hex())
	assert.Contains(t, out, "constructor(uint256)")
	assert.Contains(t, out, "transfer(address,uint256) → (bool)")
	assert.Contains(t, out, "0xa9059cbb")
	assert.Contains(t, out, "Transfer(address,address,uint256)")
}

func TestContractRendererWithoutABI(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewContractRenderer(&buf).Render(&ContractResult{Address: tokenAddr, ContractType: &models.ContractType{SourceID: "src/A.sol"}}))
	assert.Contains(t, buf.String(), "Contract: -")
	assert.Contains(t, buf.String(), "Source: src/A.sol")
	assert.Contains(t, buf.String(), "No ABI entries")
}

func TestContractListRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewContractListRenderer(&buf).Render(nil))
	assert.Equal(t, "No contracts resolved\n", buf.String())

	buf.Reset()
	require.NoError(t, NewContractListRenderer(&buf).Render([]*ContractResult{{Address: tokenAddr, ContractType: token()}}))
	assert.Contains(t, buf.String(), tokenAddr.Hex())
	assert.Contains(t, buf.String(), "Token")
}

func TestProxyTypeLabel(t *testing.T) {
	assert.Equal(t, "Gnosis Safe", ProxyTypeLabel(models.ProxyTypeGnosisSafe))
	assert.Equal(t, "Clones Push0", ProxyTypeLabel(models.ProxyTypeClonesPush0))
	assert.Equal(t, "UUPS", ProxyTypeLabel(models.ProxyTypeUUPS))
	assert.Equal(t, "Minimal (EIP-1167)", ProxyTypeLabel(models.ProxyTypeMinimal))
}

func TestProxyRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewProxyRenderer(&buf).Render(&ProxyResult{Address: tokenAddr, Proxy: models.NoProxy()}))
	assert.Equal(t, tokenAddr.Hex()+" is not a proxy\n", buf.String())

	buf.Reset()
	beacon := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	slot := models.BeaconSlot
	require.NoError(t, NewProxyRenderer(&buf).Render(&ProxyResult{
		Address: tokenAddr,
		Proxy:   models.ProxyInfo{Type: models.ProxyTypeBeacon, Target: implAddr, Beacon: &beacon, Slot: &slot},
	}))
	assert.Contains(t, buf.String(), "Type: Beacon")
	assert.Contains(t, buf.String(), "Beacon: "+beacon.Hex())
	assert.Contains(t, buf.String(), "Slot: "+slot.Hex())
}

func TestDeploymentsRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeploymentsRenderer(&buf).Render(&DeploymentsResult{ContractName: "Token", Network: "ethereum:sepolia"}))
	assert.Equal(t, "No deployments of Token on ethereum:sepolia\n", buf.String())

	buf.Reset()
	block := uint64(42)
	tx := common.HexToHash("0x01")
	require.NoError(t, NewDeploymentsRenderer(&buf).Render(&DeploymentsResult{
		ContractName: "Token",
		Network:      "ethereum:sepolia",
		Deployments: []models.DeploymentRecord{
			{Address: tokenAddr, TxHash: &tx, BlockNumber: &block},
			{Address: implAddr},
		},
	}))
	out := buf.String()
	assert.Contains(t, out, tokenAddr.Hex())
	assert.Contains(t, out, tx.Hex())
	assert.Contains(t, out, "42")
	assert.Contains(t, out, implAddr.Hex())
}

func TestCreationRenderer(t *testing.T) {
	var buf bytes.Buffer
	factory := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	require.NoError(t, NewCreationRenderer(&buf).Render(&CreationResult{
		Address:  tokenAddr,
		Creation: models.ContractCreation{Block: 7, Deployer: implAddr, Factory: &factory},
	}))
	assert.Contains(t, buf.String(), "Block: 7")
	assert.Contains(t, buf.String(), "Deployer: "+implAddr.Hex())
	assert.Contains(t, buf.String(), "Factory: "+factory.Hex())
}

func TestWriteStructured(t *testing.T) {
	result := &ProxyResult{Address: tokenAddr, Proxy: models.ProxyInfo{Type: models.ProxyTypeUUPS, Target: implAddr}}

	var buf bytes.Buffer
	require.NoError(t, WriteStructured(&buf, FormatJSON, result))
	assert.Contains(t, buf.String(), `"type": "uups"`)
	assert.Contains(t, buf.String(), `"target": "`+strings.ToLower(implAddr.Hex())+`"`)

	buf.Reset()
	require.NoError(t, WriteStructured(&buf, FormatYAML, result))
	assert.Contains(t, buf.String(), "type: uups")
	assert.Contains(t, buf.String(), strings.ToLower(implAddr.Hex()))

	assert.Error(t, WriteStructured(&buf, FormatText, result))
}
