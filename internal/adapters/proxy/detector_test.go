package proxy_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-contracts/internal/adapters/proxy"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

var implementation = common.HexToAddress("0xBEbeBeBEbeBebeBeBEBEbebEBeBeBebeBeBebebe")

func code(parts ...string) []byte {
	return hexutil.MustDecode("0x" + strings.Join(parts, ""))
}

func addrHex(a common.Address) string {
	return strings.TrimPrefix(strings.ToLower(a.Hex()), "0x")
}

func slotHex(h common.Hash) string {
	return strings.TrimPrefix(h.Hex(), "0x")
}

func TestDetectTemplates(t *testing.T) {
	target := addrHex(implementation)

	tests := []struct {
		name string
		code []byte
		want models.ProxyType
	}{
		{"minimal", code("363d3d373d3d3d363d73", target, "5af43d82803e903d91602b57fd5bf3"), models.ProxyTypeMinimal},
		{"zero age", code("3d3d3d3d363d3d37363d73", target, "5af43d3d93803e602a57fd5bf3"), models.ProxyTypeZeroAge},
		{"clones push0", code("365f5f375f5f365f73", target, "5af43d5f5f3e5f3d91602a57fd5bf3"), models.ProxyTypeClonesPush0},
		{"solady push0", code("5f5f365f5f37365f73", target, "5af43d5f5f3e6029573d5ffd5b3d5ff3"), models.ProxyTypeSoladyPush0},
		{"vyper", code("366000600037611000600036600073", target, "5af4602c57600080fd5b6110006000f3"), models.ProxyTypeVyper},
		{
			"cwia",
			code("3d3d3d3d363d3d3761", "0042", "603736393661", "0042", "013d73", target, "5af43d3d93803e603557fd5bf3", "deadbeefcafe"),
			models.ProxyTypeCWIA,
		},
		{
			"old cwia",
			code("363d3d3761", "0042", "603836393d3d3d3661", "0042", "013d73", target, "5af43d82803e903d91603657fd5bf3", "0102"),
			models.ProxyTypeOldCWIA,
		},
		{
			"sudoswap cwia",
			code("3d3d3d3d363d3d37605160353639366051013d73", target, "5af43d3d93803e603357fd5bf3", "aa"),
			models.ProxyTypeSudoswapCWIA,
		},
	}

	detector := proxy.NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := detector.Detect(tt.code)
			assert.Equal(t, tt.want, info.Type)
			assert.Equal(t, implementation, info.Target)
			assert.NoError(t, info.Validate())
		})
	}
}

func TestDetectMinimalVanity(t *testing.T) {
	// PUSH16 of an address with four leading zero bytes, the jump moves back by four
	vanity := common.HexToAddress("0x00000000bebebebebebebebebebebebebebebebe")
	detector := proxy.NewDetector()

	info := detector.Detect(code(
		"363d3d373d3d3d363d6f", addrHex(vanity)[8:], "5af43d82803e903d916027", "57fd5bf3",
	))
	assert.Equal(t, models.ProxyTypeMinimal, info.Type)
	assert.Equal(t, vanity, info.Target)

	t.Run("jump offset of the full width form", func(t *testing.T) {
		info := detector.Detect(code(
			"363d3d373d3d3d363d6f", addrHex(vanity)[8:], "5af43d82803e903d91602b57fd5bf3",
		))
		assert.Equal(t, models.ProxyTypeNone, info.Type)
	})
}

func TestDetectStorageProxies(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want models.ProxyType
		slot common.Hash
	}{
		{
			"transparent",
			code("7f", slotHex(models.ImplementationSlot), "54", "7f", slotHex(models.AdminSlot), "54"),
			models.ProxyTypeTransparent,
			models.ImplementationSlot,
		},
		{"beacon", code("7f", slotHex(models.BeaconSlot), "54"), models.ProxyTypeBeacon, models.BeaconSlot},
		{"standard", code("6080", "7f", slotHex(models.ImplementationSlot), "54"), models.ProxyTypeStandard, models.ImplementationSlot},
		{"uups", code("7f", slotHex(models.ProxiableSlot), "54"), models.ProxyTypeUUPS, models.ProxiableSlot},
		{"openzeppelin", code("7f", slotHex(models.ZeppelinOSSlot), "54"), models.ProxyTypeOpenZeppelin, models.ZeppelinOSSlot},
		{
			"gnosis safe",
			code("608060405273ffffffffffffffffffffffffffffffffffffffff600054167fa619486e", "00000000000000000000000000000000000000000000000000000000"),
			models.ProxyTypeGnosisSafe,
			models.SingletonSlot,
		},
	}

	detector := proxy.NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := detector.Detect(tt.code)
			assert.Equal(t, tt.want, info.Type)
			require.NotNil(t, info.Slot)
			assert.Equal(t, tt.slot, *info.Slot)
			assert.False(t, info.HasTarget())
		})
	}
}

func TestDetectDelegate(t *testing.T) {
	info := proxy.NewDetector().Detect(code("6080604052", "63", "5c60da1b", "14", "63", "4555d5c9", "14"))
	assert.Equal(t, models.ProxyTypeDelegate, info.Type)
	assert.Nil(t, info.Slot)

	// implementation() alone is not enough
	info = proxy.NewDetector().Detect(code("63", "5c60da1b", "14"))
	assert.Equal(t, models.ProxyTypeNone, info.Type)
}

func TestDetectNone(t *testing.T) {
	detector := proxy.NewDetector()
	target := addrHex(implementation)

	tests := map[string][]byte{
		"empty":             nil,
		"regular contract":  code("6080604052348015600f57600080fd5b50"),
		"truncated minimal": code("363d3d373d3d3d363d73", target, "5af43d82803e903d91602b57fd5b"),
		"minimal with tail": code("363d3d373d3d3d363d73", target, "5af43d82803e903d91602b57fd5bf3", "00"),
		// the slot only appears inside PUSH2 data, never as a PUSH32 operand
		"slot inside push data": code("617f", slotHex(models.ImplementationSlot)),
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			info := detector.Detect(c)
			assert.Equal(t, models.NoProxy(), info)
			assert.NoError(t, info.Validate())
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	detector := proxy.NewDetector()
	c := code("7f", slotHex(models.ImplementationSlot), "54")
	assert.Equal(t, detector.Detect(c), detector.Detect(c))
	assert.Equal(t, detector.Detect(c), proxy.NewDetector().Detect(c))
}
