package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ProxyType is the closed set of proxy standards the detector recognises
type ProxyType string

const (
	ProxyTypeNone         ProxyType = "none"
	ProxyTypeMinimal      ProxyType = "minimal"
	ProxyTypeZeroAge      ProxyType = "zero_age"
	ProxyTypeClonesPush0  ProxyType = "clones_push0"
	ProxyTypeSoladyPush0  ProxyType = "solady_push0"
	ProxyTypeVyper        ProxyType = "vyper"
	ProxyTypeCWIA         ProxyType = "cwia"
	ProxyTypeOldCWIA      ProxyType = "old_cwia"
	ProxyTypeSudoswapCWIA ProxyType = "sudoswap_cwia"
	ProxyTypeGnosisSafe   ProxyType = "gnosis_safe"
	ProxyTypeTransparent  ProxyType = "transparent"
	ProxyTypeBeacon       ProxyType = "beacon"
	ProxyTypeStandard     ProxyType = "standard"
	ProxyTypeUUPS         ProxyType = "uups"
	ProxyTypeOpenZeppelin ProxyType = "openzeppelin"
	ProxyTypeDelegate     ProxyType = "delegate"
)

// ProxyTypes lists every known proxy type except none, in detection priority order
var ProxyTypes = []ProxyType{
	ProxyTypeMinimal,
	ProxyTypeZeroAge,
	ProxyTypeClonesPush0,
	ProxyTypeSoladyPush0,
	ProxyTypeVyper,
	ProxyTypeCWIA,
	ProxyTypeOldCWIA,
	ProxyTypeSudoswapCWIA,
	ProxyTypeGnosisSafe,
	ProxyTypeTransparent,
	ProxyTypeBeacon,
	ProxyTypeStandard,
	ProxyTypeUUPS,
	ProxyTypeOpenZeppelin,
	ProxyTypeDelegate,
}

// ParseProxyType validates a proxy type name
func ParseProxyType(s string) (ProxyType, error) {
	if ProxyType(s) == ProxyTypeNone {
		return ProxyTypeNone, nil
	}
	for _, t := range ProxyTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown proxy type %q", s)
}

// ProxyInfo describes how a proxy forwards its calls
type ProxyInfo struct {
	Type   ProxyType       `json:"type" yaml:"type"`
	Target common.Address  `json:"target" yaml:"target"`
	Slot   *common.Hash    `json:"slot,omitempty" yaml:"slot,omitempty"`
	Beacon *common.Address `json:"beacon,omitempty" yaml:"beacon,omitempty"`
	Admin  *common.Address `json:"admin,omitempty" yaml:"admin,omitempty"`
}

// NoProxy is the descriptor of bytecode that is not a proxy
func NoProxy() ProxyInfo {
	return ProxyInfo{Type: ProxyTypeNone}
}

// IsProxy reports whether the descriptor names a proxy standard
func (p ProxyInfo) IsProxy() bool {
	return p.Type != "" && p.Type != ProxyTypeNone
}

// HasTarget reports whether the target address is known
func (p ProxyInfo) HasTarget() bool {
	return p.Target != (common.Address{})
}

// Validate checks that none has no target and every other type has one
func (p ProxyInfo) Validate() error {
	if !p.IsProxy() {
		if p.HasTarget() {
			return fmt.Errorf("proxy type none must not carry a target (got %s)", p.Target.Hex())
		}
		return nil
	}
	if _, err := ParseProxyType(string(p.Type)); err != nil {
		return err
	}
	if !p.HasTarget() {
		return fmt.Errorf("proxy type %s requires a non-zero target", p.Type)
	}
	return nil
}
