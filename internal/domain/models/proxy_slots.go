package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Well-known storage slots and selectors used by upgradeable proxies
var (
	// EIP-1967: keccak256("eip1967.proxy.implementation") - 1
	ImplementationSlot = eip1967Slot("eip1967.proxy.implementation")
	// EIP-1967: keccak256("eip1967.proxy.admin") - 1
	AdminSlot = eip1967Slot("eip1967.proxy.admin")
	// EIP-1967: keccak256("eip1967.proxy.beacon") - 1
	BeaconSlot = eip1967Slot("eip1967.proxy.beacon")
	// EIP-1822
	ProxiableSlot = crypto.Keccak256Hash([]byte("PROXIABLE"))
	// zeppelinos upgradeability proxies, before EIP-1967
	ZeppelinOSSlot = crypto.Keccak256Hash([]byte("org.zeppelinos.proxy.implementation"))
	// gnosis safe keeps its singleton in the first slot
	SingletonSlot = common.Hash{}

	ImplementationSelector = selector("implementation()")
	ProxyTypeSelector      = selector("proxyType()")
)

func eip1967Slot(label string) common.Hash {
	h := crypto.Keccak256Hash([]byte(label)).Big()
	return common.BigToHash(h.Sub(h, big.NewInt(1)))
}

func selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(signature))[:4])
	return sel
}
