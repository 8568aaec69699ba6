package domain

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress parses a hex address, with or without the 0x prefix and in any
// case. Name-service style inputs are rejected; resolving them is the caller's job.
func NormalizeAddress(raw string) (common.Address, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return common.Address{}, &InvalidAddressError{Value: raw, Reason: "empty value"}
	}
	if strings.Contains(value, ".") {
		return common.Address{}, &InvalidAddressError{Value: raw, Reason: "name resolution is not supported"}
	}

	hexPart := value
	if strings.HasPrefix(hexPart, "0x") || strings.HasPrefix(hexPart, "0X") {
		hexPart = hexPart[2:]
	}
	if len(hexPart) != 2*common.AddressLength {
		return common.Address{}, &InvalidAddressError{Value: raw}
	}
	decoded, err := hex.DecodeString(hexPart)
	if err != nil {
		return common.Address{}, &InvalidAddressError{Value: raw, Reason: "not hex encoded"}
	}

	return common.BytesToAddress(decoded), nil
}

// NormalizeAddressBytes accepts either 20 raw bytes or the bytes of a hex string.
func NormalizeAddressBytes(raw []byte) (common.Address, error) {
	if len(raw) == common.AddressLength {
		return common.BytesToAddress(raw), nil
	}
	if len(raw) == 2*common.AddressLength || len(raw) == 2*common.AddressLength+2 {
		return NormalizeAddress(string(raw))
	}
	return common.Address{}, &InvalidAddressError{
		Value:  "0x" + hex.EncodeToString(raw),
		Reason: "expected 20 bytes",
	}
}

// AddressKey returns the case-insensitive comparison key for an address
func AddressKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// ChecksumAddress returns the EIP-55 display form
func ChecksumAddress(addr common.Address) string {
	return addr.Hex()
}
