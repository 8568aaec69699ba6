package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrContractNotFound is returned when every resolution source is exhausted
	ErrContractNotFound = errors.New("contract not found")

	// ErrNotAContract is returned when an address holds no code
	ErrNotAContract = errors.New("not a contract")

	// ErrRateLimited is returned by explorers that throttled the request
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidProxyInfo is returned when a proxy descriptor breaks its invariants
	ErrInvalidProxyInfo = errors.New("invalid proxy info")

	// ErrInvalidContractType is returned when an explicit contract type is unusable
	ErrInvalidContractType = errors.New("invalid contract type")

	// ErrNoExplorer is returned when the active network has no explorer configured
	ErrNoExplorer = errors.New("no explorer configured")
)

// InvalidAddressError is returned when raw input cannot be turned into an address
type InvalidAddressError struct {
	Value  string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Unknown address value '%s': %s.", e.Value, e.Reason)
	}
	return fmt.Sprintf("Unknown address value '%s'.", e.Value)
}

func (e *InvalidAddressError) Unwrap() error {
	return ErrInvalidAddress
}

// ContractNotFoundError is returned when no source yields a contract type
type ContractNotFoundError struct {
	Address common.Address
	Network string
	Hint    string
	Cause   error
}

func (e *ContractNotFoundError) Error() string {
	msg := fmt.Sprintf("Failed to get contract type for address '%s'.", e.Address.Hex())
	if e.Hint != "" {
		msg += " " + e.Hint
	}
	return msg
}

// Is lets callers match both ErrContractNotFound and the underlying cause
func (e *ContractNotFoundError) Is(target error) bool {
	return target == ErrContractNotFound
}

func (e *ContractNotFoundError) Unwrap() error {
	return e.Cause
}

// ExplorerError wraps a failure reported by a block explorer
type ExplorerError struct {
	Explorer    string
	Address     common.Address
	RateLimited bool
	Err         error
}

func (e *ExplorerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("explorer %s failed for %s", e.Explorer, e.Address.Hex())
	}
	return e.Err.Error()
}

func (e *ExplorerError) Is(target error) bool {
	return e.RateLimited && target == ErrRateLimited
}

func (e *ExplorerError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err signals an explorer rate limit.
// Structured ExplorerErrors are trusted; anything else falls back to the message text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var explorerErr *ExplorerError
	if errors.As(err, &explorerErr) {
		if explorerErr.RateLimited {
			return true
		}
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate-limit")
}
