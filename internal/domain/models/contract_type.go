package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ABIEntryType is the kind of an ABI entry
type ABIEntryType string

const (
	ABIFunction    ABIEntryType = "function"
	ABIEvent       ABIEntryType = "event"
	ABIError       ABIEntryType = "error"
	ABIConstructor ABIEntryType = "constructor"
	ABIFallback    ABIEntryType = "fallback"
	ABIReceive     ABIEntryType = "receive"
)

// ABIParam is a single input or output parameter in the Solidity JSON ABI format
type ABIParam struct {
	Name         string     `json:"name" yaml:"name"`
	Type         string     `json:"type" yaml:"type"`
	InternalType string     `json:"internalType,omitempty" yaml:"internalType,omitempty"`
	Indexed      bool       `json:"indexed,omitempty" yaml:"indexed,omitempty"`
	Components   []ABIParam `json:"components,omitempty" yaml:"components,omitempty"`
}

// ABIEntry is a function, event, error, constructor, fallback or receive entry
type ABIEntry struct {
	Type            ABIEntryType `json:"type" yaml:"type"`
	Name            string       `json:"name,omitempty" yaml:"name,omitempty"`
	Inputs          []ABIParam   `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs         []ABIParam   `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	StateMutability string       `json:"stateMutability,omitempty" yaml:"stateMutability,omitempty"`
	Anonymous       bool         `json:"anonymous,omitempty" yaml:"anonymous,omitempty"`
}

// ContractType describes the interface and code of a contract
type ContractType struct {
	Name               string        `json:"contractName,omitempty" yaml:"contractName,omitempty"`
	SourceID           string        `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
	ABI                []ABIEntry    `json:"abi" yaml:"abi"`
	DeploymentBytecode hexutil.Bytes `json:"deploymentBytecode,omitempty" yaml:"deploymentBytecode,omitempty"`
	RuntimeBytecode    hexutil.Bytes `json:"runtimeBytecode,omitempty" yaml:"runtimeBytecode,omitempty"`
}

// CanonicalType returns the signature form of a parameter type, expanding tuples
func (p ABIParam) CanonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.CanonicalType()
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// Selector returns "name(type1,type2)" for the entry inputs
func (e ABIEntry) Selector() string {
	types := make([]string, len(e.Inputs))
	for i, in := range e.Inputs {
		types[i] = in.CanonicalType()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(types, ","))
}

// Identity is the de-duplication key of an entry: kind, name and input types
func (e ABIEntry) Identity() string {
	return string(e.Type) + " " + e.Selector()
}

// IsEmpty reports whether the contract type carries nothing usable
func (ct *ContractType) IsEmpty() bool {
	return ct == nil || (len(ct.ABI) == 0 && ct.Name == "" && ct.SourceID == "" &&
		len(ct.DeploymentBytecode) == 0 && len(ct.RuntimeBytecode) == 0)
}

// HasABI reports whether at least one ABI entry is known
func (ct *ContractType) HasABI() bool {
	return ct != nil && len(ct.ABI) > 0
}

// Clone returns a deep copy
func (ct ContractType) Clone() ContractType {
	out := ct
	out.ABI = cloneEntries(ct.ABI)
	out.DeploymentBytecode = cloneBytes(ct.DeploymentBytecode)
	out.RuntimeBytecode = cloneBytes(ct.RuntimeBytecode)
	return out
}

// EntriesOf returns the entries of a given kind, in order
func (ct *ContractType) EntriesOf(kind ABIEntryType) []ABIEntry {
	var out []ABIEntry
	for _, e := range ct.ABI {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

// GethABI converts the entries to a go-ethereum ABI, which also validates them
func (ct *ContractType) GethABI() (*abi.ABI, error) {
	data, err := json.Marshal(ct.ABI)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	return &parsed, nil
}

// ParseABI parses a Solidity JSON ABI array
func ParseABI(data []byte) ([]ABIEntry, error) {
	var entries []ABIEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	ct := ContractType{ABI: entries}
	if _, err := ct.GethABI(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseContractType accepts either a contract type document or a bare ABI array
func ParseContractType(data []byte) (*ContractType, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		entries, err := ParseABI(data)
		if err != nil {
			return nil, err
		}
		return &ContractType{ABI: entries}, nil
	}

	var ct ContractType
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("failed to parse contract type: %w", err)
	}
	if _, err := ct.GethABI(); err != nil {
		return nil, err
	}
	return &ct, nil
}

// ErrInvalidABI is returned when ABI JSON cannot be parsed
var ErrInvalidABI = errors.New("invalid ABI")

func cloneEntries(entries []ABIEntry) []ABIEntry {
	if entries == nil {
		return nil
	}
	out := make([]ABIEntry, len(entries))
	for i, e := range entries {
		e.Inputs = cloneParams(e.Inputs)
		e.Outputs = cloneParams(e.Outputs)
		out[i] = e
	}
	return out
}

func cloneParams(params []ABIParam) []ABIParam {
	if params == nil {
		return nil
	}
	out := make([]ABIParam, len(params))
	for i, p := range params {
		p.Components = cloneParams(p.Components)
		out[i] = p
	}
	return out
}

func cloneBytes(b hexutil.Bytes) hexutil.Bytes {
	if b == nil {
		return nil
	}
	out := make(hexutil.Bytes, len(b))
	copy(out, b)
	return out
}
