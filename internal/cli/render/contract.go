package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// ContractResult is a resolved address with what is known about it
type ContractResult struct {
	Address      common.Address       `json:"address" yaml:"address"`
	ContractType *models.ContractType `json:"contractType" yaml:"contractType"`
	Proxy        *models.ProxyInfo    `json:"proxy,omitempty" yaml:"proxy,omitempty"`
}

// ContractRenderer renders contract types with an ABI table
type ContractRenderer struct {
	out io.Writer
}

// NewContractRenderer creates a new contract renderer
func NewContractRenderer(out io.Writer) *ContractRenderer {
	return &ContractRenderer{out: out}
}

func (r *ContractRenderer) Render(result *ContractResult) error {
	ct := result.ContractType
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Address:"), addressStyle.Sprint(result.Address.Hex()))
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Contract:"), nameStyle.Sprint(orDash(ct.Name)))
	if ct.SourceID != "" {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Source:"), ct.SourceID)
	}
	if result.Proxy != nil && result.Proxy.IsProxy() {
		fmt.Fprintf(r.out, "%s %s → %s\n", labelStyle.Sprint("Proxy:"),
			proxyStyle.Sprint(ProxyTypeLabel(result.Proxy.Type)), result.Proxy.Target.Hex())
	}

	if !ct.HasABI() {
		fmt.Fprintln(r.out, faintStyle.Sprint("No ABI entries"))
		return nil
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, renderABITable(ct.ABI))
	return nil
}

// ContractListRenderer renders the result of a batch lookup
type ContractListRenderer struct {
	out io.Writer
}

// NewContractListRenderer creates a new contract list renderer
func NewContractListRenderer(out io.Writer) *ContractListRenderer {
	return &ContractListRenderer{out: out}
}

func (r *ContractListRenderer) Render(results []*ContractResult) error {
	if len(results) == 0 {
		fmt.Fprintln(r.out, "No contracts resolved")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Address", "Contract", "Entries"})
	for _, res := range results {
		t.AppendRow(table.Row{res.Address.Hex(), orDash(res.ContractType.Name), len(res.ContractType.ABI)})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

func renderABITable(entries []models.ABIEntry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Signature", "Selector", "Mutability"})
	for _, e := range entries {
		t.AppendRow(table.Row{string(e.Type), signature(e), selectorOf(e), orDash(e.StateMutability)})
	}
	return t.Render()
}

func signature(e models.ABIEntry) string {
	switch e.Type {
	case models.ABIConstructor:
		return strings.Replace(e.Selector(), "(", "constructor(", 1)
	case models.ABIFallback, models.ABIReceive:
		return string(e.Type) + "()"
	}
	sig := e.Selector()
	if len(e.Outputs) > 0 {
		outs := make([]string, len(e.Outputs))
		for i, o := range e.Outputs {
			outs[i] = o.CanonicalType()
		}
		sig += " → (" + strings.Join(outs, ",") + ")"
	}
	return sig
}

// selectorOf returns the 4-byte selector of functions and errors and the topic of events
func selectorOf(e models.ABIEntry) string {
	hash := crypto.Keccak256([]byte(e.Selector()))
	switch e.Type {
	case models.ABIFunction, models.ABIError:
		return hexutil.Encode(hash[:4])
	case models.ABIEvent:
		if e.Anonymous {
			return "-"
		}
		return hexutil.Encode(hash[:8]) + "…"
	default:
		return "-"
	}
}
