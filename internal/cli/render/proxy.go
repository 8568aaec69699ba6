package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var proxyLabels = map[models.ProxyType]string{
	models.ProxyTypeCWIA:         "Clones With Immutable Args",
	models.ProxyTypeOldCWIA:      "Clones With Immutable Args (legacy)",
	models.ProxyTypeSudoswapCWIA: "Sudoswap CWIA",
	models.ProxyTypeUUPS:         "UUPS",
	models.ProxyTypeStandard:     "EIP-1967",
	models.ProxyTypeMinimal:      "Minimal (EIP-1167)",
}

// ProxyTypeLabel returns a human readable proxy type name
func ProxyTypeLabel(t models.ProxyType) string {
	if label, ok := proxyLabels[t]; ok {
		return label
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

// ProxyResult is the proxy descriptor of an address
type ProxyResult struct {
	Address common.Address   `json:"address" yaml:"address"`
	Proxy   models.ProxyInfo `json:"proxy" yaml:"proxy"`
}

// ProxyRenderer renders proxy descriptors
type ProxyRenderer struct {
	out io.Writer
}

// NewProxyRenderer creates a new proxy renderer
func NewProxyRenderer(out io.Writer) *ProxyRenderer {
	return &ProxyRenderer{out: out}
}

func (r *ProxyRenderer) Render(result *ProxyResult) error {
	info := result.Proxy
	if !info.IsProxy() {
		fmt.Fprintf(r.out, "%s is not a proxy\n", addressStyle.Sprint(result.Address.Hex()))
		return nil
	}

	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Address:"), addressStyle.Sprint(result.Address.Hex()))
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Type:"), proxyStyle.Sprint(ProxyTypeLabel(info.Type)))
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Target:"), info.Target.Hex())
	if info.Slot != nil {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Slot:"), info.Slot.Hex())
	}
	if info.Beacon != nil {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Beacon:"), info.Beacon.Hex())
	}
	if info.Admin != nil {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Admin:"), info.Admin.Hex())
	}
	return nil
}
