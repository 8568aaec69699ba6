package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-contracts/internal/app"
	"github.com/trebuchet-org/treb-contracts/internal/cli/render"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// NewGetCmd creates the get command
func NewGetCmd() *cobra.Command {
	var (
		abiFile          string
		contractTypeFile string
		proxyType        string
		proxyTarget      string
		noProxy          bool
		noExplorer       bool
	)

	cmd := &cobra.Command{
		Use:   "get <address>",
		Short: "Resolve the contract type at an address",
		Long: `Resolve the contract type at an address.

The cache is consulted first. On a miss the bytecode is checked for known proxy
patterns and proxies resolve to their implementation's type. Anything still
unknown is fetched from the network's block explorer.

Examples:
  treb-contracts get 0x4a986a6dCA6dbf99bC3d17F8D71aFb0d60e740f8
  treb-contracts get 0x4a98... --abi out/Token.sol/Token.json
  treb-contracts get 0x4a98... --proxy-type transparent --proxy-target 0xBEbe...
  treb-contracts -n ethereum:sepolia get 0x4a98... --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			opts := usecase.ResolveOptions{
				SkipProxyDetection: noProxy,
				SkipExplorer:       noExplorer,
			}
			if contractTypeFile != "" {
				if opts.ContractType, err = readContractType(cmd, contractTypeFile); err != nil {
					return err
				}
			}
			if abiFile != "" {
				ct, err := readContractType(cmd, abiFile)
				if err != nil {
					return err
				}
				if opts.ContractType != nil {
					merged := models.MergeContractTypes(*opts.ContractType, models.ContractType{ABI: ct.ABI})
					opts.ContractType = &merged
				} else {
					opts.ABI = ct.ABI
				}
			}
			if proxyType != "" || proxyTarget != "" {
				info, err := proxyInfoFromFlags(proxyType, proxyTarget)
				if err != nil {
					return err
				}
				opts.ProxyInfo = info
			}

			ct, err := a.Contracts.Resolve(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, a, render.NewContractRenderer(cmd.OutOrStdout()), contractResult(a, addr, ct))
		},
	}

	cmd.Flags().StringVar(&abiFile, "abi", "", "ABI file (bare array, contract type or Foundry artifact) to merge into the result")
	cmd.Flags().StringVar(&contractTypeFile, "contract-type", "", "Contract type file to cache for the address")
	cmd.Flags().StringVar(&proxyType, "proxy-type", "", "Known proxy type of the address (e.g. transparent, beacon, minimal)")
	cmd.Flags().StringVar(&proxyTarget, "proxy-target", "", "Implementation the proxy forwards to")
	cmd.Flags().BoolVar(&noProxy, "no-proxy", false, "Skip proxy detection")
	cmd.Flags().BoolVar(&noExplorer, "no-explorer", false, "Do not query the block explorer")

	return cmd
}

// NewGetManyCmd creates the get-many command
func NewGetManyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-many <address>...",
		Short: "Resolve the contract types of several addresses",
		Long: `Resolve the contract types of several addresses. Duplicates are looked up
once. Addresses that cannot be resolved are reported as warnings and left out
of the result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			resolved, err := a.Contracts.ResolveMany(cmd.Context(), args)
			if err != nil {
				return err
			}

			results := make([]*render.ContractResult, 0, len(resolved))
			seen := make(map[common.Address]bool)
			for _, raw := range args {
				addr, err := parseAddress(raw)
				if err != nil || seen[addr] {
					continue
				}
				seen[addr] = true
				if ct, ok := resolved[addr]; ok {
					results = append(results, contractResult(a, addr, ct))
				}
			}
			return emit(cmd, a, render.NewContractListRenderer(cmd.OutOrStdout()), results)
		},
	}
}

func proxyInfoFromFlags(proxyType, proxyTarget string) (*models.ProxyInfo, error) {
	if proxyType == "" || proxyTarget == "" {
		return nil, fmt.Errorf("--proxy-type and --proxy-target must be given together")
	}
	t, err := models.ParseProxyType(proxyType)
	if err != nil {
		return nil, err
	}
	target, err := parseAddress(proxyTarget)
	if err != nil {
		return nil, err
	}
	return &models.ProxyInfo{Type: t, Target: target}, nil
}

// contractResult attaches the cached proxy descriptor, if any
func contractResult(a *app.App, addr common.Address, ct *models.ContractType) *render.ContractResult {
	result := &render.ContractResult{Address: addr, ContractType: ct}
	if infos, err := a.Contracts.ProxyInfos(); err == nil {
		if info, ok := infos.Get(addr); ok {
			result.Proxy = &info
		}
	}
	return result
}
