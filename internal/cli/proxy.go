package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-contracts/internal/cli/render"
)

// NewProxyCmd creates the proxy command
func NewProxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proxy <address>",
		Short: "Show how a proxy forwards its calls",
		Long: `Show the proxy type and target of an address. Cached descriptors are
returned as is; unknown addresses are inspected on chain and cached when they
turn out to be proxies.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			info, err := a.Contracts.GetProxyInfo(cmd.Context(), addr)
			if err != nil {
				return err
			}
			return emit(cmd, a, render.NewProxyRenderer(cmd.OutOrStdout()), &render.ProxyResult{Address: addr, Proxy: info})
		},
	}
}

// NewCreationCmd creates the creation command
func NewCreationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "creation <address>",
		Short: "Show the transaction, block and deployer that created a contract",
		Long: `Show how a contract was created. The node is asked once, through the
Otterscan ots_getContractCreator method, and the answer is cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			creation, err := a.Contracts.GetCreationMetadata(cmd.Context(), addr)
			if err != nil {
				return err
			}
			return emit(cmd, a, render.NewCreationRenderer(cmd.OutOrStdout()), &render.CreationResult{Address: addr, Creation: *creation})
		},
	}
}
