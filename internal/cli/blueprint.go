package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-contracts/internal/cli/render"
)

// NewBlueprintCmd creates the blueprint command group
func NewBlueprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Manage EIP-5202 blueprint contract types",
	}
	cmd.AddCommand(newBlueprintSetCmd(), newBlueprintGetCmd())
	return cmd
}

func newBlueprintSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <address> <contract-type-file>",
		Short: "Cache the contract type a blueprint deploys",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			ct, err := readContractType(cmd, args[1])
			if err != nil {
				return err
			}
			if err := a.Contracts.CacheBlueprint(addr, *ct); err != nil {
				return err
			}
			say(cmd, a, fmt.Sprintf("Cached blueprint %s", addr.Hex()))
			return nil
		},
	}
}

func newBlueprintGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <address>",
		Short: "Show the cached contract type of a blueprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			addr, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			ct, err := a.Contracts.GetBlueprint(addr)
			if err != nil {
				return err
			}
			return emit(cmd, a, render.NewContractRenderer(cmd.OutOrStdout()), &render.ContractResult{Address: addr, ContractType: ct})
		},
	}
}
