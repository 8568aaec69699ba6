package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-contracts/internal/app"
	"github.com/trebuchet-org/treb-contracts/internal/cli/render"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// NewDeploymentsCmd creates the deployments command group
func NewDeploymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "Track deployments per contract type",
		Long:  "Commands for the ordered deployment history of contract types on the active network",
	}
	cmd.AddCommand(newDeploymentsListCmd(), newDeploymentsAddCmd())
	return cmd
}

func newDeploymentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <contract-name>",
		Short: "List the deployments of a contract type, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			return renderDeployments(cmd, a, args[0])
		},
	}
}

func newDeploymentsAddCmd() *cobra.Command {
	var (
		txHash           string
		block            uint64
		contractTypeFile string
	)

	cmd := &cobra.Command{
		Use:   "add <contract-name> <address>",
		Short: "Record a deployment and cache its contract type",
		Long: `Record a deployment of a contract type and cache the type for the address.
Without --contract-type only the name is cached. When an RPC endpoint is
available the creation metadata of the address is fetched as well.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			addr, err := parseAddress(args[1])
			if err != nil {
				return err
			}

			ct := &models.ContractType{}
			if contractTypeFile != "" {
				if ct, err = readContractType(cmd, contractTypeFile); err != nil {
					return err
				}
			}
			ct.Name = name

			var txPtr *common.Hash
			if txHash != "" {
				if len(common.FromHex(txHash)) != common.HashLength {
					return fmt.Errorf("invalid transaction hash %q", txHash)
				}
				h := common.HexToHash(txHash)
				txPtr = &h
			}
			var blockPtr *uint64
			if cmd.Flags().Changed("block") {
				blockPtr = &block
			}

			if err := a.Contracts.CacheDeployment(cmd.Context(), addr, *ct, txPtr, blockPtr); err != nil {
				return err
			}
			say(cmd, a, fmt.Sprintf("Recorded %s at %s on %s", name, addr.Hex(), a.Contracts.NetworkID()))
			if outputFormat(a) != render.FormatText {
				return renderDeployments(cmd, a, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&txHash, "tx", "", "Deployment transaction hash")
	cmd.Flags().Uint64Var(&block, "block", 0, "Deployment block number")
	cmd.Flags().StringVar(&contractTypeFile, "contract-type", "", "Contract type file to cache for the address")

	return cmd
}

func renderDeployments(cmd *cobra.Command, a *app.App, name string) error {
	deployments, err := a.Contracts.GetDeployments(name)
	if err != nil {
		return err
	}
	return emit(cmd, a, render.NewDeploymentsRenderer(cmd.OutOrStdout()), &render.DeploymentsResult{
		ContractName: name,
		Network:      a.Contracts.NetworkID(),
		Deployments:  deployments,
	})
}
