package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEvictCmd creates the evict command
func NewEvictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evict <address>",
		Short: "Forget the cached contract type and proxy info of an address",
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
			if err := a.Contracts.Evict(addr); err != nil {
				return err
			}
			say(cmd, a, fmt.Sprintf("Evicted %s", addr.Hex()))
			return nil
		},
	}
}

// NewClearCmd creates the clear command
func NewClearCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache of the active network",
		Long: `Clear the in-memory cache of the active network. With --purge the cache
documents of the network are deleted from disk as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			if purge {
				if err := a.Contracts.Purge(); err != nil {
					return err
				}
				say(cmd, a, fmt.Sprintf("Purged cache of %s", a.Contracts.NetworkID()))
				return nil
			}
			if err := a.Contracts.ClearAll(); err != nil {
				return err
			}
			say(cmd, a, fmt.Sprintf("Cleared in-memory cache of %s", a.Contracts.NetworkID()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the network's cache documents")
	return cmd
}
