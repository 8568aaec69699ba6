package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-contracts/internal/app"
	"github.com/trebuchet-org/treb-contracts/internal/cli/render"
	"github.com/trebuchet-org/treb-contracts/internal/config"
	"github.com/trebuchet-org/treb-contracts/internal/domain"
	"github.com/trebuchet-org/treb-contracts/internal/domain/models"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var cleanup []func()

	rootCmd := &cobra.Command{
		Use:   "treb-contracts",
		Short: "Resolve and cache smart contract metadata",
		Long: `treb-contracts resolves the contract type (name and ABI) of deployed
addresses. Results are looked up in a per-network cache, detected proxies are
followed to their implementation, and verified sources are fetched from the
network's block explorer. Everything learned is written back to the cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot := config.FindProjectRoot()
			if f := cmd.Flag("project-root"); f != nil && f.Changed {
				projectRoot = f.Value.String()
			}

			v := config.SetupViper(projectRoot, cmd)

			// Initialize app with DI
			appInstance, appCleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			cleanup = append(cleanup, appCleanup)

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cleanup = append(cleanup, cancel)
			}

			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			for _, fn := range cleanup {
				fn()
			}
			cleanup = nil
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("json", false, "Output in JSON format")
	flags.Bool("yaml", false, "Output in YAML format")
	flags.StringP("network", "n", "", "Network to use as <ecosystem>:<network> (e.g. ethereum:sepolia)")
	flags.String("rpc-url", "", "RPC endpoint, overrides foundry.toml [rpc_endpoints]")
	flags.String("explorer-url", "", "Etherscan-compatible explorer API URL")
	flags.String("explorer-api-key", "", "Explorer API key")
	flags.String("data-dir", "", "Cache directory (defaults to <project>/.treb/contracts)")
	flags.String("project-root", "", "Project root (defaults to the nearest directory with foundry.toml)")
	flags.Bool("ephemeral", false, "Treat the network as a local development chain and keep nothing on disk")
	flags.Duration("timeout", 0, "Timeout for network operations (default 30s)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Cache Management Commands",
	})

	for _, c := range []*cobra.Command{NewGetCmd(), NewGetManyCmd(), NewProxyCmd(), NewCreationCmd()} {
		c.GroupID = "main"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewDeploymentsCmd(), NewBlueprintCmd(), NewEvictCmd(), NewClearCmd()} {
		c.GroupID = "management"
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

func outputFormat(a *app.App) render.Format {
	switch {
	case a.Config.JSON:
		return render.FormatJSON
	case a.Config.YAML:
		return render.FormatYAML
	default:
		return render.FormatText
	}
}

// emit writes result as JSON/YAML when requested and through r otherwise
func emit[T any](cmd *cobra.Command, a *app.App, r render.Renderer[T], result T) error {
	if format := outputFormat(a); format != render.FormatText {
		return render.WriteStructured(cmd.OutOrStdout(), format, result)
	}
	return r.Render(result)
}

// say prints a human readable status line, suppressed for machine readable output
func say(cmd *cobra.Command, a *app.App, message string) {
	if outputFormat(a) == render.FormatText {
		fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(message))
	}
}

func parseAddress(raw string) (common.Address, error) {
	return domain.NormalizeAddress(raw)
}

// readContractType loads a contract type document, a bare ABI array or a
// Foundry artifact from path ("-" reads stdin)
func readContractType(cmd *cobra.Command, path string) (*models.ContractType, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // user supplied path
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ct, err := models.ParseContractType(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ct, nil
}
