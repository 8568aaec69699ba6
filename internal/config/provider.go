package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-contracts/internal/domain/config"
)

// DataDirName is the directory under the project root holding cache documents
var DataDirName = filepath.Join(".treb", "contracts")

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		projectRoot = FindProjectRoot()
	}

	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		dataDir = filepath.Join(projectRoot, DataDirName)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot: projectRoot,
		DataDir:     dataDir,
		Debug:       v.GetBool("debug"),
		JSON:        v.GetBool("json"),
		YAML:        v.GetBool("yaml"),
		Timeout:     v.GetDuration("timeout"),
	}
	if cfg.JSON && cfg.YAML {
		return nil, fmt.Errorf("--json and --yaml are mutually exclusive")
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	networkName := v.GetString("network")
	network, err := NewNetworkResolver(foundryConfig).Resolve(networkName, NetworkOverrides{
		RPCURL:         v.GetString("rpc_url"),
		ExplorerURL:    v.GetString("explorer_url"),
		ExplorerAPIKey: v.GetString("explorer_api_key"),
		Ephemeral:      v.GetBool("ephemeral"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
	}
	cfg.Network = network

	return cfg, nil
}

// FindProjectRoot walks up from the current directory to find foundry.toml,
// falling back to the current directory
func FindProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, "foundry.toml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".treb"))

	// Set up environment variables
	v.SetEnvPrefix("TREB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("network", DefaultEcosystem+":"+DefaultNetwork)
	v.SetDefault("timeout", "30s")
	v.SetDefault("debug", false)
	v.SetDefault("ephemeral", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)

	return v
}
