//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-contracts/internal/adapters"
	"github.com/trebuchet-org/treb-contracts/internal/config"
	"github.com/trebuchet-org/treb-contracts/internal/logging"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewContractCache,

		// App
		NewApp,
	)
	return nil, nil, nil
}
