package app

import (
	"log/slog"

	"github.com/trebuchet-org/treb-contracts/internal/domain/config"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// App is the main application container
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Log      *slog.Logger
	Progress usecase.ProgressSink

	// Use cases
	Contracts *usecase.ContractCache
}

// NewApp creates a new App instance
func NewApp(cfg *config.RuntimeConfig, log *slog.Logger, progress usecase.ProgressSink, contracts *usecase.ContractCache) *App {
	return &App{
		Config:    cfg,
		Log:       log,
		Progress:  progress,
		Contracts: contracts,
	}
}
