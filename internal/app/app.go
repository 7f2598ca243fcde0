package app

import (
	"log/slog"
	"net/http"

	"github.com/kentbulteni/analytics-service/internal/config"
	"github.com/kentbulteni/analytics-service/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Observability: runtime}
}
