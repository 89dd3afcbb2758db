package main

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/tg-miniapp/internal/auth"
	"github.com/deppfellow/tg-miniapp/internal/config"
	"github.com/deppfellow/tg-miniapp/internal/handler"
	"github.com/deppfellow/tg-miniapp/internal/logger"
	"github.com/deppfellow/tg-miniapp/internal/repository"
	"github.com/deppfellow/tg-miniapp/internal/router"
	"github.com/deppfellow/tg-miniapp/internal/server"
	"github.com/deppfellow/tg-miniapp/internal/service"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("command failed")
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "miniapp",
		Short:         "Expense tracking and price comparison API for a Telegram Mini App",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newInvokeCommand())
	return root
}

// app holds what every command needs before it touches Postgres.
type app struct {
	cfg           *config.Config
	logger        zerolog.Logger
	loggerService *logger.LoggerService
}

func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:           cfg,
		logger:        logger.NewLoggerWithService(cfg.Observability, loggerService),
		loggerService: loggerService,
	}, nil
}

// newServer connects the shared resources and builds the full route table
// on top of them.
func (a *app) newServer() (*server.Server, *echo.Echo, error) {
	srv, err := server.New(a.cfg, &a.logger, a.loggerService)
	if err != nil {
		return nil, nil, err
	}

	resolver, err := auth.NewResolver(a.cfg.Auth)
	if err != nil {
		_ = srv.Close()
		return nil, nil, err
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(repos)
	handlers := handler.NewHandlers(srv, services)

	return srv, router.NewRouter(srv, handlers, resolver), nil
}
