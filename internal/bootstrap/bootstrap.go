package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	accountinadapter "pathlight/internal/modules/account/adapter/in"
	accountoutadapter "pathlight/internal/modules/account/adapter/out"
	accountin "pathlight/internal/modules/account/port/in"
	accountservice "pathlight/internal/modules/account/service"
	accountusecase "pathlight/internal/modules/account/usecase"
	insightinadapter "pathlight/internal/modules/insight/adapter/in"
	insightoutadapter "pathlight/internal/modules/insight/adapter/out"
	insightin "pathlight/internal/modules/insight/port/in"
	insightservice "pathlight/internal/modules/insight/service"
	insightusecase "pathlight/internal/modules/insight/usecase"
	pathsinadapter "pathlight/internal/modules/paths/adapter/in"
	pathsoutadapter "pathlight/internal/modules/paths/adapter/out"
	pathsin "pathlight/internal/modules/paths/port/in"
	pathsservice "pathlight/internal/modules/paths/service"
	pathsusecase "pathlight/internal/modules/paths/usecase"
	"pathlight/internal/platform/api"
	"pathlight/internal/platform/clock"
	"pathlight/internal/platform/config"
	"pathlight/internal/platform/id"
	uiapp "pathlight/internal/ui/app"
)

// App is the wired object graph. CLI commands talk to the handlers; the
// TUI talks to the usecases directly.
type App struct {
	Paths   pathsin.Usecase
	Account accountin.Usecase
	Insight insightin.Usecase

	PathsCLI   pathsinadapter.CLIHandler
	AccountCLI accountinadapter.CLIHandler
	InsightCLI insightinadapter.CLIHandler

	API *api.Client

	partitions *pathsoutadapter.SQLitePartitionStore
}

// lazyTokenSource breaks the construction cycle between the API client
// and the account service that supplies its bearer token.
type lazyTokenSource struct {
	source api.TokenSource
}

func (l *lazyTokenSource) Token() string {
	if l.source == nil {
		return ""
	}
	return l.source.Token()
}

func New(cfg config.Config) (*App, error) {
	for _, dir := range []string{cfg.HomeDir, cfg.ExportDir, cfg.ProvidersPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	clk := clock.SystemClock{}
	ids := id.UUID{}

	tokens := &lazyTokenSource{}
	client := api.New(cfg.API.BaseURL, tokens,
		api.WithTimeouts(cfg.API.RequestTimeout, cfg.API.GenerateTimeout))

	partitions, err := pathsoutadapter.NewSQLitePartitionStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open partition store: %w", err)
	}

	storeSvc := pathsservice.NewStoreService(
		clk,
		ids,
		pathsoutadapter.NewAPIGenerator(client),
		pathsoutadapter.NewAPIRemoteStore(client),
		partitions,
		logger,
		cfg.API.PollInterval,
	)
	pathsUC := pathsusecase.NewInteractor(storeSvc, pathsoutadapter.NewMarkdownExporter(cfg.ExportDir))

	accountSvc := accountservice.NewAccountService(
		accountoutadapter.NewAPIAuthenticator(client),
		accountoutadapter.NewFileCredentialStore(cfg.CredentialsPath),
		logger,
	)
	tokens.source = accountSvc
	accountUC := accountusecase.NewInteractor(accountSvc, pathsUC)

	insightUC := insightusecase.NewInteractor(insightservice.NewInsightService(
		insightoutadapter.NewFileManifestStore(cfg.ProvidersPath),
		insightoutadapter.NewGRPCHost(),
	))

	return &App{
		Paths:      pathsUC,
		Account:    accountUC,
		Insight:    insightUC,
		PathsCLI:   pathsinadapter.NewCLIHandler(pathsUC),
		AccountCLI: accountinadapter.NewCLIHandler(accountUC),
		InsightCLI: insightinadapter.NewCLIHandler(insightUC),
		API:        client,
		partitions: partitions,
	}, nil
}

// Close releases the local database handle.
func (a *App) Close() error {
	return a.partitions.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Paths, app.Account, app.Insight)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
