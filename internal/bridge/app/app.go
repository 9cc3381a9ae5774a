package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	httpapi "github.com/aussiebroadwan/oidcbridge/internal/bridge/http"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/identity"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application owns the bridge process: store, signing keys, identity
// backend client, engine and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger
	issuer domain.IssuerContext

	db         store.Store
	keyManager *jwtx.KeyManager
	identity   *identity.Client

	engine              *service.Engine
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "oidcbridge",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	issuer, err := domain.ParseIssuer(cfg.Issuer, cfg.InternalPrefixes...)
	if err != nil {
		return nil, fmt.Errorf("invalid issuer: %w", err)
	}
	app.issuer = issuer

	ctx := context.Background()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := SeedClient(ctx, app.db, cfg); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.logger.Info("client registered", "client_id", cfg.ClientID, "auth_method", cfg.ClientAuthMethod)

	keyManager, err := InitSigningKeys(ctx, cfg, issuer.Issuer(), app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initIdentity(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("oidc bridge starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"issuer", app.issuer.Issuer(),
		"completion_mode", app.cfg.CompletionMode,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down oidc bridge...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("oidc bridge stopped")
	return nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initIdentity(ctx context.Context) error {
	icfg := identity.Config{
		APIKey:       app.cfg.IdentityAPIKey,
		BaseURL:      app.cfg.IdentityBaseURL,
		EmulatorHost: app.cfg.IdentityEmulatorHost,
		ProjectID:    app.cfg.IdentityProjectID,
		Timeout:      app.cfg.IdentityTimeout,
	}

	if app.cfg.IdentityCredentialsFile != "" {
		creds, err := os.ReadFile(app.cfg.IdentityCredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to read identity credentials: %w", err)
		}
		icfg.CredentialsJSON = creds
	}

	client, err := identity.New(ctx, icfg)
	if err != nil {
		return fmt.Errorf("failed to initialize identity client: %w", err)
	}
	app.identity = client

	if icfg.EmulatorHost != "" {
		app.logger.Warn("identity backend emulator in use", "host", icfg.EmulatorHost)
	}
	return nil
}

func (app *Application) initServices() {
	app.engine = &service.Engine{
		Store:          app.db,
		Keys:           app.keyManager,
		Issuer:         app.issuer,
		ResolveClaims:  service.NewAccountResolver(app.identity),
		InteractionTTL: app.cfg.InteractionTTL,
		CodeTTL:        app.cfg.CodeTTL,
		AccessTTL:      app.cfg.AccessTTL,
		IDTokenTTL:     app.cfg.IDTokenTTL,
		RefreshTTL:     app.cfg.RefreshTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() error {
	mode, err := httpapi.ParseCompletionMode(app.cfg.CompletionMode)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(app.engine, app.logger)
	router.Identity = app.identity
	router.Mode = mode
	router.DiscoveryStage = service.ComposeDiscovery(service.WithJWKSURI(app.cfg.IdentityJWKSURI))
	router.CORSOrigins = app.cfg.CORSAllowedOrigins
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

// SeedClient registers the configured relying party, replacing any earlier
// registration with the same id.
func SeedClient(ctx context.Context, db store.Store, cfg Config) error {
	now := time.Now().UTC()
	client := domain.Client{
		ID:                      cfg.ClientID,
		Name:                    cfg.ClientID,
		RedirectURIs:            cfg.ClientRedirectURIs,
		ResponseTypes:           cfg.ClientResponseTypes,
		GrantTypes:              cfg.ClientGrantTypes,
		TokenEndpointAuthMethod: cfg.ClientAuthMethod,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if !client.IsPublic() {
		hash, err := cryptox.HashSecret(cfg.ClientSecret)
		if err != nil {
			return fmt.Errorf("failed to hash client secret: %w", err)
		}
		client.SecretHash = hash
	}

	if err := db.Clients().UpsertClient(ctx, client); err != nil {
		return fmt.Errorf("failed to register client: %w", err)
	}
	return nil
}
