package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/storefront-dashboard/admin"
	"github.com/jrsteele09/storefront-dashboard/identity"
	"github.com/jrsteele09/storefront-dashboard/internal/config"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"github.com/jrsteele09/storefront-dashboard/server"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/jrsteele09/storefront-dashboard/shops"
	"github.com/jrsteele09/storefront-dashboard/storefront"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadDotEnv(".env.local", ".env")
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()
	shopRepo, closeRepo, err := newShopRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	handler, err := newHandler(c, shopRepo)
	if err != nil {
		return err
	}
	defer handler.Close()

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func newHandler(c config.Config, shopRepo shops.Repo) (*server.Server, error) {
	m := metrics.New()
	httpClient := &http.Client{Timeout: c.GetUpstreamTimeout()}

	if c.GetAPISecret() == "" {
		log.Warn().Msg("SHOPIFY_API_SECRET not set - signature verification is bypassed")
	}

	installer := admin.NewInstaller(c.GetAPIKey(), c.GetAPISecret(), c.GetScopes(), c.GetOAuthRedirectURI(),
		admin.WithInstallHTTPClient(httpClient), admin.WithInstallMetrics(m))

	resolver, err := identity.NewResolver(identity.Deps{
		Storefront: storefront.New(c.GetStoreDomain(), c.GetAPIVersion(), c.GetStorefrontAccessToken(),
			storefront.WithHTTPClient(httpClient), storefront.WithMetrics(m)),
		Admin:     admin.NewClient(c.GetAPIVersion(), admin.WithHTTPClient(httpClient), admin.WithMetrics(m)),
		Installer: installer,
		Shops:     shopRepo,
	}, identity.WithAdminAccessToken(c.GetStoreDomain(), c.GetAdminAccessToken()), identity.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("[main] identity resolver: %w", err)
	}

	store, err := sessions.NewStore(c.GetSessionSecret(), c.GetSessionCookieName(),
		sessions.WithSecure(c.IsProduction()), sessions.WithMaxAge(c.GetSessionMaxAge()))
	if err != nil {
		return nil, fmt.Errorf("[main] session store: %w", err)
	}

	return server.New(c, server.Deps{Resolver: resolver, Authorizer: installer, Sessions: store, Metrics: m})
}

// newShopRepo prefers Redis when REDIS_URL is set and falls back to a file under FOLDER.
func newShopRepo(ctx context.Context, c config.Config) (shops.Repo, func(), error) {
	if url := c.GetRedisURL(); url != "" {
		repo, err := shops.NewRedisRepo(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("[main] redis shop store: %w", err)
		}
		log.Info().Msg("Using Redis shop token store")
		return repo, func() { _ = repo.Close() }, nil
	}

	repo, err := shops.NewFileRepo(c.GetDataFolder())
	if err != nil {
		return nil, nil, fmt.Errorf("[main] file shop store: %w", err)
	}
	log.Info().Str("path", repo.Path()).Msg("Using file shop token store")
	return repo, func() {}, nil
}

func setupLogging(c config.Config) {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
