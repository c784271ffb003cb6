package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"catering/cache"
	"catering/config"
	"catering/database"
	"catering/logger"
	"catering/middleware"
	"catering/router"
	"catering/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if servePort != "" {
			if !strings.HasPrefix(servePort, ":") {
				servePort = ":" + servePort
			}
			cfg.Server.Port = servePort
		}
		return serve(cmd.Context(), cfg, log)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port, e.g. 8080 or :8080")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	config.PrintConfig(log)

	if err := database.Init(cfg, log); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := middleware.InitJWT(cfg); err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	deps := router.Deps{
		Email: service.NewEmailService(&cfg.Email),
		Log:   log,
	}

	store, err := service.NewS3Store(ctx, cfg.Storage)
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		log.Warn("image uploads disabled, storage.bucket is empty")
	case err != nil:
		return fmt.Errorf("init storage: %w", err)
	default:
		deps.Store = store
	}
	deps.Janitor = service.NewImageJanitor(deps.Store, log.Named("janitor"))

	shareCache, err := newShareCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer shareCache.Close()
	deps.Cache = shareCache

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.SetupRouter(cfg, deps),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("addr", cfg.Server.Port),
			zap.String("swagger", "http://localhost"+cfg.Server.Port+"/swagger/index.html"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// let pending image removals finish before exiting
	deps.Janitor.Wait()
	log.Info("server stopped")
	return nil
}

func newShareCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.URL == "" {
		return cache.NewMemoryCache(cfg.Redis.TTL), nil
	}
	c, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.Prefix, cfg.Redis.TTL)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	return c, nil
}
