package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"prakriti-darpan/classifier"
	"prakriti-darpan/config"
	"prakriti-darpan/controllers"
	"prakriti-darpan/middlewares"
	"prakriti-darpan/routes"
	"prakriti-darpan/services"
	"prakriti-darpan/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string
	Seed bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Reports go to the remote table when REMOTE_DB_URL and REMOTE_DB_KEY are both
set, and to the local store otherwise.

Example:
  prakriti-darpan serve --port 8080
  prakriti-darpan serve --env-file .env.local --seed=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				opts.Port = opts.Config.Port
			}
			if !cmd.Flags().Changed("seed") {
				opts.Seed = opts.Config.SeedOnStart
			}
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "8080", "listen port (default PORT)")
	cmd.Flags().BoolVar(&opts.Seed, "seed", true, "load demo reports into an empty store on start (default SEED_ON_START)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, logger := opts.Config, opts.Logger

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("error closing report store", "err", err)
		}
	}()

	if opts.Seed {
		if err := st.SeedIfEmpty(ctx); err != nil {
			logger.Warn("seeding demo reports failed", "err", err)
		}
	}

	var cls classifier.Classifier
	if gemini, err := classifier.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger); err != nil {
		logger.Warn("image classification disabled", "err", err)
	} else {
		cls = gemini
	}

	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		if redisClient, err = config.ConnectRedis(ctx, cfg); err != nil {
			logger.Warn("classification rate limiting disabled", "err", err)
		} else {
			defer redisClient.Close()
		}
	}

	router := NewRouter(cfg, logger, st, cls, redisClient)
	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "mode", st.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig)
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// NewRouter assembles the HTTP API. cls and redisClient may be nil.
func NewRouter(cfg *config.Config, logger *slog.Logger, st *store.Store, cls classifier.Classifier, redisClient *redis.Client) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "mode": st.Mode()})
	})

	var classifyGuards []gin.HandlerFunc
	if redisClient != nil && cfg.ClassifyDailyLimit > 0 {
		classifyGuards = append(classifyGuards,
			middlewares.ClassifyRateLimiter(redisClient, config.RedisClassifyPrefix, cfg.ClassifyDailyLimit, logger))
	}

	reportService := services.NewReportService(st, cls, logger)
	routes.ReportRoutes(r, controllers.NewReportController(st, reportService, logger), classifyGuards...)
	routes.AnalyticsRoutes(r, controllers.NewAnalyticsController(st, services.NewAnalyticsService(), logger))

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
