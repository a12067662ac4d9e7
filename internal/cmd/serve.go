package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/camaradevs/pautacamara/internal/cache"
	"github.com/camaradevs/pautacamara/internal/camara"
	"github.com/camaradevs/pautacamara/internal/config"
	"github.com/camaradevs/pautacamara/internal/handlers"
	"github.com/camaradevs/pautacamara/internal/logger"
	"github.com/camaradevs/pautacamara/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "🚀 Start the pauta aggregation HTTP server",
	RunE:  runServe,
}

var (
	port       int
	dev        bool
	configFile string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (pretty logs, startup banner)")
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	logLevel := logger.GetLogLevelFromEnv(dev)
	logger.Configure(logLevel, dev)

	cfg := config.Load()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	cfg.Dev = dev

	ttlCache := cache.NewTTLCache(cache.Config{TTL: cfg.CacheTTL})
	api := camara.NewClient(camara.Config{
		BaseURL: cfg.APIBaseURL,
		RPS:     cfg.UpstreamRPS,
	})
	pool := services.NewWorkerPool(cfg.Workers)
	agg := services.NewAggregator(api, ttlCache, cfg.PlenarioID, pool)

	app := fiber.New(fiber.Config{
		AppName:               "pautacamara",
		DisableStartupMessage: !dev,
	})
	handlers.NewPautaHandler(agg).RegisterRoutes(app)

	// Shut down cleanly on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("encerrando servidor...")
		_ = app.Shutdown()
	}()

	logger.Infof("📋 pautacamara ouvindo em :%d (TTL %s, %d workers)", cfg.Port, cfg.CacheTTL, cfg.Workers)
	return app.Listen(fmt.Sprintf(":%d", cfg.Port))
}
