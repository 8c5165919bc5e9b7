package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/pecanrolls/rolls-gateway/app/services/gateway/handlers"
	"github.com/pecanrolls/rolls-gateway/business/core/coin"
	"github.com/pecanrolls/rolls-gateway/business/sys/metrics"
	"github.com/pecanrolls/rolls-gateway/foundation/address"
	"github.com/pecanrolls/rolls-gateway/foundation/fullnode"
	"github.com/pecanrolls/rolls-gateway/foundation/logger"
	"github.com/pecanrolls/rolls-gateway/foundation/rollsconfig"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// config is all the configuration for the application and the default values.
type config struct {
	conf.Version
	Web struct {
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:20s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		APIHost         string        `conf:"default:0.0.0.0:8000"`
		DebugHost       string        `conf:"default:0.0.0.0:8001"`
		CorsOrigin      string        `conf:"default:*"`
		RateLimit       float64       `conf:"default:0,help:requests per second where 0 disables limiting"`
		RateBurst       int           `conf:"default:50"`
	}
	Node struct {
		RootPath       string        `conf:"default:~/.rolls/mainnet"`
		Host           string        `conf:"help:overrides self_hostname from the node config"`
		Port           int           `conf:"help:overrides full_node.rpc_port from the node config"`
		RequestTimeout time.Duration `conf:"default:10s"`
		ProbeTimeout   time.Duration `conf:"default:5s"`
	}
	Cache struct {
		TTL time.Duration `conf:"default:10s"`
	}
	Address struct {
		Prefix string `conf:"default:rol"`
	}
	RPC struct {
		AllowedMethods []string `conf:"help:methods passed through to the node where * allows all"`
	}
	Log struct {
		File string `conf:"help:log file written in addition to stdout"`
	}
}

func main() {
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "rolls full node REST gateway",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "GATEWAY"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Println("parsing config:", err)
		os.Exit(1)
	}

	// Construct the application logger.
	var paths []string
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			fmt.Println("creating log folder:", err)
			os.Exit(1)
		}
		paths = append(paths, cfg.Log.File)
	}

	log, err := logger.New("GATEWAY", paths...)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log, cfg); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger, cfg config) error {

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Full Node Support

	// The node's own config.yaml tells us where the RPC server listens and
	// which certificates it trusts.
	nodeCfg, err := rollsconfig.Load(cfg.Node.RootPath)
	if err != nil {
		return fmt.Errorf("loading node config: %w", err)
	}

	host := nodeCfg.SelfHostname
	if cfg.Node.Host != "" {
		host = cfg.Node.Host
	}
	port := nodeCfg.FullNode.RPCPort
	if cfg.Node.Port != 0 {
		port = cfg.Node.Port
	}

	node, err := fullnode.New(fullnode.Config{
		Host:           host,
		Port:           port,
		CACertPath:     nodeCfg.CACertPath(),
		CertPath:       nodeCfg.CertPath(),
		KeyPath:        nodeCfg.KeyPath(),
		RequestTimeout: cfg.Node.RequestTimeout,
	}, fullnode.WithObserver(metrics.ObserveUpstream))
	if err != nil {
		return fmt.Errorf("constructing full node client: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "closing full node client", "url", node.URL())
		node.Close()
	}()

	// Refuse to start against a node we can't talk to.
	probe, cancel := context.WithTimeout(context.Background(), cfg.Node.ProbeTimeout)
	state, err := node.BlockchainState(probe)
	cancel()
	if err != nil {
		return fmt.Errorf("full node health check %s: %w", node.URL(), err)
	}

	var height uint32
	if state.Peak != nil {
		height = state.Peak.Height
	}
	log.Infow("startup", "status", "full node reachable", "url", node.URL(), "height", height, "synced", state.Sync.Synced)

	// =========================================================================
	// Coin Support

	core := coin.NewCore(coin.Config{
		Log:            log,
		Node:           node,
		Codec:          address.New(cfg.Address.Prefix),
		CacheTTL:       cfg.Cache.TTL,
		AllowedMethods: cfg.RPC.AllowedMethods,
	})
	core.Start()
	defer func() {
		log.Infow("shutdown", "status", "stopping caches")
		core.Stop()
	}()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, node)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	var limiter *rate.Limiter
	if cfg.Web.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Web.RateLimit), cfg.Web.RateBurst)
	}

	// Construct the mux for the API calls.
	apiMux := handlers.APIMux(handlers.APIMuxConfig{
		Shutdown:   shutdown,
		Log:        log,
		Coin:       core,
		CorsOrigin: cfg.Web.CorsOrigin,
		Limiter:    limiter,
	})

	// Construct a server to service the requests against the mux.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
