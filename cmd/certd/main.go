package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/hellocert/internal/cache"
	"github.com/dropDatabas3/hellocert/internal/certificate"
	"github.com/dropDatabas3/hellocert/internal/config"
	httpserver "github.com/dropDatabas3/hellocert/internal/http"
	certctrl "github.com/dropDatabas3/hellocert/internal/http/controllers/certificates"
	healthctrl "github.com/dropDatabas3/hellocert/internal/http/controllers/health"
	mw "github.com/dropDatabas3/hellocert/internal/http/middlewares"
	"github.com/dropDatabas3/hellocert/internal/http/router"
	jwtx "github.com/dropDatabas3/hellocert/internal/jwt"
	"github.com/dropDatabas3/hellocert/internal/metrics"
	"github.com/dropDatabas3/hellocert/internal/observability/logger"
)

// seteado con -ldflags "-X main.version=…"
var version = "dev"

func main() {
	var (
		flagConfig  = flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "ruta a config.yaml (si no existe: env + defaults)")
		flagEnvFile = flag.String("env-file", ".env", "ruta a .env")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "certd",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Fatal("certd stopped", logger.Err(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Named("certd")

	// claves: sin par de firma no hay servicio
	ks := jwtx.NewFileKeystore(cfg.Keys.PrivatePath, cfg.Keys.PublicPath, cfg.Keys.Bits)
	keys, err := ks.Ensure()
	if err != nil {
		return fmt.Errorf("keystore: %w", err)
	}
	if ks.Generated() {
		log.Warn("generated new signing key pair; certificates signed with a previous key no longer verify",
			logger.KID(keys.KID), logger.KeyPath(cfg.Keys.PrivatePath))
	} else {
		log.Info("signing key loaded", logger.KID(keys.KID), logger.KeyPath(cfg.Keys.PrivatePath))
	}

	cc, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Store.Kind,
		Addr:       cfg.Store.Redis.Addr,
		DB:         cfg.Store.Redis.DB,
		Prefix:     cfg.Store.Redis.Prefix,
		DefaultTTL: cfg.MemoryTTL(),
	})
	if err != nil {
		return fmt.Errorf("record store: %w", err)
	}
	defer cc.Close()
	log.Info("record store ready", logger.String("driver", cc.Driver()))

	svc, err := certificate.NewService(certificate.Deps{
		Keys:       jwtx.StaticKeystore(keys),
		IssuerName: cfg.Certificate.Issuer,
		Validity:   cfg.ValidityDuration(),
		PublicURL:  cfg.PublicURL,
		Store:      certificate.NewCacheStore(cc, 0),
	})
	if err != nil {
		return err
	}

	if err := metrics.RegisterCertificates(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := mw.RegisterHTTPMetrics(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Certificates: certctrl.NewController(svc),
		Health: healthctrl.NewController(healthctrl.Deps{
			Keys:    svc.Keys(),
			Ready:   svc.Ready,
			Version: version,
		}),
		Metrics: promhttp.Handler(),
	})

	log.Info("certd ready",
		logger.String("addr", cfg.Server.Addr),
		logger.String("public_url", cfg.PublicURL),
		logger.String("issuer", cfg.Certificate.Issuer),
	)

	return httpserver.NewServer(httpserver.ServerConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}, handler).Run(ctx)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
