package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/2beens/formlens/internal"
	"github.com/2beens/formlens/internal/config"
	"github.com/2beens/formlens/internal/logging"
	"github.com/2beens/formlens/pkg"

	log "github.com/sirupsen/logrus"
)

// secrets never live in config.toml
type secrets struct {
	sentryDSN        string
	redisPassword    string
	postgresUser     string
	postgresPassword string
	honeycombEnabled bool
}

func secretsFromEnv() secrets {
	s := secrets{
		sentryDSN:        os.Getenv("SENTRY_DSN"),
		redisPassword:    os.Getenv("FORMLENS_REDIS_PASS"),
		postgresUser:     os.Getenv("FORMLENS_POSTGRES_USER"), // empty means postgres
		postgresPassword: os.Getenv("FORMLENS_POSTGRES_PASS"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
	}
	return s
}

func (s secrets) warnMissing() {
	if s.redisPassword == "" {
		log.Errorln("redis password not set. use FORMLENS_REDIS_PASS")
	}
	if s.postgresPassword == "" {
		log.Warnln("postgres password not set. use FORMLENS_POSTGRES_PASS")
	}
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}
	if !s.honeycombEnabled {
		log.Debugln("honeycomb tracing disabled")
	} else if os.Getenv("HONEYCOMB_API_KEY") == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}
}

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config for env [%s]: %s", *env, err)
	}

	sec := secretsFromEnv()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.Environment != "development",
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sec.sentryDSN,
		SentryServerName: "formlens-service",
	})
	sec.warnMissing()

	log.Warnf("---->> running in [%s] environment", cfg.Environment)
	log.Debugf("session store: [%s], ttl %s", cfg.SessionStore, cfg.SessionTTL)

	versionInfo := versionInfo()
	log.Tracef("running version: [%s]", versionInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:                  cfg,
		VersionInfo:             versionInfo,
		PostgresUser:            sec.postgresUser,
		PostgresPassword:        sec.postgresPassword,
		RedisPassword:           sec.redisPassword,
		HoneycombTracingEnabled: sec.honeycombEnabled,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("shutdown signal received")
	server.GracefulShutdown()
}

// versionInfo prefers the vcs revision stamped by the go tool and falls back
// to asking git, which works when running from the project root.
func versionInfo() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		log.Tracef("git rev-parse: %s", err)
		return "unknown"
	}
	return strings.TrimSpace(pkg.BytesToString(out))
}
