package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/formlens/internal/analysis"
	"github.com/2beens/formlens/internal/config"
	"github.com/2beens/formlens/internal/db"
	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"
	formlensmcp "github.com/2beens/formlens/internal/mcp"
	"github.com/2beens/formlens/internal/middleware"
	"github.com/2beens/formlens/internal/misc"
	"github.com/2beens/formlens/internal/sessions"
	"github.com/2beens/formlens/internal/telemetry/metrics"
	"github.com/2beens/formlens/internal/telemetry/tracing"
	"github.com/2beens/formlens/internal/workouts"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	engine          *formcheck.Engine
	analysisService *analysis.Service
	setsRepo        *workouts.Repo // nil when the workout history is unavailable

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresUser            string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("formlens", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "formlens-backend", rdb)
	if err != nil {
		return nil, err
	}

	var sessionStore sessions.Store
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		log.Debugf("using in-memory session store, %d MB", cfg.MemoryStoreSizeMB)
		sessionStore = sessions.NewMemoryStore(cfg.MemoryStoreSizeMB, cfg.SessionTTL)
	default:
		sessionStore = sessions.NewRedisStore(rdb, cfg.SessionTTL)
	}

	setsRepo := workouts.NewRepo(dbPool)
	if err := setsRepo.EnsureSchema(ctx); err != nil {
		log.Errorf("workout history disabled, ensure schema: %s", err)
		setsRepo = nil
	}

	catalog, err := exercises.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("exercise catalog: %w", err)
	}

	engine := formcheck.NewEngine(catalog)
	serviceParams := analysis.NewServiceParams{
		Engine:          engine,
		Store:           sessionStore,
		MetricsManager:  metricsManager,
		MinRepsToRecord: cfg.RecordSetsMinReps,
	}
	if setsRepo != nil {
		serviceParams.Sets = setsRepo
	}

	return &Server{
		config:          cfg,
		versionInfo:     params.VersionInfo,
		dbPool:          dbPool,
		redisClient:     rdb,
		rateLimiter:     redis_rate.NewLimiter(rdb),
		engine:          engine,
		analysisService: analysis.NewService(serviceParams),
		setsRepo:        setsRepo,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo, s.healthChecks())
	miscHandler.SetupRoutes(r)

	analysisHandler := analysis.NewHandler(s.analysisService)
	analysisHandler.SetupRoutes(r,
		middleware.RateLimit(s.rateLimiter, "analyze", s.config.AnalyzeRateLimit, s.metricsManager),
	)

	var mcpSets formlensmcp.SetsRepo
	if s.setsRepo != nil {
		workoutsHandler := workouts.NewHandler(s.setsRepo)
		r.HandleFunc("/workouts/sets/page/{page}/size/{size}", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-sets")
		mcpSets = s.setsRepo
	}

	mcpServer := formlensmcp.NewServer(s.engine, mcpSets)
	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)).Methods("GET", "POST", "DELETE").Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) healthChecks() map[string]misc.HealthCheck {
	checks := map[string]misc.HealthCheck{}
	if s.redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.redisClient.Ping(ctx).Err()
		}
	}
	if s.dbPool != nil {
		checks["postgres"] = s.dbPool.Ping
	}
	return checks
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), s.config.ShutdownWaitDuration)
	defer timeoutCancel()

	// stop taking frames before the stores go away
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
