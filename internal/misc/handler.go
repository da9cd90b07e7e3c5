package misc

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/2beens/formlens/internal/telemetry/tracing"
	"github.com/2beens/formlens/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency (redis, postgres ...) is reachable.
type HealthCheck func(ctx context.Context) error

type HealthResponse struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

type Handler struct {
	versionInfo  string
	healthChecks map[string]HealthCheck
}

func NewHandler(versionInfo string, healthChecks map[string]HealthCheck) *Handler {
	return &Handler{
		versionInfo:  versionInfo,
		healthChecks: healthChecks,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(handler.healthChecks))
	for name := range handler.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{
		Healthy: true,
		Checks:  make(map[string]string, len(names)),
	}
	for _, name := range names {
		if err := handler.healthChecks[name](ctx); err != nil {
			log.Warnf("health check [%s]: %s", name, err)
			resp.Healthy = false
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}
	span.SetAttributes(attribute.Bool("healthy", resp.Healthy))

	status := http.StatusOK
	if !resp.Healthy {
		span.SetStatus(codes.Error, "unhealthy")
		status = http.StatusServiceUnavailable
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal health response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}
