package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/2beens/formlens/internal/telemetry/tracing"
	"github.com/2beens/formlens/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type setsRepo interface {
	List(ctx context.Context, params ListParams) (_ []Set, total int, err error)
}

type ListResponse struct {
	Sets  []Set `json:"sets"`
	Total int   `json:"total"`
}

type Handler struct {
	repo setsRepo
}

func NewHandler(repo setsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Tracef("handle list sets, from <page> param: %s", err)
		http.Error(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Tracef("handle list sets, from <size> param: %s", err)
		http.Error(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}

	if page < 1 {
		http.Error(w, "invalid page (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 || size > 100 {
		http.Error(w, "invalid size (has to be between 1 and 100)", http.StatusBadRequest)
		return
	}

	exercise := r.URL.Query().Get("exercise")
	span.SetAttributes(attribute.String("exercise", exercise))

	sets, total, err := handler.repo.List(ctx, ListParams{
		Exercise: exercise,
		Page:     page,
		Size:     size,
	})
	if err != nil {
		log.Errorf("list sets error: %s", err)
		http.Error(w, "failed to get sets", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{
		Sets:  sets,
		Total: total,
	})
	if err != nil {
		log.Errorf("marshal sets error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
