package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/2beens/formlens/internal/formcheck"
	"github.com/2beens/formlens/internal/pose"
	"github.com/2beens/formlens/internal/sessions"
	"github.com/2beens/formlens/internal/telemetry/tracing"
	"github.com/2beens/formlens/internal/workouts"
	"github.com/2beens/formlens/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// a frame of 33 landmarks is ~3KB, leave room for pretty printed payloads
const maxRequestBodyBytes = 256 * 1024

const MessageNoLandmarks = "no landmarks provided"

type ListExercisesResponse struct {
	Exercises []string `json:"exercises"`
}

type SelectExerciseRequest struct {
	Exercise string `json:"exercise"`
}

type SelectExerciseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AnalyzeRequest struct {
	Landmarks pose.Landmarks `json:"landmarks"`
	// Exercise optionally selects the exercise before analyzing the frame.
	Exercise string `json:"exercise,omitempty"`
}

type NewSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type EndSessionResponse struct {
	SessionID string        `json:"sessionId"`
	Set       *workouts.Set `json:"set"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

const sessionPath = "/sessions/{sid:[A-Za-z0-9_-]{1,64}}"

// SetupRoutes registers the exercise and session routes. analyzeMiddlewares
// wrap the analyze route only, e.g. to rate limit frames per session.
func (handler *Handler) SetupRoutes(r *mux.Router, analyzeMiddlewares ...mux.MiddlewareFunc) {
	r.HandleFunc("/exercises", handler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/{id}", handler.HandleGetExercise).Methods("GET", "OPTIONS").Name("get-exercise")

	r.HandleFunc("/sessions", handler.HandleNewSession).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc(sessionPath, handler.HandleGetSession).Methods("GET", "OPTIONS").Name("get-session")
	r.HandleFunc(sessionPath, handler.HandleEndSession).Methods("DELETE").Name("end-session")
	r.HandleFunc(sessionPath+"/exercise", handler.HandleSelectExercise).Methods("POST", "OPTIONS").Name("select-exercise")

	var analyze http.Handler = http.HandlerFunc(handler.HandleAnalyze)
	for i := len(analyzeMiddlewares) - 1; i >= 0; i-- {
		analyze = analyzeMiddlewares[i](analyze)
	}
	r.Handle(sessionPath+"/analyze", analyze).Methods("POST", "OPTIONS").Name("analyze")
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	writeJSON(w, ListExercisesResponse{
		Exercises: handler.service.ListExercises(),
	}, http.StatusOK)
}

func (handler *Handler) HandleGetExercise(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	span.SetAttributes(attribute.String("exercise", id))

	spec, err := handler.service.Exercise(id)
	if err != nil {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}

	writeJSON(w, spec, http.StatusOK)
}

func (handler *Handler) HandleNewSession(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.new")
	defer span.End()

	sid, err := handler.service.NewSessionID()
	if err != nil {
		log.Errorf("generate session id: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, NewSessionResponse{SessionID: sid}, http.StatusCreated)
}

func (handler *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.get")
	defer span.End()

	sid := mux.Vars(r)["sid"]
	session, err := handler.service.Session(ctx, sid)
	if errors.Is(err, sessions.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get session [%s]: %s", sid, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.end")
	defer span.End()

	sid := mux.Vars(r)["sid"]
	set, err := handler.service.EndSession(ctx, sid)
	if errors.Is(err, sessions.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("end session [%s]: %s", sid, err)
		http.Error(w, "failed to end session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, EndSessionResponse{
		SessionID: sid,
		Set:       set,
	}, http.StatusOK)
}

func (handler *Handler) HandleSelectExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.select")
	defer span.End()

	if !isJSON(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req SelectExerciseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		log.Tracef("select exercise, unmarshal json: %s", err)
		writeJSON(w, SelectExerciseResponse{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	sid := mux.Vars(r)["sid"]
	state, err := handler.service.SelectExercise(ctx, sid, req.Exercise)
	if errors.Is(err, formcheck.ErrUnknownExercise) {
		writeJSON(w, SelectExerciseResponse{
			Message: fmt.Sprintf("invalid exercise: %s", req.Exercise),
		}, http.StatusBadRequest)
		return
	}
	if errors.Is(err, sessions.ErrSessionConflict) {
		http.Error(w, "session changed concurrently, retry", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("select exercise [%s] for session [%s]: %s", req.Exercise, sid, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, SelectExerciseResponse{
		Success: true,
		Message: fmt.Sprintf("exercise reset to %s", state.Exercise),
	}, http.StatusOK)
}

func (handler *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.analyze")
	defer span.End()

	if !isJSON(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		log.Tracef("analyze, unmarshal json: %s", err)
		writeJSON(w, formcheck.Result{
			Message:  "invalid request body",
			Feedback: []string{},
		}, http.StatusBadRequest)
		return
	}
	if req.Landmarks == nil {
		writeJSON(w, formcheck.Result{
			Message:  MessageNoLandmarks,
			Feedback: []string{},
		}, http.StatusBadRequest)
		return
	}

	sid := mux.Vars(r)["sid"]
	span.SetAttributes(attribute.String("sid", sid))
	if unknown := req.Landmarks.UnknownLabels(); unknown > 0 {
		span.SetAttributes(attribute.Int("landmarks.unknown", unknown))
	}
	res, err := handler.service.Analyze(ctx, sid, req.Landmarks, req.Exercise)
	if errors.Is(err, sessions.ErrSessionConflict) {
		log.Debugf("analyze frame for session [%s]: %s", sid, err)
		http.Error(w, "session changed concurrently, retry", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("analyze frame for session [%s]: %s", sid, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}
