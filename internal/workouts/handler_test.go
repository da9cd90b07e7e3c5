package workouts_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/formlens/internal/workouts"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func listRouter(h *workouts.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/workouts/sets/page/{page}/size/{size}", h.HandleList).Methods("GET")
	return r
}

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)
	h := workouts.NewHandler(repoMock)

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	set := workouts.Set{
		ID:          7,
		SessionID:   "s-1",
		Exercise:    "squat",
		Reps:        12,
		Frames:      340,
		AvgAccuracy: 81.25,
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
	}

	repoMock.EXPECT().
		List(gomock.Any(), workouts.ListParams{Exercise: "squat", Page: 2, Size: 10}).
		Return([]workouts.Set{set}, 11, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/workouts/sets/page/2/size/10?exercise=squat", nil)
	listRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp workouts.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 11, resp.Total)
	require.Len(t, resp.Sets, 1)
	assert.Equal(t, set, resp.Sets[0])
	assert.Equal(t, 90*time.Second, resp.Sets[0].Duration())
}

func TestHandler_HandleList_BadParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)
	router := listRouter(workouts.NewHandler(repoMock))

	for _, path := range []string{
		"/workouts/sets/page/x/size/10",
		"/workouts/sets/page/1/size/y",
		"/workouts/sets/page/0/size/10",
		"/workouts/sets/page/1/size/0",
		"/workouts/sets/page/1/size/101",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHandler_HandleList_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksetsRepo(ctrl)

	repoMock.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(nil, -1, errors.New("db down"))

	rec := httptest.NewRecorder()
	listRouter(workouts.NewHandler(repoMock)).
		ServeHTTP(rec, httptest.NewRequest("GET", "/workouts/sets/page/1/size/10", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
