//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/formlens/internal/analysis"
	"github.com/2beens/formlens/internal/formcheck"
	"github.com/2beens/formlens/internal/misc"
	"github.com/2beens/formlens/internal/pose/posetest"
	"github.com/2beens/formlens/internal/sessions"
	"github.com/2beens/formlens/internal/workouts"

	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, body any, wantStatus int, resp any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	require.NoError(s.T(), err)
	require.Equal(s.T(), wantStatus, httpResp.StatusCode, string(respBytes))

	if resp != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, resp))
	}
}

func (s *IntegrationTestSuite) TestHealth() {
	var health misc.HealthResponse
	s.doRequest(context.Background(), http.MethodGet, "/health", nil, http.StatusOK, &health)
	s.True(health.Healthy)
	s.Equal(map[string]string{"redis": "ok", "postgres": "ok"}, health.Checks)
}

func (s *IntegrationTestSuite) TestListExercises() {
	var resp analysis.ListExercisesResponse
	s.doRequest(context.Background(), http.MethodGet, "/exercises", nil, http.StatusOK, &resp)
	s.Equal([]string{"squat", "pushup", "lunge", "plank", "bicep_curl", "shoulder_press"}, resp.Exercises)
}

func (s *IntegrationTestSuite) TestSessionRecordsSets() {
	ctx := context.Background()

	var newSession analysis.NewSessionResponse
	s.doRequest(ctx, http.MethodPost, "/sessions", nil, http.StatusCreated, &newSession)
	sid := newSession.SessionID
	s.Require().NotEmpty(sid)

	var selectResp analysis.SelectExerciseResponse
	s.doRequest(ctx, http.MethodPost, "/sessions/"+sid+"/exercise",
		analysis.SelectExerciseRequest{Exercise: "squat"}, http.StatusOK, &selectResp)
	s.Equal("exercise reset to squat", selectResp.Message)

	var res formcheck.Result
	for i := 0; i < 3; i++ {
		for _, angle := range []float64{90, 170} {
			s.doRequest(ctx, http.MethodPost, "/sessions/"+sid+"/analyze",
				analysis.AnalyzeRequest{Landmarks: posetest.Legs(angle)}, http.StatusOK, &res)
			s.True(res.Success)
		}
	}
	s.Equal(3, res.Reps)

	// session state lives in redis between frames
	var session sessions.Session
	s.doRequest(ctx, http.MethodGet, "/sessions/"+sid, nil, http.StatusOK, &session)
	s.Equal(3, session.State.Reps)
	s.Equal(6, session.Frames)

	// switching exercise closes the squat set
	s.doRequest(ctx, http.MethodPost, "/sessions/"+sid+"/analyze",
		analysis.AnalyzeRequest{Landmarks: posetest.Pushup(100, 180), Exercise: "pushup"}, http.StatusOK, &res)
	s.Equal("pushup", res.Exercise)
	s.doRequest(ctx, http.MethodPost, "/sessions/"+sid+"/analyze",
		analysis.AnalyzeRequest{Landmarks: posetest.Pushup(170, 180)}, http.StatusOK, &res)
	s.Equal(1, res.Reps)

	var endResp analysis.EndSessionResponse
	s.doRequest(ctx, http.MethodDelete, "/sessions/"+sid, nil, http.StatusOK, &endResp)
	s.Require().NotNil(endResp.Set)
	s.Equal("pushup", endResp.Set.Exercise)
	s.Equal(1, endResp.Set.Reps)

	s.doRequest(ctx, http.MethodGet, "/sessions/"+sid, nil, http.StatusNotFound, nil)

	var count int
	s.Require().NoError(s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM workout_set WHERE session_id = $1", sid,
	).Scan(&count))
	s.Equal(2, count)

	var listResp workouts.ListResponse
	s.doRequest(ctx, http.MethodGet, "/workouts/sets/page/1/size/50?exercise=squat", nil, http.StatusOK, &listResp)
	found := false
	for _, set := range listResp.Sets {
		if set.SessionID == sid {
			found = true
			s.Equal(3, set.Reps)
			s.Equal(6, set.Frames)
		}
	}
	s.True(found, "squat set of session %s not listed", sid)
}
