package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/2beens/formlens/internal/formcheck"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func testSession() *Session {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s := New("s-1", now)
	s.StartSet(formcheck.NewState("squat"), now)
	s.State.Reps = 4
	s.State.Stage = formcheck.StageDown
	s.Observe(80, now.Add(time.Second))
	s.Observe(90, now.Add(2*time.Second))
	return s
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	store := NewRedisStore(rdb, 30*time.Minute)

	session := testSession()
	saved := *session
	saved.Version = 1
	raw, err := json.Marshal(saved)
	require.NoError(t, err)

	mock.ExpectWatch("formlens:session:s-1")
	mock.ExpectGet("formlens:session:s-1").RedisNil()
	mock.ExpectTxPipeline()
	mock.ExpectSet("formlens:session:s-1", raw, 30*time.Minute).SetVal("OK")
	mock.ExpectTxPipelineExec()
	mock.ExpectGet("formlens:session:s-1").SetVal(string(raw))

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, int64(1), session.Version)

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)
	assert.Equal(t, 85.0, got.AvgAccuracy())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Save_BumpsLoadedVersion(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Minute)

	session := testSession()
	session.Version = 3
	saved := *session
	saved.Version = 4
	raw, err := json.Marshal(saved)
	require.NoError(t, err)

	mock.ExpectWatch("formlens:session:s-1")
	mock.ExpectGet("formlens:session:s-1").SetVal(`{"id":"s-1","version":3}`)
	mock.ExpectTxPipeline()
	mock.ExpectSet("formlens:session:s-1", raw, time.Minute).SetVal("OK")
	mock.ExpectTxPipelineExec()

	require.NoError(t, store.Save(context.Background(), session))
	assert.Equal(t, int64(4), session.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Save_Conflict(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Minute)

	// another instance saved twice since this copy was loaded
	session := testSession()
	session.Version = 3
	mock.ExpectWatch("formlens:session:s-1")
	mock.ExpectGet("formlens:session:s-1").SetVal(`{"id":"s-1","version":5}`)

	err := store.Save(context.Background(), session)
	assert.ErrorIs(t, err, ErrSessionConflict)
	assert.Equal(t, int64(3), session.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Save_RedisDown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Minute)

	mock.ExpectWatch("formlens:session:s-1").SetErr(errors.New("connection refused"))

	err := store.Save(context.Background(), testSession())
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrSessionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Minute)

	mock.ExpectGet("formlens:session:unknown").RedisNil()
	_, err := store.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet("formlens:session:broken").SetVal("{not json")
	_, err = store.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet("formlens:session:down").SetErr(errors.New("connection refused"))
	_, err = store.Get(context.Background(), "down")
	assert.ErrorContains(t, err, "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Minute)

	mock.ExpectDel("formlens:session:s-1").SetVal(1)
	mock.ExpectDel("formlens:session:s-1").SetVal(0)

	assert.NoError(t, store.Delete(context.Background(), "s-1"))
	assert.ErrorIs(t, store.Delete(context.Background(), "s-1"), ErrSessionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
