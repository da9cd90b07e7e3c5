package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/formlens/internal/telemetry/tracing"
	"github.com/2beens/formlens/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrSetAlreadyRecorded = errors.New("set already recorded")
	ErrInvalidPage        = errors.New("page and size must be greater than 0")
)

const Schema = `
CREATE TABLE IF NOT EXISTS public.workout_set
(
    id           SERIAL PRIMARY KEY,
    session_id   VARCHAR NOT NULL,
    exercise     VARCHAR NOT NULL,
    reps         INTEGER NOT NULL,
    frames       INTEGER NOT NULL,
    avg_accuracy DOUBLE PRECISION NOT NULL,
    started_at   TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ NOT NULL,
    UNIQUE (session_id, started_at)
);

CREATE INDEX IF NOT EXISTS ix_workout_set_finished_at ON public.workout_set (finished_at);
`

type ListParams struct {
	Exercise string
	Page     int
	Size     int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create workout_set table: %w", err)
	}
	return nil
}

// Add records a finished set. A set is identified by its session and start
// time, so recording it twice returns ErrSetAlreadyRecorded.
func (r *Repo) Add(ctx context.Context, set Set) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", set.SessionID))
	span.SetAttributes(attribute.String("exercise", set.Exercise))

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_set
				(session_id, exercise, reps, frames, avg_accuracy, started_at, finished_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		set.SessionID, set.Exercise, set.Reps, set.Frames, set.AvgAccuracy, set.StartedAt, set.FinishedAt,
	).Scan(&id)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSetAlreadyRecorded
		}
		return nil, fmt.Errorf("insert set: %w", err)
	}

	span.SetAttributes(attribute.Int("set.id", id))

	set.ID = id
	return &set, nil
}

// List returns one page of recorded sets, newest first, and the total
// number of sets matching params.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Set, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))
	span.SetAttributes(attribute.String("exercise", params.Exercise))

	if params.Page < 1 || params.Size < 1 {
		return nil, -1, ErrInvalidPage
	}

	total, err = r.Count(ctx, params.Exercise)
	if err != nil {
		return nil, -1, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, session_id, exercise, reps, frames, avg_accuracy, started_at, finished_at
			FROM workout_set
				WHERE ($1::text = '' OR exercise = $1)
			ORDER BY finished_at DESC
			LIMIT $2
			OFFSET $3;`,
		params.Exercise, params.Size, (params.Page-1)*params.Size,
	)
	if err != nil {
		return nil, -1, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sets, err := rows2sets(rows)
	if err != nil {
		return nil, -1, fmt.Errorf("rows2sets: %w", err)
	}
	return sets, total, nil
}

func (r *Repo) Count(ctx context.Context, exercise string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_set WHERE ($1::text = '' OR exercise = $1);`,
		exercise,
	).Scan(&count)
	if err != nil {
		return -1, fmt.Errorf("count sets: %w", err)
	}
	return count, nil
}

func rows2sets(rows pgx.Rows) ([]Set, error) {
	sets := []Set{}
	for rows.Next() {
		var s Set
		if err := rows.Scan(
			&s.ID, &s.SessionID, &s.Exercise, &s.Reps, &s.Frames, &s.AvgAccuracy, &s.StartedAt, &s.FinishedAt,
		); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}
