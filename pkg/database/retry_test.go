package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/pkg/database"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	require.False(t, database.IsTransient(nil))
	require.False(t, database.IsTransient(errors.New("boom")))
	require.True(t, database.IsTransient(timeoutErr{}))
	require.True(t, database.IsTransient(context.DeadlineExceeded))

	// Connection exception and operator intervention classes are transient.
	require.True(t, database.IsTransient(&pgconn.PgError{Code: "08006"}))
	require.True(t, database.IsTransient(&pgconn.PgError{Code: "57P01"}))

	// A constraint violation is not.
	require.False(t, database.IsTransient(&pgconn.PgError{Code: "23505"}))
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	calls := 0
	err := database.WithRetry(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return timeoutErr{}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestWithRetryGivesUpAfterSecondFailure(t *testing.T) {
	calls := 0
	err := database.WithRetry(context.Background(), func(context.Context) error {
		calls++
		return timeoutErr{}
	})
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestWithRetrySkipsNonTransient(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := database.WithRetry(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestWithRetryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := database.WithRetry(ctx, func(context.Context) error {
		calls++
		return timeoutErr{}
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
