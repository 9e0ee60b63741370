package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// budgetLockNamespace is the first key of the two-key advisory lock form,
// keeping budget locks apart from any other advisory lock users
const budgetLockNamespace int32 = 0x62756467

// AdvisoryUserLocker implements domain.UserLocker with PostgreSQL session
// advisory locks, so budget writes serialize across API instances
type AdvisoryUserLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryUserLocker creates a new AdvisoryUserLocker
func NewAdvisoryUserLocker(pool *pgxpool.Pool) *AdvisoryUserLocker {
	return &AdvisoryUserLocker{pool: pool}
}

// Lock blocks until the user's lock is held. The lock lives on a dedicated
// pooled connection that is returned to the pool by unlock.
func (l *AdvisoryUserLocker) Lock(userID int32) (func(), error) {
	ctx := context.Background()

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1, $2)`, budgetLockNamespace, userID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("pg_advisory_lock: %w", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1, $2)`, budgetLockNamespace, userID); err != nil {
				// a session lock we cannot release must not go back to the pool
				log.Error().Err(err).Int32("user_id", userID).Msg("Failed to release advisory lock")
				conn.Conn().Close(context.Background())
			}
			conn.Release()
		})
	}, nil
}
