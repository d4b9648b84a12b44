// Package booklock serializes booking attempts per barber with a Redis lock.
// The database exclusion constraint is the hard guarantee; the lock keeps
// concurrent requests from burning a round trip just to lose the race.
package booklock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/barberops/booking-platform/pkg/logging"
)

// ErrLocked is returned when another booking for the same barber holds the lock.
var ErrLocked = errors.New("booklock: barber is being booked by another request")

// releaseScript deletes the lock only if the caller still owns it.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Locker acquires short-lived per-barber booking locks.
type Locker struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logging.Logger
}

// New creates a Locker. A nil client is allowed and disables locking, which
// leaves conflict detection entirely to the database.
func New(client *redis.Client, ttl time.Duration, logger *logging.Logger) *Locker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Locker{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("barberops.internal.booklock"),
		logger: logger,
	}
}

// WithLock runs fn while holding the booking lock for barberID. It returns
// ErrLocked without running fn if the lock is already held. When no Redis
// client is configured fn runs unguarded.
func (l *Locker) WithLock(ctx context.Context, barberID string, fn func(ctx context.Context) error) error {
	if l == nil || l.redis == nil {
		return fn(ctx)
	}

	ctx, span := l.tracer.Start(ctx, "booklock.with_lock")
	defer span.End()

	key := lockKey(barberID)
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		span.RecordError(err)
		// Redis being down must not block bookings.
		l.logger.Warn("booklock: acquire failed, proceeding without lock", "error", err, "barber_id", barberID)
		return fn(ctx)
	}
	if !ok {
		return ErrLocked
	}

	defer func() {
		if err := l.redis.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("booklock: release failed, lock will expire", "error", err, "barber_id", barberID)
		}
	}()

	return fn(ctx)
}

func lockKey(barberID string) string {
	return fmt.Sprintf("booklock:barber:%s", barberID)
}
