package student

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "registrar/pkg/domain"
)

const nameKeyPrefix = "student:name:"

// CachedDirectory fronts a Directory with a Redis cache of positive lookups.
// Negative answers are never cached: a student created after a miss must be
// admissible immediately. Cache errors fall through to the wrapped directory.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

func (d *CachedDirectory) Exists(ctx context.Context, studentID id.StudentID) (bool, error) {
	if _, ok := d.cached(ctx, studentID); ok {
		return true, nil
	}
	name, found, err := d.next.Name(ctx, studentID)
	if err != nil {
		return false, err
	}
	if found {
		d.store(ctx, studentID, name)
	}
	return found, nil
}

func (d *CachedDirectory) Name(ctx context.Context, studentID id.StudentID) (string, bool, error) {
	if name, ok := d.cached(ctx, studentID); ok {
		return name, true, nil
	}
	name, found, err := d.next.Name(ctx, studentID)
	if err != nil {
		return "", false, err
	}
	if found {
		d.store(ctx, studentID, name)
	}
	return name, found, nil
}

func (d *CachedDirectory) cached(ctx context.Context, studentID id.StudentID) (string, bool) {
	name, err := d.client.Get(ctx, nameKeyPrefix+studentID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		d.logger.WarnContext(ctx, "student name cache read failed", "error", err)
		return "", false
	}
	return name, true
}

func (d *CachedDirectory) store(ctx context.Context, studentID id.StudentID, name string) {
	if err := d.client.Set(ctx, nameKeyPrefix+studentID.String(), name, d.ttl).Err(); err != nil {
		d.logger.WarnContext(ctx, "student name cache write failed", "error", err)
	}
}
