// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

const otpKeyPrefix = "otp:"

// Repository stores one-time password challenges. Entries expire on
// their own; Delete makes a code single use.
type Repository interface {
	Save(ctx context.Context, challengeID string, rec *otpRecord, ttl time.Duration) error
	Find(ctx context.Context, challengeID string) (*otpRecord, error)
	Delete(ctx context.Context, challengeID string) error
}

type repository struct {
	rdb redis.UniversalClient
}

func NewRepository(rdb redis.UniversalClient) Repository {
	return &repository{rdb: rdb}
}

func (r *repository) Save(
	ctx context.Context,
	challengeID string,
	rec *otpRecord,
	ttl time.Duration,
) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode otp: %w", err)
	}

	if err := r.rdb.Set(ctx, otpKeyPrefix+challengeID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	return nil
}

func (r *repository) Find(
	ctx context.Context,
	challengeID string,
) (*otpRecord, error) {
	payload, err := r.rdb.Get(ctx, otpKeyPrefix+challengeID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("find otp: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}

	var rec otpRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}

	return &rec, nil
}

func (r *repository) Delete(ctx context.Context, challengeID string) error {
	if err := r.rdb.Del(ctx, otpKeyPrefix+challengeID).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
