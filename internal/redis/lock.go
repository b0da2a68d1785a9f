package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a lock only while it still carries our token, so a
// lock that expired and was re-taken elsewhere is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func otpLockKey(userID int64) string {
	return fmt.Sprintf("lock:otp:%d", userID)
}

func paymentLockKey(orderID int64) string {
	return fmt.Sprintf("lock:payment:%d", orderID)
}

// AcquireOTPLock attempts to take the OTP issuance lock for a user.
// acquired is false if the lock is already held. release gives back
// exactly this acquisition.
func (s *LockStore) AcquireOTPLock(ctx context.Context, userID int64, ttl time.Duration) (release func(context.Context) error, acquired bool, err error) {
	return s.acquire(ctx, otpLockKey(userID), ttl)
}

// AcquirePaymentLock attempts to take the capture lock for an order.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, orderID int64, ttl time.Duration) (release func(context.Context) error, acquired bool, err error) {
	return s.acquire(ctx, paymentLockKey(orderID), ttl)
}

func (s *LockStore) acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, s.client, []string{key}, token).Err()
	}
	return release, true, nil
}
