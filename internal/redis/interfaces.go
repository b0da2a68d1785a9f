package redis

import (
	"context"
	"time"

	"courier/internal/domain"
	"courier/internal/service"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireOTPLock(ctx context.Context, userID int64, ttl time.Duration) (func(context.Context) error, bool, error)
	AcquirePaymentLock(ctx context.Context, orderID int64, ttl time.Duration) (func(context.Context) error, bool, error)
}

// CacheStoreInterface defines the interface for entity caching.
type CacheStoreInterface interface {
	GetDriverProfile(ctx context.Context, userID int64) (*domain.DriverProfile, error)
	SetDriverProfile(ctx context.Context, profile *domain.DriverProfile) error
	InvalidateDriverProfile(ctx context.Context, userID int64) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface    = (*LockStore)(nil)
	_ CacheStoreInterface   = (*CacheStore)(nil)
	_ service.OTPLocker     = (*LockStore)(nil)
	_ service.PaymentLocker = (*LockStore)(nil)
	_ service.ProfileCache  = (*CacheStore)(nil)
)
