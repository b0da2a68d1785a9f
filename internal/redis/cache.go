package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"courier/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// DriverProfileCacheTTL bounds how stale an eligibility check can be.
// Availability and verification writes invalidate the entry directly.
const DriverProfileCacheTTL = 30 * time.Second

const driverProfileCachePrefix = "cache:driver_profile:"

// CachedDriverProfile is the cached subset of a driver profile.
type CachedDriverProfile struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	VehicleType    string `json:"vehicle_type"`
	DocumentStatus string `json:"document_status"`
	IsAvailable    bool   `json:"is_available"`
}

func driverProfileKey(userID int64) string {
	return driverProfileCachePrefix + strconv.FormatInt(userID, 10)
}

// GetDriverProfile retrieves a driver profile from cache. A miss returns nil, nil.
func (s *CacheStore) GetDriverProfile(ctx context.Context, userID int64) (*domain.DriverProfile, error) {
	data, err := s.client.Get(ctx, driverProfileKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cached CachedDriverProfile
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.DriverProfile{
		ID:             cached.ID,
		UserID:         cached.UserID,
		VehicleType:    cached.VehicleType,
		DocumentStatus: domain.DocumentStatus(cached.DocumentStatus),
		IsAvailable:    cached.IsAvailable,
	}, nil
}

// SetDriverProfile stores a driver profile in cache.
func (s *CacheStore) SetDriverProfile(ctx context.Context, profile *domain.DriverProfile) error {
	data, err := json.Marshal(CachedDriverProfile{
		ID:             profile.ID,
		UserID:         profile.UserID,
		VehicleType:    profile.VehicleType,
		DocumentStatus: string(profile.DocumentStatus),
		IsAvailable:    profile.IsAvailable,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, driverProfileKey(profile.UserID), data, DriverProfileCacheTTL).Err()
}

// InvalidateDriverProfile removes a driver profile from cache.
func (s *CacheStore) InvalidateDriverProfile(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, driverProfileKey(userID)).Err()
}
