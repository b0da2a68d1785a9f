package service

import (
	"context"
	"errors"
	"log/slog"

	"courier/internal/domain"
	"courier/internal/repository"
)

// ProfileCache caches driver profiles for the job-listing hot path.
// Get returns nil, nil on a miss.
type ProfileCache interface {
	GetDriverProfile(ctx context.Context, userID int64) (*domain.DriverProfile, error)
	SetDriverProfile(ctx context.Context, profile *domain.DriverProfile) error
	InvalidateDriverProfile(ctx context.Context, userID int64) error
}

// DriverService handles driver profile, availability and earnings.
type DriverService struct {
	users    repository.UserRepository
	profiles repository.DriverProfileRepository
	earnings repository.EarningRepository
	cache    ProfileCache
	logger   *slog.Logger
}

// NewDriverService creates a new DriverService. cache may be nil.
func NewDriverService(
	users repository.UserRepository,
	profiles repository.DriverProfileRepository,
	earnings repository.EarningRepository,
	cache ProfileCache,
	logger *slog.Logger,
) *DriverService {
	return &DriverService{
		users:    users,
		profiles: profiles,
		earnings: earnings,
		cache:    cache,
		logger:   logger.With("component", "driver_service"),
	}
}

// DriverView is a driver's identity with its profile.
type DriverView struct {
	User    *domain.User
	Profile *domain.DriverProfile
}

// GetProfile returns the driver's identity and profile.
func (s *DriverService) GetProfile(ctx context.Context, userID int64) (*DriverView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &DriverView{User: user, Profile: profile}, nil
}

// Eligibility returns the driver's profile, served from cache when possible.
func (s *DriverService) Eligibility(ctx context.Context, userID int64) (*domain.DriverProfile, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDriverProfile(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "profile cache read failed", "user_id", userID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDriverProfile(ctx, profile); err != nil {
			s.logger.WarnContext(ctx, "profile cache write failed", "user_id", userID, "error", err)
		}
	}
	return profile, nil
}

// SetAvailability takes the driver online or offline. Only verified drivers
// may go online.
func (s *DriverService) SetAvailability(ctx context.Context, userID int64, available bool) (*domain.DriverProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if available && profile.DocumentStatus != domain.DocumentStatusVerified {
		return nil, ErrDriverNotVerified
	}

	if err := s.profiles.SetAvailability(ctx, userID, available); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	profile.IsAvailable = available
	s.logger.InfoContext(ctx, "driver availability changed", "user_id", userID, "available", available)
	return profile, nil
}

// VerifyDocuments records an admin's verification decision for a driver.
func (s *DriverService) VerifyDocuments(ctx context.Context, driverUserID int64, status domain.DocumentStatus) error {
	if status != domain.DocumentStatusVerified && status != domain.DocumentStatusRejected {
		return NewValidationError("document_status", "The selected document status is invalid.")
	}

	if err := s.profiles.SetDocumentStatus(ctx, driverUserID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	s.invalidate(ctx, driverUserID)

	s.logger.InfoContext(ctx, "driver documents reviewed", "user_id", driverUserID, "status", status)
	return nil
}

func (s *DriverService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDriverProfile(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "profile cache invalidation failed", "user_id", userID, "error", err)
	}
}

// EarningsSummary lists a driver's earnings with the total already paid out.
type EarningsSummary struct {
	Earnings  []*domain.DriverEarning
	TotalPaid domain.Cents
}

// Earnings returns the driver's earnings.
func (s *DriverService) Earnings(ctx context.Context, userID int64) (*EarningsSummary, error) {
	earnings, err := s.earnings.ListByDriver(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.earnings.SumPaid(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &EarningsSummary{Earnings: earnings, TotalPaid: total}, nil
}
