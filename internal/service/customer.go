package service

import (
	"context"
	"errors"

	"courier/internal/domain"
	"courier/internal/repository"
)

// CustomerService serves customer profile reads.
type CustomerService struct {
	users    repository.UserRepository
	profiles repository.CustomerProfileRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(users repository.UserRepository, profiles repository.CustomerProfileRepository) *CustomerService {
	return &CustomerService{users: users, profiles: profiles}
}

// CustomerView is a customer's identity with its profile.
type CustomerView struct {
	User    *domain.User
	Profile *domain.CustomerProfile
}

// GetProfile returns the customer's identity and profile.
func (s *CustomerService) GetProfile(ctx context.Context, userID int64) (*CustomerView, error) {
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

	return &CustomerView{User: user, Profile: profile}, nil
}
