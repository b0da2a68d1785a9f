package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"courier/internal/domain"
	"courier/internal/repository"
)

// MaxAvailableJobs caps the job listing.
const MaxAvailableJobs = 20

// JobAction is a driver's answer to an open job.
type JobAction string

const (
	JobActionAccept JobAction = "accept"
	JobActionReject JobAction = "reject"
)

// EligibilityChecker resolves a driver's verification and availability.
type EligibilityChecker interface {
	Eligibility(ctx context.Context, userID int64) (*domain.DriverProfile, error)
}

// JobService drives the driver side of the order lifecycle.
type JobService struct {
	tx       repository.TxManager
	repos    repository.Repositories
	drivers  EligibilityChecker
	notifier Notifier
	logger   *slog.Logger
}

// NewJobService creates a new JobService.
func NewJobService(
	tx repository.TxManager,
	repos repository.Repositories,
	drivers EligibilityChecker,
	notifier Notifier,
	logger *slog.Logger,
) *JobService {
	return &JobService{
		tx:       tx,
		repos:    repos,
		drivers:  drivers,
		notifier: notifier,
		logger:   logger.With("component", "job_service"),
	}
}

// requireEligible fails unless the driver is verified and online.
func (s *JobService) requireEligible(ctx context.Context, driverID int64) error {
	profile, err := s.drivers.Eligibility(ctx, driverID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ErrDriverNotEligible
		}
		return err
	}
	if !profile.EligibleForJobs() {
		return ErrDriverNotEligible
	}
	return nil
}

// ListAvailableJobs returns paid, unassigned orders in creation order.
// Proximity filtering is not applied.
func (s *JobService) ListAvailableJobs(ctx context.Context, driverID int64) ([]*domain.Order, error) {
	if err := s.requireEligible(ctx, driverID); err != nil {
		return nil, err
	}

	orders, err := s.repos.Orders.ListAvailable(ctx, MaxAvailableJobs)
	if err != nil {
		return nil, err
	}
	if err := attachLocations(ctx, s.repos.Orders, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// HandleJobAction accepts or rejects an open job. Accepting is a single
// conditional update, so among concurrent accepts exactly one wins and the
// rest get ErrOrderAlreadyAssigned. Rejecting leaves the job open.
func (s *JobService) HandleJobAction(ctx context.Context, driverID, orderID int64, action JobAction) (*domain.Order, error) {
	if action != JobActionAccept && action != JobActionReject {
		return nil, NewValidationError("action", "The selected action is invalid.")
	}

	order, err := s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	if order.DriverID != nil {
		if action == JobActionReject || order.Status == domain.OrderStatusCancelled {
			return nil, ErrJobNotFound
		}
		return nil, ErrOrderAlreadyAssigned
	}
	if order.Status != domain.OrderStatusAccepted {
		return nil, ErrJobNotFound
	}

	if action == JobActionReject {
		s.logger.InfoContext(ctx, "job rejected", "order_id", order.ID, "driver_id", driverID)
		return order, nil
	}

	if err := s.requireEligible(ctx, driverID); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ok, err := repos.Orders.AssignDriver(ctx, order.ID, driverID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderAlreadyAssigned
		}
		return repos.Tracking.Append(ctx, domain.NewTracking(order.ID, domain.TrackingDriverAssigned))
	})
	if err != nil {
		return nil, err
	}

	order.DriverID = &driverID
	order.Status = domain.OrderStatusInTransit

	s.logger.InfoContext(ctx, "job accepted", "order_id", order.ID, "driver_id", driverID)
	s.notify(ctx, "driver assigned", s.notifier.NotifyDriverAssigned(ctx, order))
	return order, nil
}

// ProofInput is the evidence a driver submits at a stop.
type ProofInput struct {
	DriverID  int64
	OrderID   int64
	Photo     string
	Signature string
	Notes     string
}

// ConfirmPickup records pickup evidence and moves in_transit → in_transit_to_dropoff.
func (s *JobService) ConfirmPickup(ctx context.Context, in ProofInput) (*domain.Order, error) {
	order, err := s.assignedOrder(ctx, in.OrderID, in.DriverID, domain.OrderStatusInTransit)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := advance(ctx, repos, order, in.DriverID, domain.OrderStatusInTransitToDropoff); err != nil {
			return err
		}
		if err := repos.Proofs.Create(ctx, proofFrom(in, domain.ProofTypePickup)); err != nil {
			return fmt.Errorf("create pickup proof: %w", err)
		}
		return repos.Tracking.Append(ctx, domain.NewTracking(order.ID, domain.TrackingPickedUp))
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusInTransitToDropoff

	s.logger.InfoContext(ctx, "pickup confirmed", "order_id", order.ID, "driver_id", in.DriverID)
	s.notify(ctx, "picked up", s.notifier.NotifyPickedUp(ctx, order))
	return order, nil
}

// DeliveryResult is a completed delivery with the driver's commission.
type DeliveryResult struct {
	Order   *domain.Order
	Earning *domain.DriverEarning
}

// ConfirmDelivery records delivery evidence, completes the order and books
// the driver's earning. Photo and signature are both required.
func (s *JobService) ConfirmDelivery(ctx context.Context, in ProofInput) (*DeliveryResult, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Photo) == "" {
		verr.Add("photo", "The photo field is required.")
	}
	if strings.TrimSpace(in.Signature) == "" {
		verr.Add("signature", "The signature field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	order, err := s.assignedOrder(ctx, in.OrderID, in.DriverID, domain.OrderStatusInTransitToDropoff)
	if err != nil {
		return nil, err
	}

	earning := domain.NewDriverEarning(order, in.DriverID)

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := advance(ctx, repos, order, in.DriverID, domain.OrderStatusDelivered); err != nil {
			return err
		}
		if err := repos.Proofs.Create(ctx, proofFrom(in, domain.ProofTypeDelivery)); err != nil {
			return fmt.Errorf("create delivery proof: %w", err)
		}
		if err := repos.Tracking.Append(ctx, domain.NewTracking(order.ID, domain.TrackingDelivered)); err != nil {
			return err
		}
		if err := repos.Earnings.Create(ctx, earning); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrInvalidTransition
			}
			return fmt.Errorf("create earning: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusDelivered

	s.logger.InfoContext(ctx, "delivery confirmed", "order_id", order.ID, "driver_id", in.DriverID, "earning", earning.Amount.String())
	s.notify(ctx, "delivered", s.notifier.NotifyDelivered(ctx, order, earning))
	return &DeliveryResult{Order: order, Earning: earning}, nil
}

// assignedOrder loads an order that belongs to driverID. Orders assigned to
// someone else are reported as missing.
func (s *JobService) assignedOrder(ctx context.Context, orderID, driverID int64, want domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.AssignedTo(driverID) {
		return nil, ErrOrderNotFound
	}
	if order.Status != want {
		return nil, ErrInvalidTransition
	}
	return order, nil
}

func advance(ctx context.Context, repos repository.Repositories, order *domain.Order, driverID int64, to domain.OrderStatus) error {
	if !order.Status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	ok, err := repos.Orders.AdvanceForDriver(ctx, order.ID, driverID, order.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	return nil
}

func proofFrom(in ProofInput, typ domain.ProofType) *domain.ProofOfDelivery {
	return &domain.ProofOfDelivery{
		OrderID:      in.OrderID,
		Type:         typ,
		PhotoURL:     in.Photo,
		SignatureURL: in.Signature,
		Notes:        in.Notes,
	}
}

func (s *JobService) notify(ctx context.Context, what string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "notification failed", "notification", what, "error", err)
	}
}
