package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"courier/internal/domain"
	"courier/internal/repository"
)

// PaymentLocker keeps captures and cancellations of the same order from
// running at once. A successful acquire returns the release for that
// acquisition only.
type PaymentLocker interface {
	AcquirePaymentLock(ctx context.Context, orderID int64, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// OrderService drives the customer side of the order lifecycle.
type OrderService struct {
	tx             repository.TxManager
	repos          repository.Repositories
	gateway        PaymentGateway
	locks          PaymentLocker
	notifier       Notifier
	paymentTimeout time.Duration
	logger         *slog.Logger
}

// NewOrderService creates a new OrderService. locks may be nil.
func NewOrderService(
	tx repository.TxManager,
	repos repository.Repositories,
	gateway PaymentGateway,
	locks PaymentLocker,
	notifier Notifier,
	paymentTimeout time.Duration,
	logger *slog.Logger,
) *OrderService {
	if paymentTimeout == 0 {
		paymentTimeout = 10 * time.Second
	}
	return &OrderService{
		tx:             tx,
		repos:          repos,
		gateway:        gateway,
		locks:          locks,
		notifier:       notifier,
		paymentTimeout: paymentTimeout,
		logger:         logger.With("component", "order_service"),
	}
}

// LocationInput is one stop supplied at booking.
type LocationInput struct {
	Latitude      float64
	Longitude     float64
	AddressLine   string
	ContactPerson string
	ContactPhone  string
}

// BookOrderRequest contains the parameters for booking a delivery.
type BookOrderRequest struct {
	CustomerID    int64
	DeliveryType  domain.DeliveryType
	ParcelDetails string
	TotalAmount   domain.Cents
	Pickup        *LocationInput
	Dropoff       *LocationInput
}

func (r BookOrderRequest) validate() error {
	verr := &ValidationError{}
	if !r.DeliveryType.Valid() {
		verr.Add("delivery_type", "The selected delivery type is invalid.")
	}
	if strings.TrimSpace(r.ParcelDetails) == "" {
		verr.Add("parcel_details", "The parcel details field is required.")
	}
	if r.TotalAmount <= 0 {
		verr.Add("total_amount", "The total amount must be at least 0.01.")
	}
	validateLocation(verr, "pickup", r.Pickup)
	validateLocation(verr, "dropoff", r.Dropoff)
	return verr.OrNil()
}

func validateLocation(verr *ValidationError, field string, loc *LocationInput) {
	if loc == nil {
		verr.Add(field, "The "+field+" field is required.")
		return
	}
	if !isValidLatitude(loc.Latitude) {
		verr.Add(field+".latitude", "The latitude must be between -90 and 90.")
	}
	if !isValidLongitude(loc.Longitude) {
		verr.Add(field+".longitude", "The longitude must be between -180 and 180.")
	}
	if strings.TrimSpace(loc.AddressLine) == "" {
		verr.Add(field+".address_line", "The address line field is required.")
	}
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// BookOrder creates a pending order with both stops, a pending payment and
// the BOOKED tracking row, all or nothing.
func (s *OrderService) BookOrder(ctx context.Context, req BookOrderRequest) (*domain.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		CustomerID:    req.CustomerID,
		DeliveryType:  req.DeliveryType,
		ParcelDetails: strings.TrimSpace(req.ParcelDetails),
		TotalAmount:   req.TotalAmount,
		Status:        domain.OrderStatusPending,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		stops := []struct {
			typ domain.LocationType
			in  *LocationInput
		}{
			{domain.LocationTypePickup, req.Pickup},
			{domain.LocationTypeDropoff, req.Dropoff},
		}
		for _, stop := range stops {
			loc := domain.OrderLocation{
				OrderID:       order.ID,
				Type:          stop.typ,
				Latitude:      stop.in.Latitude,
				Longitude:     stop.in.Longitude,
				AddressLine:   strings.TrimSpace(stop.in.AddressLine),
				ContactPerson: stop.in.ContactPerson,
				ContactPhone:  stop.in.ContactPhone,
			}
			if err := repos.Orders.AddLocation(ctx, &loc); err != nil {
				return fmt.Errorf("create %s location: %w", stop.typ, err)
			}
			order.Locations = append(order.Locations, loc)
		}

		if err := repos.Payments.Create(ctx, &domain.Payment{
			OrderID: order.ID,
			Amount:  order.TotalAmount,
			Method:  domain.DefaultPaymentMethod,
			Status:  domain.PaymentStatusPending,
		}); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		return repos.Tracking.Append(ctx, domain.NewTracking(order.ID, domain.TrackingBooked))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order booked", "order_id", order.ID, "customer_id", order.CustomerID, "amount", order.TotalAmount.String())
	return order, nil
}

// CompletePaymentRequest contains the parameters for paying an order.
type CompletePaymentRequest struct {
	CustomerID   int64
	OrderID      int64
	PaymentToken string
}

// CompletePayment captures the order amount and, on success, moves the order
// from pending to accepted.
func (s *OrderService) CompletePayment(ctx context.Context, req CompletePaymentRequest) (*domain.Payment, error) {
	if strings.TrimSpace(req.PaymentToken) == "" {
		return nil, NewValidationError("stripe_token", "The stripe token field is required.")
	}

	order, err := s.customerOrder(ctx, req.OrderID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	payment, err := s.repos.Payments.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment.Status == domain.PaymentStatusCompleted {
		return nil, ErrPaymentAlreadyCompleted
	}
	if order.Status != domain.OrderStatusPending {
		return nil, ErrOrderNotPending
	}

	unlock, err := s.lockPayment(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	result, err := s.gateway.Charge(chargeCtx, ChargeRequest{
		OrderID: order.ID,
		Amount:  payment.Amount,
		Token:   req.PaymentToken,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	if !result.Approved {
		if _, err := s.repos.Payments.UpdateStatus(ctx, order.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed); err != nil {
			s.logger.ErrorContext(ctx, "mark payment failed", "order_id", order.ID, "error", err)
		}
		return nil, ErrPaymentDeclined
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ok, err := repos.Payments.MarkCompleted(ctx, order.ID, result.TransactionID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPaymentAlreadyCompleted
		}

		ok, err = repos.Orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotPending
		}

		return repos.Tracking.Append(ctx, domain.NewTracking(order.ID, domain.TrackingPaymentComplete))
	})
	if err != nil {
		s.refund(ctx, order.ID, result.TransactionID, payment.Amount)
		return nil, err
	}

	payment.Status = domain.PaymentStatusCompleted
	payment.TransactionID = result.TransactionID
	order.Status = domain.OrderStatusAccepted

	s.logger.InfoContext(ctx, "payment completed", "order_id", order.ID, "transaction_id", result.TransactionID)
	s.notify(ctx, "payment complete", s.notifier.NotifyPaymentComplete(ctx, order))
	return payment, nil
}

// refund returns a captured charge whose bookkeeping could not be written.
func (s *OrderService) refund(ctx context.Context, orderID int64, transactionID string, amount domain.Cents) {
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.paymentTimeout)
	defer cancel()

	if err := s.gateway.Refund(refundCtx, transactionID, amount); err != nil {
		s.logger.ErrorContext(ctx, "refund failed, manual follow-up needed",
			"order_id", orderID, "transaction_id", transactionID, "error", err)
	}
}

// TrackingView is an order with its audit trail.
type TrackingView struct {
	Order   *domain.Order
	History []*domain.OrderTracking
}

// GetTracking returns the tracking history of a customer's order.
func (s *OrderService) GetTracking(ctx context.Context, customerID, orderID int64) (*TrackingView, error) {
	order, err := s.customerOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	history, err := s.repos.Tracking.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &TrackingView{Order: order, History: history}, nil
}

// GetProofs returns the pickup and delivery evidence of a customer's order.
func (s *OrderService) GetProofs(ctx context.Context, customerID, orderID int64) ([]*domain.ProofOfDelivery, error) {
	order, err := s.customerOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	return s.repos.Proofs.ListByOrder(ctx, order.ID)
}

// ListOrders returns a customer's order history with stops.
func (s *OrderService) ListOrders(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	orders, err := s.repos.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := attachLocations(ctx, s.repos.Orders, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelOrder withdraws a customer's order that has not been delivered.
// A captured payment is marked refunded and returned through the gateway.
// The payment outcome is decided from the rows inside the transaction, so a
// capture that lands after the order was read is still refunded.
func (s *OrderService) CancelOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	order, err := s.customerOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, ErrOrderNotCancellable
	}

	unlock, err := s.lockPayment(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		previousDriver *int64
		captured       *domain.Payment
	)

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Orders.GetForCustomer(ctx, order.ID, customerID)
		if err != nil {
			return err
		}
		previousDriver = current.DriverID

		// Payment row first: a concurrent capture touches payment then order.
		refunded, err := repos.Payments.UpdateStatus(ctx, order.ID, domain.PaymentStatusCompleted, domain.PaymentStatusRefunded)
		if err != nil {
			return err
		}
		if !refunded {
			if _, err := repos.Payments.UpdateStatus(ctx, order.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed); err != nil {
				return err
			}
		}

		ok, err := repos.Orders.Cancel(ctx, order.ID, customerID, domain.CancellableStatuses)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderNotCancellable
		}

		if refunded {
			if captured, err = repos.Payments.GetByOrderID(ctx, order.ID); err != nil {
				return fmt.Errorf("load payment: %w", err)
			}
		}

		return repos.Tracking.Append(ctx, domain.NewTracking(order.ID, domain.TrackingCancelled))
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCancelled
	order.DriverID = nil

	if captured != nil {
		s.refund(ctx, order.ID, captured.TransactionID, captured.Amount)
	}

	s.logger.InfoContext(ctx, "order cancelled", "order_id", order.ID, "refunded", captured != nil)
	s.notify(ctx, "order cancelled", s.notifier.NotifyOrderCancelled(ctx, order, previousDriver))
	return order, nil
}

// lockPayment takes the per-order payment lock. When the lock store is down
// the conditional updates alone guard the payment row.
func (s *OrderService) lockPayment(ctx context.Context, orderID int64) (unlock func(), err error) {
	noop := func() {}
	if s.locks == nil {
		return noop, nil
	}

	release, acquired, err := s.locks.AcquirePaymentLock(ctx, orderID, 2*s.paymentTimeout)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "payment lock unavailable", "order_id", orderID, "error", err)
		return noop, nil
	case !acquired:
		return nil, ErrPaymentInProgress
	}

	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release payment lock", "order_id", orderID, "error", err)
		}
	}, nil
}

func (s *OrderService) customerOrder(ctx context.Context, orderID, customerID int64) (*domain.Order, error) {
	order, err := s.repos.Orders.GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, what string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "notification failed", "notification", what, "error", err)
	}
}

func attachLocations(ctx context.Context, orders repository.OrderRepository, list []*domain.Order) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, len(list))
	for i, o := range list {
		ids[i] = o.ID
	}

	locations, err := orders.ListLocations(ctx, ids)
	if err != nil {
		return err
	}
	for _, o := range list {
		o.Locations = locations[o.ID]
	}
	return nil
}
