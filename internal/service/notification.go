package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationOTP             NotificationType = "OTP"
	NotificationPaymentComplete NotificationType = "PAYMENT_COMPLETE"
	NotificationDriverAssigned  NotificationType = "DRIVER_ASSIGNED"
	NotificationPickedUp        NotificationType = "PICKED_UP"
	NotificationDelivered       NotificationType = "DELIVERED"
	NotificationOrderCancelled  NotificationType = "ORDER_CANCELLED"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID int64
	Email       string
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// Mailer delivers one-time passcodes.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string, expiresAt time.Time) error
}

// Notifier tells customers and drivers about order progress.
type Notifier interface {
	NotifyPaymentComplete(ctx context.Context, order *domain.Order) error
	NotifyDriverAssigned(ctx context.Context, order *domain.Order) error
	NotifyPickedUp(ctx context.Context, order *domain.Order) error
	NotifyDelivered(ctx context.Context, order *domain.Order, earning *domain.DriverEarning) error
	NotifyOrderCancelled(ctx context.Context, order *domain.Order, driverID *int64) error
}

// NotificationService writes notifications to the structured log. It stands
// in for the mail and push providers.
type NotificationService struct {
	logger *slog.Logger
	clock  func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *slog.Logger) *NotificationService {
	return &NotificationService{
		logger: logger.With("component", "notifications"),
		clock:  time.Now,
	}
}

// SendOTP mails a passcode to email.
func (s *NotificationService) SendOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	return s.send(ctx, Notification{
		Type:    NotificationOTP,
		Email:   email,
		Title:   "Your verification code",
		Message: fmt.Sprintf("Your code is %s. It expires at %s.", code, expiresAt.Format(time.RFC3339)),
	})
}

// NotifyPaymentComplete tells the customer the order is paid.
func (s *NotificationService) NotifyPaymentComplete(ctx context.Context, order *domain.Order) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentComplete,
		RecipientID: order.CustomerID,
		Title:       "Payment received",
		Message:     domain.TrackingPaymentComplete.Message(),
		Data:        map[string]any{"order_id": order.ID, "amount": order.TotalAmount.String()},
	})
}

// NotifyDriverAssigned tells the customer a driver took the order.
func (s *NotificationService) NotifyDriverAssigned(ctx context.Context, order *domain.Order) error {
	return s.send(ctx, Notification{
		Type:        NotificationDriverAssigned,
		RecipientID: order.CustomerID,
		Title:       "Driver assigned",
		Message:     domain.TrackingDriverAssigned.Message(),
		Data:        map[string]any{"order_id": order.ID, "driver_id": order.DriverID},
	})
}

// NotifyPickedUp tells the customer the parcel is on its way.
func (s *NotificationService) NotifyPickedUp(ctx context.Context, order *domain.Order) error {
	return s.send(ctx, Notification{
		Type:        NotificationPickedUp,
		RecipientID: order.CustomerID,
		Title:       "Parcel picked up",
		Message:     domain.TrackingPickedUp.Message(),
		Data:        map[string]any{"order_id": order.ID},
	})
}

// NotifyDelivered tells the customer the order arrived and the driver what they earned.
func (s *NotificationService) NotifyDelivered(ctx context.Context, order *domain.Order, earning *domain.DriverEarning) error {
	if err := s.send(ctx, Notification{
		Type:        NotificationDelivered,
		RecipientID: order.CustomerID,
		Title:       "Order delivered",
		Message:     domain.TrackingDelivered.Message(),
		Data:        map[string]any{"order_id": order.ID},
	}); err != nil {
		return err
	}

	return s.send(ctx, Notification{
		Type:        NotificationDelivered,
		RecipientID: earning.DriverID,
		Title:       "Earning recorded",
		Message:     fmt.Sprintf("You earned $%s for order %d", earning.Amount, order.ID),
		Data:        map[string]any{"order_id": order.ID, "amount": earning.Amount.String()},
	})
}

// NotifyOrderCancelled tells the driver, if any, that the order was withdrawn.
func (s *NotificationService) NotifyOrderCancelled(ctx context.Context, order *domain.Order, driverID *int64) error {
	if driverID == nil {
		return nil
	}
	return s.send(ctx, Notification{
		Type:        NotificationOrderCancelled,
		RecipientID: *driverID,
		Title:       "Job cancelled",
		Message:     "The customer cancelled this delivery.",
		Data:        map[string]any{"order_id": order.ID},
	})
}

func (s *NotificationService) send(ctx context.Context, n Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = s.clock()

	s.logger.InfoContext(ctx, "notification sent",
		"id", n.ID,
		"type", n.Type,
		"recipient_id", n.RecipientID,
		"email", n.Email,
		"title", n.Title,
		"message", n.Message,
	)
	return nil
}

var (
	_ Mailer   = (*NotificationService)(nil)
	_ Notifier = (*NotificationService)(nil)
)
