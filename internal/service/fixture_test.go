package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/service"
)

const testSecret = "test-secret-with-enough-entropy-123456"

type fixture struct {
	clock    *fakeClock
	store    *memStore
	mailer   *MockMailer
	gateway  *stubGateway
	notifier *MockNotifier
	locks    *MockLocker
	tokens   *auth.TokenService

	auth    *service.AuthService
	otp     *service.OTPService
	drivers *service.DriverService
	orders  *service.OrderService
	jobs    *service.JobService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:    newFakeClock(),
		mailer:   NewMockMailer(),
		gateway:  &stubGateway{},
		notifier: &MockNotifier{},
		locks:    NewMockLocker(),
	}
	f.store = newMemStore(f.clock)
	f.tokens = auth.NewTokenService(auth.TokenConfig{
		Secret:     testSecret,
		Issuer:     "courier-test",
		SessionTTL: time.Hour,
		ResetTTL:   20 * time.Minute,
	}, f.clock)

	repos := f.store.Repos()
	logger := discardLogger()

	f.auth = service.NewAuthService(repos.Users, f.store, plainHasher{}, f.tokens, logger)
	f.otp = service.NewOTPService(repos.Users, &sequenceCodes{}, f.mailer, f.tokens, f.locks, f.clock,
		service.OTPConfig{TTL: 5 * time.Minute, MailTimeout: time.Second}, logger)
	f.drivers = service.NewDriverService(repos.Users, repos.Drivers, repos.Earnings, nil, logger)
	f.orders = service.NewOrderService(f.store, repos, f.gateway, f.locks, f.notifier, time.Second, logger)
	f.jobs = service.NewJobService(f.store, repos, f.drivers, f.notifier, logger)
	return f
}

func validBooking(customerID int64, amount domain.Cents) service.BookOrderRequest {
	return service.BookOrderRequest{
		CustomerID:    customerID,
		DeliveryType:  domain.DeliveryTypeParcel,
		ParcelDetails: "Small box, 2kg",
		TotalAmount:   amount,
		Pickup: &service.LocationInput{
			Latitude: 40.7128, Longitude: -74.0060, AddressLine: "1 Pickup St",
			ContactPerson: "Sam", ContactPhone: "5550001",
		},
		Dropoff: &service.LocationInput{
			Latitude: 40.7306, Longitude: -73.9352, AddressLine: "9 Dropoff Ave",
			ContactPerson: "Lee", ContactPhone: "5550002",
		},
	}
}

// paidOrder books and pays an order so it is open for drivers.
func (f *fixture) paidOrder(t *testing.T, customerID int64, amount domain.Cents) *domain.Order {
	t.Helper()
	ctx := context.Background()

	order, err := f.orders.BookOrder(ctx, validBooking(customerID, amount))
	require.NoError(t, err)

	_, err = f.orders.CompletePayment(ctx, service.CompletePaymentRequest{
		CustomerID:   customerID,
		OrderID:      order.ID,
		PaymentToken: "tok_visa",
	})
	require.NoError(t, err)
	return order
}

// assertDriverInvariant checks that a driver is set exactly when the status
// requires one.
func (f *fixture) assertDriverInvariant(t *testing.T, orderID int64) {
	t.Helper()
	o := f.store.Order(orderID)
	if o.Status.RequiresDriver() {
		require.NotNil(t, o.DriverID, fmt.Sprintf("order %d in %s has no driver", o.ID, o.Status))
	} else {
		require.Nil(t, o.DriverID, fmt.Sprintf("order %d in %s has a driver", o.ID, o.Status))
	}
}
