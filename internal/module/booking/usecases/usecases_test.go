package usecases_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ticketing-service/config"
	"ticketing-service/internal/module/booking/mocks"
	"ticketing-service/internal/module/booking/models/entity"
	"ticketing-service/internal/module/booking/models/request"
	"ticketing-service/internal/module/booking/models/response"
	"ticketing-service/internal/module/booking/usecases"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/gateway"
	log_internal "ticketing-service/internal/pkg/log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	uc       usecases.Usecases
	repoMock *mocks.Repositories
	gwMock   *mocks.GatewayClient
	p        message.Publisher
	rds      *redsync.Redsync
)

type mockPublisher struct{}

// Close implements message.Publisher.
func (m *mockPublisher) Close() error {
	return nil
}

// Publish implements message.Publisher.
func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	return nil
}

func NewMockPublisher() message.Publisher {
	return &mockPublisher{}
}

func setup() {
	repoMock = new(mocks.Repositories)
	gwMock = new(mocks.GatewayClient)
	p = NewMockPublisher()
	logZap := log_internal.SetupLogger()
	log_internal.Init(logZap)
	logMock := log_internal.GetLogger()
	rds = redsync.New(redsyncredis.NewPool(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})))
	cfgGateway := &config.GatewayConfig{Currency: "USD"}
	cfgReservation := &config.ReservationConfig{
		HoldDuration:     15 * time.Minute,
		SweepInterval:    time.Minute,
		MaxItemsPerOrder: 10,
	}
	uc = usecases.New(repoMock, gwMock, p, rds, logMock, cfgGateway, cfgReservation)
}

func teardown() {
	repoMock = nil
	gwMock = nil
	uc = nil
}

func pendingPayment(orderID uuid.UUID, amount int64) entity.Payment {
	return entity.Payment{
		OrderID:  orderID,
		UserID:   1,
		Amount:   decimal.NewFromInt(amount),
		Currency: "USD",
		Status:   entity.PaymentStatusPending,
	}
}

func TestCreateOrderSession(t *testing.T) {
	payload := &request.CreateOrder{
		Items:        []request.OrderItem{{EventID: 2, Quantity: 1}, {EventID: 1, Quantity: 2}},
		AttendeeName: "John Doe",
		ReturnURL:    "https://shop.example.com/return",
	}

	t.Run("success", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		bookings := []entity.Booking{
			{ID: uuid.New(), EventID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(50), TotalAmount: decimal.NewFromInt(100), Status: entity.BookingStatusPending},
			{ID: uuid.New(), EventID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(30), TotalAmount: decimal.NewFromInt(30), Status: entity.BookingStatusPending},
		}

		// duplicate-free, ascending by event id after normalization
		expectedItems := []entity.ReservationItem{{EventID: 1, Quantity: 2}, {EventID: 2, Quantity: 1}}

		repoMock.On("ReserveSeats", ctx, int64(1), "John Doe", "john@example.com", expectedItems).Return(bookings, nil)
		repoMock.On("CreatePayment", ctx, mock.Anything, mock.Anything).Return(nil)
		gwMock.On("CreateSession", ctx, mock.Anything).Return(&gateway.Session{SessionID: "sess_1", Payload: []byte(`{"redirect":"x"}`)}, nil)
		repoMock.On("SaveSessionPayload", ctx, mock.Anything, mock.Anything).Return(nil)
		repoMock.On("CacheSessionPayload", ctx, mock.Anything, mock.Anything, 15*time.Minute).Return(nil)

		resp, err := uc.CreateOrderSession(ctx, 1, "john@example.com", payload)

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.OrderID)
		assert.Equal(t, float64(130), resp.Amount)
		assert.Equal(t, "USD", resp.Currency)
		assert.Len(t, resp.Bookings, 2)
		repoMock.AssertExpectations(t)
	})

	t.Run("seats unavailable", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		repoMock.On("ReserveSeats", ctx, int64(1), "John Doe", "john@example.com", mock.Anything).Return(nil, errors.UnprocessableEntity("event is sold out"))

		_, err := uc.CreateOrderSession(ctx, 1, "john@example.com", payload)

		assert.Error(t, err)
		repoMock.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("gateway init failure compensates order", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		bookings := []entity.Booking{
			{ID: uuid.New(), EventID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(50), TotalAmount: decimal.NewFromInt(50), Status: entity.BookingStatusPending},
		}

		repoMock.On("ReserveSeats", ctx, int64(1), "John Doe", "john@example.com", mock.Anything).Return(bookings, nil)
		repoMock.On("CreatePayment", ctx, mock.Anything, mock.Anything).Return(nil)
		gwMock.On("CreateSession", ctx, mock.Anything).Return(nil, assert.AnError)
		repoMock.On("FailOrder", ctx, mock.Anything, entity.PaymentReasonGatewayInitFailed, []byte(nil)).Return(true, nil)

		_, err := uc.CreateOrderSession(ctx, 1, "john@example.com", payload)

		assert.Error(t, err)
		errResp, ok := err.(*errors.ErrorResp)
		assert.True(t, ok)
		assert.Equal(t, 502, errResp.Code)
		repoMock.AssertCalled(t, "FailOrder", ctx, mock.Anything, entity.PaymentReasonGatewayInitFailed, []byte(nil))
	})

	t.Run("too many events in one order", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		big := &request.CreateOrder{AttendeeName: "John Doe", ReturnURL: "https://shop.example.com/return"}
		for i := 1; i <= 11; i++ {
			big.Items = append(big.Items, request.OrderItem{EventID: int64(i), Quantity: 1})
		}

		_, err := uc.CreateOrderSession(ctx, 1, "john@example.com", big)

		assert.Error(t, err)
		repoMock.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVerifyPayment(t *testing.T) {
	orderID := uuid.New()

	t.Run("charged matching amount issues tickets", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)
		tickets := []entity.Ticket{{ID: uuid.New(), Code: "abc123", EventTitle: "Test Fest"}}

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status:        gateway.StatusCharged,
			Amount:        decimal.NewFromInt(130),
			TransactionID: "txn_1",
			Raw:           []byte(`{"status":"charged"}`),
		}, nil)
		repoMock.On("ConfirmOrder", ctx, orderID.String(), "txn_1", []byte(`{"status":"charged"}`)).Return(true, tickets, nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultSuccess, resp.Status)
		assert.Len(t, resp.Tickets, 1)
		assert.Equal(t, "txn_1", resp.Payment.TransactionID)
		repoMock.AssertExpectations(t)
	})

	t.Run("concurrent settle returns existing tickets", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)
		settled := pendingPayment(orderID, 130)
		settled.Status = entity.PaymentStatusSuccess
		tickets := []entity.Ticket{{ID: uuid.New(), Code: "abc123"}}

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil).Once()
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status: gateway.StatusCharged,
			Amount: decimal.NewFromInt(130),
		}, nil)
		repoMock.On("ConfirmOrder", ctx, orderID.String(), "", []byte(nil)).Return(false, nil, nil)
		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(settled, nil).Once()
		repoMock.On("FindTicketsByOrderID", ctx, orderID.String()).Return(tickets, nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultSuccess, resp.Status)
		assert.Len(t, resp.Tickets, 1)
		repoMock.AssertExpectations(t)
	})

	t.Run("charged report after reaper failed the order stays failed", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)
		settled := pendingPayment(orderID, 130)
		settled.Status = entity.PaymentStatusFailed
		settled.FailureReason = sql.NullString{String: "expired", Valid: true}

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil).Once()
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status: gateway.StatusCharged,
			Amount: decimal.NewFromInt(130),
		}, nil)
		repoMock.On("ConfirmOrder", ctx, orderID.String(), "", []byte(nil)).Return(false, nil, nil)
		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(settled, nil).Once()

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultFailed, resp.Status)
		assert.Contains(t, resp.Message, "expired")
		assert.Empty(t, resp.Tickets)
		repoMock.AssertNotCalled(t, "FindTicketsByOrderID", mock.Anything, mock.Anything)
		repoMock.AssertExpectations(t)
	})

	t.Run("amount mismatch parks payment for review", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status: gateway.StatusCharged,
			Amount: decimal.NewFromInt(90),
			Raw:    []byte(`{"status":"charged","amount":90}`),
		}, nil)
		repoMock.On("FlagPaymentForReview", ctx, orderID.String(), decimal.NewFromInt(90), []byte(`{"status":"charged","amount":90}`)).Return(nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultFailed, resp.Status)
		assert.Contains(t, resp.Message, "contact support")
		assert.Equal(t, entity.PaymentStatusNeedsReview, resp.Payment.Status)
		repoMock.AssertNotCalled(t, "ConfirmOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repoMock.AssertExpectations(t)
	})

	t.Run("declined releases seats", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status: gateway.StatusDeclined,
			Raw:    []byte(`{"status":"declined"}`),
		}, nil)
		repoMock.On("FailOrder", ctx, orderID.String(), gateway.StatusDeclined, []byte(`{"status":"declined"}`)).Return(true, nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultFailed, resp.Status)
		repoMock.AssertExpectations(t)
	})

	t.Run("processing stays pending", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status: gateway.StatusProcessing,
		}, nil)
		repoMock.On("RecordGatewayResponse", ctx, orderID.String(), []byte(nil)).Return(nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultPending, resp.Status)
		repoMock.AssertNotCalled(t, "ConfirmOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repoMock.AssertNotCalled(t, "FailOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unrecognized status stays pending", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(&gateway.OrderStatus{
			Status: "mystery_state",
			Raw:    []byte(`{"status":"mystery_state"}`),
		}, nil)
		repoMock.On("RecordGatewayResponse", ctx, orderID.String(), []byte(`{"status":"mystery_state"}`)).Return(nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultPending, resp.Status)
		repoMock.AssertNotCalled(t, "ConfirmOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repoMock.AssertNotCalled(t, "FailOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal success answers without gateway call", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)
		payment.Status = entity.PaymentStatusSuccess
		tickets := []entity.Ticket{{ID: uuid.New(), Code: "abc123"}}

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		repoMock.On("FindTicketsByOrderID", ctx, orderID.String()).Return(tickets, nil)

		resp, err := uc.VerifyPayment(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, response.PaymentResultSuccess, resp.Status)
		assert.Len(t, resp.Tickets, 1)
		gwMock.AssertNotCalled(t, "QueryStatus", mock.Anything, mock.Anything)
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		payment := pendingPayment(orderID, 130)

		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(payment, nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(nil, assert.AnError)

		_, err := uc.VerifyPayment(ctx, orderID.String())

		assert.Error(t, err)
		errResp, ok := err.(*errors.ErrorResp)
		assert.True(t, ok)
		assert.Equal(t, 502, errResp.Code)
	})
}

func TestHandleGatewayNotification(t *testing.T) {
	t.Run("unknown order is acknowledged", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		repoMock.On("FindPaymentByOrderID", ctx, mock.Anything).Return(entity.Payment{}, errors.NotFound("order not found"))

		err := uc.HandleGatewayNotification(ctx, &request.GatewayNotification{OrderID: uuid.NewString()})

		assert.NoError(t, err)
	})

	t.Run("gateway failure propagates for retry", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		orderID := uuid.New()
		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(pendingPayment(orderID, 100), nil)
		gwMock.On("QueryStatus", ctx, orderID.String()).Return(nil, assert.AnError)

		err := uc.HandleGatewayNotification(ctx, &request.GatewayNotification{OrderID: orderID.String()})

		assert.Error(t, err)
	})
}

func TestSweepStaleReservations(t *testing.T) {
	t.Run("skips when mutex unavailable", func(t *testing.T) {
		setup()
		defer teardown()
		ctx := context.Background()

		resp, err := uc.SweepStaleReservations(ctx)

		assert.NoError(t, err)
		assert.True(t, resp.Skipped)
		repoMock.AssertNotCalled(t, "SweepExpiredReservations", mock.Anything, mock.Anything)
	})
}

func TestShowBookings(t *testing.T) {
	setup()
	defer teardown()

	t.Run("success", func(t *testing.T) {
		ctx := context.Background()
		orderID := uuid.New()

		bookings := []entity.Booking{
			{
				ID:          uuid.New(),
				OrderID:     uuid.NullUUID{UUID: orderID, Valid: true},
				EventID:     1,
				Quantity:    2,
				TotalAmount: decimal.NewFromInt(100),
				Status:      entity.BookingStatusConfirmed,
			},
		}

		repoMock.On("FindBookingsByUserID", ctx, int64(1)).Return(bookings, nil)
		repoMock.On("FindPaymentByOrderID", ctx, orderID.String()).Return(entity.Payment{Status: entity.PaymentStatusSuccess}, nil)

		resp, err := uc.ShowBookings(ctx, 1)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, entity.PaymentStatusSuccess, resp[0].PaymentStatus)
	})
}
