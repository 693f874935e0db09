package repositories_test

import (
	"context"
	"testing"
	"time"

	"ticketing-service/config"
	"ticketing-service/internal/module/booking/models/entity"
	"ticketing-service/internal/module/booking/repositories"
	"ticketing-service/internal/pkg/errors"
	log_internal "ticketing-service/internal/pkg/log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	sqlxmock "github.com/zhashkevych/go-sqlxmock"
)

var (
	mock    sqlxmock.Sqlmock
	dbx     *sqlx.DB
	logMock log_internal.Logger
)

func setup() {
	dbx, mock, _ = sqlxmock.Newx()
	logZap := log_internal.SetupLogger()
	log_internal.Init(logZap)
	logMock = log_internal.GetLogger()
}

func newRepo() repositories.Repositories {
	cfgReservation := &config.ReservationConfig{
		HoldDuration:     15 * time.Minute,
		SweepInterval:    time.Minute,
		MaxItemsPerOrder: 10,
	}
	return repositories.New(dbx, logMock, nil, nil, nil, cfgReservation)
}

func TestFindPaymentByOrderID(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("payment found", func(t *testing.T) {
		rows := sqlxmock.NewRows([]string{"id", "order_id", "user_id", "idempotency_key", "amount", "currency", "status", "failure_reason", "transaction_id", "session_payload", "gateway_response", "created_at", "updated_at"}).
			AddRow(1, orderID.String(), 1, uuid.NewString(), "130", "USD", entity.PaymentStatusPending, nil, nil, nil, nil, time.Now(), nil)
		mock.ExpectQuery("SELECT (.+) FROM payments WHERE order_id =").
			WithArgs(orderID.String()).
			WillReturnRows(rows)

		payment, err := repo.FindPaymentByOrderID(ctx, orderID.String())

		assert.NoError(t, err)
		assert.Equal(t, orderID, payment.OrderID)
		assert.Equal(t, entity.PaymentStatusPending, payment.Status)
	})

	t.Run("payment not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payments WHERE order_id =").
			WithArgs(orderID.String()).
			WillReturnRows(sqlxmock.NewRows([]string{"id"}))

		_, err := repo.FindPaymentByOrderID(ctx, orderID.String())

		assert.Error(t, err)
		errResp, ok := err.(*errors.ErrorResp)
		assert.True(t, ok)
		assert.Equal(t, 404, errResp.Code)
	})
}

func TestFailOrder(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("terminal payment is left alone", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE payments SET status =").
			WillReturnResult(sqlxmock.NewResult(0, 0))
		mock.ExpectRollback()

		transitioned, err := repo.FailOrder(ctx, orderID.String(), entity.PaymentReasonExpired, nil)

		assert.NoError(t, err)
		assert.False(t, transitioned)
	})

	t.Run("pending payment fails and seats release", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE payments SET status =").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id, event_id, quantity FROM bookings").
			WillReturnRows(sqlxmock.NewRows([]string{"id", "event_id", "quantity"}).AddRow(bookingID.String(), 1, 2))
		mock.ExpectExec("UPDATE bookings SET status =").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE events SET sold = sold -").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectCommit()

		transitioned, err := repo.FailOrder(ctx, orderID.String(), "declined", []byte(`{"status":"declined"}`))

		assert.NoError(t, err)
		assert.True(t, transitioned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConfirmOrderLostRace(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status =").
		WillReturnResult(sqlxmock.NewResult(0, 0))
	mock.ExpectRollback()

	confirmed, tickets, err := repo.ConfirmOrder(ctx, orderID.String(), "txn_1", nil)

	assert.NoError(t, err)
	assert.False(t, confirmed)
	assert.Nil(t, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInTicket(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()
	ticketID := uuid.New()
	bookingID := uuid.New()

	ticketRow := func(checkedInAt interface{}) *sqlxmock.Rows {
		return sqlxmock.NewRows([]string{"id", "booking_id", "code", "event_title", "venue", "starts_at", "ends_at", "attendee_name", "attendee_email", "checked_in_at", "checked_in_by", "created_at"}).
			AddRow(ticketID.String(), bookingID.String(), "abc123", "Test Fest", "Main Hall", time.Now(), time.Now(), "John Doe", "john@example.com", checkedInAt, nil, time.Now())
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE code =").
			WithArgs("abc123").
			WillReturnRows(ticketRow(nil))
		mock.ExpectQuery("SELECT status FROM bookings WHERE id =").
			WillReturnRows(sqlxmock.NewRows([]string{"status"}).AddRow(entity.BookingStatusConfirmed))
		mock.ExpectExec("UPDATE tickets SET checked_in_at =").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectCommit()

		ticket, err := repo.CheckInTicket(ctx, "abc123", 7)

		assert.NoError(t, err)
		assert.True(t, ticket.CheckedInAt.Valid)
		assert.Equal(t, int64(7), ticket.CheckedInBy.Int64)
	})

	t.Run("already checked in", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE code =").
			WithArgs("abc123").
			WillReturnRows(ticketRow(time.Now()))
		mock.ExpectQuery("SELECT status FROM bookings WHERE id =").
			WillReturnRows(sqlxmock.NewRows([]string{"status"}).AddRow(entity.BookingStatusConfirmed))
		mock.ExpectRollback()

		_, err := repo.CheckInTicket(ctx, "abc123", 7)

		assert.Error(t, err)
		errResp, ok := err.(*errors.ErrorResp)
		assert.True(t, ok)
		assert.Equal(t, 409, errResp.Code)
	})

	t.Run("booking not confirmed", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM tickets WHERE code =").
			WithArgs("abc123").
			WillReturnRows(ticketRow(nil))
		mock.ExpectQuery("SELECT status FROM bookings WHERE id =").
			WillReturnRows(sqlxmock.NewRows([]string{"status"}).AddRow(entity.BookingStatusCancelled))
		mock.ExpectRollback()

		_, err := repo.CheckInTicket(ctx, "abc123", 7)

		assert.Error(t, err)
		errResp, ok := err.(*errors.ErrorResp)
		assert.True(t, ok)
		assert.Equal(t, 422, errResp.Code)
	})
}

func TestSweepExpiredReservations(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("nothing expired", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, order_id, event_id, quantity FROM bookings").
			WillReturnRows(sqlxmock.NewRows([]string{"id", "order_id", "event_id", "quantity"}))
		mock.ExpectCommit()

		released, err := repo.SweepExpiredReservations(ctx, now)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), released)
	})

	t.Run("expired hold with payment releases and expires", func(t *testing.T) {
		bookingID := uuid.New()
		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, order_id, event_id, quantity FROM bookings").
			WillReturnRows(sqlxmock.NewRows([]string{"id", "order_id", "event_id", "quantity"}).AddRow(bookingID.String(), orderID.String(), 1, 2))
		mock.ExpectExec("UPDATE bookings SET status =").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE events SET sold = sold -").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE payments SET status =").
			WillReturnResult(sqlxmock.NewResult(0, 1))
		mock.ExpectCommit()

		released, err := repo.SweepExpiredReservations(ctx, now)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), released)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReserveSeatsSoldOut(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()

	eventRows := sqlxmock.NewRows([]string{"id", "title", "venue", "starts_at", "ends_at", "price", "capacity", "sold", "status", "visibility", "created_at", "updated_at"}).
		AddRow(1, "Test Fest", "Main Hall", time.Now(), time.Now(), "50", 100, 100, entity.EventStatusPublished, entity.EventVisibilityPublic, time.Now(), nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM events WHERE id =").
		WithArgs(int64(1)).
		WillReturnRows(eventRows)
	mock.ExpectQuery("SELECT id, quantity FROM bookings").
		WillReturnRows(sqlxmock.NewRows([]string{"id", "quantity"}))
	mock.ExpectRollback()

	_, err := repo.ReserveSeats(ctx, 1, "John Doe", "john@example.com", []entity.ReservationItem{{EventID: 1, Quantity: 1}})

	assert.Error(t, err)
	errResp, ok := err.(*errors.ErrorResp)
	assert.True(t, ok)
	assert.Equal(t, 422, errResp.Code)
}

func TestReserveSeatsUnpublishedEvent(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()

	eventRows := sqlxmock.NewRows([]string{"id", "title", "venue", "starts_at", "ends_at", "price", "capacity", "sold", "status", "visibility", "created_at", "updated_at"}).
		AddRow(1, "Test Fest", "Main Hall", time.Now(), time.Now(), "50", 100, 0, entity.EventStatusDraft, entity.EventVisibilityPublic, time.Now(), nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM events WHERE id =").
		WithArgs(int64(1)).
		WillReturnRows(eventRows)
	mock.ExpectRollback()

	_, err := repo.ReserveSeats(ctx, 1, "John Doe", "john@example.com", []entity.ReservationItem{{EventID: 1, Quantity: 1}})

	assert.Error(t, err)
	errResp, ok := err.(*errors.ErrorResp)
	assert.True(t, ok)
	assert.Equal(t, 400, errResp.Code)
}

func TestFlagPaymentForReview(t *testing.T) {
	setup()
	repo := newRepo()
	ctx := context.Background()
	orderID := uuid.New()

	mock.ExpectExec("UPDATE payments SET status =").
		WillReturnResult(sqlxmock.NewResult(0, 1))

	err := repo.FlagPaymentForReview(ctx, orderID.String(), decimal.NewFromInt(90), []byte(`{"amount":90}`))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
