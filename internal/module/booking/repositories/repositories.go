package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ticketing-service/config"
	"ticketing-service/internal/module/booking/models/entity"
	"ticketing-service/internal/module/booking/models/response"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/helpers"
	"ticketing-service/internal/pkg/log"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/shopspring/decimal"
)

type repositories struct {
	db             *sqlx.DB
	log            log.Logger
	httpClient     *circuit.HTTPClient
	redisClient    *redis.Client
	cfgUserService *config.UserServiceConfig
	cfgReservation *config.ReservationConfig
}

type Repositories interface {
	// http
	ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error)
	// redis
	CacheSessionPayload(ctx context.Context, orderID string, payload []byte, ttl time.Duration) error
	GetCachedSessionPayload(ctx context.Context, orderID string) ([]byte, error)
	// db
	ReserveSeats(ctx context.Context, userID int64, attendeeName, attendeeEmail string, items []entity.ReservationItem) ([]entity.Booking, error)
	CreatePayment(ctx context.Context, payment *entity.Payment, bookingIDs []uuid.UUID) error
	SaveSessionPayload(ctx context.Context, orderID string, payload []byte) error
	FindPaymentByOrderID(ctx context.Context, orderID string) (entity.Payment, error)
	FindBookingsByOrderID(ctx context.Context, orderID string) ([]entity.Booking, error)
	FindBookingsByUserID(ctx context.Context, userID int64) ([]entity.Booking, error)
	FindTicketsByOrderID(ctx context.Context, orderID string) ([]entity.Ticket, error)
	FindTicketByCode(ctx context.Context, code string) (entity.Ticket, error)
	ConfirmOrder(ctx context.Context, orderID, transactionID string, rawResponse []byte) (bool, []entity.Ticket, error)
	FailOrder(ctx context.Context, orderID, reason string, rawResponse []byte) (bool, error)
	FlagPaymentForReview(ctx context.Context, orderID string, reportedAmount decimal.Decimal, rawResponse []byte) error
	RecordGatewayResponse(ctx context.Context, orderID string, rawResponse []byte) error
	CheckInTicket(ctx context.Context, code string, staffID int64) (entity.Ticket, error)
	SweepExpiredReservations(ctx context.Context, now time.Time) (int64, error)
	CountPendingPayments(ctx context.Context, eventID int64) (int64, error)
}

func New(db *sqlx.DB, logger log.Logger, httpClient *circuit.HTTPClient, redisClient *redis.Client, cfgUserService *config.UserServiceConfig, cfgReservation *config.ReservationConfig) Repositories {
	return &repositories{
		db:             db,
		log:            logger,
		httpClient:     httpClient,
		redisClient:    redisClient,
		cfgUserService: cfgUserService,
		cfgReservation: cfgReservation,
	}
}

const bookingColumns = `id, order_id, event_id, user_id, quantity, unit_price, total_amount, status, attendee_name, attendee_email, expires_at, created_at, updated_at`

const paymentColumns = `id, order_id, user_id, idempotency_key, amount, currency, status, failure_reason, transaction_id, session_payload, gateway_response, created_at, updated_at`

const ticketColumns = `id, booking_id, code, event_title, venue, starts_at, ends_at, attendee_name, attendee_email, checked_in_at, checked_in_by, created_at`

// ReserveSeats implements Repositories. Items must already be deduplicated
// and sorted ascending by event id: that order is the row-lock order, and
// keeping it fixed is what prevents deadlocks between overlapping checkouts.
// The whole batch is one transaction; any rejection rolls back every hold.
func (r *repositories) ReserveSeats(ctx context.Context, userID int64, attendeeName, attendeeEmail string, items []entity.ReservationItem) ([]entity.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	expiresAt := now.Add(r.cfgReservation.HoldDuration)

	bookings := make([]entity.Booking, 0, len(items))
	for _, item := range items {
		var ev entity.Event
		err := tx.GetContext(ctx, &ev, `SELECT id, title, venue, starts_at, ends_at, price, capacity, sold, status, visibility, created_at, updated_at FROM events WHERE id = $1 FOR UPDATE`, item.EventID)
		if err == sql.ErrNoRows {
			return nil, errors.BadRequest("event not found")
		}
		if err != nil {
			r.log.Error(ctx, "error locking event row", err)
			return nil, errors.InternalServerError("error reserving seats")
		}

		if !ev.Purchasable() {
			return nil, errors.BadRequest("event is not open for sale")
		}

		// Release this user's abandoned holds on the same event before
		// counting availability. Repeated checkout attempts must not leak
		// seats.
		var stale []struct {
			ID       uuid.UUID `db:"id"`
			Quantity int       `db:"quantity"`
		}
		if err := tx.SelectContext(ctx, &stale, `SELECT id, quantity FROM bookings WHERE user_id = $1 AND event_id = $2 AND status = $3 FOR UPDATE`, userID, item.EventID, entity.BookingStatusPending); err != nil {
			r.log.Error(ctx, "error locking stale bookings", err)
			return nil, errors.InternalServerError("error reserving seats")
		}
		for _, s := range stale {
			if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $2, expires_at = NULL, updated_at = $3 WHERE id = $1`, s.ID, entity.BookingStatusCancelled, now); err != nil {
				r.log.Error(ctx, "error cancelling stale booking", err)
				return nil, errors.InternalServerError("error reserving seats")
			}
			if _, err := tx.ExecContext(ctx, `UPDATE events SET sold = sold - $2, updated_at = $3 WHERE id = $1`, item.EventID, s.Quantity, now); err != nil {
				r.log.Error(ctx, "error releasing stale hold", err)
				return nil, errors.InternalServerError("error reserving seats")
			}
			ev.Sold -= s.Quantity
		}

		available := ev.Capacity - ev.Sold
		if available <= 0 {
			return nil, errors.UnprocessableEntity("event is sold out")
		}
		if item.Quantity > available {
			return nil, errors.UnprocessableEntity(fmt.Sprintf("only %d seats left for event %d", available, ev.ID))
		}

		booking := entity.Booking{
			ID:            uuid.New(),
			EventID:       ev.ID,
			UserID:        userID,
			Quantity:      item.Quantity,
			UnitPrice:     ev.Price,
			TotalAmount:   ev.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Status:        entity.BookingStatusPending,
			AttendeeName:  attendeeName,
			AttendeeEmail: attendeeEmail,
			ExpiresAt:     sql.NullTime{Time: expiresAt, Valid: true},
			CreatedAt:     now,
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO bookings (id, event_id, user_id, quantity, unit_price, total_amount, status, attendee_name, attendee_email, expires_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			booking.ID, booking.EventID, booking.UserID, booking.Quantity, booking.UnitPrice, booking.TotalAmount, booking.Status, booking.AttendeeName, booking.AttendeeEmail, booking.ExpiresAt, booking.CreatedAt); err != nil {
			r.log.Error(ctx, "error inserting booking", err)
			return nil, errors.InternalServerError("error reserving seats")
		}

		// Optimistic hold: the seat count moves now, not at payment time.
		if _, err := tx.ExecContext(ctx, `UPDATE events SET sold = sold + $2, updated_at = $3 WHERE id = $1`, ev.ID, item.Quantity, now); err != nil {
			r.log.Error(ctx, "error incrementing sold count", err)
			return nil, errors.InternalServerError("error reserving seats")
		}

		bookings = append(bookings, booking)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.InternalServerError("error committing transaction")
	}

	return bookings, nil
}

// CreatePayment implements Repositories. The payment row and the order-group
// relation on its bookings are written atomically.
func (r *repositories) CreatePayment(ctx context.Context, payment *entity.Payment, bookingIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	payment.CreatedAt = now

	if _, err := tx.ExecContext(ctx, `INSERT INTO payments (order_id, user_id, idempotency_key, amount, currency, status, session_payload, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.OrderID, payment.UserID, payment.IdempotencyKey, payment.Amount, payment.Currency, payment.Status, payment.SessionPayload, payment.CreatedAt); err != nil {
		r.log.Error(ctx, "error inserting payment", err)
		return errors.InternalServerError("error creating payment")
	}

	for _, id := range bookingIDs {
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET order_id = $2, updated_at = $3 WHERE id = $1`, id, payment.OrderID, now); err != nil {
			r.log.Error(ctx, "error attaching booking to order", err)
			return errors.InternalServerError("error creating payment")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.InternalServerError("error committing transaction")
	}

	return nil
}

// SaveSessionPayload implements Repositories.
func (r *repositories) SaveSessionPayload(ctx context.Context, orderID string, payload []byte) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE payments SET session_payload = $2, updated_at = $3 WHERE order_id = $1`, orderID, payload, time.Now().UTC()); err != nil {
		r.log.Error(ctx, "error saving session payload", err)
		return errors.InternalServerError("error saving session payload")
	}
	return nil
}

// FindPaymentByOrderID implements Repositories.
func (r *repositories) FindPaymentByOrderID(ctx context.Context, orderID string) (entity.Payment, error) {
	var payment entity.Payment
	err := r.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
	if err == sql.ErrNoRows {
		return entity.Payment{}, errors.NotFound("order not found")
	}
	if err != nil {
		r.log.Error(ctx, "error find payment by order id", err)
		return entity.Payment{}, errors.InternalServerError("error find payment by order id")
	}
	return payment, nil
}

// FindBookingsByOrderID implements Repositories.
func (r *repositories) FindBookingsByOrderID(ctx context.Context, orderID string) ([]entity.Booking, error) {
	var bookings []entity.Booking
	if err := r.db.SelectContext(ctx, &bookings, `SELECT `+bookingColumns+` FROM bookings WHERE order_id = $1 ORDER BY event_id`, orderID); err != nil {
		r.log.Error(ctx, "error find bookings by order id", err)
		return nil, errors.InternalServerError("error find bookings by order id")
	}
	return bookings, nil
}

// FindBookingsByUserID implements Repositories.
func (r *repositories) FindBookingsByUserID(ctx context.Context, userID int64) ([]entity.Booking, error) {
	var bookings []entity.Booking
	if err := r.db.SelectContext(ctx, &bookings, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID); err != nil {
		r.log.Error(ctx, "error find bookings by user id", err)
		return nil, errors.InternalServerError("error find bookings by user id")
	}
	return bookings, nil
}

// FindTicketsByOrderID implements Repositories.
func (r *repositories) FindTicketsByOrderID(ctx context.Context, orderID string) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	const q = `SELECT t.id, t.booking_id, t.code, t.event_title, t.venue, t.starts_at, t.ends_at, t.attendee_name, t.attendee_email, t.checked_in_at, t.checked_in_by, t.created_at
	           FROM tickets t
	           JOIN bookings b ON b.id = t.booking_id
	           WHERE b.order_id = $1
	           ORDER BY t.created_at, t.id`
	if err := r.db.SelectContext(ctx, &tickets, q, orderID); err != nil {
		r.log.Error(ctx, "error find tickets by order id", err)
		return nil, errors.InternalServerError("error find tickets by order id")
	}
	return tickets, nil
}

// FindTicketByCode implements Repositories.
func (r *repositories) FindTicketByCode(ctx context.Context, code string) (entity.Ticket, error) {
	var ticket entity.Ticket
	err := r.db.GetContext(ctx, &ticket, `SELECT `+ticketColumns+` FROM tickets WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return entity.Ticket{}, errors.NotFound("ticket not found")
	}
	if err != nil {
		r.log.Error(ctx, "error find ticket by code", err)
		return entity.Ticket{}, errors.InternalServerError("error find ticket by code")
	}
	return ticket, nil
}

// ConfirmOrder implements Repositories. The payment transition, the booking
// confirmations and the ticket issuance commit together or not at all. The
// conditional update makes the transition exactly-once: when it affects zero
// rows a concurrent caller already settled the order, in either direction,
// and confirmed=false tells the caller to re-read the payment row.
func (r *repositories) ConfirmOrder(ctx context.Context, orderID, transactionID string, rawResponse []byte) (bool, []entity.Ticket, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, nil, errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `UPDATE payments SET status = $2, transaction_id = $3, gateway_response = $4, failure_reason = NULL, updated_at = $5 WHERE order_id = $1 AND status NOT IN ($6, $7)`,
		orderID, entity.PaymentStatusSuccess, transactionID, rawResponse, now, entity.PaymentStatusSuccess, entity.PaymentStatusFailed)
	if err != nil {
		r.log.Error(ctx, "error transitioning payment to success", err)
		return false, nil, errors.InternalServerError("error confirming order")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil, errors.InternalServerError("error confirming order")
	}
	if affected == 0 {
		// Lost the race. The conditional update blocked on the winner's row
		// lock, so by now the winner's transition is committed and visible.
		tx.Rollback()
		return false, nil, nil
	}

	var bookings []entity.Booking
	if err := tx.SelectContext(ctx, &bookings, `SELECT `+bookingColumns+` FROM bookings WHERE order_id = $1 ORDER BY event_id FOR UPDATE`, orderID); err != nil {
		r.log.Error(ctx, "error locking order bookings", err)
		return false, nil, errors.InternalServerError("error confirming order")
	}

	tickets := make([]entity.Ticket, 0)
	for _, b := range bookings {
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $2, expires_at = NULL, updated_at = $3 WHERE id = $1`, b.ID, entity.BookingStatusConfirmed, now); err != nil {
			r.log.Error(ctx, "error confirming booking", err)
			return false, nil, errors.InternalServerError("error confirming order")
		}

		issued, err := r.issueTicketsTx(ctx, tx, &b, now)
		if err != nil {
			return false, nil, err
		}
		tickets = append(tickets, issued...)
	}

	if err := tx.Commit(); err != nil {
		return false, nil, errors.InternalServerError("error committing transaction")
	}

	return true, tickets, nil
}

// issueTicketsTx mints one ticket per purchased unit for a booking, inside
// the caller's transaction. Re-invoking on an already-ticketed booking
// returns the existing rows instead of creating duplicates.
func (r *repositories) issueTicketsTx(ctx context.Context, tx *sqlx.Tx, booking *entity.Booking, now time.Time) ([]entity.Ticket, error) {
	var existing []entity.Ticket
	if err := tx.SelectContext(ctx, &existing, `SELECT `+ticketColumns+` FROM tickets WHERE booking_id = $1 ORDER BY created_at, id`, booking.ID); err != nil {
		r.log.Error(ctx, "error reading existing tickets", err)
		return nil, errors.InternalServerError("error issuing tickets")
	}
	if len(existing) > 0 {
		return existing, nil
	}

	var ev entity.Event
	if err := tx.GetContext(ctx, &ev, `SELECT id, title, venue, starts_at, ends_at, price, capacity, sold, status, visibility, created_at, updated_at FROM events WHERE id = $1`, booking.EventID); err != nil {
		r.log.Error(ctx, "error reading event for ticket snapshot", err)
		return nil, errors.InternalServerError("error issuing tickets")
	}

	tickets := make([]entity.Ticket, 0, booking.Quantity)
	for i := 0; i < booking.Quantity; i++ {
		code, err := helpers.GenerateTicketCode()
		if err != nil {
			return nil, errors.InternalServerError("error generating ticket code")
		}
		ticket := entity.Ticket{
			ID:            uuid.New(),
			BookingID:     booking.ID,
			Code:          code,
			EventTitle:    ev.Title,
			Venue:         ev.Venue,
			StartsAt:      ev.StartsAt,
			EndsAt:        ev.EndsAt,
			AttendeeName:  booking.AttendeeName,
			AttendeeEmail: booking.AttendeeEmail,
			CreatedAt:     now,
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tickets (id, booking_id, code, event_title, venue, starts_at, ends_at, attendee_name, attendee_email, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			ticket.ID, ticket.BookingID, ticket.Code, ticket.EventTitle, ticket.Venue, ticket.StartsAt, ticket.EndsAt, ticket.AttendeeName, ticket.AttendeeEmail, ticket.CreatedAt); err != nil {
			r.log.Error(ctx, "error inserting ticket", err)
			return nil, errors.InternalServerError("error issuing tickets")
		}
		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

// FailOrder implements Repositories. Marks the payment failed and releases
// every seat the order group still holds, in one transaction. Returns false
// without touching anything when the payment is already terminal.
func (r *repositories) FailOrder(ctx context.Context, orderID, reason string, rawResponse []byte) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `UPDATE payments SET status = $2, failure_reason = $3, gateway_response = COALESCE($4, gateway_response), updated_at = $5 WHERE order_id = $1 AND status NOT IN ($6, $7)`,
		orderID, entity.PaymentStatusFailed, reason, rawResponse, now, entity.PaymentStatusSuccess, entity.PaymentStatusFailed)
	if err != nil {
		r.log.Error(ctx, "error transitioning payment to failed", err)
		return false, errors.InternalServerError("error failing order")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.InternalServerError("error failing order")
	}
	if affected == 0 {
		return false, nil
	}

	var held []struct {
		ID       uuid.UUID `db:"id"`
		EventID  int64     `db:"event_id"`
		Quantity int       `db:"quantity"`
	}
	if err := tx.SelectContext(ctx, &held, `SELECT id, event_id, quantity FROM bookings WHERE order_id = $1 AND status = $2 ORDER BY event_id FOR UPDATE`, orderID, entity.BookingStatusPending); err != nil {
		r.log.Error(ctx, "error locking held bookings", err)
		return false, errors.InternalServerError("error failing order")
	}

	for _, b := range held {
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $2, expires_at = NULL, updated_at = $3 WHERE id = $1`, b.ID, entity.BookingStatusCancelled, now); err != nil {
			r.log.Error(ctx, "error cancelling booking", err)
			return false, errors.InternalServerError("error failing order")
		}
		if _, err := tx.ExecContext(ctx, `UPDATE events SET sold = sold - $2, updated_at = $3 WHERE id = $1`, b.EventID, b.Quantity, now); err != nil {
			r.log.Error(ctx, "error releasing seat hold", err)
			return false, errors.InternalServerError("error failing order")
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.InternalServerError("error committing transaction")
	}

	return true, nil
}

// FlagPaymentForReview implements Repositories. The payment is parked in a
// non-terminal state; seats stay held until an operator resolves it.
func (r *repositories) FlagPaymentForReview(ctx context.Context, orderID string, reportedAmount decimal.Decimal, rawResponse []byte) error {
	reason := fmt.Sprintf("%s: gateway reported %s", entity.PaymentReasonAmountMismatch, reportedAmount.String())
	if _, err := r.db.ExecContext(ctx, `UPDATE payments SET status = $2, failure_reason = $3, gateway_response = $4, updated_at = $5 WHERE order_id = $1 AND status NOT IN ($6, $7)`,
		orderID, entity.PaymentStatusNeedsReview, reason, rawResponse, time.Now().UTC(), entity.PaymentStatusSuccess, entity.PaymentStatusFailed); err != nil {
		r.log.Error(ctx, "error flagging payment for review", err)
		return errors.InternalServerError("error flagging payment for review")
	}
	return nil
}

// RecordGatewayResponse implements Repositories. Audit trail for transient
// gateway states; never touches the status column.
func (r *repositories) RecordGatewayResponse(ctx context.Context, orderID string, rawResponse []byte) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE payments SET gateway_response = $2, updated_at = $3 WHERE order_id = $1 AND status NOT IN ($4, $5)`,
		orderID, rawResponse, time.Now().UTC(), entity.PaymentStatusSuccess, entity.PaymentStatusFailed); err != nil {
		r.log.Error(ctx, "error recording gateway response", err)
		return errors.InternalServerError("error recording gateway response")
	}
	return nil
}

// CheckInTicket implements Repositories. The null-to-set transition on the
// check-in timestamp happens at most once per ticket.
func (r *repositories) CheckInTicket(ctx context.Context, code string, staffID int64) (entity.Ticket, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.Ticket{}, errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	var ticket entity.Ticket
	err = tx.GetContext(ctx, &ticket, `SELECT `+ticketColumns+` FROM tickets WHERE code = $1 FOR UPDATE`, code)
	if err == sql.ErrNoRows {
		return entity.Ticket{}, errors.NotFound("ticket not found")
	}
	if err != nil {
		r.log.Error(ctx, "error locking ticket", err)
		return entity.Ticket{}, errors.InternalServerError("error checking in ticket")
	}

	var bookingStatus string
	if err := tx.GetContext(ctx, &bookingStatus, `SELECT status FROM bookings WHERE id = $1`, ticket.BookingID); err != nil {
		r.log.Error(ctx, "error reading booking status", err)
		return entity.Ticket{}, errors.InternalServerError("error checking in ticket")
	}
	if bookingStatus != entity.BookingStatusConfirmed {
		return entity.Ticket{}, errors.UnprocessableEntity("ticket booking is not confirmed")
	}
	if ticket.CheckedInAt.Valid {
		return entity.Ticket{}, errors.Conflict("ticket already checked in")
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `UPDATE tickets SET checked_in_at = $2, checked_in_by = $3 WHERE id = $1 AND checked_in_at IS NULL`, ticket.ID, now, staffID)
	if err != nil {
		r.log.Error(ctx, "error checking in ticket", err)
		return entity.Ticket{}, errors.InternalServerError("error checking in ticket")
	}
	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return entity.Ticket{}, errors.Conflict("ticket already checked in")
	}

	if err := tx.Commit(); err != nil {
		return entity.Ticket{}, errors.InternalServerError("error committing transaction")
	}

	ticket.CheckedInAt = sql.NullTime{Time: now, Valid: true}
	ticket.CheckedInBy = sql.NullInt64{Int64: staffID, Valid: true}
	return ticket, nil
}

// SweepExpiredReservations implements Repositories. Only bookings still
// pending at sweep time are touched; the status check and the mutation share
// one transaction, so a booking confirmed moments earlier is left alone.
func (r *repositories) SweepExpiredReservations(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.InternalServerError("error starting transaction")
	}
	defer tx.Rollback()

	var expired []struct {
		ID       uuid.UUID     `db:"id"`
		OrderID  uuid.NullUUID `db:"order_id"`
		EventID  int64         `db:"event_id"`
		Quantity int           `db:"quantity"`
	}
	if err := tx.SelectContext(ctx, &expired, `SELECT id, order_id, event_id, quantity FROM bookings WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2 ORDER BY event_id FOR UPDATE SKIP LOCKED`,
		entity.BookingStatusPending, now); err != nil {
		r.log.Error(ctx, "error selecting expired bookings", err)
		return 0, errors.InternalServerError("error sweeping reservations")
	}

	var released int64
	for _, b := range expired {
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $2, expires_at = NULL, updated_at = $3 WHERE id = $1`, b.ID, entity.BookingStatusCancelled, now); err != nil {
			r.log.Error(ctx, "error cancelling expired booking", err)
			return 0, errors.InternalServerError("error sweeping reservations")
		}
		if _, err := tx.ExecContext(ctx, `UPDATE events SET sold = sold - $2, updated_at = $3 WHERE id = $1`, b.EventID, b.Quantity, now); err != nil {
			r.log.Error(ctx, "error releasing expired hold", err)
			return 0, errors.InternalServerError("error sweeping reservations")
		}
		if b.OrderID.Valid {
			// A late gateway notification for a reaped order must find a
			// terminal payment, not a pending one.
			if _, err := tx.ExecContext(ctx, `UPDATE payments SET status = $2, failure_reason = $3, updated_at = $4 WHERE order_id = $1 AND status = $5`,
				b.OrderID.UUID, entity.PaymentStatusFailed, entity.PaymentReasonExpired, now, entity.PaymentStatusPending); err != nil {
				r.log.Error(ctx, "error expiring payment", err)
				return 0, errors.InternalServerError("error sweeping reservations")
			}
		}
		released++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.InternalServerError("error committing transaction")
	}

	return released, nil
}

// CountPendingPayments implements Repositories.
func (r *repositories) CountPendingPayments(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	const q = `SELECT COUNT(DISTINCT p.id) FROM payments p JOIN bookings b ON b.order_id = p.order_id WHERE b.event_id = $1 AND p.status = $2`
	if err := r.db.GetContext(ctx, &count, q, eventID, entity.PaymentStatusPending); err != nil {
		r.log.Error(ctx, "error count pending payments", err)
		return 0, errors.InternalServerError("error count pending payments")
	}
	return count, nil
}

// CacheSessionPayload implements Repositories. Lets the client resume the
// payment UI after a reload without opening a new gateway session.
func (r *repositories) CacheSessionPayload(ctx context.Context, orderID string, payload []byte, ttl time.Duration) error {
	key := fmt.Sprintf("payment:session:%s", orderID)
	if err := r.redisClient.Set(ctx, key, payload, ttl).Err(); err != nil {
		r.log.Error(ctx, "error caching session payload", err)
		return errors.InternalServerError("error caching session payload")
	}
	return nil
}

// GetCachedSessionPayload implements Repositories.
func (r *repositories) GetCachedSessionPayload(ctx context.Context, orderID string) ([]byte, error) {
	key := fmt.Sprintf("payment:session:%s", orderID)
	data, err := r.redisClient.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.log.Error(ctx, "error reading cached session payload", err)
		return nil, errors.InternalServerError("error reading cached session payload")
	}
	return data, nil
}

// ValidateToken implements Repositories.
func (r *repositories) ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error) {
	url := fmt.Sprintf("http://%s:%s/api/private/token/validate?token=%s", r.cfgUserService.Host, r.cfgUserService.Port, token)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return response.UserServiceValidate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		r.log.Error(ctx, "invalid token", resp.StatusCode)
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	var respData response.UserServiceValidate
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&respData); err != nil {
		return response.UserServiceValidate{}, err
	}

	if !respData.IsValid {
		r.log.Error(ctx, "invalid token", resp.StatusCode)
		return response.UserServiceValidate{}, errors.UnauthorizedError("invalid token")
	}

	return respData, nil
}
