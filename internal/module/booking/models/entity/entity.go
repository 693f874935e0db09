package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"

	EventVisibilityPublic  = "public"
	EventVisibilityPrivate = "private"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses. Success and failed are terminal; needs_review is a
// deliberate parking state that only an operator resolves.
const (
	PaymentStatusPending     = "pending"
	PaymentStatusNeedsReview = "needs_review"
	PaymentStatusSuccess     = "success"
	PaymentStatusFailed      = "failed"
	PaymentStatusRefunded    = "refunded"
)

const (
	PaymentReasonGatewayInitFailed = "gateway_init_failed"
	PaymentReasonDeclined          = "declined"
	PaymentReasonExpired           = "expired"
	PaymentReasonAmountMismatch    = "amount_mismatch"
)

type Event struct {
	ID         int64           `db:"id"`
	Title      string          `db:"title"`
	Venue      string          `db:"venue"`
	StartsAt   time.Time       `db:"starts_at"`
	EndsAt     time.Time       `db:"ends_at"`
	Price      decimal.Decimal `db:"price"`
	Capacity   int             `db:"capacity"`
	Sold       int             `db:"sold"`
	Status     string          `db:"status"`
	Visibility string          `db:"visibility"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  sql.NullTime    `db:"updated_at"`
}

func (e *Event) Purchasable() bool {
	return e.Status == EventStatusPublished && e.Visibility == EventVisibilityPublic
}

type Booking struct {
	ID            uuid.UUID       `db:"id"`
	OrderID       uuid.NullUUID   `db:"order_id"`
	EventID       int64           `db:"event_id"`
	UserID        int64           `db:"user_id"`
	Quantity      int             `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	Status        string          `db:"status"`
	AttendeeName  string          `db:"attendee_name"`
	AttendeeEmail string          `db:"attendee_email"`
	ExpiresAt     sql.NullTime    `db:"expires_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     sql.NullTime    `db:"updated_at"`
}

type Payment struct {
	ID              int64           `db:"id"`
	OrderID         uuid.UUID       `db:"order_id"`
	UserID          int64           `db:"user_id"`
	IdempotencyKey  uuid.UUID       `db:"idempotency_key"`
	Amount          decimal.Decimal `db:"amount"`
	Currency        string          `db:"currency"`
	Status          string          `db:"status"`
	FailureReason   sql.NullString  `db:"failure_reason"`
	TransactionID   sql.NullString  `db:"transaction_id"`
	SessionPayload  []byte          `db:"session_payload"`
	GatewayResponse []byte          `db:"gateway_response"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       sql.NullTime    `db:"updated_at"`
}

// Terminal reports whether no further status transition is permitted.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}

// Ticket snapshots event and attendee context at issuance so it stays
// meaningful even if the event record is edited later.
type Ticket struct {
	ID            uuid.UUID     `db:"id"`
	BookingID     uuid.UUID     `db:"booking_id"`
	Code          string        `db:"code"`
	EventTitle    string        `db:"event_title"`
	Venue         string        `db:"venue"`
	StartsAt      time.Time     `db:"starts_at"`
	EndsAt        time.Time     `db:"ends_at"`
	AttendeeName  string        `db:"attendee_name"`
	AttendeeEmail string        `db:"attendee_email"`
	CheckedInAt   sql.NullTime  `db:"checked_in_at"`
	CheckedInBy   sql.NullInt64 `db:"checked_in_by"`
	CreatedAt     time.Time     `db:"created_at"`
}

// ReservationItem is a normalized order line: deduplicated per event and
// sorted ascending by event id before any row is locked.
type ReservationItem struct {
	EventID  int64
	Quantity int
}
