package response

import "github.com/goccy/go-json"

type UserServiceValidate struct {
	IsValid   bool   `json:"is_valid"`
	UserID    int64  `json:"user_id"`
	EmailUser string `json:"email_user"`
	IsStaff   bool   `json:"is_staff"`
}

type BookingSummary struct {
	BookingID string  `json:"booking_id"`
	EventID   int64   `json:"event_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
	Status    string  `json:"status"`
	ExpiresAt string  `json:"expires_at,omitempty"`
}

type OrderSession struct {
	OrderID        string           `json:"order_id"`
	Amount         float64          `json:"amount"`
	Currency       string           `json:"currency"`
	SessionPayload json.RawMessage  `json:"session_payload"`
	Bookings       []BookingSummary `json:"bookings"`
}

const (
	PaymentResultSuccess = "success"
	PaymentResultPending = "pending"
	PaymentResultFailed  = "failed"
)

type PaymentDetail struct {
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id,omitempty"`
}

type TicketDetail struct {
	TicketID      string `json:"ticket_id"`
	Code          string `json:"code"`
	EventTitle    string `json:"event_title"`
	Venue         string `json:"venue"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
	CheckedIn     bool   `json:"checked_in"`
	CheckedInAt   string `json:"checked_in_at,omitempty"`
}

type PaymentVerification struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Payment PaymentDetail  `json:"payment"`
	Tickets []TicketDetail `json:"tickets,omitempty"`
}

type BookedOrder struct {
	BookingID     string  `json:"booking_id"`
	OrderID       string  `json:"order_id,omitempty"`
	EventID       int64   `json:"event_id"`
	Quantity      int     `json:"quantity"`
	TotalAmount   float64 `json:"total_amount"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status,omitempty"`
	ExpiresAt     string  `json:"expires_at,omitempty"`
}

type SweepResult struct {
	ReleasedCount int64 `json:"released_count"`
	Skipped       bool  `json:"skipped"`
}

type PendingPaymentCount struct {
	EventID int64 `json:"event_id"`
	Count   int64 `json:"count"`
}
