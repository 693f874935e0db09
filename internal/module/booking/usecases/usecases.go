package usecases

import (
	"context"
	"sort"

	"ticketing-service/config"
	"ticketing-service/internal/module/booking/models/entity"
	"ticketing-service/internal/module/booking/models/request"
	"ticketing-service/internal/module/booking/models/response"
	"ticketing-service/internal/module/booking/repositories"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/gateway"
	"ticketing-service/internal/pkg/helpers"
	"ticketing-service/internal/pkg/log"
	"ticketing-service/internal/pkg/observability"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type usecases struct {
	repo           repositories.Repositories
	gateway        gateway.Client
	publisher      message.Publisher
	rds            *redsync.Redsync
	log            log.Logger
	cfgGateway     *config.GatewayConfig
	cfgReservation *config.ReservationConfig
}

type Usecases interface {
	CreateOrderSession(ctx context.Context, userID int64, emailUser string, payload *request.CreateOrder) (response.OrderSession, error)
	GetOrder(ctx context.Context, userID int64, orderID string) (response.OrderSession, error)
	ShowBookings(ctx context.Context, userID int64) ([]response.BookedOrder, error)
	VerifyPayment(ctx context.Context, orderID string) (response.PaymentVerification, error)
	HandleGatewayNotification(ctx context.Context, payload *request.GatewayNotification) error
	VerifyTicket(ctx context.Context, code string) (response.TicketDetail, error)
	CheckInTicket(ctx context.Context, payload *request.CheckInTicket, staffID int64) (response.TicketDetail, error)
	SweepStaleReservations(ctx context.Context) (response.SweepResult, error)
	CountPendingPayment(ctx context.Context, eventID int64) (response.PendingPaymentCount, error)
}

func New(repo repositories.Repositories, gw gateway.Client, publisher message.Publisher, rds *redsync.Redsync, logger log.Logger, cfgGateway *config.GatewayConfig, cfgReservation *config.ReservationConfig) Usecases {
	return &usecases{
		repo:           repo,
		gateway:        gw,
		publisher:      publisher,
		rds:            rds,
		log:            logger,
		cfgGateway:     cfgGateway,
		cfgReservation: cfgReservation,
	}
}

// normalizeItems merges duplicate event lines and sorts ascending by event
// id. Every caller that ends up locking event rows goes through this, so
// two concurrent checkouts always take their locks in the same order.
func normalizeItems(items []request.OrderItem) []entity.ReservationItem {
	merged := make(map[int64]int, len(items))
	for _, item := range items {
		merged[item.EventID] += item.Quantity
	}
	normalized := make([]entity.ReservationItem, 0, len(merged))
	for eventID, quantity := range merged {
		normalized = append(normalized, entity.ReservationItem{EventID: eventID, Quantity: quantity})
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i].EventID < normalized[j].EventID })
	return normalized
}

// CreateOrderSession implements Usecases. Seats are held first, then the
// payment row is created and a gateway session opened for the grand total.
// If the gateway cannot be reached the whole order is compensated: payment
// failed, seats released.
func (u *usecases) CreateOrderSession(ctx context.Context, userID int64, emailUser string, payload *request.CreateOrder) (response.OrderSession, error) {
	items := normalizeItems(payload.Items)
	if len(items) > u.cfgReservation.MaxItemsPerOrder {
		return response.OrderSession{}, errors.BadRequest("too many events in one order")
	}

	bookings, err := u.repo.ReserveSeats(ctx, userID, payload.AttendeeName, emailUser, items)
	if err != nil {
		observability.TrackReservation("rejected")
		return response.OrderSession{}, err
	}
	observability.TrackReservation("held")

	grandTotal := decimal.Zero
	bookingIDs := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		grandTotal = grandTotal.Add(b.TotalAmount)
		bookingIDs = append(bookingIDs, b.ID)
	}

	orderID := uuid.New()
	payment := entity.Payment{
		OrderID:        orderID,
		UserID:         userID,
		IdempotencyKey: uuid.New(),
		Amount:         grandTotal,
		Currency:       u.cfgGateway.Currency,
		Status:         entity.PaymentStatusPending,
	}

	if err := u.repo.CreatePayment(ctx, &payment, bookingIDs); err != nil {
		return response.OrderSession{}, err
	}

	session, err := u.gateway.CreateSession(ctx, &gateway.CreateSessionRequest{
		OrderID:        orderID.String(),
		Amount:         grandTotal,
		Currency:       payment.Currency,
		CustomerName:   payload.AttendeeName,
		CustomerEmail:  emailUser,
		ReturnURL:      payload.ReturnURL,
		IdempotencyKey: payment.IdempotencyKey.String(),
	})
	if err != nil {
		u.log.Error(ctx, "gateway session init failed, compensating order", err)
		if _, failErr := u.repo.FailOrder(ctx, orderID.String(), entity.PaymentReasonGatewayInitFailed, nil); failErr != nil {
			u.log.Error(ctx, "error compensating order after gateway failure", failErr)
		}
		observability.TrackPaymentOutcome(entity.PaymentReasonGatewayInitFailed)
		return response.OrderSession{}, errors.BadGateway("payment could not be initialized, seats were released")
	}

	if err := u.repo.SaveSessionPayload(ctx, orderID.String(), session.Payload); err != nil {
		u.log.Error(ctx, "error persisting session payload", err)
	}
	// The cached payload must not outlive the hold it belongs to.
	ttl := u.cfgReservation.HoldDuration
	if len(bookings) > 0 && bookings[0].ExpiresAt.Valid {
		ttl = helpers.DurationCalculation(bookings[0].ExpiresAt.Time)
	}
	if err := u.repo.CacheSessionPayload(ctx, orderID.String(), session.Payload, ttl); err != nil {
		u.log.Error(ctx, "error caching session payload", err)
	}

	return response.OrderSession{
		OrderID:        orderID.String(),
		Amount:         grandTotal.InexactFloat64(),
		Currency:       payment.Currency,
		SessionPayload: session.Payload,
		Bookings:       toBookingSummaries(bookings),
	}, nil
}

// GetOrder implements Usecases. Lets the client resume the payment UI for
// an order it owns; the cached session payload is served when still fresh.
func (u *usecases) GetOrder(ctx context.Context, userID int64, orderID string) (response.OrderSession, error) {
	payment, err := u.repo.FindPaymentByOrderID(ctx, orderID)
	if err != nil {
		return response.OrderSession{}, err
	}
	if payment.UserID != userID {
		return response.OrderSession{}, errors.ForbiddenError("order belongs to another user")
	}

	bookings, err := u.repo.FindBookingsByOrderID(ctx, orderID)
	if err != nil {
		return response.OrderSession{}, err
	}

	sessionPayload := payment.SessionPayload
	if cached, err := u.repo.GetCachedSessionPayload(ctx, orderID); err == nil && cached != nil {
		sessionPayload = cached
	}

	return response.OrderSession{
		OrderID:        payment.OrderID.String(),
		Amount:         payment.Amount.InexactFloat64(),
		Currency:       payment.Currency,
		SessionPayload: sessionPayload,
		Bookings:       toBookingSummaries(bookings),
	}, nil
}

// ShowBookings implements Usecases.
func (u *usecases) ShowBookings(ctx context.Context, userID int64) ([]response.BookedOrder, error) {
	bookings, err := u.repo.FindBookingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders := make([]response.BookedOrder, 0, len(bookings))
	for _, b := range bookings {
		order := response.BookedOrder{
			BookingID:   b.ID.String(),
			EventID:     b.EventID,
			Quantity:    b.Quantity,
			TotalAmount: b.TotalAmount.InexactFloat64(),
			Status:      b.Status,
		}
		if b.OrderID.Valid {
			order.OrderID = b.OrderID.UUID.String()
			payment, err := u.repo.FindPaymentByOrderID(ctx, b.OrderID.UUID.String())
			if err == nil {
				order.PaymentStatus = payment.Status
			}
		}
		if b.ExpiresAt.Valid {
			order.ExpiresAt = b.ExpiresAt.Time.Format("2006-01-02 15:04:05")
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// CountPendingPayment implements Usecases.
func (u *usecases) CountPendingPayment(ctx context.Context, eventID int64) (response.PendingPaymentCount, error) {
	count, err := u.repo.CountPendingPayments(ctx, eventID)
	if err != nil {
		return response.PendingPaymentCount{}, err
	}
	return response.PendingPaymentCount{EventID: eventID, Count: count}, nil
}

func toBookingSummaries(bookings []entity.Booking) []response.BookingSummary {
	summaries := make([]response.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		summary := response.BookingSummary{
			BookingID: b.ID.String(),
			EventID:   b.EventID,
			Quantity:  b.Quantity,
			UnitPrice: b.UnitPrice.InexactFloat64(),
			LineTotal: b.TotalAmount.InexactFloat64(),
			Status:    b.Status,
		}
		if b.ExpiresAt.Valid {
			summary.ExpiresAt = b.ExpiresAt.Time.Format("2006-01-02 15:04:05")
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
