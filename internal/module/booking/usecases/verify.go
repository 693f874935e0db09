package usecases

import (
	"context"

	"ticketing-service/internal/module/booking/models/entity"
	"ticketing-service/internal/module/booking/models/request"
	"ticketing-service/internal/module/booking/models/response"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/gateway"
	"ticketing-service/internal/pkg/observability"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// VerifyPayment implements Usecases. It is the only place payment state
// moves forward, and the gateway's own answer to a status query is the only
// input it trusts. Both the synchronous endpoint and the webhook consumer
// land here, so the branches below must stay safe under repetition and
// concurrency.
func (u *usecases) VerifyPayment(ctx context.Context, orderID string) (response.PaymentVerification, error) {
	payment, err := u.repo.FindPaymentByOrderID(ctx, orderID)
	if err != nil {
		return response.PaymentVerification{}, err
	}

	// Terminal payments answer from local state. No gateway round trip,
	// no transition.
	if payment.Terminal() {
		return u.settledVerification(ctx, &payment)
	}

	status, err := u.gateway.QueryStatus(ctx, orderID)
	if err != nil {
		u.log.Error(ctx, "gateway status query failed", err)
		return response.PaymentVerification{}, errors.BadGateway("payment gateway unavailable, try again")
	}

	switch status.Status {
	case gateway.StatusCharged:
		if !status.Amount.Equal(payment.Amount) {
			// Money moved but the numbers disagree. Park the payment for an
			// operator and keep the seats held; nothing here may guess.
			u.log.Error(ctx, "charged amount does not match order", orderID, payment.Amount.String(), status.Amount.String())
			if err := u.repo.FlagPaymentForReview(ctx, orderID, status.Amount, status.Raw); err != nil {
				return response.PaymentVerification{}, err
			}
			observability.TrackPaymentOutcome(entity.PaymentReasonAmountMismatch)
			return response.PaymentVerification{
				Status:  response.PaymentResultFailed,
				Message: "payment amount mismatch, please contact support",
				Payment: toPaymentDetail(&payment, entity.PaymentStatusNeedsReview),
			}, nil
		}

		confirmed, tickets, err := u.repo.ConfirmOrder(ctx, orderID, status.TransactionID, status.Raw)
		if err != nil {
			return response.PaymentVerification{}, err
		}
		if !confirmed {
			// A concurrent caller settled the order first, and not
			// necessarily in our favor: the reaper or a decline may have
			// failed it before the charge report arrived. The committed
			// payment row decides the answer.
			settled, err := u.repo.FindPaymentByOrderID(ctx, orderID)
			if err != nil {
				return response.PaymentVerification{}, err
			}
			return u.settledVerification(ctx, &settled)
		}
		observability.TrackPaymentOutcome(response.PaymentResultSuccess)
		u.publishEvent(ctx, "payment_completed", orderID)
		detail := toPaymentDetail(&payment, entity.PaymentStatusSuccess)
		detail.TransactionID = status.TransactionID
		return response.PaymentVerification{
			Status:  response.PaymentResultSuccess,
			Message: "payment confirmed, tickets issued",
			Payment: detail,
			Tickets: toTicketDetails(tickets),
		}, nil

	case gateway.StatusDeclined, gateway.StatusAuthFailed, gateway.StatusAuthRejected:
		transitioned, err := u.repo.FailOrder(ctx, orderID, status.Status, status.Raw)
		if err != nil {
			return response.PaymentVerification{}, err
		}
		if transitioned {
			observability.TrackPaymentOutcome(status.Status)
			u.publishEvent(ctx, "payment_failed", orderID)
		}
		return response.PaymentVerification{
			Status:  response.PaymentResultFailed,
			Message: "payment was not approved, seats were released",
			Payment: toPaymentDetail(&payment, entity.PaymentStatusFailed),
		}, nil

	case gateway.StatusProcessing, gateway.StatusAuthenticating, gateway.StatusNew:
		if err := u.repo.RecordGatewayResponse(ctx, orderID, status.Raw); err != nil {
			u.log.Error(ctx, "error recording transient gateway response", err)
		}
		return response.PaymentVerification{
			Status:  response.PaymentResultPending,
			Message: "payment is still in progress",
			Payment: toPaymentDetail(&payment, payment.Status),
		}, nil

	default:
		// Unknown vocabulary from the gateway. Stay pending, keep the
		// evidence, never transition on a word this code does not know.
		u.log.Error(ctx, "unrecognized gateway status", orderID, status.Status)
		if err := u.repo.RecordGatewayResponse(ctx, orderID, status.Raw); err != nil {
			u.log.Error(ctx, "error recording gateway response", err)
		}
		return response.PaymentVerification{
			Status:  response.PaymentResultPending,
			Message: "payment status could not be determined yet",
			Payment: toPaymentDetail(&payment, payment.Status),
		}, nil
	}
}

// HandleGatewayNotification implements Usecases. The notification body is a
// doorbell: only the order id is used, and the authoritative status comes
// from a fresh gateway query inside VerifyPayment.
func (u *usecases) HandleGatewayNotification(ctx context.Context, payload *request.GatewayNotification) error {
	_, err := u.VerifyPayment(ctx, payload.OrderID)
	if errResp, ok := err.(*errors.ErrorResp); ok && errResp.Code == 404 {
		// Unknown order ids happen when environments share a gateway
		// account. Acknowledge so the message is not retried forever.
		u.log.Error(ctx, "webhook for unknown order", payload.OrderID)
		return nil
	}
	return err
}

func (u *usecases) settledVerification(ctx context.Context, payment *entity.Payment) (response.PaymentVerification, error) {
	if payment.Status == entity.PaymentStatusSuccess {
		tickets, err := u.repo.FindTicketsByOrderID(ctx, payment.OrderID.String())
		if err != nil {
			return response.PaymentVerification{}, err
		}
		return response.PaymentVerification{
			Status:  response.PaymentResultSuccess,
			Message: "payment already confirmed",
			Payment: toPaymentDetail(payment, payment.Status),
			Tickets: toTicketDetails(tickets),
		}, nil
	}
	msg := "payment failed, seats were released"
	if payment.FailureReason.Valid {
		msg = "payment failed: " + payment.FailureReason.String
	}
	return response.PaymentVerification{
		Status:  response.PaymentResultFailed,
		Message: msg,
		Payment: toPaymentDetail(payment, payment.Status),
	}, nil
}

func (u *usecases) publishEvent(ctx context.Context, topic, orderID string) {
	body, err := json.Marshal(map[string]string{"order_id": orderID})
	if err != nil {
		return
	}
	if err := u.publisher.Publish(topic, message.NewMessage(watermill.NewUUID(), body)); err != nil {
		u.log.Error(ctx, "error publishing event", topic, err)
	}
}

func toPaymentDetail(payment *entity.Payment, status string) response.PaymentDetail {
	detail := response.PaymentDetail{
		OrderID:  payment.OrderID.String(),
		Amount:   payment.Amount.InexactFloat64(),
		Currency: payment.Currency,
		Status:   status,
	}
	if payment.TransactionID.Valid {
		detail.TransactionID = payment.TransactionID.String
	}
	return detail
}

func toTicketDetails(tickets []entity.Ticket) []response.TicketDetail {
	details := make([]response.TicketDetail, 0, len(tickets))
	for _, t := range tickets {
		detail := response.TicketDetail{
			TicketID:      t.ID.String(),
			Code:          t.Code,
			EventTitle:    t.EventTitle,
			Venue:         t.Venue,
			StartTime:     t.StartsAt.Format("2006-01-02 15:04:05"),
			EndTime:       t.EndsAt.Format("2006-01-02 15:04:05"),
			AttendeeName:  t.AttendeeName,
			AttendeeEmail: t.AttendeeEmail,
			CheckedIn:     t.CheckedInAt.Valid,
		}
		if t.CheckedInAt.Valid {
			detail.CheckedInAt = t.CheckedInAt.Time.Format("2006-01-02 15:04:05")
		}
		details = append(details, detail)
	}
	return details
}
