package handler

import (
	"context"
	"fmt"
	"strconv"

	"ticketing-service/internal/module/booking/models/request"
	"ticketing-service/internal/module/booking/usecases"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/gateway"
	"ticketing-service/internal/pkg/helpers"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type BookingHandler struct {
	Log       *otelzap.Logger
	Validator *validator.Validate
	Usecase   usecases.Usecases
	Gateway   gateway.Client
	Publish   message.Publisher
}

func (h *BookingHandler) CreateOrder(ctx *fiber.Ctx) error {
	var req request.CreateOrder
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	userID := ctx.Locals("user_id").(int64)
	emailUser := ctx.Locals("email_user").(string)

	resp, err := h.Usecase.CreateOrderSession(ctx.UserContext(), userID, emailUser, &req)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error create order: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success create order, complete the payment before the hold expires")
}

func (h *BookingHandler) GetOrder(ctx *fiber.Ctx) error {
	orderID := ctx.Params("order_id")
	if orderID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("order id is required"))
	}

	userID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.GetOrder(ctx.UserContext(), userID, orderID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error get order: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success get order")
}

func (h *BookingHandler) VerifyPayment(ctx *fiber.Ctx) error {
	var req request.VerifyPayment
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	resp, err := h.Usecase.VerifyPayment(ctx.UserContext(), req.OrderID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error verify payment: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success verify payment")
}

func (h *BookingHandler) ShowBookings(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.ShowBookings(ctx.UserContext(), userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error show bookings: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success show bookings")
}

func (h *BookingHandler) VerifyTicket(ctx *fiber.Ctx) error {
	code := ctx.Params("code")
	if code == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("ticket code is required"))
	}

	resp, err := h.Usecase.VerifyTicket(ctx.UserContext(), code)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error verify ticket: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success verify ticket")
}

func (h *BookingHandler) CheckInTicket(ctx *fiber.Ctx) error {
	var req request.CheckInTicket
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	staffID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.CheckInTicket(ctx.UserContext(), &req, staffID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error check in ticket: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success check in ticket")
}

func (h *BookingHandler) CountPendingPayment(ctx *fiber.Ctx) error {
	eventID := ctx.Query("event_id")
	eventIDInt64, err := strconv.ParseInt(eventID, 10, 64)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse event id: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse event id"))
	}

	resp, err := h.Usecase.CountPendingPayment(ctx.UserContext(), eventIDInt64)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error count pending payment: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success count pending payment")
}

// GatewayWebhook accepts asynchronous notifications from the payment
// provider. The signature is checked over the raw body before anything is
// parsed; a valid notification is only queued as a verification trigger and
// never applied directly.
func (h *BookingHandler) GatewayWebhook(ctx *fiber.Ctx) error {
	rawBody := ctx.Body()
	signature := ctx.Get("X-Signature")

	if !h.Gateway.VerifySignature(rawBody, signature) {
		h.Log.Ctx(ctx.UserContext()).Error("webhook signature verification failed")
		return helpers.RespError(ctx, h.Log, errors.UnauthorizedError("invalid signature"))
	}

	var req request.GatewayNotification
	if err := json.Unmarshal(rawBody, &req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse webhook body: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse webhook body"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate webhook body: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	if err := h.Publish.Publish("payment_notification", message.NewMessage(watermill.NewUUID(), rawBody)); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error publish payment notification: %v", err))
		return helpers.RespError(ctx, h.Log, errors.InternalServerError("error queueing notification"))
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "notification accepted")
}

func (h *BookingHandler) ConsumePaymentNotification(msg *message.Message) error {
	msg.Ack() // acknowledge message
	var req request.GatewayNotification
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error unmarshal message: %v", err))

		// publish to poison queue
		reqPoisoned := request.PoisonedQueue{
			TopicTarget: "payment_notification",
			ErrorMsg:    err.Error(),
			Payload:     msg.Payload,
		}

		jsonPayload, _ := json.Marshal(reqPoisoned)

		err = h.Publish.Publish("poisoned_queue", message.NewMessage(watermill.NewUUID(), jsonPayload))
		if err != nil {
			h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", err))
		}

		return err
	}

	ctx := context.Background()

	err := h.Usecase.HandleGatewayNotification(ctx, &req)
	if err != nil {
		// publish to poison queue
		reqPoisoned := request.PoisonedQueue{
			TopicTarget: "payment_notification",
			ErrorMsg:    err.Error(),
			Payload:     msg.Payload,
		}

		jsonPayload, _ := json.Marshal(reqPoisoned)
		err = h.Publish.Publish("poisoned_queue", message.NewMessage(watermill.NewUUID(), jsonPayload))
		if err != nil {
			h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", err))
		}

		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error consume payment notification: %v", err))

		return err
	}

	return nil
}

func (h *BookingHandler) SweepStaleReservations(ctx context.Context, t *asynq.Task) error {
	resp, err := h.Usecase.SweepStaleReservations(ctx)
	if err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error sweep stale reservations: %v", err))
		return err
	}

	if resp.Skipped {
		return nil
	}

	h.Log.Ctx(ctx).Info(fmt.Sprintf("sweep released %d stale reservations", resp.ReleasedCount))
	return nil
}
