package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"ticketing-service/internal/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type Response struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func RespSuccess(ctx *fiber.Ctx, log *otelzap.Logger, data interface{}, message string) error {
	return ctx.Status(fiber.StatusOK).JSON(Response{
		Data:    data,
		Message: message,
	})
}

func RespError(ctx *fiber.Ctx, log *otelzap.Logger, err error) error {
	if resp, ok := err.(*errors.ErrorResp); ok {
		return ctx.Status(resp.Code).JSON(Response{
			Data:    nil,
			Message: resp.Message,
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(Response{
		Data:    nil,
		Message: "internal server error",
	})
}

// DurationCalculation returns how far in the future t lies, floored at zero.
func DurationCalculation(t time.Time) time.Duration {
	d := time.Until(t)
	if d < 0 {
		return 0
	}
	return d
}

// GenerateTicketCode returns a hex-encoded crypto-random code. 16 bytes of
// entropy keeps codes unguessable while staying short enough to scan.
func GenerateTicketCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
