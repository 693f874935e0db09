package middleware

import (
	"fmt"
	"strings"

	"ticketing-service/internal/module/booking/repositories"
	"ticketing-service/internal/pkg/errors"
	"ticketing-service/internal/pkg/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

type Middleware struct {
	Log  *otelzap.Logger
	Repo repositories.Repositories
}

func (m *Middleware) ValidateToken(ctx *fiber.Ctx) error {
	// get token from header
	auth := ctx.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" || token == auth {
		m.Log.Ctx(ctx.UserContext()).Error("error get token from header")
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error get token from header"))
	}

	resp, err := m.Repo.ValidateToken(ctx.UserContext(), token)
	if err != nil {
		m.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate token: %v", err))
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error validate token"))
	}

	if !resp.IsValid {
		m.Log.Ctx(ctx.UserContext()).Error("error validate token")
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error validate token"))
	}

	ctx.Locals("user_id", resp.UserID)
	ctx.Locals("email_user", resp.EmailUser)
	ctx.Locals("is_staff", resp.IsStaff)

	return ctx.Next()
}

// RequireStaff gates the door-scanner endpoints. Must run after
// ValidateToken.
func (m *Middleware) RequireStaff(ctx *fiber.Ctx) error {
	isStaff, ok := ctx.Locals("is_staff").(bool)
	if !ok || !isStaff {
		m.Log.Ctx(ctx.UserContext()).Error("error validate staff role")
		return helpers.RespError(ctx, m.Log, errors.ForbiddenError("staff role required"))
	}

	return ctx.Next()
}
