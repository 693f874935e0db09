package errors

import "net/http"

// ErrorResp carries an HTTP status alongside a user-safe message. Internal
// detail stays in the logs, never in the response body.
type ErrorResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResp) Error() string {
	return e.Message
}

func New(code int, message string) *ErrorResp {
	return &ErrorResp{Code: code, Message: message}
}

// BadRequest covers malformed or invalid requests.
func BadRequest(message string) *ErrorResp {
	return New(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *ErrorResp {
	return New(http.StatusUnauthorized, message)
}

func ForbiddenError(message string) *ErrorResp {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *ErrorResp {
	return New(http.StatusNotFound, message)
}

// Conflict covers requests that cannot proceed because of the current state
// of the resource, e.g. a ticket that is already checked in or a payment
// flagged for manual review.
func Conflict(message string) *ErrorResp {
	return New(http.StatusConflict, message)
}

// UnprocessableEntity covers availability rejections: sold out events and
// quantities above the remaining capacity.
func UnprocessableEntity(message string) *ErrorResp {
	return New(http.StatusUnprocessableEntity, message)
}

// BadGateway covers failures talking to the payment gateway. Status queries
// may be retried by the caller; session creation may not.
func BadGateway(message string) *ErrorResp {
	return New(http.StatusBadGateway, message)
}

func InternalServerError(message string) *ErrorResp {
	return New(http.StatusInternalServerError, message)
}
