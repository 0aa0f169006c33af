package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// classifyError maps core errors to an HTTP status, error code and message.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return fiber.StatusNotFound, "not_found", "session not found"
	case errors.Is(err, domain.ErrPinNotFound):
		return fiber.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, domain.ErrNoPendingAction),
		errors.Is(err, domain.ErrAnalysisInactive):
		return fiber.StatusConflict, "conflict", err.Error()
	case errors.Is(err, domain.ErrDimensionsMismatch),
		errors.Is(err, domain.ErrInvalidDimensions):
		return fiber.StatusUnprocessableEntity, "unprocessable", err.Error()
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, domain.ErrUnknownTab),
		errors.Is(err, domain.ErrUnknownTool),
		errors.Is(err, domain.ErrUnknownShapeKind),
		errors.Is(err, usecases.ErrUnknownAction):
		return fiber.StatusBadRequest, "bad_request", err.Error()
	}
	return fiber.StatusInternalServerError, "internal_error", "internal error"
}

// writeError renders err as an APIError. Unclassified errors are logged
// with the request and hidden from the client.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := classifyError(err)
	if status == fiber.StatusInternalServerError {
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	}
	return newError(c, status, code, msg)
}
