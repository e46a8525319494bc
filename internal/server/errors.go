package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spigell/alumni-matcher/internal/ai"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch ai.Kind(err) {
	case "empty_input":
		return http.StatusBadRequest
	case "unsupported_capability":
		return http.StatusUnsupportedMediaType
	case "permission_denied":
		return http.StatusForbidden
	case "schema_validation", "network":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func aiError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ErrorResponse{Error: ai.Kind(err), Message: ai.UserMessage(err)})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: message})
}

func notFound(c echo.Context, id string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "no profile with id " + id})
}
