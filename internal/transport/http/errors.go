package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/transport"
	"github.com/Skotchmaster/shop_admin/internal/validation"
)

const msgInternal = "Internal server error"

// ValidationError carries field errors to ErrorHandler.
type ValidationError struct {
	Details validation.Errors
}

func (e *ValidationError) Error() string { return e.Details.Error() }

// ErrorHandler renders every handler error as {"error": ...}. Messages of
// non-HTTP errors are never sent to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := transport.ErrorResponse{Error: msgInternal}

	var ve *ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		body = transport.ErrorResponse{Error: "Validation failed", Details: ve.Details}
	case errors.As(err, &he):
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			body.Error = msg
		} else {
			body.Error = http.StatusText(code)
		}
	default:
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}
