package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/witness-archive/internal/domain"
	"github.com/jsamuelsen/witness-archive/internal/platform/logging"
)

// GetTraceID extracts the OpenTelemetry trace ID from the request context.
// Returns an empty string when no span is recording.
func GetTraceID(c *gin.Context) string {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.SpanContext().HasTraceID() {
		return ""
	}

	return span.SpanContext().TraceID().String()
}

// HandleError maps a domain error to an HTTP error response and writes it.
// Unknown errors become a generic 500 so internals never leak to clients.
func HandleError(c *gin.Context, err error) {
	status, resp := ErrorResponseFor(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logger := logging.FromContext(c.Request.Context())
		logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// ErrorResponseFor classifies a domain error into a status code and envelope.
// It is the single source of truth for error mapping; the http package's
// respond/abort helpers delegate here rather than keeping their own switch.
func ErrorResponseFor(err error) (int, *ErrorResponse) {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case errors.Is(err, ErrValidation), errors.Is(err, ErrBinding):
		resp := NewErrorResponse(ErrorCodeValidation, "request validation failed")
		if details := ValidationErrors(err); len(details) > 0 {
			resp.Error.Details = details
		}

		return http.StatusBadRequest, resp

	case domain.IsLoad(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeDatasetLoad, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}
