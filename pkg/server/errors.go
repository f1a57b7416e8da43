package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/serializer"
)

// ErrorResponse is the error envelope every non-2xx API response
// carries. httpapi.Client decodes the same shape.
type ErrorResponse struct {
	Code      string         `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	RequestID string         `json:"requestId" yaml:"requestId"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Retryable bool           `json:"retryable" yaml:"retryable"`
}

// WriteError writes an error envelope with explicit code and status.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code hwerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps a coded error onto the wire: status and
// retryability come from the code, the message from the structured
// message (or fallback for unstructured errors), and details merge the
// error's context with extra, extra winning ties. The wrapped cause
// rides under a details "error" key.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallback string, extra map[string]any) {
	code := hwerrors.CodeOf(err)
	message := hwerrors.MessageOf(err)
	if message == "" {
		message = fallback
	}

	details := mergeDetails(hwerrors.ContextOf(err), extra)
	if cause := causeOf(err); cause != "" {
		if details == nil {
			details = make(map[string]any)
		}
		details["error"] = cause
	}

	WriteError(w, r, HTTPStatusFromCode(code), code, message, retryableFromCode(code), details)
}

// HTTPStatusFromCode maps error codes to HTTP status codes. Unknown
// codes map to 500.
func HTTPStatusFromCode(code hwerrors.ErrorCode) int {
	switch code {
	case hwerrors.ErrCodeInvalidRequest,
		hwerrors.ErrCodeInvalidResource,
		hwerrors.ErrCodeInvalidImageKey,
		hwerrors.ErrCodeInvalidWorkspace:
		return http.StatusBadRequest
	case hwerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case hwerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case hwerrors.ErrCodeAlreadyExists:
		return http.StatusConflict
	case hwerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case hwerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case hwerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// retryableFromCode reports whether a client may retry the same
// request unchanged.
func retryableFromCode(code hwerrors.ErrorCode) bool {
	switch code {
	case hwerrors.ErrCodeTimeout,
		hwerrors.ErrCodeUnavailable,
		hwerrors.ErrCodeRateLimitExceeded,
		hwerrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails merges two detail maps into a new one, b overwriting a.
// Both empty yields nil so empty objects never serialize.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// causeOf returns the wrapped cause's message for structured errors,
// or the error's own message for unstructured ones.
func causeOf(err error) string {
	if err == nil {
		return ""
	}
	var e *hwerrors.Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return e.Err.Error()
		}
		return ""
	}
	return err.Error()
}
