package resp

import (
	"encoding/json"
	"net/http"

	"github.com/spoton-app/spoton/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Code    int    `json:"code,omitempty"`    // Business code
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with custom status code.
// A lone string argument is written as {"message": ...}.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	if statusCode < 200 || statusCode >= 400 {
		Fail(w, &Exception{Status: statusCode})
		return
	}

	var payload any = map[string]any{"message": ecode.Text(ecode.OK)}
	if len(data) > 0 && data[0] != nil {
		if message, ok := data[0].(string); ok {
			payload = map[string]any{"message": message}
		} else {
			payload = data[0]
		}
	}

	writeJSON(w, statusCode, payload)
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = &Exception{
			Status:  http.StatusInternalServerError,
			Code:    ecode.ServerErr,
			Message: ecode.Text(ecode.ServerErr),
		}
	}
	statusCode, result := buildFailureResponse(r)
	writeJSON(w, statusCode, result)
}

// NotFound builds a 404 exception.
func NotFound(message ...string) *Exception {
	return newException(http.StatusNotFound, ecode.NotFound, message...)
}

// InternalServer builds a 500 exception.
func InternalServer(message ...string) *Exception {
	return newException(http.StatusInternalServerError, ecode.ServerErr, message...)
}

// MethodNotAllowed builds a 405 exception.
func MethodNotAllowed(message ...string) *Exception {
	return newException(http.StatusMethodNotAllowed, ecode.NotAllowed, message...)
}

func newException(status, code int, message ...string) *Exception {
	e := &Exception{Status: status, Code: code, Message: ecode.Text(code)}
	if len(message) > 0 && message[0] != "" {
		e.Message = message[0]
	}
	return e
}

// buildFailureResponse builds the failure response.
func buildFailureResponse(r *Exception) (int, *Exception) {
	status := http.StatusBadRequest
	code := ecode.RequestErr

	if r.Status != 0 {
		status = r.Status
	}
	if r.Code != 0 {
		code = r.Code
	} else if r.Status != 0 {
		code = r.Status
	}
	message := ecode.Text(code)
	if r.Message != "" {
		message = r.Message
	}

	return status, &Exception{
		Code:    code,
		Message: message,
		Errors:  r.Errors,
	}
}

// writeJSON writes res with the given status code.
func writeJSON(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
