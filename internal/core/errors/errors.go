package errors

import "net/http"

// Response codes. Each equals the HTTP status it is sent with.
const (
	OK             = http.StatusOK
	BadRequest     = http.StatusBadRequest
	Forbidden      = http.StatusForbidden
	NotFound       = http.StatusNotFound
	InvalidRequest = http.StatusUnprocessableEntity
	InternalError  = http.StatusInternalServerError
)

// Messages sent in place of the defaults.
const (
	MsgInvalidRequest = "Invalid request"
	MsgInvalidMethod  = "Invalid method"
)

var statusText = map[int]string{
	BadRequest:     "Bad Request",
	Forbidden:      "Forbidden",
	NotFound:       "Not Found",
	InvalidRequest: "Invalid Request",
	InternalError:  "Internal Server Error",
}

// StatusText returns the default error message for code, or "" if unknown.
func StatusText(code int) string {
	return statusText[code]
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// SuccessResponse is the body of every 200 response.
type SuccessResponse struct {
	Response interface{} `json:"response"`
	Code     int         `json:"code"`
}

// NewErrorResponse builds an ErrorResponse, falling back to the default
// message for code when msg is empty.
func NewErrorResponse(code int, msg string) ErrorResponse {
	if msg == "" {
		msg = StatusText(code)
	}
	if msg == "" {
		msg = "Unknown Error"
	}
	return ErrorResponse{Error: msg, Code: code}
}

// Body returns the envelope for a handler result.
func Body(code int, payload interface{}, msg string) interface{} {
	if code == OK {
		return SuccessResponse{Response: payload, Code: code}
	}
	return NewErrorResponse(code, msg)
}
