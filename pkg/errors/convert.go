package errors

import "net/http"

var httpStatusByCode = map[string]int{
	ErrInternal:        http.StatusInternalServerError,
	ErrNotFound:        http.StatusNotFound,
	ErrInvalidArgument: http.StatusBadRequest,
	ErrUnauthenticated: http.StatusUnauthorized,
	ErrUnauthorized:    http.StatusForbidden,
	ErrConflict:        http.StatusConflict,
	ErrTimeout:         http.StatusGatewayTimeout,
	ErrUpstream:        http.StatusBadGateway,
	ErrPayloadTooLarge: http.StatusRequestEntityTooLarge,
}

// ToHTTPStatus maps an error code to an HTTP status. Unknown codes are 500.
func ToHTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeFromHTTPStatus is the reverse of ToHTTPStatus.
func CodeFromHTTPStatus(status int) string {
	for code, s := range httpStatusByCode {
		if s == status {
			return code
		}
	}
	if status >= 400 && status < 500 {
		return ErrInvalidArgument
	}
	return ErrInternal
}
