package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidToken = 2000
	ErrAuthTokenExpired = 2001
	ErrAuthNotSuperuser = 2002

	// Relocation errors (6000-6999)
	ErrRelocationInvalidRequest   = 6000
	ErrRelocationOwnerNotFound    = 6001
	ErrRelocationDuplicate        = 6002
	ErrRelocationCapacityExceeded = 6003
	ErrRelocationStorageFailed    = 6004
	ErrRelocationPersistence      = 6005
	ErrRelocationNotFound         = 6006
	ErrRelocationDisabled         = 6007
	ErrRelocationUploadTimeout    = 6008
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthInvalidToken: {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired: {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},
	ErrAuthNotSuperuser: {ErrAuthNotSuperuser, http.StatusForbidden, "Superuser privilege required"},

	// Relocation errors
	ErrRelocationInvalidRequest:   {ErrRelocationInvalidRequest, http.StatusBadRequest, "Invalid relocation request"},
	ErrRelocationOwnerNotFound:    {ErrRelocationOwnerNotFound, http.StatusBadRequest, "Relocation owner not found"},
	ErrRelocationDuplicate:        {ErrRelocationDuplicate, http.StatusConflict, "An in-progress relocation already exists for this owner"},
	ErrRelocationCapacityExceeded: {ErrRelocationCapacityExceeded, http.StatusRequestEntityTooLarge, "Upload exceeds the maximum relocation file size"},
	ErrRelocationStorageFailed:    {ErrRelocationStorageFailed, http.StatusInternalServerError, "Blob storage operation failed"},
	ErrRelocationPersistence:      {ErrRelocationPersistence, http.StatusInternalServerError, "Failed to persist relocation records"},
	ErrRelocationNotFound:         {ErrRelocationNotFound, http.StatusNotFound, "Relocation not found"},
	ErrRelocationDisabled:         {ErrRelocationDisabled, http.StatusForbidden, "This feature is not yet enabled"},
	ErrRelocationUploadTimeout:    {ErrRelocationUploadTimeout, http.StatusRequestTimeout, "Upload timed out"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
