package errors

import (
	"fmt"
	"net/http"
)

// Code binds a business error code to its HTTP status, message and the
// JSON-RPC code used when the error surfaces through the MCP dispatcher.
type Code struct {
	Code    int
	Status  int
	RPCCode int
	Message string
}

const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Search errors (6000-6999)
	ErrSearchQueryRequired = 6000
	ErrSearchQueryTooLong  = 6001
	ErrSearchFailed        = 6002
	ErrSearchUnknownTool   = 6003
	ErrSearchCacheFailed   = 6004
)

// JSON-RPC 2.0 error codes.
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, 0, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, RPCInternalError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, RPCInvalidParams, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, RPCMethodNotFound, "Resource not found"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, RPCInternalError, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, RPCInvalidRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, RPCInternalError, "Service unavailable"},

	ErrSearchQueryRequired: {ErrSearchQueryRequired, http.StatusBadRequest, RPCInvalidParams, "Query parameter is required"},
	ErrSearchQueryTooLong:  {ErrSearchQueryTooLong, http.StatusBadRequest, RPCInvalidParams, "Query is too long"},
	ErrSearchFailed:        {ErrSearchFailed, http.StatusServiceUnavailable, RPCInternalError, "Search failed"},
	ErrSearchUnknownTool:   {ErrSearchUnknownTool, http.StatusNotFound, RPCMethodNotFound, "Unknown tool"},
	ErrSearchCacheFailed:   {ErrSearchCacheFailed, http.StatusInternalServerError, RPCInternalError, "Cache operation failed"},
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

// GetRPCCode returns the JSON-RPC code for a given error code
func GetRPCCode(code int) int {
	return GetCode(code).RPCCode
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

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
