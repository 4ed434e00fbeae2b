package types

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

var (
	// Configuration errors
	ErrInvalidProviderID        = errors.New("invalid provider ID")
	ErrInvalidProviderName      = errors.New("invalid provider name")
	ErrInvalidAPIHost           = errors.New("invalid API host")
	ErrMissingAPIKey            = errors.New("missing API key")
	ErrMissingBasicAuthPassword = errors.New("missing basic auth password")

	// Request errors
	ErrEmptyQuery   = errors.New("empty search query")
	ErrQueryTooLong = errors.New("query too long")

	// Provider errors
	ErrProviderNotFound     = errors.New("provider not found")
	ErrProviderRateLimited  = errors.New("provider rate limited")
	ErrProviderUnauthorized = errors.New("provider unauthorized")

	// Response errors
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// ErrorKind tells the adapter how to recover from a provider failure.
type ErrorKind int

const (
	// KindFatal failures propagate to the caller.
	KindFatal ErrorKind = iota
	// KindUnsupportedParams means the provider rejected the tuning
	// parameters; the search is retried once with query and count only.
	KindUnsupportedParams
	// KindFormatDefect means the provider produced output it could not
	// decode for a benign reason. Treated as zero results.
	KindFormatDefect
	// KindNetwork covers connection, DNS and timeout failures. Treated as
	// zero results.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedParams:
		return "unsupported_params"
	case KindFormatDefect:
		return "format_defect"
	case KindNetwork:
		return "network"
	default:
		return "fatal"
	}
}

// ProviderError wraps provider-specific errors
type ProviderError struct {
	Provider ProviderID
	Kind     ErrorKind
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

var networkHints = []string{"dns", "connection", "timeout", "refused", "unreachable"}

// Classify maps an error returned by a provider onto an ErrorKind. An explicit
// ProviderError kind wins; otherwise the error chain is inspected for network
// failures before falling back to the message text.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindFatal
	}

	var pe *ProviderError
	if errors.As(err, &pe) && pe.Kind != KindFatal {
		return pe.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindNetwork
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range networkHints {
		if strings.Contains(msg, hint) {
			return KindNetwork
		}
	}
	return KindFatal
}
