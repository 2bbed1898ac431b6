package ports

import "errors"

// Standard application-level errors.
// Adapters and the engine wrap their failures with these so callers can use errors.Is.
var (
	// General Errors
	ErrUnknown         = errors.New("unknown error occurred")
	ErrInvalidRequest  = errors.New("invalid request parameters or format")
	ErrNotFound        = errors.New("resource not found")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")
	ErrInvalidConfig   = errors.New("invalid or missing configuration")

	// Input Errors
	ErrInvalidBars      = errors.New("invalid bar stream")
	ErrNonMonotonicBars = errors.New("bar timestamps are not strictly increasing")
	ErrMalformedBar     = errors.New("bar has missing or non-finite prices")

	// Market Data Errors
	ErrExchangeUnavailable  = errors.New("market data API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the market data API")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("market data authentication failed (check API keys)")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
)
