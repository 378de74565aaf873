package domain

import "errors"

// Failure taxonomy shared by exchange adapters, the price oracle and the
// store. Callers select handling policy with errors.Is.
var (
	// ErrNetwork marks a transport-level failure talking to an exchange.
	ErrNetwork = errors.New("exchange unreachable")
	// ErrRateLimited marks an exchange request rejected for throttling.
	ErrRateLimited = errors.New("exchange rate limit exceeded")
	// ErrAuth marks a rejected credential. Never retried within a cycle.
	ErrAuth = errors.New("exchange authentication failed")
	// ErrPriceUnavailable marks an asset with no resolvable USDT conversion path.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrDuplicateSnapshot marks a commit for an (account, captured_at) key
	// that is already stored.
	ErrDuplicateSnapshot = errors.New("snapshot already stored for this account and timestamp")
)

// Transient reports whether an exchange failure is worth retrying within the
// same cycle.
func Transient(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimited)
}
