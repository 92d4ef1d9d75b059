package transaction

import "errors"

var (
	// ErrAlreadyDecided means the request had already left PENDING when
	// the decision arrived. Callers whose intent matches the stored
	// decision should treat this as a no-op success.
	ErrAlreadyDecided = errors.New("request already decided")

	// ErrConflict is returned once the bounded retry budget for version
	// conflicts is exhausted. The request is still PENDING and the
	// decision can be retried.
	ErrConflict = errors.New("concurrent update conflict, retry")

	ErrRequestNotFound              = errors.New("request not found")
	ErrInvalidDecision              = errors.New("invalid decision")
	ErrInvalidAmount                = errors.New("invalid amount")
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")
)
