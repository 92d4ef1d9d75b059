package wallet

import "errors"

// Service errors
var (
	ErrWalletNotFound               = errors.New("wallet not found")
	ErrInvalidAmount                = errors.New("invalid amount")
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")
	ErrRequestNotFound              = errors.New("request not found")
	ErrRequestDecided               = errors.New("request already decided")
)
