package deposit

import "errors"

var (
	ErrNotRegistered        = errors.New("deposit: account not registered")
	ErrTokenNotWhitelisted  = errors.New("deposit: token not whitelisted")
	ErrInsufficientStorage  = errors.New("deposit: insufficient storage deposit")
	ErrInsufficientBalance  = errors.New("deposit: insufficient token balance")
	ErrUnknownToken         = errors.New("deposit: token not registered for account")
	ErrNonZeroUnregister    = errors.New("deposit: cannot unregister token with non-zero balance")
	ErrConfirmationRequired = errors.New("deposit: exactly one attached unit required")
	ErrInvalidAmount        = errors.New("deposit: amount must not be negative")
)
