package service

import "errors"

// Domain errors surfaced to the API layer. Handlers map these to HTTP
// statuses with errors.Is instead of collapsing everything into a 500.
var (
	ErrUnauthorized         = errors.New("not authorized to perform this action")
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrProfileIncomplete    = errors.New("profile is missing delivery details")
	ErrPaymentInProgress    = errors.New("payment already in progress for this cart entry")
	ErrAlreadyExists        = errors.New("already exists")
)
