package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the authenticated user may not perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrRateNotFound indicates that no exchange rate is configured for a currency
// pair in either direction. Balance propagation treats this as a configuration
// error and aborts the triggering write.
var ErrRateNotFound = errors.New("exchange rate not configured")

// ErrInsufficientFunds indicates a withdrawal request larger than the wallet balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrGatewayRejected indicates the payment gateway rejected an initiation synchronously.
var ErrGatewayRejected = errors.New("payment gateway rejected request")

// ErrGatewayUnreachable indicates the payment gateway could not be reached or
// timed out during initiation. Settlement is never affected by this error.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// ErrAlreadySettled indicates a settlement attempt against a movement that is
// already in a terminal state. Callers treat it as a no-op, not a failure.
var ErrAlreadySettled = errors.New("movement already settled")

// ErrInvalidTransition indicates an attempted state change out of a terminal movement state.
var ErrInvalidTransition = errors.New("invalid movement state transition")

// OTP verification failures. Verification fails closed: any ambiguity is a
// hard rejection.
var (
	ErrOTPInvalid          = errors.New("otp code invalid")
	ErrOTPExpired          = errors.New("otp code expired")
	ErrOTPUsed             = errors.New("otp code already used")
	ErrOTPMovementMismatch = errors.New("otp code not bound to this movement")
)
