package services

import "errors"

// Business-rule failures. Handlers answer these with 400, except
// ErrAccessDenied which is 403.
var (
	ErrAdminNotFound      = errors.New("admin not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSenderNotFound     = errors.New("sender not found")
	ErrReceiverNotFound   = errors.New("receiver not found")
	ErrSameUser           = errors.New("sender and receiver must not be the same user")
	ErrInsufficientAmount = errors.New("insufficient amount")
	ErrAccessDenied       = errors.New("access denied")
	ErrAlreadyActivated   = errors.New("admin is already activated")
	ErrAlreadyDeactivated = errors.New("admin is already deactivated")
	ErrUserAlreadyCreated = errors.New("user is already created")
	ErrInvalidRole        = errors.New("invalid admin role")
	ErrAmountOutOfRange   = errors.New("amount is out of range")
)

// Store-level failures. These wrap the underlying cause and are never shown
// to the caller.
var (
	ErrAdminCreation = errors.New("admin creation failed")
	ErrWithdraw      = errors.New("withdraw failed")
	ErrDeposit       = errors.New("deposit failed")
	ErrStoreFailure  = errors.New("store failure")
)

// IsBusinessError reports whether err is a rule violation rather than an
// infrastructure failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrAdminNotFound, ErrUserNotFound, ErrSenderNotFound, ErrReceiverNotFound,
		ErrSameUser, ErrInsufficientAmount, ErrAccessDenied, ErrAlreadyActivated,
		ErrAlreadyDeactivated, ErrUserAlreadyCreated, ErrInvalidRole, ErrAmountOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
