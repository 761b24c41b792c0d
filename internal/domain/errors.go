package domain

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrForbidden        = errors.New("access denied")
)

// BusinessError is a rule violation whose message is safe to show to shoppers
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError creates a business rule violation
func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

// UserMessage extracts a shopper-facing message from err, or returns fallback
func UserMessage(err error, fallback string) string {
	var be *BusinessError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}
