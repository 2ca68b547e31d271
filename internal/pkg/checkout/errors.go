package checkout

import "fmt"

// NotFoundError marks a missing payment or profile. The flow aborts
// before any gateway call is made.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// AccessDeniedError marks an ownership mismatch between the caller and
// the payment record.
type AccessDeniedError struct {
	UserID    uint
	PaymentID string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("user %d does not own payment %s", e.UserID, e.PaymentID)
}

// ValidationError marks malformed customer data, currently only the CPF.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
