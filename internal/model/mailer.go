package model

import "context"

// Mailer delivers password reset codes. Delivery mechanics live outside
// the core; the default implementation only logs.
type Mailer interface {
	SendResetCode(ctx context.Context, email string, name string, code string) error
}
