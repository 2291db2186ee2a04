package model

import (
	"context"
	"time"
)

// ResetCodeDuration is the TTL for pending password reset codes.
const ResetCodeDuration = time.Minute * 10

// ResetStore persists pending password reset codes.
type ResetStore interface {
	SetCode(ctx context.Context, email string, code string) error
	GetCode(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email string) error
}
