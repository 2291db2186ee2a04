// Package mailer provides Mailer implementations.
package mailer

import (
	"context"

	"github.com/pixelcrate/pixelcrate-server/internal/logger"
	"github.com/pixelcrate/pixelcrate-server/internal/model"
)

var _ model.Mailer = (*Log)(nil)

// Log is a Mailer that only logs the reset code. It stands in for a real
// delivery backend in development and tests.
type Log struct {
	logger *logger.Logger
}

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (m *Log) SendResetCode(_ context.Context, email string, name string, code string) error {
	m.logger.Info("password reset code issued", "email", email, "name", name, "code", code)
	return nil
}
