package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/pixelcrate/pixelcrate-server/internal/auth"
	"github.com/pixelcrate/pixelcrate-server/internal/logger"
	"github.com/pixelcrate/pixelcrate-server/internal/model"
)

const minPasswordLength = 8

// Auth implements registration, sign-in and the password reset flow.
type Auth struct {
	userStore    model.UserStore
	resetStore   model.ResetStore
	tokenManager model.TokenManager
	mailer       model.Mailer
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	resetStore model.ResetStore,
	tokenManager model.TokenManager,
	mailer model.Mailer,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		resetStore:   resetStore,
		tokenManager: tokenManager,
		mailer:       mailer,
		logger:       logger,
	}
}

// SignUpParams contains parameters to register a new account.
type SignUpParams struct {
	Name     string
	Email    string
	Password string
}

// SignUp registers a new account and returns the stored user.
func (a *Auth) SignUp(ctx context.Context, params SignUpParams) (model.User, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return model.User{}, model.NewValidationError("name is required")
	}
	if len(params.Password) < minPasswordLength {
		return model.User{}, model.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("user registered", "user_id", user.ID)

	return user, nil
}

// SignIn verifies credentials and returns the user with a session token.
func (a *Auth) SignIn(ctx context.Context, email, password string) (model.User, string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, "", err
	}

	user, err := a.userStore.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, "", model.ErrInvalidCredentials
		}
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return model.User{}, "", model.ErrInvalidCredentials
	}

	sessionToken, err := a.tokenManager.Generate(user.ID)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	return user, sessionToken, nil
}

// Me returns the account for the authenticated user ID.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// UpdatePassword changes the authenticated user's password after verifying
// the current one.
func (a *Auth) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return model.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	match, err := auth.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return model.ErrInvalidCredentials
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("password updated", "user_id", user.ID)

	return nil
}

// RequestReset generates a one-time reset code for the account with the
// given email and hands it to the mailer. The code expires after
// model.ResetCodeDuration.
func (a *Auth) RequestReset(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := a.userStore.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	if err := a.resetStore.SetCode(ctx, normalized, code); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := a.mailer.SendResetCode(ctx, normalized, user.Name, code); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}

	return nil
}

// VerifyReset checks a pending reset code without consuming it.
func (a *Auth) VerifyReset(ctx context.Context, email, code string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	stored, err := a.resetStore.GetCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidCredentials
		}
		return fmt.Errorf("failed to get reset code: %w", err)
	}
	if stored != code {
		return model.ErrInvalidCredentials
	}

	return nil
}

// Reset consumes a valid reset code and sets a new password.
func (a *Auth) Reset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return model.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	if err := a.VerifyReset(ctx, email, code); err != nil {
		return err
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := a.userStore.GetByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.resetStore.Consume(ctx, normalized); err != nil {
		a.logger.Error("failed to consume reset code", "error", err)
	}

	a.logger.Info("password reset", "user_id", user.ID)

	return nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", model.NewValidationError("invalid email address")
	}
	return trimmed, nil
}

// generateResetCode returns a random 6-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
