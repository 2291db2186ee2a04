package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pixelcrate/pixelcrate-server/internal/auth"
	"github.com/pixelcrate/pixelcrate-server/internal/model"
	"github.com/pixelcrate/pixelcrate-server/internal/testutil"
	"github.com/pixelcrate/pixelcrate-server/internal/token"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockResetStore mocks the ResetStore interface
type MockResetStore struct {
	mock.Mock
}

func (m *MockResetStore) SetCode(ctx context.Context, email string, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *MockResetStore) GetCode(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockResetStore) Consume(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockMailer mocks the Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResetCode(ctx context.Context, email string, name string, code string) error {
	args := m.Called(ctx, email, name, code)
	return args.Error(0)
}

func newAuthService(userStore *MockUserStore, resetStore *MockResetStore, mailer *MockMailer) *Auth {
	return NewAuth(userStore, resetStore, token.NewJWT("test-secret", time.Hour), mailer, testutil.MakeNoopLogger())
}

func TestAuthService_SignUp(t *testing.T) {
	userStore := &MockUserStore{}
	userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "new@example.com" && u.Name == "New User" && u.PasswordHash != ""
	})).Return(model.User{ID: uuid.New(), Email: "new@example.com", Name: "New User"}, nil).Once()

	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	user, err := svc.SignUp(context.Background(), SignUpParams{
		Name:     " New User ",
		Email:    "New@Example.com",
		Password: "long enough password",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	userStore.AssertExpectations(t)
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params SignUpParams
	}{
		{name: "bad email", params: SignUpParams{Name: "A", Email: "not-an-email", Password: "long enough"}},
		{name: "empty name", params: SignUpParams{Name: "  ", Email: "a@b.com", Password: "long enough"}},
		{name: "short password", params: SignUpParams{Name: "A", Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userStore := &MockUserStore{}
			svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

			_, err := svc.SignUp(context.Background(), tt.params)

			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			userStore.AssertNotCalled(t, "Create")
		})
	}
}

func TestAuthService_SignUp_EmailTaken(t *testing.T) {
	userStore := &MockUserStore{}
	userStore.On("Create", mock.Anything, mock.Anything).
		Return(model.User{}, model.ErrEmailTaken).Once()

	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	_, err := svc.SignUp(context.Background(), SignUpParams{
		Name: "A", Email: "taken@example.com", Password: "long enough",
	})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestAuthService_SignIn(t *testing.T) {
	hash, err := auth.HashPassword("correct password")
	require.NoError(t, err)
	stored := model.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		password string
		getErr   error
		wantErr  error
	}{
		{name: "valid credentials", password: "correct password"},
		{name: "wrong password", password: "wrong password", wantErr: model.ErrInvalidCredentials},
		{name: "unknown email", password: "correct password", getErr: model.ErrNotFound, wantErr: model.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userStore := &MockUserStore{}
			if tt.getErr != nil {
				userStore.On("GetByEmail", mock.Anything, "user@example.com").Return(model.User{}, tt.getErr).Once()
			} else {
				userStore.On("GetByEmail", mock.Anything, "user@example.com").Return(stored, nil).Once()
			}

			svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

			user, sessionToken, err := svc.SignIn(context.Background(), "user@example.com", tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored.ID, user.ID)
			assert.NotEmpty(t, sessionToken)
		})
	}
}

func TestAuthService_ResetFlow(t *testing.T) {
	stored := model.User{ID: uuid.New(), Name: "U", Email: "user@example.com", PasswordHash: "old"}

	userStore := &MockUserStore{}
	resetStore := &MockResetStore{}
	mailer := &MockMailer{}

	var sentCode string
	userStore.On("GetByEmail", mock.Anything, "user@example.com").Return(stored, nil)
	resetStore.On("SetCode", mock.Anything, "user@example.com", mock.MatchedBy(func(code string) bool {
		return len(code) == 6
	})).Run(func(args mock.Arguments) {
		sentCode = args.String(2)
	}).Return(nil).Once()
	mailer.On("SendResetCode", mock.Anything, "user@example.com", "U", mock.Anything).Return(nil).Once()

	svc := newAuthService(userStore, resetStore, mailer)

	require.NoError(t, svc.RequestReset(context.Background(), "user@example.com"))
	require.NotEmpty(t, sentCode)

	resetStore.On("GetCode", mock.Anything, "user@example.com").Return(sentCode, nil)
	resetStore.On("Consume", mock.Anything, "user@example.com").Return(nil).Once()
	userStore.On("UpdatePasswordHash", mock.Anything, stored.ID, mock.MatchedBy(func(h string) bool {
		match, err := auth.VerifyPassword("brand new password", h)
		return err == nil && match
	})).Return(nil).Once()

	require.NoError(t, svc.VerifyReset(context.Background(), "user@example.com", sentCode))
	require.NoError(t, svc.Reset(context.Background(), "user@example.com", sentCode, "brand new password"))

	userStore.AssertExpectations(t)
	resetStore.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestAuthService_Reset_WrongCode(t *testing.T) {
	userStore := &MockUserStore{}
	resetStore := &MockResetStore{}
	resetStore.On("GetCode", mock.Anything, "user@example.com").Return("111111", nil).Once()

	svc := newAuthService(userStore, resetStore, &MockMailer{})

	err := svc.Reset(context.Background(), "user@example.com", "222222", "brand new password")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
	userStore.AssertNotCalled(t, "UpdatePasswordHash")
}

func TestAuthService_Reset_Expired(t *testing.T) {
	resetStore := &MockResetStore{}
	resetStore.On("GetCode", mock.Anything, "user@example.com").Return("", model.ErrNotFound).Once()

	svc := newAuthService(&MockUserStore{}, resetStore, &MockMailer{})

	err := svc.VerifyReset(context.Background(), "user@example.com", "123456")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuthService_RequestReset_UnknownEmail(t *testing.T) {
	userStore := &MockUserStore{}
	userStore.On("GetByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, model.ErrNotFound).Once()

	mailer := &MockMailer{}
	svc := newAuthService(userStore, &MockResetStore{}, mailer)

	err := svc.RequestReset(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)
	mailer.AssertNotCalled(t, "SendResetCode")
}

func TestAuthService_Me(t *testing.T) {
	stored := model.User{ID: uuid.New(), Name: "U", Email: "user@example.com"}

	userStore := &MockUserStore{}
	userStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()

	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	user, err := svc.Me(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, user)
}

func TestAuthService_Me_UnknownUser(t *testing.T) {
	userStore := &MockUserStore{}
	userStore.On("GetByID", mock.Anything, mock.Anything).Return(model.User{}, model.ErrNotFound).Once()

	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	_, err := svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	hash, err := auth.HashPassword("current password")
	require.NoError(t, err)
	stored := model.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}

	userStore := &MockUserStore{}
	userStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()
	userStore.On("UpdatePasswordHash", mock.Anything, stored.ID, mock.MatchedBy(func(h string) bool {
		match, err := auth.VerifyPassword("brand new password", h)
		return err == nil && match
	})).Return(nil).Once()

	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	require.NoError(t, svc.UpdatePassword(context.Background(), stored.ID, "current password", "brand new password"))
	userStore.AssertExpectations(t)
}

func TestAuthService_UpdatePassword_WrongCurrent(t *testing.T) {
	hash, err := auth.HashPassword("current password")
	require.NoError(t, err)
	stored := model.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash}

	userStore := &MockUserStore{}
	userStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()

	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	err = svc.UpdatePassword(context.Background(), stored.ID, "not the password", "brand new password")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	userStore.AssertNotCalled(t, "UpdatePasswordHash")
}

func TestAuthService_UpdatePassword_ShortNew(t *testing.T) {
	userStore := &MockUserStore{}
	svc := newAuthService(userStore, &MockResetStore{}, &MockMailer{})

	err := svc.UpdatePassword(context.Background(), uuid.New(), "current password", "short")

	var validationErr *model.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	userStore.AssertNotCalled(t, "GetByID")
	userStore.AssertNotCalled(t, "UpdatePasswordHash")
}
