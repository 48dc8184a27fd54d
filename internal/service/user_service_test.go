package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/auth"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/validation"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByAuthToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeTokenStore is an in-memory auth.TokenStoreInterface.
type fakeTokenStore struct {
	tokens map[string]uint
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]uint{}}
}

func (s *fakeTokenStore) StoreToken(_ context.Context, token string, userID uint) error {
	s.tokens[token] = userID
	return nil
}

func (s *fakeTokenStore) GetToken(_ context.Context, token string) (uint, bool) {
	id, ok := s.tokens[token]
	return id, ok
}

func (s *fakeTokenStore) DeleteToken(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

func strPtr(s string) *string { return &s }

func newUserService(repo *MockUserRepository) UserService {
	tokens := auth.NewTokenService(repo, newFakeTokenStore())
	return NewUserService(repo, tokens, nil, bcrypt.MinCost)
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	return vErr.Fields
}

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name      string
		params    UserParams
		setupMock func(*MockUserRepository)
		wantField string
		wantMsg   string
	}{
		{
			name: "valid attributes",
			params: UserParams{
				Email:                strPtr("New@Example.com"),
				Password:             strPtr("12345678"),
				PasswordConfirmation: strPtr("12345678"),
			},
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "new@example.com", uint(0)).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = 1
				}).Return(nil)
				// token generation path
				m.On("FindByAuthToken", mock.Anything, mock.AnythingOfType("string")).Return(nil, gorm.ErrRecordNotFound)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name: "missing email",
			params: UserParams{
				Password:             strPtr("12345678"),
				PasswordConfirmation: strPtr("12345678"),
			},
			setupMock: func(m *MockUserRepository) {},
			wantField: "email",
			wantMsg:   validation.MsgBlank,
		},
		{
			name: "email taken",
			params: UserParams{
				Email:    strPtr("taken@example.com"),
				Password: strPtr("12345678"),
			},
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "taken@example.com", uint(0)).Return(true, nil)
			},
			wantField: "email",
			wantMsg:   validation.MsgTaken,
		},
		{
			name: "unique index wins a lost race",
			params: UserParams{
				Email:    strPtr("raced@example.com"),
				Password: strPtr("12345678"),
			},
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "raced@example.com", uint(0)).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			wantField: "email",
			wantMsg:   validation.MsgTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newUserService(mockRepo)
			user, err := svc.CreateUser(context.Background(), tt.params)

			if tt.wantField != "" {
				require.Error(t, err)
				assert.Contains(t, fieldErrors(t, err)[tt.wantField], tt.wantMsg)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "new@example.com", user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				require.NotNil(t, user.AuthToken, "signup must hand out a token")
				assert.NotEmpty(t, *user.AuthToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateUserTokenFailure(t *testing.T) {
	// When the token cannot be persisted after the insert, signup must not
	// leave a credential-less account squatting on the email.
	mockRepo := new(MockUserRepository)
	mockRepo.On("EmailTaken", mock.Anything, "new@example.com", uint(0)).Return(false, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 7
	}).Return(nil)
	mockRepo.On("FindByAuthToken", mock.Anything, mock.AnythingOfType("string")).Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(assert.AnError)
	mockRepo.On("Delete", mock.Anything, uint(7)).Return(nil)

	svc := newUserService(mockRepo)
	user, err := svc.CreateUser(context.Background(), UserParams{
		Email:                strPtr("new@example.com"),
		Password:             strPtr("12345678"),
		PasswordConfirmation: strPtr("12345678"),
	})

	require.Error(t, err)
	assert.Nil(t, user)
	mockRepo.AssertCalled(t, "Delete", mock.Anything, uint(7))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "test@example.com"}, nil)
	mockRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	svc := newUserService(mockRepo)

	user, err := svc.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	_, err = svc.GetUser(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Run("changes email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "old@example.com"}, nil)
		mockRepo.On("EmailTaken", mock.Anything, "newmail@example.com", uint(1)).Return(false, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := newUserService(mockRepo)
		user, err := svc.UpdateUser(context.Background(), 1, UserParams{Email: strPtr("newmail@example.com")})

		require.NoError(t, err)
		assert.Equal(t, "newmail@example.com", user.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "old@example.com"}, nil)

		svc := newUserService(mockRepo)
		_, err := svc.UpdateUser(context.Background(), 1, UserParams{Email: strPtr("bademail.com")})

		require.Error(t, err)
		assert.Contains(t, fieldErrors(t, err)["email"], validation.MsgInvalid)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

		svc := newUserService(mockRepo)
		_, err := svc.UpdateUser(context.Background(), 42, UserParams{Email: strPtr("a@b.com")})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("removes user and revokes token", func(t *testing.T) {
		token := "sometoken"
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, AuthToken: &token}, nil)
		mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil)

		store := newFakeTokenStore()
		require.NoError(t, store.StoreToken(context.Background(), token, 1))
		tokens := auth.NewTokenService(mockRepo, store)
		svc := NewUserService(mockRepo, tokens, nil, bcrypt.MinCost)

		require.NoError(t, svc.DeleteUser(context.Background(), 1))

		_, ok := store.GetToken(context.Background(), token)
		assert.False(t, ok, "cached token must be revoked")
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

		svc := newUserService(mockRepo)
		assert.ErrorIs(t, svc.DeleteUser(context.Background(), 42), apperrors.ErrNotFound)
	})
}
