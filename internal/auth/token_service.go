package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
)

const (
	// tokenBytes of entropy per token; 27 URL-safe characters encoded.
	tokenBytes = 20
	// maxGenerateAttempts bounds the collision retry loop. With 160 bits of
	// entropy a collision is a retry condition, never a practical failure.
	maxGenerateAttempts = 10
)

// UserStore is the slice of the user repository the token service needs.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByAuthToken(ctx context.Context, token string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// TokenService issues and verifies the opaque bearer tokens users
// authenticate with.
type TokenService struct {
	store  UserStore
	tokens TokenStoreInterface
}

// NewTokenService creates a token service over the user store and the Redis
// lookup cache.
func NewTokenService(store UserStore, tokens TokenStoreInterface) *TokenService {
	return &TokenService{store: store, tokens: tokens}
}

// Generate assigns a fresh unique token to the user and persists it. A value
// colliding with another user's token is regenerated, not reported.
func (s *TokenService) Generate(ctx context.Context, user *model.User) (string, error) {
	old := user.AuthToken

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		token, err := newToken()
		if err != nil {
			return "", err
		}

		_, err = s.store.FindByAuthToken(ctx, token)
		if err == nil {
			// taken, try again
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("check token uniqueness: %w", err)
		}

		user.AuthToken = &token
		if err := s.store.Update(ctx, user); err != nil {
			user.AuthToken = old
			return "", fmt.Errorf("persist token: %w", err)
		}
		if old != nil {
			_ = s.tokens.DeleteToken(ctx, *old)
		}
		return token, nil
	}

	return "", errors.New("token generation attempts exhausted")
}

// Verify resolves a bearer token to its user. A miss is an authentication
// failure, never an internal error.
func (s *TokenService) Verify(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperrors.ErrAuthentication
	}

	if id, ok := s.tokens.GetToken(ctx, token); ok {
		user, err := s.store.FindByID(ctx, id)
		if err == nil && user.AuthToken != nil && *user.AuthToken == token {
			return user, nil
		}
		// stale cache entry
		_ = s.tokens.DeleteToken(ctx, token)
	}

	user, err := s.store.FindByAuthToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAuthentication
		}
		return nil, fmt.Errorf("look up token: %w", err)
	}

	_ = s.tokens.StoreToken(ctx, token, user.ID)
	return user, nil
}

// Invalidate drops a token from the lookup cache.
func (s *TokenService) Invalidate(ctx context.Context, token string) {
	_ = s.tokens.DeleteToken(ctx, token)
}

// newToken is a package var so tests can pin its output.
var newToken = func() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
