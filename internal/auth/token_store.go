package auth

import (
	"context"
	"strconv"
	"time"

	"marketplace/internal/cache"
)

const (
	authTokenKeyPrefix = "auth_token:"
	authTokenCacheTTL  = 30 * time.Minute
)

// TokenStoreInterface defines the token lookup cache operations.
type TokenStoreInterface interface {
	StoreToken(ctx context.Context, token string, userID uint) error
	GetToken(ctx context.Context, token string) (userID uint, ok bool)
	DeleteToken(ctx context.Context, token string) error
}

// TokenStore caches token to user-id lookups in Redis so verification does
// not hit the database on every request. The user table stays authoritative.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreToken caches a token to user-id mapping with TTL.
func (s *TokenStore) StoreToken(ctx context.Context, token string, userID uint) error {
	key := authTokenKeyPrefix + token
	return s.cache.Set(ctx, key, []byte(strconv.FormatUint(uint64(userID), 10)), authTokenCacheTTL)
}

// GetToken resolves a cached token to its user id.
func (s *TokenStore) GetToken(ctx context.Context, token string) (uint, bool) {
	key := authTokenKeyPrefix + token
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// DeleteToken drops a cached mapping, used when a token is regenerated or
// its user is deleted.
func (s *TokenStore) DeleteToken(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, authTokenKeyPrefix+token)
}
