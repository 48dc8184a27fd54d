package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/auth"
	"marketplace/internal/cache"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
	"marketplace/internal/validation"
)

const userCacheTTL = 5 * time.Minute

// UserParams carries the attributes of a signup or a partial update. Nil
// means the field was not supplied.
type UserParams struct {
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

// UserService exposes user lifecycle operations.
type UserService interface {
	CreateUser(ctx context.Context, params UserParams) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, params UserParams) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo       repository.UserRepository
	tokens     *auth.TokenService
	cache      *cache.Client
	bcryptCost int
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, tokens *auth.TokenService, cache *cache.Client, bcryptCost int) UserService {
	return &userService{repo: repo, tokens: tokens, cache: cache, bcryptCost: bcryptCost}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// CreateUser validates, persists and hands the new user its first auth token.
func (s *userService) CreateUser(ctx context.Context, params UserParams) (*model.User, error) {
	candidate := validation.UserCandidate{
		Email:                normalizeEmail(params.Email),
		Password:             params.Password,
		PasswordConfirmation: params.PasswordConfirmation,
		NewRecord:            true,
	}
	errs, err := validation.User(ctx, s.repo, candidate)
	if err != nil {
		return nil, fmt.Errorf("validate user: %w", err)
	}
	if !errs.Valid() {
		return nil, apperrors.NewValidationError(errs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        candidate.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// the unique index wins the race an application-level check can lose
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError(validation.Errors{"email": {validation.MsgTaken}})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.tokens.Generate(ctx, user); err != nil {
		// remove the row again or the email stays burned for an account
		// whose credential was never delivered
		_ = s.repo.Delete(ctx, user.ID)
		return nil, fmt.Errorf("generate auth token: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// UpdateUser applies the supplied attributes over the stored record and
// revalidates the whole thing.
func (s *userService) UpdateUser(ctx context.Context, id uint, params UserParams) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if params.Email != nil {
		user.Email = normalizeEmail(params.Email)
	}

	candidate := validation.UserCandidate{
		ID:                   user.ID,
		Email:                user.Email,
		Password:             params.Password,
		PasswordConfirmation: params.PasswordConfirmation,
	}
	errs, err := validation.User(ctx, s.repo, candidate)
	if err != nil {
		return nil, fmt.Errorf("validate user: %w", err)
	}
	if !errs.Valid() {
		return nil, apperrors.NewValidationError(errs)
	}

	if params.Password != nil && *params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError(validation.Errors{"email": {validation.MsgTaken}})
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// DeleteUser removes the user and cascades to its products.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if user.AuthToken != nil {
		s.tokens.Invalidate(ctx, *user.AuthToken)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	_ = s.cache.Delete(ctx, productsCacheKey)
	return nil
}

func normalizeEmail(email *string) string {
	if email == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*email))
}
