package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
)

// CurrentUserKey is the echo context key under which the bearer-auth
// middleware stores the authenticated user.
const CurrentUserKey = "current_user"

// CurrentUser returns the authenticated user placed in context by the
// bearer-auth middleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(CurrentUserKey).(*model.User)
	return user, ok
}

// UserPublic is the owner representation embedded in product responses.
type UserPublic struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// UserResponse is the full user representation. The auth token is only
// included when the response goes to the token's owner.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	AuthToken string    `json:"auth_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *model.User, includeToken bool) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if includeToken && u.AuthToken != nil {
		resp.AuthToken = *u.AuthToken
	}
	return resp
}

// ProductResponse is a product with its owner embedded.
type ProductResponse struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	UserID    uint            `json:"user_id"`
	User      UserPublic      `json:"user"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Title:     p.Title,
		Price:     p.Price,
		UserID:    p.UserID,
		User:      UserPublic{ID: p.User.ID, Email: p.User.Email},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func respondError(c echo.Context, err error) error {
	status, body := apperrors.ToHTTP(err)
	return c.JSON(status, body)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrNotFound
	}
	return uint(id), nil
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, apperrors.Base(message))
}
