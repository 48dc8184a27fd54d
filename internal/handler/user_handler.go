package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/service"
)

// UserHandler bundles the user HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UserAttrs is the attribute payload nested under the "user" key.
type UserAttrs struct {
	Email                *string `json:"email"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// UserRequest is the request envelope for user writes.
type UserRequest struct {
	User UserAttrs `json:"user"`
}

func (r UserRequest) params() service.UserParams {
	return service.UserParams{
		Email:                r.User.Email,
		Password:             r.User.Password,
		PasswordConfirmation: r.User.PasswordConfirmation,
	}
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} handler.UserResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user, false))
}

// CreateUser godoc
// @Summary Sign up
// @Description Creates a user and returns it with its first auth token.
// @Tags users
// @Accept json
// @Produce json
// @Param user body handler.UserRequest true "User payload"
// @Success 201 {object} handler.UserResponse
// @Failure 422 {object} errors.ErrorsResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.svc.CreateUser(c.Request().Context(), req.params())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newUserResponse(user, true))
}

// UpdateUser godoc
// @Summary Update own account
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body handler.UserRequest true "User payload"
// @Success 200 {object} handler.UserResponse
// @Failure 401 {object} errors.ErrorsResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Failure 422 {object} errors.ErrorsResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	current, ok := CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrAuthentication)
	}
	// a foreign id gets the same response as a missing record
	if current.ID != id {
		return respondError(c, apperrors.ErrNotFound)
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), id, req.params())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user, true))
}

// DeleteUser godoc
// @Summary Delete own account
// @Description Deletes the user and every product it owns.
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 401 {object} errors.ErrorsResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	current, ok := CurrentUser(c)
	if !ok {
		return respondError(c, apperrors.ErrAuthentication)
	}
	if current.ID != id {
		return respondError(c, apperrors.ErrNotFound)
	}

	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
