package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/service"
	"marketplace/internal/validation"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, params service.UserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uint, params service.UserParams) (*model.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errorMessages(t *testing.T, rec *httptest.ResponseRecorder, field string) []interface{} {
	t.Helper()
	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok, "response must carry an errors object, got %s", rec.Body.String())
	msgs, _ := errs[field].([]interface{})
	return msgs
}

func TestUserHandler_GetUser(t *testing.T) {
	t.Run("returns the user", func(t *testing.T) {
		token := "secrettoken"
		svc := new(MockUserService)
		svc.On("GetUser", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "test@example.com", AuthToken: &token}, nil)

		c, rec := newTestContext(http.MethodGet, "/api/users/1", "")
		c.SetParamNames("id")
		c.SetParamValues("1")

		require.NoError(t, NewUserHandler(svc).GetUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "test@example.com", body["email"])
		assert.NotContains(t, body, "auth_token", "public lookups must not leak the token")
		assert.NotContains(t, body, "password")
	})

	t.Run("missing user", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetUser", mock.Anything, uint(99)).Return(nil, apperrors.ErrNotFound)

		c, rec := newTestContext(http.MethodGet, "/api/users/99", "")
		c.SetParamNames("id")
		c.SetParamValues("99")

		require.NoError(t, NewUserHandler(svc).GetUser(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserHandler_CreateUser(t *testing.T) {
	t.Run("signs up", func(t *testing.T) {
		token := "firsttoken"
		svc := new(MockUserService)
		svc.On("CreateUser", mock.Anything, mock.AnythingOfType("service.UserParams")).
			Return(&model.User{ID: 1, Email: "new@example.com", AuthToken: &token}, nil)

		c, rec := newTestContext(http.MethodPost, "/api/users",
			`{"user":{"email":"new@example.com","password":"12345678","password_confirmation":"12345678"}}`)

		require.NoError(t, NewUserHandler(svc).CreateUser(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "new@example.com", body["email"])
		assert.Equal(t, "firsttoken", body["auth_token"])
		assert.NotContains(t, body, "password")
	})

	t.Run("missing email", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("CreateUser", mock.Anything, mock.AnythingOfType("service.UserParams")).
			Return(nil, apperrors.NewValidationError(validation.Errors{"email": {validation.MsgBlank}}))

		c, rec := newTestContext(http.MethodPost, "/api/users",
			`{"user":{"password":"12345678","password_confirmation":"12345678"}}`)

		require.NoError(t, NewUserHandler(svc).CreateUser(c))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, errorMessages(t, rec, "email"), validation.MsgBlank)
	})
}

func TestUserHandler_UpdateUser(t *testing.T) {
	t.Run("updates own account", func(t *testing.T) {
		token := "secrettoken"
		current := &model.User{ID: 1, Email: "old@example.com", AuthToken: &token}
		svc := new(MockUserService)
		svc.On("UpdateUser", mock.Anything, uint(1), mock.AnythingOfType("service.UserParams")).
			Return(&model.User{ID: 1, Email: "newmail@example.com", AuthToken: &token}, nil)

		c, rec := newTestContext(http.MethodPut, "/api/users/1", `{"user":{"email":"newmail@example.com"}}`)
		c.SetParamNames("id")
		c.SetParamValues("1")
		c.Set(CurrentUserKey, current)

		require.NoError(t, NewUserHandler(svc).UpdateUser(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "newmail@example.com", decodeBody(t, rec)["email"])
	})

	t.Run("malformed email", func(t *testing.T) {
		current := &model.User{ID: 1}
		svc := new(MockUserService)
		svc.On("UpdateUser", mock.Anything, uint(1), mock.AnythingOfType("service.UserParams")).
			Return(nil, apperrors.NewValidationError(validation.Errors{"email": {validation.MsgInvalid}}))

		c, rec := newTestContext(http.MethodPut, "/api/users/1", `{"user":{"email":"bademail.com"}}`)
		c.SetParamNames("id")
		c.SetParamValues("1")
		c.Set(CurrentUserKey, current)

		require.NoError(t, NewUserHandler(svc).UpdateUser(c))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, errorMessages(t, rec, "email"), validation.MsgInvalid)
	})

	t.Run("foreign account reads as missing", func(t *testing.T) {
		svc := new(MockUserService)

		c, rec := newTestContext(http.MethodPut, "/api/users/2", `{"user":{"email":"x@example.com"}}`)
		c.SetParamNames("id")
		c.SetParamValues("2")
		c.Set(CurrentUserKey, &model.User{ID: 1})

		require.NoError(t, NewUserHandler(svc).UpdateUser(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertNotCalled(t, "UpdateUser")
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Run("deletes own account", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("DeleteUser", mock.Anything, uint(1)).Return(nil)

		c, rec := newTestContext(http.MethodDelete, "/api/users/1", "")
		c.SetParamNames("id")
		c.SetParamValues("1")
		c.Set(CurrentUserKey, &model.User{ID: 1})

		require.NoError(t, NewUserHandler(svc).DeleteUser(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("foreign account reads as missing", func(t *testing.T) {
		svc := new(MockUserService)

		c, rec := newTestContext(http.MethodDelete, "/api/users/2", "")
		c.SetParamNames("id")
		c.SetParamValues("2")
		c.Set(CurrentUserKey, &model.User{ID: 1})

		require.NoError(t, NewUserHandler(svc).DeleteUser(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertNotCalled(t, "DeleteUser")
	})
}
