package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"marketplace/internal/auth"
	"marketplace/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	tokens *auth.TokenService,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", APIVersion())
	authed := BearerAuth(tokens)

	// Public routes
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/:id", productHandler.GetProduct)
	api.GET("/users/:id", userHandler.GetUser)
	api.POST("/users", userHandler.CreateUser)

	// Self-scoped user routes
	api.PUT("/users/:id", userHandler.UpdateUser, authed)
	api.PATCH("/users/:id", userHandler.UpdateUser, authed)
	api.DELETE("/users/:id", userHandler.DeleteUser, authed)

	// Owner-scoped product routes
	api.POST("/users/:user_id/products", productHandler.CreateProduct, authed)
	api.PUT("/users/:user_id/products/:id", productHandler.UpdateProduct, authed)
	api.PATCH("/users/:user_id/products/:id", productHandler.UpdateProduct, authed)
	api.DELETE("/users/:user_id/products/:id", productHandler.DeleteProduct, authed)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
