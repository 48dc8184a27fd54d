package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/service"
	"marketplace/internal/validation"
)

// ProductHandler bundles the product HTTP handlers.
type ProductHandler struct {
	svc service.ProductService
}

// NewProductHandler creates a handler layer.
func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ProductAttrs is the attribute payload nested under the "product" key.
// Price accepts either a JSON number or a string; non-numeric strings are
// rejected by validation, not by binding.
type ProductAttrs struct {
	Title *string           `json:"title"`
	Price *validation.Price `json:"price"`
}

// ProductRequest is the request envelope for product writes.
type ProductRequest struct {
	Product ProductAttrs `json:"product"`
}

func (r ProductRequest) params() service.ProductParams {
	return service.ProductParams{
		Title: r.Product.Title,
		Price: r.Product.Price,
	}
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} handler.ProductResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newProductResponse(product))
}

// ListProducts godoc
// @Summary List products
// @Description Lists all products, or only those matching product_ids.
// @Tags products
// @Produce json
// @Param product_ids query string false "Comma-separated product ids"
// @Success 200 {array} handler.ProductResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	ids := queryIDs(c, "product_ids")
	products, err := h.svc.ListProducts(c.Request().Context(), ids)
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateProduct godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param user_id path int true "Owner ID"
// @Param product body handler.ProductRequest true "Product payload"
// @Success 201 {object} handler.ProductResponse
// @Failure 401 {object} errors.ErrorsResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Failure 422 {object} errors.ErrorsResponse
// @Security BearerAuth
// @Router /users/{user_id}/products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	owner, err := h.requireOwner(c)
	if err != nil {
		return respondError(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	product, err := h.svc.CreateProduct(c.Request().Context(), owner.ID, req.params())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newProductResponse(product))
}

// UpdateProduct godoc
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param user_id path int true "Owner ID"
// @Param id path int true "Product ID"
// @Param product body handler.ProductRequest true "Product payload"
// @Success 200 {object} handler.ProductResponse
// @Failure 401 {object} errors.ErrorsResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Failure 422 {object} errors.ErrorsResponse
// @Security BearerAuth
// @Router /users/{user_id}/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	owner, err := h.requireOwner(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := h.ownedProductID(c, owner.ID)
	if err != nil {
		return respondError(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	product, err := h.svc.UpdateProduct(c.Request().Context(), id, req.params())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newProductResponse(product))
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags products
// @Param user_id path int true "Owner ID"
// @Param id path int true "Product ID"
// @Success 204
// @Failure 401 {object} errors.ErrorsResponse
// @Failure 404 {object} errors.ErrorsResponse
// @Security BearerAuth
// @Router /users/{user_id}/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	owner, err := h.requireOwner(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := h.ownedProductID(c, owner.ID)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireOwner resolves the authenticated user and checks it against the
// user_id path segment. A mismatch reads as not found so the API never
// confirms foreign resources exist.
func (h *ProductHandler) requireOwner(c echo.Context) (*model.User, error) {
	current, ok := CurrentUser(c)
	if !ok {
		return nil, apperrors.ErrAuthentication
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		return nil, err
	}
	if current.ID != userID {
		return nil, apperrors.ErrNotFound
	}
	return current, nil
}

// ownedProductID resolves the :id segment and verifies the product belongs
// to ownerID, again answering 404 on any mismatch.
func (h *ProductHandler) ownedProductID(c echo.Context, ownerID uint) (uint, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return 0, err
	}
	product, err := h.svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return 0, err
	}
	if product.UserID != ownerID {
		return 0, apperrors.ErrNotFound
	}
	return id, nil
}

// queryIDs parses an id-set query parameter. Absent parameters return nil;
// a supplied parameter always returns a non-nil slice, even when nothing in
// it parses, so a bad filter restricts the listing instead of dropping it.
func queryIDs(c echo.Context, name string) []uint {
	values := c.QueryParams()
	raw := append([]string{}, values[name+"[]"]...)
	for _, v := range values[name] {
		raw = append(raw, strings.Split(v, ",")...)
	}
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(raw))
	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if _, dup := seen[uint(id)]; dup {
			continue
		}
		seen[uint(id)] = struct{}{}
		ids = append(ids, uint(id))
	}
	return ids
}
