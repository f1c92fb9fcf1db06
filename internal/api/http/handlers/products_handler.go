package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stockroom/catalog-service/internal/api/dto"
	"github.com/stockroom/catalog-service/internal/auth"
	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/service"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

// ProductsHandler manages the products collection endpoints.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: productService}
}

// List GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	rows, err := h.products.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.NewProductWithOwnerResponse(row))
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// Get GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	row, err := h.products.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewProductWithOwnerResponse(*row)})
}

// Create POST /api/products. The owner is the bearer identity.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.products.Create(c.Context(), userID, service.ProductCreateInput{
		Type: domain.ProductType(req.Type),
		Name: req.Name,
		SSN:  req.SSN,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "data": dto.NewProductResponse(product)})
}

// Update PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.ProductUpdateInput{Name: req.Name, SSN: req.SSN}
	if req.Type != nil {
		t := domain.ProductType(*req.Type)
		input.Type = &t
	}

	product, err := h.products.Update(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewProductResponse(product)})
}

// Delete DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted"})
}
