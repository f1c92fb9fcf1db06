package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stockroom/catalog-service/internal/api/dto"
	"github.com/stockroom/catalog-service/internal/domain"
	"github.com/stockroom/catalog-service/internal/service"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

// UsersHandler manages the users collection endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	details, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserDetailResponse, 0, len(details))
	for _, detail := range details {
		items = append(items, dto.NewUserDetailResponse(detail))
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	detail, err := h.users.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewUserDetailResponse(*detail)})
}

// Create POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var role *domain.Role
	if req.Role != "" {
		r := domain.Role(req.Role)
		role = &r
	}

	user, err := h.users.Create(c.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "data": dto.NewPublicUser(user)})
}

// Update PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Update(c.Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewPublicUser(user)})
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "User deleted; owned keys and products removed"})
}
