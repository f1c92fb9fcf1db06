package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stockroom/catalog-service/internal/api/dto"
	"github.com/stockroom/catalog-service/internal/service"
	apperrors "github.com/stockroom/catalog-service/pkg/util"
)

// KeysHandler manages the API key endpoints.
type KeysHandler struct {
	keys *service.KeyService
}

// NewKeysHandler constructs handler.
func NewKeysHandler(keyService *service.KeyService) *KeysHandler {
	return &KeysHandler{keys: keyService}
}

// Generate POST /api/keys/generate. Deliberately unauthenticated: keys are a
// legacy credential handed out by user id.
func (h *KeysHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	key, err := h.keys.Generate(c.Context(), req.UserID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "New API key generated. Save it; it won't be shown again.",
		"data":    dto.NewGeneratedKeyResponse(key),
	})
}

// List GET /api/keys.
func (h *KeysHandler) List(c *fiber.Ctx) error {
	rows, err := h.keys.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.KeyResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.NewKeyResponse(row))
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// Revoke DELETE /api/keys/:id.
func (h *KeysHandler) Revoke(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := h.keys.Revoke(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Key revoked"})
}
