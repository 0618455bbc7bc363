package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/forepost/api/internal/service"
	"github.com/forepost/api/internal/transfer"
)

type SettingsHandler struct {
	s  service.SettingsService
	ai service.AIService
}

func NewSettingsHandler(s service.SettingsService, ai service.AIService) *SettingsHandler {
	return &SettingsHandler{s: s, ai: ai}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.s.GetSettings(c.Context()))
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var su transfer.SettingsUpdate
	if err := c.BodyParser(&su); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if err := h.s.UpdateSettings(c.Context(), &su); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update settings",
		})
	}

	return c.JSON(h.s.GetSettings(c.Context()))
}

func (h *SettingsHandler) GenerateAIContent(c *fiber.Ctx) error {
	var req transfer.AIGenerateRequest
	if err := c.BodyParser(&req); err != nil || req.Input == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Input prompt is required",
		})
	}

	text, err := h.ai.GeneratePostContent(c.Context(), req.Input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"text": text})
}
