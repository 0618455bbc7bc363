package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/forepost/api/internal/service"
)

type UploadHandler struct {
	s         service.UploadService
	uploadDir string
}

func NewUploadHandler(s service.UploadService, uploadDir string) *UploadHandler {
	return &UploadHandler{s: s, uploadDir: uploadDir}
}

func (h *UploadHandler) UploadFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}

	result, err := h.s.SaveImage(c.Context(), content)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// ServeFile serves a previously uploaded image from the upload root. The
// filename is reduced to its base component so a crafted path cannot escape
// the directory.
func (h *UploadHandler) ServeFile(c *fiber.Ctx) error {
	filename := filepath.Base(c.Params("filename"))
	if filename == "." || filename == ".." || strings.ContainsAny(filename, "/\\") {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(filepath.Join(h.uploadDir, filename))
}
