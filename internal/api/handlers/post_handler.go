package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/forepost/api/internal/models"
	"github.com/forepost/api/internal/service"
	"github.com/forepost/api/internal/transfer"
	"github.com/forepost/api/pkg/utils"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{s: s}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, result, err := h.s.Create(c.Context(), userID, &pc)
	if err != nil {
		// A post that failed an immediate publish attempt still exists in
		// the store with status "failed".
		if post != nil && post.Status == models.PostStatusFailed {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"id":     post.ID,
				"status": post.Status,
				"error":  err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(postResponse(post, result))
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	response := make([]transfer.PostResponse, 0, len(posts))
	for _, post := range posts {
		response = append(response, postResponse(post, nil))
	}
	return c.JSON(response)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
	if err != nil {
		return notFoundOrError(c, err)
	}

	return c.JSON(postResponse(post, nil))
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var pu transfer.PostUpdate
	if err := c.BodyParser(&pu); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, result, err := h.s.Update(c.Context(), userID, int64(postID), &pu)
	if err != nil {
		if post != nil && post.Status == models.PostStatusFailed {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"id":     post.ID,
				"status": post.Status,
				"error":  err.Error(),
			})
		}
		return notFoundOrError(c, err)
	}

	return c.JSON(postResponse(post, result))
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return notFoundOrError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func postResponse(post *models.Post, result *service.DeliveryResult) transfer.PostResponse {
	resp := transfer.PostResponse{
		ID:            post.ID,
		Content:       post.Content,
		ScheduledTime: utils.FormatEastern(post.ScheduledTime),
		Status:        post.Status,
		Platform:      post.Platform,
		PostID:        post.PostID,
		ImageFilename: post.ImageFilename,
		ImageURL:      post.ImageURL,
	}
	if result != nil {
		resp.Warning = result.Warning
	}
	return resp
}

func notFoundOrError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}
