package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/pkg/response"
	"go.uber.org/zap"
)

// FileSource is object storage that can serve its own objects.
type FileSource interface {
	Download(ctx context.Context, key string) ([]byte, error)
	ContentType(key string) (string, bool)
}

// FileHandler serves stored audio and documents when no bucket fronts them.
type FileHandler struct {
	files FileSource
	log   *zap.Logger
}

func NewFileHandler(files FileSource, log *zap.Logger) *FileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileHandler{files: files, log: log}
}

// Serve handles GET /files/*
func (h *FileHandler) Serve(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" {
		return response.NotFound(c, "File not found")
	}

	data, err := h.files.Download(c.UserContext(), key)
	if errors.Is(err, client.ErrObjectNotFound) {
		return response.NotFound(c, "File not found")
	}
	if err != nil {
		h.log.Error("failed to read stored file", zap.String("key", key), zap.Error(err))
		return response.ServiceError(c, "Failed to read file")
	}

	contentType, _ := h.files.ContentType(key)
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
