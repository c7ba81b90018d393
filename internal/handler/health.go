package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/legalvoice/api/pkg/response"
)

// HealthInfo describes which backends the server was wired with.
type HealthInfo struct {
	Store       string `json:"store"`
	Storage     string `json:"storage"`
	Dispatch    string `json:"dispatch"`
	Transcriber bool   `json:"transcriber"`
	Generator   bool   `json:"generator"`
	Notifier    bool   `json:"notifier"`
	Auth        bool   `json:"auth"`
}

type HealthHandler struct {
	info HealthInfo
}

func NewHealthHandler(info HealthInfo) *HealthHandler {
	return &HealthHandler{info: info}
}

// Root handles GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"timestamp": time.Now().Unix(),
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"status":   "ok",
		"services": h.info,
	})
}
