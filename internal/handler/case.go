package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/projection"
	"github.com/legalvoice/api/internal/service"
	"github.com/legalvoice/api/internal/store"
	"github.com/legalvoice/api/pkg/response"
	"go.uber.org/zap"
)

type CaseHandler struct {
	service *service.CaseService
	log     *zap.Logger
}

func NewCaseHandler(svc *service.CaseService, log *zap.Logger) *CaseHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CaseHandler{
		service: svc,
		log:     log,
	}
}

// Create handles POST /api/cases
func (h *CaseHandler) Create(c *fiber.Ctx) error {
	var req model.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid form data", nil)
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return response.ValidationError(c, "Audio file is required", nil)
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	result, err := h.service.Intake(c.UserContext(), req, service.AudioUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        f,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return response.ValidationError(c, verr.Message, verr.Details)
		}
		h.log.Error("case intake failed", zap.Error(err))
		return response.ServiceError(c, "Failed to create case")
	}

	return response.Accepted(c, result)
}

// List handles GET /api/cases
func (h *CaseHandler) List(c *fiber.Ctx) error {
	var filter model.CaseFilter
	if err := c.QueryParser(&filter); err != nil {
		return response.ValidationError(c, "Invalid query parameters", nil)
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return response.ValidationError(c, "Invalid status filter", map[string]interface{}{
			"status": filter.Status,
		})
	}

	result, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		h.log.Error("failed to list cases", zap.Error(err))
		return response.ServiceError(c, "Failed to list cases")
	}

	return response.OK(c, result)
}

// Stats handles GET /api/cases/stats
func (h *CaseHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		h.log.Error("failed to compute stats", zap.Error(err))
		return response.ServiceError(c, "Failed to compute stats")
	}
	return response.OK(c, stats)
}

// Get handles GET /api/cases/:caseId
func (h *CaseHandler) Get(c *fiber.Ctx) error {
	cs, err := h.lookup(c)
	if err != nil {
		return err
	}
	if cs == nil {
		return nil
	}
	return response.OK(c, cs)
}

// Status handles GET /api/cases/:caseId/status
func (h *CaseHandler) Status(c *fiber.Ctx) error {
	cs, err := h.lookup(c)
	if err != nil {
		return err
	}
	if cs == nil {
		return nil
	}
	return response.OK(c, projection.Project(cs))
}

// Options handles GET /api/options
func (h *CaseHandler) Options(c *fiber.Ctx) error {
	return response.OK(c, h.service.Options())
}

// lookup writes the error response itself and returns a nil case when it did.
func (h *CaseHandler) lookup(c *fiber.Ctx) (*model.Case, error) {
	caseID := c.Params("caseId")
	if caseID == "" {
		return nil, response.ValidationError(c, "Case ID is required", nil)
	}

	cs, err := h.service.Get(c.UserContext(), caseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, response.NotFound(c, "Case not found")
	}
	if err != nil {
		h.log.Error("failed to load case", zap.String("case_id", caseID), zap.Error(err))
		return nil, response.ServiceError(c, "Failed to load case")
	}
	return cs, nil
}
