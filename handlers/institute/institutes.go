package institute

import (
	"strconv"

	"github.com/edstack/institute-api/database"
	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/services"
	"github.com/edstack/institute-api/utils/apperror"
	"github.com/edstack/institute-api/utils/middleware"
	"github.com/edstack/institute-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstituteHandler handles institute-related requests. It never writes an
// error response itself: every failure is returned up to the centralized
// error handler.
type InstituteHandler struct {
	db        *gorm.DB
	service   *services.InstituteService
	audit     *services.AuditService
	validator *validation.Validator
}

// NewInstituteHandler creates a new institute handler
func NewInstituteHandler(db *gorm.DB) *InstituteHandler {
	return &InstituteHandler{
		db:        db,
		service:   services.NewInstituteService(db),
		audit:     services.NewAuditService(),
		validator: validation.NewValidator(),
	}
}

// actorID resolves the acting user for a mutating operation. The auth gate
// already guaranteed a credential; what the controller enforces is that the
// credential resolved to a usable user ID, so absence is a validation
// failure rather than 401.
func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, apperror.NewValidationError("User ID is required")
	}
	return id, nil
}

func parseInstituteID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.NewValidationError("Invalid institute id")
	}
	return id, nil
}

// parseFilters extracts the listing filters from the query string. The
// isActive filter is only applied when the parameter is present; "true"
// selects active rows, any other value selects inactive ones.
func parseFilters(c *fiber.Ctx) services.InstituteFilters {
	filters := services.InstituteFilters{
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}

	if raw := c.Query("isActive"); raw != "" {
		isActive := raw == "true"
		filters.IsActive = &isActive
	}

	return filters
}

// parsePagination extracts paging and ordering from the query string
func parsePagination(c *fiber.Ctx) services.Pagination {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	sortOrder := c.Query("sortOrder", "DESC")
	if sortOrder != "ASC" {
		sortOrder = "DESC"
	}

	return services.Pagination{
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: sortOrder,
	}
}

// List handles GET /api/institutes
func (h *InstituteHandler) List(c *fiber.Ctx) error {
	result, err := h.service.FindAll(parseFilters(c), parsePagination(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Get handles GET /api/institutes/:id
func (h *InstituteHandler) Get(c *fiber.Ctx) error {
	id, err := parseInstituteID(c)
	if err != nil {
		return err
	}

	institute, err := h.service.FindByID(id)
	if err != nil {
		return err
	}
	return c.JSON(institute)
}

// Create handles POST /api/institutes
func (h *InstituteHandler) Create(c *fiber.Ctx) error {
	var req services.CreateInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.NewValidationError("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Code = validation.SanitizeString(req.Code)
	req.Address = validation.SanitizeString(req.Address)

	actor, err := actorID(c)
	if err != nil {
		return err
	}

	// The uniqueness probes, the insert and the audit row commit or roll
	// back together.
	institute, err := database.ExecuteInTransaction(h.db, func(tx *gorm.DB) (*model.Institute, error) {
		institute, err := h.service.Create(tx, req, actor)
		if err != nil {
			return nil, err
		}
		if err := h.audit.Record(tx, model.AuditActionCreate, institute.ID, &actor, nil, institute); err != nil {
			return nil, err
		}
		return institute, nil
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(institute)
}

// Update handles PUT /api/institutes/:id
func (h *InstituteHandler) Update(c *fiber.Ctx) error {
	id, err := parseInstituteID(c)
	if err != nil {
		return err
	}

	var req services.UpdateInstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.NewValidationError("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	actor, err := actorID(c)
	if err != nil {
		return err
	}

	// Pre-transaction snapshot for the audit trail; the gating load happens
	// again inside the transaction.
	before, err := h.service.FindByID(id)
	if err != nil {
		return err
	}

	institute, err := database.ExecuteInTransaction(h.db, func(tx *gorm.DB) (*model.Institute, error) {
		institute, err := h.service.Update(tx, id, req, actor)
		if err != nil {
			return nil, err
		}
		if err := h.audit.Record(tx, model.AuditActionUpdate, institute.ID, &actor, before, institute); err != nil {
			return nil, err
		}
		return institute, nil
	})
	if err != nil {
		return err
	}

	return c.JSON(institute)
}

// Delete handles DELETE /api/institutes/:id
func (h *InstituteHandler) Delete(c *fiber.Ctx) error {
	id, err := parseInstituteID(c)
	if err != nil {
		return err
	}

	actor, err := actorID(c)
	if err != nil {
		return err
	}

	before, err := h.service.FindByID(id)
	if err != nil {
		return err
	}

	_, err = database.ExecuteInTransaction(h.db, func(tx *gorm.DB) (bool, error) {
		deleted, err := h.service.Delete(tx, id)
		if err != nil {
			return false, err
		}
		if err := h.audit.Record(tx, model.AuditActionDelete, id, &actor, before, nil); err != nil {
			return false, err
		}
		return deleted, nil
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Deactivate handles PATCH /api/institutes/:id/deactivate
func (h *InstituteHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseInstituteID(c)
	if err != nil {
		return err
	}

	actor, err := actorID(c)
	if err != nil {
		return err
	}

	before, err := h.service.FindByID(id)
	if err != nil {
		return err
	}

	institute, err := database.ExecuteInTransaction(h.db, func(tx *gorm.DB) (*model.Institute, error) {
		institute, err := h.service.SoftDelete(tx, id, actor)
		if err != nil {
			return nil, err
		}
		if err := h.audit.Record(tx, model.AuditActionDeactivate, institute.ID, &actor, before, institute); err != nil {
			return nil, err
		}
		return institute, nil
	})
	if err != nil {
		return err
	}

	return c.JSON(institute)
}
