package automationhandler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain/automation"
	"meetscribe-server/internal/interfaces/httpserver/middlewares"
	"meetscribe-server/internal/utils/platformerrors"
)

// AutomationHandler serves CRUD for user-defined content automations.
type AutomationHandler struct {
	automations automation.Repository
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewAutomationHandler constructs a new handler instance.
func NewAutomationHandler(automations automation.Repository, logger zerolog.Logger) *AutomationHandler {
	return &AutomationHandler{
		automations: automations,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// AutomationRequest is the create/update payload.
type AutomationRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Platform string `json:"platform" validate:"required"`
	Prompt   string `json:"prompt" validate:"required,min=10"`
}

// AutomationResponse is the JSON shape of one automation.
type AutomationResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List handles GET /v1/automations
func (h *AutomationHandler) List(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	automations, err := h.automations.ListByUser(c.Request.Context(), principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	out := make([]AutomationResponse, 0, len(automations))
	for _, a := range automations {
		out = append(out, toResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"automations": out})
}

// Create handles POST /v1/automations
func (h *AutomationHandler) Create(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	req, ok := h.bindAndValidate(c)
	if !ok {
		return
	}

	created, err := h.automations.Save(c.Request.Context(), &automation.Automation{
		UserID:   principal.UserID,
		Name:     req.Name,
		Platform: req.Platform,
		Prompt:   req.Prompt,
	})
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, toResponse(created))
}

// Update handles PUT /v1/automations/:id
func (h *AutomationHandler) Update(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid automation id")
		return
	}

	req, ok := h.bindAndValidate(c)
	if !ok {
		return
	}

	existing, err := h.automations.FindByID(c.Request.Context(), uint(id), principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	if existing == nil {
		platformerrors.WriteNotFound(c, "automation not found")
		return
	}

	existing.Name = req.Name
	existing.Platform = req.Platform
	existing.Prompt = req.Prompt

	updated, err := h.automations.Save(c.Request.Context(), existing)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toResponse(updated))
}

// Delete handles DELETE /v1/automations/:id
func (h *AutomationHandler) Delete(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid automation id")
		return
	}

	if err := h.automations.Delete(c.Request.Context(), uint(id), principal.UserID); err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AutomationHandler) bindAndValidate(c *gin.Context) (AutomationRequest, bool) {
	var req AutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
		return req, false
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string][]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
			}
			platformerrors.WriteFieldErrors(c, "validation failed", fields)
			return req, false
		}
		platformerrors.WriteValidationError(c, err.Error())
		return req, false
	}
	return req, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func toResponse(a *automation.Automation) AutomationResponse {
	return AutomationResponse{
		ID:        a.ID,
		Name:      a.Name,
		Platform:  a.Platform,
		Prompt:    a.Prompt,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
