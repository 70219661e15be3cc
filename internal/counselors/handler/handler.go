// Package handler provides HTTP handlers for counselor provisioning and
// profile management.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"counselor_admin_backend/internal/counselors/service"
	"counselor_admin_backend/internal/counselors/transport"
	"counselor_admin_backend/platform/config"
	"counselor_admin_backend/platform/httpkit"
	"counselor_admin_backend/platform/logger"
	"counselor_admin_backend/platform/validator"
)

// Handler handles counselor HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
	idpCfg  config.IdentityProviderConfig
	log     *logger.Logger
}

// New creates a new counselors handler.
func New(svc *service.Service, val *validator.Validator, idpCfg config.IdentityProviderConfig, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		val:     val,
		idpCfg:  idpCfg,
		log:     log,
	}
}

// Create provisions a new counselor: identity first, then the profile row.
// POST /api/v1/admin/counselors
func (h *Handler) Create(c *gin.Context) {
	// Checked per request so a misconfigured deployment reports itself
	// instead of failing with an opaque connection error.
	if !h.idpCfg.IsIdentityProviderEnabled() {
		httpkit.Error(c, http.StatusInternalServerError, "Missing identity provider environment variables", nil)
		return
	}

	var req transport.CreateCounselorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	counselor, err := h.service.Provision(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.CreateCounselorResponse{Counselor: counselor})
}

// List returns all counselor profiles.
// GET /api/v1/admin/counselors
func (h *Handler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID returns a single counselor profile.
// GET /api/v1/admin/counselors/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid counselor id", nil)
		return
	}

	counselor, err := h.service.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, counselor)
}

// Update applies profile field edits.
// PATCH /api/v1/admin/counselors/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid counselor id", nil)
		return
	}

	var req transport.UpdateCounselorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	counselor, err := h.service.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, counselor)
}
