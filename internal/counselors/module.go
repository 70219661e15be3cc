// Package counselors provides the counselor bounded context module:
// provisioning (identity plus profile) and profile management.
package counselors

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"counselor_admin_backend/internal/counselors/handler"
	"counselor_admin_backend/internal/counselors/repository"
	"counselor_admin_backend/internal/counselors/service"
	"counselor_admin_backend/internal/events"
	apphttp "counselor_admin_backend/internal/http"
	"counselor_admin_backend/internal/idp"
	"counselor_admin_backend/platform/config"
	"counselor_admin_backend/platform/logger"
	"counselor_admin_backend/platform/validator"
)

// Module is the counselors bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the counselors module.
func NewModule(pool *pgxpool.Pool, provider idp.Provider, bus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, provider, bus, cfg, log)
	h := handler.New(svc, val, cfg, log)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "counselors"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts counselor routes on the provided router context.
// All counselor management is admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	adminGroup := ctx.Admin.Group("/counselors")
	adminGroup.POST("", m.handler.Create)
	adminGroup.GET("", m.handler.List)
	adminGroup.GET("/:id", m.handler.GetByID)
	adminGroup.PATCH("/:id", m.handler.Update)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
