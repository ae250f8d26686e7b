package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports dependency health
type HealthHandler struct {
	DB     *gorm.DB
	Config *config.Config
}

// Health handles GET /healthz
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /healthz [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB)
	if !result.Healthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
