package handlers

import "github.com/gofiber/fiber/v2"

// DBPinger reports whether the datastore is reachable
type DBPinger interface {
	HealthCheck() error
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db DBPinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db DBPinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck reports that the server is up. It does not touch the
// database; liveness only.
func HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Server is running",
	})
}

// ReadyCheck reports whether the server can serve traffic, which requires
// the database connection to be alive.
func (h *HealthHandler) ReadyCheck(c *fiber.Ctx) error {
	if err := h.db.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Database unavailable",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Server is ready",
	})
}
