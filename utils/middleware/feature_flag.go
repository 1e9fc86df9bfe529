package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Feature flags configuration. Flags are static: flipping one requires a
// deploy, which is intentional for coarse route-group gating.
var featureFlags = map[string]bool{
	"instituteManagement": true,
}

// FeatureFlag gates a route group behind a named flag. A disabled flag
// short-circuits with 403 before any handler logic runs.
func FeatureFlag(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !featureFlags[feature] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": fmt.Sprintf("The %s feature is currently disabled", feature),
			})
		}
		return c.Next()
	}
}

// SetFeatureFlag overrides a flag value. Intended for tests.
func SetFeatureFlag(feature string, enabled bool) {
	featureFlags[feature] = enabled
}
