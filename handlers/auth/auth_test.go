package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func TestMeReturnsAuthenticatedUser(t *testing.T) {
	h := &AuthHandler{}
	user := &model.User{
		ID:    uuid.New(),
		Email: "staff@institute.local",
		Name:  "Staff Member",
		Role:  "staff",
	}

	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		// Stands in for the auth middleware's locals
		c.Locals("user", user)
		return c.Next()
	}, h.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var out UserResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal %q: %v", body, err)
	}
	if out.ID != user.ID || out.Email != user.Email || out.Role != user.Role {
		t.Errorf("profile = %+v, want the authenticated user", out)
	}
}

func TestMeWithoutIdentityIsUnauthorized(t *testing.T) {
	h := &AuthHandler{}
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler("production"),
	})
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
