package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestFeatureFlagEnabled(t *testing.T) {
	SetFeatureFlag("instituteManagement", true)

	app := fiber.New()
	app.Get("/institutes", FeatureFlag("instituteManagement"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/institutes", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestFeatureFlagDisabled(t *testing.T) {
	SetFeatureFlag("instituteManagement", false)
	defer SetFeatureFlag("instituteManagement", true)

	handlerRan := false
	app := fiber.New()
	app.Get("/institutes", FeatureFlag("instituteManagement"), func(c *fiber.Ctx) error {
		handlerRan = true
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/institutes", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 403 {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if handlerRan {
		t.Error("handler ran behind a disabled flag")
	}

	body, _ := io.ReadAll(resp.Body)
	var res map[string]string
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res["message"] != "The instituteManagement feature is currently disabled" {
		t.Errorf("message = %q", res["message"])
	}
}

func TestFeatureFlagUnknownFeatureIsDisabled(t *testing.T) {
	app := fiber.New()
	app.Get("/x", FeatureFlag("doesNotExist"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}
