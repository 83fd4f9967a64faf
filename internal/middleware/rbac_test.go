package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/suitetest-api/internal/models"
)

func newRoleApp(guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id, err := strconv.ParseUint(c.Get("X-User"), 10, 64); err == nil {
			c.Locals(LocalUserID, uint(id))
		}
		c.Locals(LocalUserRole, c.Get("X-Role"))
		return c.Next()
	})
	app.Use(guard)
	app.Get("/departments", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func requestAs(t *testing.T, app *fiber.App, user, role string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/departments", nil)
	req.Header.Set("X-User", user)
	req.Header.Set("X-Role", role)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body := map[string]interface{}{}
	if resp.StatusCode != fiber.StatusNoContent {
		decodeBody(t, resp, &body)
	}
	return resp.StatusCode, body
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	app := newRoleApp(RequireRole(models.RoleAdmin, models.RoleEmployer))

	status, _ := requestAs(t, app, "1", models.RoleAdmin)
	require.Equal(t, fiber.StatusNoContent, status)

	status, _ = requestAs(t, app, "2", " Employer ")
	require.Equal(t, fiber.StatusNoContent, status)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	app := newRoleApp(RequireRole(models.RoleAdmin))

	status, body := requestAs(t, app, "3", models.RoleCandidate)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Access restricted to admin accounts", body["message"])
}

func TestRequireRoleNeedsIdentity(t *testing.T) {
	app := newRoleApp(RequireRole(models.RoleAdmin))

	status, body := requestAs(t, app, "", models.RoleAdmin)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "Access token required", body["message"])
}
