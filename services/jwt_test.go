package services

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rayansh0071505/portfolio-api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(secret string) *JWTService {
	return &JWTService{
		AccessTokenDuration: 24 * time.Hour,
		jwtSecretKey:        secret,
	}
}

func newGuardedApp(svc *JWTService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := shared.GetAppError(err); ok {
				return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
			}
			return shared.ResponseInternalError(c, err)
		},
	})
	app.Post("/admin", svc.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestJWT("test-secret")

	token, err := svc.ToJWT("operator")
	require.NoError(t, err)

	subject, err := svc.VerifyJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", subject)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := newTestJWT("secret-a").ToJWT("operator")
	require.NoError(t, err)

	_, err = newTestJWT("secret-b").VerifyJWTToken(token)
	assert.Error(t, err)
}

func TestRequireAdminPassThroughWhenDisabled(t *testing.T) {
	app := newGuardedApp(newTestJWT(""))

	resp, err := app.Test(httptest.NewRequest("POST", "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAdminEnforcesToken(t *testing.T) {
	svc := newTestJWT("test-secret")
	app := newGuardedApp(svc)

	resp, err := app.Test(httptest.NewRequest("POST", "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := svc.ToJWT("operator")
	require.NoError(t, err)
	req = httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
