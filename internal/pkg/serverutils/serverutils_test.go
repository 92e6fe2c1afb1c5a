package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/me", NewJwtMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", ctx.Locals("user_id").(string)))
	})
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestJwtMiddleware(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"missing header", "", fiber.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", fiber.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signToken(t, jwt.MapClaims{"sub": "u1", "exp": exp}, "other"), fiber.StatusUnauthorized, ""},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), fiber.StatusUnauthorized, ""},
		{"no subject", "Bearer " + signToken(t, jwt.MapClaims{"exp": exp}, testSecret), fiber.StatusUnauthorized, ""},
		{"sub claim", "Bearer " + signToken(t, jwt.MapClaims{"sub": "auth0|42", "exp": exp}, testSecret), fiber.StatusOK, "auth0|42"},
		{"user_id claim wins", "Bearer " + signToken(t, jwt.MapClaims{"sub": "s", "user_id": "u-7", "exp": exp}, testSecret), fiber.StatusOK, "u-7"},
	}

	app := newProtectedApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp.Body)
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, body["data"])
				assert.Equal(t, true, body["success"])
			} else {
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

type createThing struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&createThing{Name: "x", Kind: "a"}))

	err := ValidateRequest(&createThing{Kind: "z"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "is required", vErr.Fields["Name"])
	assert.Equal(t, "must be one of: a b", vErr.Fields["Kind"])
	assert.Contains(t, err.Error(), "validation failed")
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/fiber", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "conversation not found")
	})
	app.Get("/validation", func(ctx *fiber.Ctx) error {
		return ValidateRequest(&createThing{})
	})
	app.Get("/plain", func(ctx *fiber.Ctx) error {
		return errors.New("db down")
	})

	tests := []struct {
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"/fiber", fiber.StatusNotFound, "conversation not found"},
		{"/validation", fiber.StatusBadRequest, "Validation failed"},
		{"/plain", fiber.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Equal(t, float64(tt.wantStatus), body["code"])
		})
	}
}
