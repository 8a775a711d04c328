package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"metrodoc/internal/auth"
)

func TestRequestID(t *testing.T) {
	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Traced") != "" {
			sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}})
			c.SetUserContext(trace.ContextWithSpanContext(c.UserContext(), sc))
		}
		return c.Next()
	})
	app.Use(RequestID())
	app.Get("/api/documents", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	tests := []struct {
		name     string
		incoming string
		traced   bool
		check    func(t *testing.T, id string)
	}{
		{
			name:     "client id is echoed",
			incoming: "ops-console-42",
			check:    func(t *testing.T, id string) { assert.Equal(t, "ops-console-42", id) },
		},
		{
			name: "missing id gets a uuid",
			check: func(t *testing.T, id string) {
				_, err := uuid.Parse(id)
				assert.NoError(t, err)
			},
		},
		{
			name:     "oversized id is replaced",
			incoming: strings.Repeat("x", maxRequestIDLen+1),
			check:    func(t *testing.T, id string) { assert.Len(t, id, 36) },
		},
		{
			name:     "id with spaces is replaced",
			incoming: "two words",
			check:    func(t *testing.T, id string) { assert.NotEqual(t, "two words", id) },
		},
		{
			name:   "traced request reuses the trace id",
			traced: true,
			check:  func(t *testing.T, id string) { assert.Equal(t, traceID.String(), id) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/documents", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			if tt.traced {
				req.Header.Set("X-Traced", "1")
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			id := resp.Header.Get(RequestIDHeader)
			assert.Equal(t, id, string(body))
			tt.check(t, id)
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Post("/api/documents/upload", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/api/documents/upload", nil)
	req.Header.Set(RequestIDHeader, "upload-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "upload-1", entry["request_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/documents/upload", entry["path"])
	assert.Equal(t, float64(fiber.StatusCreated), entry["status"])
	assert.Contains(t, entry, "latency")
	assert.NotEmpty(t, entry["ts"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))

	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	_, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var teapot, boom map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &teapot))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &boom))
	assert.Equal(t, float64(fiber.StatusTeapot), teapot["status"])
	assert.Equal(t, "info", teapot["level"])
	assert.Equal(t, float64(fiber.StatusInternalServerError), boom["status"])
	assert.Equal(t, "error", boom["level"])
	assert.Equal(t, "boom", boom["error"])
}

type stubValidator struct {
	claims auth.Claims
	err    error
}

func (s stubValidator) Validate(token string) (auth.Claims, error) {
	if token != "good" && s.err == nil {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return s.claims, s.err
}

func TestAuth(t *testing.T) {
	claims := auth.Claims{Email: "admin@metro.com"}
	claims.Subject = "1"

	newApp := func(v TokenValidator) *fiber.App {
		app := fiber.New()
		app.Use(Auth(v))
		app.Get("/me", func(c *fiber.Ctx) error {
			got, ok := ClaimsFrom(c)
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.SendString(got.Subject)
		})
		return app
	}

	tests := []struct {
		name       string
		header     string
		validator  TokenValidator
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer good", validator: stubValidator{claims: claims}, wantStatus: fiber.StatusOK, wantBody: "1"},
		{name: "scheme is case insensitive", header: "bearer good", validator: stubValidator{claims: claims}, wantStatus: fiber.StatusOK, wantBody: "1"},
		{name: "missing header", validator: stubValidator{}, wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", validator: stubValidator{}, wantStatus: fiber.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", validator: stubValidator{}, wantStatus: fiber.StatusUnauthorized},
		{name: "expired token", header: "Bearer good", validator: stubValidator{err: auth.ErrExpiredToken}, wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newApp(tt.validator).Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				buf := new(bytes.Buffer)
				buf.ReadFrom(resp.Body)
				assert.Equal(t, tt.wantBody, buf.String())
			}
		})
	}
}
