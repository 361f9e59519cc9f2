package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/climatecare/repairdesk/internal/observability"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics("middleware_test"), time.Second)
	return app
}

func decodeError(t *testing.T, body io.Reader) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestErrorEnvelopeShape(t *testing.T) {
	app := newTestApp()
	app.Get("/denied", func(c *fiber.Ctx) error {
		return apperrors.NewForbidden("cannot delete requests")
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("invalid request payload", map[string]any{"start_date": "Specify a date."})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/denied", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	envelope := decodeError(t, resp.Body)
	if envelope.Error.Code != "FORBIDDEN" || envelope.Error.Message != "cannot delete requests" {
		t.Errorf("envelope = %+v", envelope.Error)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/invalid", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	envelope = decodeError(t, resp.Body)
	if envelope.Error.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
	if envelope.Error.Details["start_date"] != "Specify a date." {
		t.Errorf("details = %v", envelope.Error.Details)
	}
}

func TestPanicBecomesOpaque500(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	envelope := decodeError(t, resp.Body)
	if envelope.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "internal server error" {
		t.Errorf("message leaked: %q", envelope.Error.Message)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/no/such/route", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	envelope := decodeError(t, resp.Body)
	if envelope.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
}

func TestSuccessPassesThrough(t *testing.T) {
	app := newTestApp()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": "ok"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["data"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	app := newTestApp()
	app.Get("/deadline", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); !ok {
			return apperrors.NewConfigurationError("request context has no deadline")
		}
		return c.JSON(fiber.Map{"data": "ok"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/deadline", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
