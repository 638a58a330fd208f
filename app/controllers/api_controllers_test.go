package controllers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ventzon/loyalty/internal/pkg/env"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/join/signup", HandleJoinSignup)
	app.Get("/api/merchant/stats", HandleMerchantStats)
	app.Patch("/api/merchant/shop-settings", HandleShopSettingsUpdate)
	app.Post("/api/stripe/checkout", HandleStripeCheckout)
	app.Post("/api/stripe/webhook", HandleStripeWebhook)
	return app
}

func postJSON(app *fiber.App, path, body string) int {
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	return resp.StatusCode
}

// These tests exercise exactly the paths that reject before any store
// access; nothing here needs a database or a cache.

func TestHandleJoinSignup_RejectsBeforeStore(t *testing.T) {
	app := newTestApp()

	code := postJSON(app, "/api/join/signup", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code = postJSON(app, "/api/join/signup", `{"shop_slug":"acme"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code = postJSON(app, "/api/join/signup", `{"shop_slug":"acme","phone":"555-1234"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code = postJSON(app, "/api/join/signup", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestHandleMerchantStats_MissingSlug(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/merchant/stats", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleShopSettingsUpdate_FailsClosed(t *testing.T) {
	app := newTestApp()

	patch := func(body string) int {
		req := httptest.NewRequest("PATCH", "/api/merchant/shop-settings", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp.StatusCode
	}

	// No slug.
	assert.Equal(t, fiber.StatusBadRequest, patch(`{"shop_name":"Acme"}`))
	// Slug only, nothing to update.
	assert.Equal(t, fiber.StatusBadRequest, patch(`{"shop_slug":"acme"}`))
	// Reward goal outside 2..31.
	assert.Equal(t, fiber.StatusBadRequest, patch(`{"shop_slug":"acme","reward_goal":1}`))
	assert.Equal(t, fiber.StatusBadRequest, patch(`{"shop_slug":"acme","reward_goal":50}`))
}

func TestHandleStripeCheckout_Validation(t *testing.T) {
	app := newTestApp()

	code := postJSON(app, "/api/stripe/checkout", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code = postJSON(app, "/api/stripe/checkout", `{"shop_slug":"acme","plan":"weekly"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestHandleStripeWebhook_SignatureGate(t *testing.T) {
	app := newTestApp()

	send := func(signature string) int {
		req := httptest.NewRequest("POST", "/api/stripe/webhook", bytes.NewReader([]byte(`{"id":"evt_1"}`)))
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set("Stripe-Signature", signature)
		}
		resp, _ := app.Test(req)
		return resp.StatusCode
	}

	// Secret configured, signature missing or bogus.
	env.Env = map[string]string{"STRIPE_WEBHOOK_SECRET": "whsec_test"}
	defer func() { env.Env = nil }()

	assert.Equal(t, fiber.StatusBadRequest, send(""))
	assert.Equal(t, fiber.StatusBadRequest, send("t=123,v1=deadbeef"))

	// Secret not configured is a server-side misconfiguration.
	env.Env = map[string]string{}
	assert.Equal(t, fiber.StatusInternalServerError, send("t=123,v1=deadbeef"))
}
