package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ventzon/loyalty/internal/pkg/billing"
	"github.com/ventzon/loyalty/internal/pkg/database"
	"github.com/ventzon/loyalty/internal/pkg/env"
)

// HandleStripeWebhook ingests payment provider events. Once the signature
// verifies, the provider always gets a 200, even when applying the event
// fails downstream; anything else and Stripe redelivers forever. Failures
// past that point go to the log, not the response status.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	if signature == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing stripe-signature")
	}
	if secret == "" {
		return jsonError(c, fiber.StatusInternalServerError, "Missing STRIPE_WEBHOOK_SECRET")
	}
	if !billing.VerifyStripeWebhookSignature(rawBody, signature, secret) {
		return jsonError(c, fiber.StatusBadRequest, "Webhook Error: invalid signature")
	}

	event, err := billing.ParseStripeEvent(rawBody)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Webhook Error: invalid payload")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	firstSeen, err := svc.ClaimEvent(ctx, event.ID, rawBody)
	if err != nil {
		// Ack anyway so the provider stops retrying; the gap is visible in logs.
		log.Printf("billing: failed to record event %s: %v", event.ID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "event_record_error": true})
	}
	if !firstSeen {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	if billing.IsHandledStripeEvent(event.Type) {
		if err := svc.ApplyEvent(ctx, event); err != nil {
			log.Printf("billing: failed to apply event %s (%s): %v", event.ID, event.Type, err)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "handler_error": err.Error()})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// CheckoutRequest is the body of POST /api/stripe/checkout.
type CheckoutRequest struct {
	ShopSlug string `json:"shop_slug" validate:"required"`
	Plan     string `json:"plan" validate:"omitempty,oneof=monthly yearly"`
}

// HandleStripeCheckout opens a subscription checkout session for one of
// the two fixed plans and returns the hosted payment URL.
func HandleStripeCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Missing shop_slug")
	}

	client := billing.NewStripeClientFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	session, err := client.CreateCheckoutSession(ctx, billing.CheckoutSessionInput{
		ShopSlug: req.ShopSlug,
		Plan:     req.Plan,
		Origin:   c.Get("Origin"),
	})
	if err != nil {
		log.Printf("billing: checkout session failed for %s: %v", req.ShopSlug, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create checkout session")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": session.URL})
}
