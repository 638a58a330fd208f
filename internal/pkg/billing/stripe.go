package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ventzon/loyalty/app/models"
	"github.com/ventzon/loyalty/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// stripeID decodes Stripe fields that are either a bare id string or an
// expanded object with an "id" field, depending on API expansion settings.
type stripeID string

func (s *stripeID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*s = ""
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*s = stripeID(raw)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	*s = stripeID(obj.ID)
	return nil
}

type stripeEventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type stripeCheckoutSession struct {
	ID           string            `json:"id"`
	Customer     stripeID          `json:"customer"`
	Subscription stripeID          `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type stripeSubscription struct {
	ID       string            `json:"id"`
	Customer stripeID          `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// IsHandledStripeEvent reports whether the event type affects shop
// subscription state. Everything else is acknowledged and ignored.
func IsHandledStripeEvent(eventType string) bool {
	switch strings.TrimSpace(eventType) {
	case EventCheckoutCompleted, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	default:
		return false
	}
}

// ParseStripeEvent extracts the fields the subscription state machine
// needs from a raw Stripe event payload.
func ParseStripeEvent(raw []byte) (*NormalizedEvent, error) {
	var envelope stripeEventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid stripe event payload: %w", err)
	}
	if envelope.ID == "" {
		return nil, errors.New("stripe event has no id")
	}

	out := &NormalizedEvent{
		ID:   envelope.ID,
		Type: strings.TrimSpace(envelope.Type),
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var session stripeCheckoutSession
		if err := json.Unmarshal(envelope.Data.Object, &session); err != nil {
			return nil, fmt.Errorf("invalid checkout session object: %w", err)
		}
		out.ShopSlug = models.NormalizeSlug(session.Metadata["shop_slug"])
		out.Status = models.SubscriptionStatusActive
		out.CustomerID = string(session.Customer)
		out.SubscriptionID = string(session.Subscription)

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripeSubscription
		if err := json.Unmarshal(envelope.Data.Object, &sub); err != nil {
			return nil, fmt.Errorf("invalid subscription object: %w", err)
		}
		out.ShopSlug = models.NormalizeSlug(sub.Metadata["shop_slug"])
		out.Status = strings.ToLower(strings.TrimSpace(sub.Status))
		out.CustomerID = string(sub.Customer)
		out.SubscriptionID = sub.ID
	}

	return out, nil
}

// StripeClient talks to the Stripe REST API for the few calls the service
// makes itself (checkout session creation). Webhooks come the other way
// and never go through this client.
type StripeClient struct {
	SecretKey    string
	APIBaseURL   string
	PriceMonthly string
	PriceYearly  string

	HTTPClient *http.Client
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:    strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL:   strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		PriceMonthly: strings.TrimSpace(env.GetEnv("STRIPE_PRICE_MONTHLY", "")),
		PriceYearly:  strings.TrimSpace(env.GetEnv("STRIPE_PRICE_YEARLY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type StripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession creates a subscription-mode checkout session with
// the shop slug stamped into metadata, so later webhooks can find their
// way back to the shop. The request carries an Idempotency-Key so a
// retried call cannot open two sessions.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*StripeCheckoutSession, error) {
	if c.SecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	slug := models.NormalizeSlug(in.ShopSlug)
	if slug == "" {
		return nil, errors.New("shop slug is required")
	}

	plan := strings.ToLower(strings.TrimSpace(in.Plan))
	if plan != PlanYearly {
		plan = PlanMonthly
	}
	priceID := c.PriceMonthly
	if plan == PlanYearly {
		priceID = c.PriceYearly
	}
	if priceID == "" {
		return nil, fmt.Errorf("no price configured for plan %q", plan)
	}

	origin := strings.TrimRight(in.Origin, "/")
	if origin == "" {
		origin = strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", origin+"/merchant/"+url.PathEscape(slug)+"?paid=1")
	form.Set("cancel_url", origin+"/merchant/subscribe?shop="+url.QueryEscape(slug)+"&canceled=1")
	form.Set("metadata[shop_slug]", slug)
	form.Set("metadata[plan]", plan)
	form.Set("subscription_data[metadata][shop_slug]", slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe checkout session failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out StripeCheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
