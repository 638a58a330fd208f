package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"github.com/ventzon/loyalty/app/models"
	"gorm.io/gorm"
)

// Service converts verified provider events into authoritative shop
// subscription state. Claim-before-apply: the processed_events insert in
// ClaimEvent gates every call to ApplyEvent, so redeliveries are no-ops.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ClaimEvent records the event id idempotently. An empty id falls back to
// a hash of the payload so unidentified deliveries still deduplicate.
func (s *Service) ClaimEvent(ctx context.Context, eventID string, payload []byte) (bool, error) {
	_ = ctx
	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256(payload)
		id = "hash:" + hex.EncodeToString(sum[:])
	}
	return s.repo.ClaimEvent(id)
}

// ApplyEvent projects a first-seen event onto the shop row. The provider
// owns transition legality; this is a pure projection of the latest
// received status. An event without a shop slug is logged and dropped,
// never failed, so the provider is still acknowledged.
func (s *Service) ApplyEvent(ctx context.Context, event *NormalizedEvent) error {
	_ = ctx
	if event == nil || !IsHandledStripeEvent(event.Type) {
		return nil
	}
	if event.ShopSlug == "" {
		log.Printf("billing: event %s (%s) has no shop_slug metadata, skipping", event.ID, event.Type)
		return nil
	}

	var err error
	switch event.Type {
	case EventCheckoutCompleted:
		err = s.repo.UpdateShopSubscription(
			event.ShopSlug,
			true,
			models.SubscriptionStatusActive,
			event.CustomerID,
			event.SubscriptionID,
		)
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		status := strings.ToLower(strings.TrimSpace(event.Status))
		if status == "" {
			return errors.New("subscription event has no status")
		}
		err = s.repo.UpdateShopSubscription(
			event.ShopSlug,
			models.IsPaidStatus(status),
			status,
			event.CustomerID,
			event.SubscriptionID,
		)
	}

	// A slug that matches no shop row is an anomaly, not a failure; the
	// provider still gets its acknowledgement.
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("billing: event %s (%s) references unknown shop %q, skipping", event.ID, event.Type, event.ShopSlug)
		return nil
	}
	return err
}
