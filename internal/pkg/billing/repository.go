package billing

import (
	"time"

	"github.com/ventzon/loyalty/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	ClaimEvent(eventID string) (bool, error)
	UpdateShopSubscription(slug string, isPaid bool, status, customerID, subscriptionID string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// ClaimEvent inserts the event id into processed_events. The insert is the
// claim: true means this delivery is the first and effects may be applied,
// false means a previous delivery already claimed it. The primary key on
// processed_events.id resolves concurrent deliveries without any locking.
func (r *gormRepository) ClaimEvent(eventID string) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&models.ProcessedEvent{ID: eventID})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UpdateShopSubscription writes the four billing-owned shop columns.
func (r *gormRepository) UpdateShopSubscription(slug string, isPaid bool, status, customerID, subscriptionID string) error {
	updates := map[string]interface{}{
		"is_paid":                isPaid,
		"subscription_status":    status,
		"stripe_customer_id":     customerID,
		"stripe_subscription_id": subscriptionID,
		"updated_at":             time.Now(),
	}
	tx := r.db.Model(&models.Shop{}).Where("slug = ?", slug).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
