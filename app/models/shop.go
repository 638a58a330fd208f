package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusUnpaid   = "unpaid"
)

const (
	RewardGoalMin     = 2
	RewardGoalMax     = 31
	RewardGoalDefault = 10
)

// Shop is a merchant's loyalty program. The slug is the public identifier
// printed on QR codes and baked into join links, so it never changes.
// is_paid and subscription_status are written exclusively by the billing
// service; merchants only touch the cosmetic fields.
type Shop struct {
	Slug                 string    `gorm:"primaryKey;type:varchar(191)" json:"slug" validate:"required,lowercase,max=191"`
	ShopName             string    `gorm:"type:varchar(120)" json:"shop_name" validate:"max=120"`
	DealTitle            string    `gorm:"type:varchar(120)" json:"deal_title" validate:"max=120"`
	DealDetails          string    `gorm:"type:varchar(300)" json:"deal_details" validate:"max=300"`
	RewardGoal           int       `gorm:"not null;default:10" json:"reward_goal" validate:"min=2,max=31"`
	WelcomeSMSTemplate   string    `gorm:"type:varchar(500)" json:"welcome_sms_template" validate:"max=500"`
	RewardSMSTemplate    string    `gorm:"type:varchar(500)" json:"reward_sms_template" validate:"max=500"`
	IsPaid               bool      `gorm:"not null;default:false;index" json:"is_paid"`
	SubscriptionStatus   string    `gorm:"type:varchar(32);not null;default:'inactive';index" json:"subscription_status"`
	StripeCustomerID     string    `gorm:"type:varchar(191);default:''" json:"stripe_customer_id"`
	StripeSubscriptionID string    `gorm:"type:varchar(191);default:''" json:"stripe_subscription_id"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Shop) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// IsPaidStatus reports whether a provider subscription status entitles the
// shop to paid features.
func IsPaidStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}

// NormalizeSlug canonicalizes a shop slug the same way everywhere: trimmed
// and lowercased. Empty means invalid.
func NormalizeSlug(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
