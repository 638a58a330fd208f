package repository

import (
	"time"

	"github.com/ventzon/loyalty/app/models"
	"gorm.io/gorm"
)

// signupRepository implements the SignupRepository interface
type signupRepository struct {
	db *gorm.DB
}

// NewSignupRepository creates a new signup repository instance
func NewSignupRepository(db *gorm.DB) SignupRepository {
	return &signupRepository{db: db}
}

// Create inserts a signup row. A duplicate-key error from the
// (shop_slug, phone, local_day) unique index is passed through untouched
// so the admission service can classify it.
func (r *signupRepository) Create(signup *models.Signup) error {
	return r.db.Create(signup).Error
}

// ExistsSince reports whether the customer already signed up at the shop
// at or after the given instant.
func (r *signupRepository) ExistsSince(shopSlug, phone string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Signup{}).
		Where("shop_slug = ? AND phone = ? AND created_at >= ?", shopSlug, phone, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByShop counts all signups a shop has ever had
func (r *signupRepository) CountByShop(shopSlug string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Signup{}).
		Where("shop_slug = ?", shopSlug).
		Count(&count).Error
	return count, err
}

// CountByShopSince counts signups at or after the given instant
func (r *signupRepository) CountByShopSince(shopSlug string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Signup{}).
		Where("shop_slug = ? AND created_at >= ?", shopSlug, since).
		Count(&count).Error
	return count, err
}

// LatestByShop returns the most recent signups, newest first
func (r *signupRepository) LatestByShop(shopSlug string, limit int) ([]models.Signup, error) {
	var signups []models.Signup
	err := r.db.Where("shop_slug = ?", shopSlug).
		Order("created_at DESC").
		Limit(limit).
		Find(&signups).Error
	return signups, err
}
