package repository

import (
	"github.com/ventzon/loyalty/app/models"
	"gorm.io/gorm"
)

// shopRepository implements the ShopRepository interface
type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository instance
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// GetBySlug retrieves a shop by its slug
func (r *shopRepository) GetBySlug(slug string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.Where("slug = ?", models.NormalizeSlug(slug)).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// Create creates a new shop in the database
func (r *shopRepository) Create(shop *models.Shop) error {
	return r.db.Create(shop).Error
}

// UpdateSettings applies merchant-editable fields only and returns the
// updated row. Billing-owned columns (is_paid, subscription_status,
// stripe ids) are never part of updates; callers build the map from a
// validated request.
func (r *shopRepository) UpdateSettings(slug string, updates map[string]interface{}) (*models.Shop, error) {
	normalized := models.NormalizeSlug(slug)
	tx := r.db.Model(&models.Shop{}).Where("slug = ?", normalized).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var shop models.Shop
	if err := r.db.Where("slug = ?", normalized).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}
