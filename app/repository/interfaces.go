package repository

import (
	"time"

	"github.com/ventzon/loyalty/app/models"
	"gorm.io/gorm"
)

// ShopRepository defines the interface for shop-related database operations
type ShopRepository interface {
	GetBySlug(slug string) (*models.Shop, error)
	Create(shop *models.Shop) error
	UpdateSettings(slug string, updates map[string]interface{}) (*models.Shop, error)
}

// SignupRepository defines the interface for signup-related database operations
type SignupRepository interface {
	Create(signup *models.Signup) error
	ExistsSince(shopSlug, phone string, since time.Time) (bool, error)
	CountByShop(shopSlug string) (int64, error)
	CountByShopSince(shopSlug string, since time.Time) (int64, error)
	LatestByShop(shopSlug string, limit int) ([]models.Signup, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Shop   ShopRepository
	Signup SignupRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Shop:   NewShopRepository(db),
		Signup: NewSignupRepository(db),
	}
}
