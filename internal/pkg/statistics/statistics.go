package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ventzon/loyalty/app/models"
	"github.com/ventzon/loyalty/app/repository"
	"github.com/ventzon/loyalty/internal/pkg/cache"
	"github.com/ventzon/loyalty/internal/pkg/localday"
	"github.com/ventzon/loyalty/internal/pkg/phone"
)

const (
	CacheKeyShopStats = "statistics:shop:%s" // Format with shop slug
	CacheExpiration   = 30 * time.Second

	LatestLimit = 10
)

// Totals are the headline counters on the merchant dashboard.
type Totals struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
}

// LatestSignup is one row of the recent-signups table. Phones leave this
// package masked; the raw number is never part of the output contract.
type LatestSignup struct {
	PhoneMasked string    `json:"phone_masked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Boundary echoes which day window the counters were computed against.
type Boundary struct {
	Timezone        string    `json:"timezone"`
	StartOfTodayUTC time.Time `json:"start_of_today_utc"`
	LocalDay        string    `json:"local_day"`
}

type ShopStats struct {
	ShopSlug      string         `json:"shop_slug"`
	Totals        Totals         `json:"totals"`
	Latest        []LatestSignup `json:"latest"`
	TodayBoundary Boundary       `json:"today_boundary"`
}

// Service is the read side of the signup ledger. "Today" uses the same
// localday calculator and timezone as signup admission; anything else and
// the dashboard would disagree with the gate about what day it is.
type Service struct {
	repo repository.SignupRepository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo repository.SignupRepository, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewSignupRepository(db), localday.Location())
}

// ShopStats returns the dashboard numbers for a shop, served from the
// cache when a fresh copy exists.
func (s *Service) ShopStats(ctx context.Context, shopSlug string) (*ShopStats, error) {
	slug := models.NormalizeSlug(shopSlug)
	key := fmt.Sprintf(CacheKeyShopStats, slug)

	if cached, err := cache.Get(key); err == nil && cached != "" {
		var stats ShopStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.collect(ctx, slug)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(stats); err == nil {
		if err := cache.Set(key, string(encoded), CacheExpiration); err != nil {
			log.Printf("statistics: failed to cache stats for %s: %v", slug, err)
		}
	}
	return stats, nil
}

func (s *Service) collect(ctx context.Context, slug string) (*ShopStats, error) {
	_ = ctx
	now := s.now()
	dayStart := localday.StartOfDay(now, s.loc)

	total, err := s.repo.CountByShop(slug)
	if err != nil {
		return nil, err
	}
	today, err := s.repo.CountByShopSince(slug, dayStart)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.LatestByShop(slug, LatestLimit)
	if err != nil {
		return nil, err
	}

	latest := make([]LatestSignup, 0, len(rows))
	for _, row := range rows {
		latest = append(latest, LatestSignup{
			PhoneMasked: phone.Mask(row.Phone),
			CreatedAt:   row.CreatedAt,
		})
	}

	return &ShopStats{
		ShopSlug: slug,
		Totals:   Totals{Total: total, Today: today},
		Latest:   latest,
		TodayBoundary: Boundary{
			Timezone:        s.loc.String(),
			StartOfTodayUTC: dayStart,
			LocalDay:        localday.DayString(now, s.loc),
		},
	}, nil
}

// InvalidateShop drops the cached stats for a shop, so the next dashboard
// read recounts.
func InvalidateShop(shopSlug string) {
	key := fmt.Sprintf(CacheKeyShopStats, models.NormalizeSlug(shopSlug))
	if err := cache.Delete(key); err != nil {
		log.Printf("statistics: failed to invalidate cache for %s: %v", shopSlug, err)
	}
}
