package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ventzon/loyalty/app/models"
	"github.com/ventzon/loyalty/internal/pkg/localday"
)

type fakeSignupRepo struct {
	rows []models.Signup
}

func (r *fakeSignupRepo) Create(s *models.Signup) error { r.rows = append(r.rows, *s); return nil }

func (r *fakeSignupRepo) ExistsSince(shopSlug, phone string, since time.Time) (bool, error) {
	for _, s := range r.rows {
		if s.ShopSlug == shopSlug && s.Phone == phone && !s.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSignupRepo) CountByShop(shopSlug string) (int64, error) {
	var n int64
	for _, s := range r.rows {
		if s.ShopSlug == shopSlug {
			n++
		}
	}
	return n, nil
}

func (r *fakeSignupRepo) CountByShopSince(shopSlug string, since time.Time) (int64, error) {
	var n int64
	for _, s := range r.rows {
		if s.ShopSlug == shopSlug && !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeSignupRepo) LatestByShop(shopSlug string, limit int) ([]models.Signup, error) {
	var out []models.Signup
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].ShopSlug == shopSlug {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func TestCollect_DayBoundaryConsistency(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	now := time.Date(2026, 2, 4, 9, 30, 0, 0, loc)
	dayStart := localday.StartOfDay(now, loc)

	repo := &fakeSignupRepo{rows: []models.Signup{
		{ShopSlug: "acme", Phone: "+14105550001", CreatedAt: dayStart.Add(-2 * time.Hour)}, // yesterday
		{ShopSlug: "acme", Phone: "+14105550002", CreatedAt: dayStart.Add(-time.Second)},   // 23:59:59 yesterday
		{ShopSlug: "acme", Phone: "+14105550003", CreatedAt: dayStart},                     // midnight today
		{ShopSlug: "acme", Phone: "+14105550004", CreatedAt: dayStart.Add(9 * time.Hour)},  // today
		{ShopSlug: "other", Phone: "+14105550005", CreatedAt: dayStart.Add(time.Hour)},     // different shop
	}}

	svc := NewService(repo, loc)
	svc.now = func() time.Time { return now }

	stats, err := svc.collect(context.Background(), "acme")
	assert.NoError(t, err)

	assert.Equal(t, int64(4), stats.Totals.Total)
	assert.Equal(t, int64(2), stats.Totals.Today)
	assert.Equal(t, dayStart, stats.TodayBoundary.StartOfTodayUTC)
	assert.Equal(t, "America/New_York", stats.TodayBoundary.Timezone)
	assert.Equal(t, "2026-02-04", stats.TodayBoundary.LocalDay)
}

func TestCollect_LatestIsMaskedAndCapped(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	repo := &fakeSignupRepo{}
	base := time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC)
	for i := 0; i < LatestLimit+3; i++ {
		repo.rows = append(repo.rows, models.Signup{
			ShopSlug:  "acme",
			Phone:     "+14105551234",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	svc := NewService(repo, loc)
	svc.now = func() time.Time { return base.Add(time.Hour) }

	stats, err := svc.collect(context.Background(), "acme")
	assert.NoError(t, err)
	assert.Len(t, stats.Latest, LatestLimit)

	for _, row := range stats.Latest {
		assert.Equal(t, "•••-1234", row.PhoneMasked)
		assert.NotContains(t, row.PhoneMasked, "410555")
	}
	// Newest first.
	assert.True(t, stats.Latest[0].CreatedAt.After(stats.Latest[1].CreatedAt))
}

func TestCollect_NormalizesSlug(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	repo := &fakeSignupRepo{rows: []models.Signup{
		{ShopSlug: "acme", Phone: "+14105551234", CreatedAt: time.Now()},
	}}

	svc := NewService(repo, loc)
	stats, err := svc.collect(context.Background(), "  ACME  ")
	assert.NoError(t, err)
	assert.Equal(t, "acme", stats.ShopSlug)
	assert.Equal(t, int64(1), stats.Totals.Total)
}
