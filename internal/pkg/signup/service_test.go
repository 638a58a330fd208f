package signup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ventzon/loyalty/app/models"
)

type fakeSignupRepo struct {
	rows      []models.Signup
	createErr error
}

func (r *fakeSignupRepo) Create(s *models.Signup) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.rows {
		if existing.ShopSlug == s.ShopSlug && existing.Phone == s.Phone && existing.LocalDay == s.LocalDay {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, *s)
	return nil
}

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

func newTestService(repo *fakeSignupRepo) (*Service, *time.Location) {
	loc, _ := time.LoadLocation("America/New_York")
	return NewService(repo, loc), loc
}

func TestAdmit_ValidationRejectsBeforeStore(t *testing.T) {
	repo := &fakeSignupRepo{}
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Admit(ctx, "", "4105551234", "")
	assert.ErrorIs(t, err, ErrMissingSlug)

	_, err = svc.Admit(ctx, "acme", "555-1234", "")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	assert.Empty(t, repo.rows)
}

func TestAdmit_SameDayIsAlreadyJoined(t *testing.T) {
	repo := &fakeSignupRepo{}
	svc, loc := newTestService(repo)
	ctx := context.Background()

	// 10:00 local on 2026-02-03.
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 10, 0, 0, 0, loc) }
	out, err := svc.Admit(ctx, "acme", "4105551234", "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, "+14105551234", repo.rows[0].Phone)
	assert.Equal(t, "2026-02-03", repo.rows[0].LocalDay)
	assert.Equal(t, models.SignupSourceWeb, repo.rows[0].Source)

	// 11:00 same local day: folded into the existing signup.
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 11, 0, 0, 0, loc) }
	out, err = svc.Admit(ctx, "acme", "(410) 555-1234", "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyJoined, out)
	assert.Len(t, repo.rows, 1)

	// 00:05 the next local day: a fresh signup.
	svc.now = func() time.Time { return time.Date(2026, 2, 4, 0, 5, 0, 0, loc) }
	out, err = svc.Admit(ctx, "acme", "4105551234", "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)
	assert.Len(t, repo.rows, 2)
}

func TestAdmit_BoundaryEdge(t *testing.T) {
	repo := &fakeSignupRepo{}
	svc, loc := newTestService(repo)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2026, 2, 3, 23, 59, 59, 0, loc) }
	out, err := svc.Admit(ctx, "acme", "4105551234", "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)

	svc.now = func() time.Time { return time.Date(2026, 2, 4, 0, 0, 1, 0, loc) }
	out, err = svc.Admit(ctx, "acme", "4105551234", "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out)

	assert.Len(t, repo.rows, 2)
}

func TestAdmit_LostRaceIsAlreadyJoined(t *testing.T) {
	repo := &fakeSignupRepo{createErr: gorm.ErrDuplicatedKey}
	svc, _ := newTestService(repo)

	out, err := svc.Admit(context.Background(), "acme", "4105551234", "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyJoined, out)
}

func TestAdmit_DistinctShopsAndPhonesAreIndependent(t *testing.T) {
	repo := &fakeSignupRepo{}
	svc, loc := newTestService(repo)
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 10, 0, 0, 0, loc) }

	out, _ := svc.Admit(ctx, "acme", "4105551234", "")
	assert.Equal(t, OutcomeCreated, out)
	out, _ = svc.Admit(ctx, "other", "4105551234", "")
	assert.Equal(t, OutcomeCreated, out)
	out, _ = svc.Admit(ctx, "acme", "4105559999", "kiosk")
	assert.Equal(t, OutcomeCreated, out)

	assert.Len(t, repo.rows, 3)
	assert.Equal(t, "kiosk", repo.rows[2].Source)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errDuplicateEntry))
	assert.False(t, isDuplicateKey(gorm.ErrInvalidDB))
}

var errDuplicateEntry = &textError{"Error 1062 (23000): Duplicate entry 'acme-+14105551234-2026-02-03' for key 'ux_signups_shop_phone_day'"}

type textError struct{ s string }

func (e *textError) Error() string { return e.s }
