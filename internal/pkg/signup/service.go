package signup

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ventzon/loyalty/app/models"
	"github.com/ventzon/loyalty/app/repository"
	"github.com/ventzon/loyalty/internal/pkg/localday"
	"github.com/ventzon/loyalty/internal/pkg/phone"
)

type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyJoined Outcome = "already_joined"
)

var (
	ErrMissingSlug  = errors.New("shop slug is required")
	ErrInvalidPhone = errors.New("invalid phone number")
)

// Service admits at most one qualifying signup per customer per shop per
// local calendar day. The read check is a courtesy fast path; the unique
// index over (shop_slug, phone, local_day) is what actually closes the
// race between concurrent requests, and losing that race is a success.
type Service struct {
	repo repository.SignupRepository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates an admission service from an injected repository and
// reference timezone.
func NewService(repo repository.SignupRepository, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// NewServiceFromDB creates an admission service from a GORM DB handle,
// using the configured reference timezone.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewSignupRepository(db), localday.Location())
}

// Admit validates the attempt, scopes the duplicate check to the current
// shop-local day and inserts the signup. Both duplicate paths (row found,
// insert lost the race) report already_joined, never an error: the
// customer's intent is satisfied either way.
func (s *Service) Admit(ctx context.Context, shopSlug, rawPhone, source string) (Outcome, error) {
	_ = ctx
	slug := models.NormalizeSlug(shopSlug)
	if slug == "" {
		return "", ErrMissingSlug
	}
	normalized := phone.Normalize(rawPhone)
	if normalized == "" {
		return "", ErrInvalidPhone
	}

	now := s.now()
	dayStart := localday.StartOfDay(now, s.loc)

	exists, err := s.repo.ExistsSince(slug, normalized, dayStart)
	if err != nil {
		return "", err
	}
	if exists {
		return OutcomeAlreadyJoined, nil
	}

	src := strings.TrimSpace(source)
	if src == "" {
		src = models.SignupSourceWeb
	}
	// Stamp the row with the service clock so created_at and the day
	// window can never disagree about which side of midnight this falls on.
	row := &models.Signup{
		ShopSlug:  slug,
		Phone:     normalized,
		LocalDay:  localday.DayString(now, s.loc),
		Source:    src,
		CreatedAt: now,
	}
	if err := s.repo.Create(row); err != nil {
		if isDuplicateKey(err) {
			return OutcomeAlreadyJoined, nil
		}
		return "", err
	}
	return OutcomeCreated, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for stores without error translation enabled.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "error 1062")
}
