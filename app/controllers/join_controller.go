package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ventzon/loyalty/app/models"
	"github.com/ventzon/loyalty/app/repository"
	"github.com/ventzon/loyalty/internal/pkg/database"
	"github.com/ventzon/loyalty/internal/pkg/signup"
	"github.com/ventzon/loyalty/internal/pkg/statistics"
)

// JoinSignupRequest is the body of POST /api/join/signup. Validation runs
// before any store access; the service re-checks and normalizes the phone.
type JoinSignupRequest struct {
	ShopSlug string `json:"shop_slug" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Source   string `json:"source" validate:"omitempty,max=32"`
}

// HandleJoinSignup admits a customer signup. Duplicates within the same
// shop-local day answer 200 with already_joined, never an error.
func HandleJoinSignup(c *fiber.Ctx) error {
	var req JoinSignupRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Missing shop_slug or phone")
	}

	svc := signup.NewServiceFromDB(database.GetDB())
	outcome, err := svc.Admit(c.Context(), req.ShopSlug, req.Phone, req.Source)
	if err != nil {
		switch {
		case errors.Is(err, signup.ErrMissingSlug):
			return jsonError(c, fiber.StatusBadRequest, "Missing shop_slug")
		case errors.Is(err, signup.ErrInvalidPhone):
			return jsonError(c, fiber.StatusBadRequest, "Invalid phone (must be E.164 like +14105551234)")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "Signup failed")
		}
	}

	if outcome == signup.OutcomeAlreadyJoined {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "already_joined": true})
	}

	// New row, stale dashboard: drop the cached counters early.
	statistics.InvalidateShop(req.ShopSlug)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleJoinSettings returns the public subset of a shop's settings for
// the join page. Billing state and templates for rewards stay private.
func HandleJoinSettings(c *fiber.Ctx) error {
	slug := models.NormalizeSlug(c.Query("shop_slug"))
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing shop_slug")
	}

	shopRepo := repository.GetGlobalFactory().GetShopRepository()
	shop, err := shopRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Shop not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load shop settings")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok": true,
		"settings": fiber.Map{
			"shop_slug":            shop.Slug,
			"shop_name":            shop.ShopName,
			"deal_title":           shop.DealTitle,
			"deal_details":         shop.DealDetails,
			"welcome_sms_template": shop.WelcomeSMSTemplate,
		},
	})
}
