package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ventzon/loyalty/app/models"
	"github.com/ventzon/loyalty/app/repository"
	"github.com/ventzon/loyalty/internal/pkg/database"
	"github.com/ventzon/loyalty/internal/pkg/statistics"
)

// HandleMerchantStats serves the dashboard counters for a shop.
func HandleMerchantStats(c *fiber.Ctx) error {
	slug := models.NormalizeSlug(c.Query("shop_slug"))
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing shop_slug")
	}

	svc := statistics.NewServiceFromDB(database.GetDB())
	stats, err := svc.ShopStats(c.Context(), slug)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load stats")
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

// ShopSettingsRequest is the body of PATCH /api/merchant/shop-settings.
// Pointer fields distinguish "not sent" from "clear this field"; sending
// an empty string clears it, omitting it leaves it alone.
type ShopSettingsRequest struct {
	ShopSlug           string  `json:"shop_slug" validate:"required"`
	RewardGoal         *int    `json:"reward_goal" validate:"omitempty,min=2,max=31"`
	ShopName           *string `json:"shop_name" validate:"omitempty,max=120"`
	DealTitle          *string `json:"deal_title" validate:"omitempty,max=120"`
	DealDetails        *string `json:"deal_details" validate:"omitempty,max=300"`
	WelcomeSMSTemplate *string `json:"welcome_sms_template" validate:"omitempty,max=500"`
	RewardSMSTemplate  *string `json:"reward_sms_template" validate:"omitempty,max=500"`
}

// HandleShopSettingsUpdate updates a shop's merchant-editable fields.
// Billing-owned columns can never be reached through this endpoint.
func HandleShopSettingsUpdate(c *fiber.Ctx) error {
	var req ShopSettingsRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid settings payload")
	}

	slug := models.NormalizeSlug(req.ShopSlug)
	if slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing shop_slug")
	}

	updates := map[string]interface{}{}
	if req.RewardGoal != nil {
		updates["reward_goal"] = *req.RewardGoal
	}
	if req.ShopName != nil {
		updates["shop_name"] = strings.TrimSpace(*req.ShopName)
	}
	if req.DealTitle != nil {
		updates["deal_title"] = strings.TrimSpace(*req.DealTitle)
	}
	if req.DealDetails != nil {
		updates["deal_details"] = strings.TrimSpace(*req.DealDetails)
	}
	if req.WelcomeSMSTemplate != nil {
		updates["welcome_sms_template"] = strings.TrimSpace(*req.WelcomeSMSTemplate)
	}
	if req.RewardSMSTemplate != nil {
		updates["reward_sms_template"] = strings.TrimSpace(*req.RewardSMSTemplate)
	}
	if len(updates) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "No valid fields provided")
	}

	shopRepo := repository.GetGlobalFactory().GetShopRepository()
	shop, err := shopRepo.UpdateSettings(slug, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "Shop not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update settings")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok": true,
		"settings": fiber.Map{
			"shop_slug":            shop.Slug,
			"shop_name":            shop.ShopName,
			"deal_title":           shop.DealTitle,
			"deal_details":         shop.DealDetails,
			"reward_goal":          shop.RewardGoal,
			"welcome_sms_template": shop.WelcomeSMSTemplate,
			"reward_sms_template":  shop.RewardSMSTemplate,
		},
	})
}
