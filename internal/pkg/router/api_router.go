package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ventzon/loyalty/app/controllers"
	"github.com/ventzon/loyalty/internal/pkg/cache"
	"github.com/ventzon/loyalty/internal/pkg/constants"
	"github.com/ventzon/loyalty/internal/pkg/env"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Use("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
		// Provider deliveries are retried on 429; never throttle them.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == constants.StripeWebhookRoute
		},
	}))

	app.Post(constants.JoinSignupRoute, controllers.HandleJoinSignup)
	app.Get(constants.JoinSettingsRoute, controllers.HandleJoinSettings)

	app.Get(constants.MerchantStatsRoute, controllers.HandleMerchantStats)
	app.Patch(constants.ShopSettingsRoute, controllers.HandleShopSettingsUpdate)

	app.Post(constants.StripeCheckoutRoute, controllers.HandleStripeCheckout)
	app.Post(constants.StripeWebhookRoute, controllers.HandleStripeWebhook)
}

// newLimiterStorage backs the rate limiter with Redis so limits hold
// across service instances, reusing the cache connection settings.
func newLimiterStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1, // Separate database for limiter state (cache uses DB 0)
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
