package constants

// Static route constants
const (
	JoinSignupRoute     = "/api/join/signup"
	JoinSettingsRoute   = "/api/join/settings"
	MerchantStatsRoute  = "/api/merchant/stats"
	ShopSettingsRoute   = "/api/merchant/shop-settings"
	StripeCheckoutRoute = "/api/stripe/checkout"
	StripeWebhookRoute  = "/api/stripe/webhook"
)
