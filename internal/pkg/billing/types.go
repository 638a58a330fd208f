package billing

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

const ProviderStripe = "stripe"

// NormalizedEvent is the provider-agnostic shape the billing service
// applies to shop state. ShopSlug may be empty when the provider payload
// carried no metadata; such events are acknowledged but change nothing.
type NormalizedEvent struct {
	ID             string
	Type           string
	ShopSlug       string
	Status         string
	CustomerID     string
	SubscriptionID string
}

// CheckoutSessionInput describes a subscription checkout to create for a
// shop. Plan is one of the two fixed plans ("monthly" or "yearly").
type CheckoutSessionInput struct {
	ShopSlug string
	Plan     string
	Origin   string
}
