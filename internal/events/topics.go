package events

// Topics emitted by the storefront core.
const (
	// TopicCartChanged fires after any successful cart mutation.
	TopicCartChanged = "cart.changed"
	// TopicCartEmptied fires when the cart length reaches zero.
	TopicCartEmptied = "cart.emptied"
	// TopicCheckoutCompleted fires after a purchase has been recorded.
	TopicCheckoutCompleted = "checkout.completed"
	// TopicHistoryCleared fires when the purchase history is wiped.
	TopicHistoryCleared = "history.cleared"
)
