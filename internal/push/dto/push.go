package dto

// SendNotificationRequest is the caller-facing notification request. It
// targets either one userId or a list of userIds.
type SendNotificationRequest struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	UserID  string   `json:"userId"`
	UserIDs []string `json:"userIds"`
	URL     string   `json:"url"`
	Icon    string   `json:"icon"`
}

// SendNotificationResponse carries aggregate counts only; individual
// delivery failures are never surfaced to the caller.
type SendNotificationResponse struct {
	Sent    int `json:"sent"`
	Expired int `json:"expired"`
}

// SubscriptionKeys mirrors the keys object of the browser's
// PushSubscription.toJSON() shape.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// RegisterSubscriptionRequest registers (or re-registers) the caller's
// own browser subscription.
type RegisterSubscriptionRequest struct {
	Endpoint string           `json:"endpoint" binding:"required"`
	Keys     SubscriptionKeys `json:"keys" binding:"required"`
}

// UnregisterSubscriptionRequest removes one of the caller's
// subscriptions by endpoint.
type UnregisterSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}
