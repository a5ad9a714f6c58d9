package usecase

import (
	"context"
	"errors"

	pushdomain "notify-backend/internal/push/domain"
	pushdto "notify-backend/internal/push/dto"
)

const (
	maxTitleLen   = 200
	maxBodyLen    = 1000
	maxRecipients = 1000

	defaultURL  = "/"
	defaultIcon = "/icons/icon-192.png"
)

// Validation errors, mapped to HTTP 400 by the handler.
var (
	ErrMissingTitle      = errors.New("title is required")
	ErrMissingBody       = errors.New("body is required")
	ErrTitleTooLong      = errors.New("title exceeds 200 characters")
	ErrBodyTooLong       = errors.New("body exceeds 1000 characters")
	ErrNoRecipients      = errors.New("userId or userIds is required")
	ErrTooManyRecipients = errors.New("userIds exceeds 1000 entries")
)

// ErrNotConfigured means the VAPID identity is absent; dispatch cannot
// work for any recipient. Mapped to HTTP 500.
var ErrNotConfigured = errors.New("push: VAPID identity not configured")

// IsValidationError reports whether err is a request-shape error rather
// than a processing failure.
func IsValidationError(err error) bool {
	for _, v := range []error{
		ErrMissingTitle, ErrMissingBody, ErrTitleTooLong,
		ErrBodyTooLong, ErrNoRecipients, ErrTooManyRecipients,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// PushUsecase is the delivery subsystem's contract.
type PushUsecase interface {
	// Deliver fans one notification out to every subscription of the
	// requested recipients, prunes endpoints the push services report
	// gone, and returns aggregate counts. Delivery is best-effort per
	// subscription.
	Deliver(ctx context.Context, req *pushdto.SendNotificationRequest) (*pushdto.SendNotificationResponse, error)

	RegisterSubscription(userID string, req *pushdto.RegisterSubscriptionRequest) (*pushdomain.PushSubscription, error)
	UnregisterSubscription(userID, endpoint string) error
}
