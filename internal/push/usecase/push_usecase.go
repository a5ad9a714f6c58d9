package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"

	pushdomain "notify-backend/internal/push/domain"
	pushdto "notify-backend/internal/push/dto"
	"notify-backend/internal/push/repository"
	"notify-backend/pkg/webpush"
)

// notificationPayload is the JSON body the service worker receives.
type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

// pushUsecase implements PushUsecase interface
type pushUsecase struct {
	subRepo  repository.SubscriptionRepository
	identity *webpush.Identity // nil when VAPID config is absent
	client   *http.Client
	workers  int
	ttl      int
}

// NewPushUsecase creates a new instance of pushUsecase. identity may be
// nil when VAPID configuration is absent; registration still works but
// Deliver returns ErrNotConfigured. The client's timeout bounds each
// push-service POST so one hung connection cannot stall the fan-out.
func NewPushUsecase(subRepo repository.SubscriptionRepository, identity *webpush.Identity, client *http.Client, workers, ttl int) PushUsecase {
	if client == nil {
		client = http.DefaultClient
	}
	if workers <= 0 {
		workers = 8
	}
	if ttl <= 0 {
		ttl = 86400
	}
	return &pushUsecase{
		subRepo:  subRepo,
		identity: identity,
		client:   client,
		workers:  workers,
		ttl:      ttl,
	}
}

func (u *pushUsecase) Deliver(ctx context.Context, req *pushdto.SendNotificationRequest) (*pushdto.SendNotificationResponse, error) {
	recipients, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	if u.identity == nil {
		return nil, ErrNotConfigured
	}

	subs, err := u.subRepo.FindByUserIDs(recipients)
	if err != nil {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return &pushdto.SendNotificationResponse{}, nil
	}

	payload, err := json.Marshal(notificationPayload{
		Title: req.Title,
		Body:  req.Body,
		URL:   valueOr(req.URL, defaultURL),
		Icon:  valueOr(req.Icon, defaultIcon),
	})
	if err != nil {
		return nil, err
	}

	// Bounded fan-out. Every pipeline derives its own ephemeral key and
	// salt, so there is no shared encryption state between workers.
	results := make([]pushdomain.DeliveryResult, len(subs))
	sem := make(chan struct{}, u.workers)
	var wg sync.WaitGroup
	for i := range subs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = u.send(ctx, payload, &subs[i])
		}(i)
	}
	// All attempts finish before any pruning, so a subscription whose
	// delivery is in flight is never deleted under it.
	wg.Wait()

	resp := &pushdto.SendNotificationResponse{}
	var expired []string
	for _, res := range results {
		switch res.Outcome {
		case pushdomain.OutcomeSent:
			resp.Sent++
		case pushdomain.OutcomeExpired:
			resp.Expired++
			expired = append(expired, res.Endpoint)
		default:
			log.Printf("[Push] delivery to %s failed: %v", res.Endpoint, res.Reason)
		}
	}

	if len(expired) > 0 {
		if err := u.subRepo.DeleteByEndpoints(expired); err != nil {
			log.Printf("[Push] pruning %d expired subscriptions failed: %v", len(expired), err)
		} else {
			log.Printf("[Push] pruned %d expired subscriptions", len(expired))
		}
	}

	return resp, nil
}

// send runs the full per-subscription pipeline: VAPID header, key
// agreement, encryption, wire assembly, one HTTP POST.
func (u *pushUsecase) send(ctx context.Context, payload []byte, sub *pushdomain.PushSubscription) pushdomain.DeliveryResult {
	failed := func(err error) pushdomain.DeliveryResult {
		return pushdomain.DeliveryResult{Endpoint: sub.Endpoint, Outcome: pushdomain.OutcomeFailed, Reason: err}
	}

	authHeader, err := u.identity.AuthorizationHeader(sub.Endpoint)
	if err != nil {
		return failed(err)
	}
	body, err := webpush.EncryptPayload(payload, sub.P256dh, sub.Auth)
	if err != nil {
		return failed(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return failed(err)
	}
	httpReq.Header.Set("Authorization", authHeader)
	httpReq.Header.Set("Content-Encoding", "aes128gcm")
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpReq.Header.Set("TTL", strconv.Itoa(u.ttl))
	httpReq.Header.Set("Urgency", "high")

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return failed(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return pushdomain.DeliveryResult{Endpoint: sub.Endpoint, Outcome: pushdomain.OutcomeExpired}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return pushdomain.DeliveryResult{Endpoint: sub.Endpoint, Outcome: pushdomain.OutcomeSent}
	default:
		return failed(fmt.Errorf("push service returned status %d", resp.StatusCode))
	}
}

func (u *pushUsecase) RegisterSubscription(userID string, req *pushdto.RegisterSubscriptionRequest) (*pushdomain.PushSubscription, error) {
	sub := &pushdomain.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := u.subRepo.Save(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (u *pushUsecase) UnregisterSubscription(userID, endpoint string) error {
	return u.subRepo.DeleteByUserIDAndEndpoint(userID, endpoint)
}

// validateRequest checks shape and lengths and resolves the recipient id
// set. It runs before any store or network activity.
func validateRequest(req *pushdto.SendNotificationRequest) ([]string, error) {
	if req.Title == "" {
		return nil, ErrMissingTitle
	}
	if req.Body == "" {
		return nil, ErrMissingBody
	}
	if len(req.Title) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	if len(req.Body) > maxBodyLen {
		return nil, ErrBodyTooLong
	}

	recipients := req.UserIDs
	if req.UserID != "" {
		recipients = append([]string{req.UserID}, recipients...)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if len(recipients) > maxRecipients {
		return nil, ErrTooManyRecipients
	}
	for _, id := range recipients {
		if id == "" {
			return nil, ErrNoRecipients
		}
	}
	return recipients, nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
