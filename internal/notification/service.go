// Package notification consumes notification events from Pub/Sub and
// feeds them into the push dispatcher, so internal systems can trigger
// pushes without calling the HTTP API.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	pushdto "notify-backend/internal/push/dto"
	"notify-backend/internal/push/usecase"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NotificationEvent is the message shape internal publishers emit.
type NotificationEvent struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

type Service struct {
	pubsubClient *pubsub.Client
	pushUsecase  usecase.PushUsecase
	topicName    string
	subName      string
}

func NewService(projectID, topicName string, pushUsecase usecase.PushUsecase, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient: client,
		pushUsecase:  pushUsecase,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification trigger with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		// Delivery is best-effort; a poison message must not loop forever.
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var event NotificationEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("[PubSub] Failed to unmarshal event: %v", err)
		return
	}
	if event.UserID == "" || event.Title == "" || event.Body == "" {
		log.Printf("[PubSub] Dropping event with missing userId/title/body")
		return
	}

	resp, err := s.pushUsecase.Deliver(ctx, &pushdto.SendNotificationRequest{
		Title:  event.Title,
		Body:   event.Body,
		UserID: event.UserID,
		URL:    event.URL,
		Icon:   event.Icon,
	})
	if err != nil {
		log.Printf("[PubSub] Delivery for user %s failed: %v", event.UserID, err)
		return
	}
	log.Printf("[PubSub] Delivered event for user %s: sent=%d expired=%d", event.UserID, resp.Sent, resp.Expired)
}
