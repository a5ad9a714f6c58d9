package repository

import (
	"time"

	pushdomain "notify-backend/internal/push/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines the subscription store operations the
// dispatcher and registration endpoints need.
type SubscriptionRepository interface {
	Save(sub *pushdomain.PushSubscription) error
	FindByUserIDs(userIDs []string) ([]pushdomain.PushSubscription, error)
	DeleteByEndpoints(endpoints []string) error
	DeleteByUserIDAndEndpoint(userID, endpoint string) error
}

// subscriptionRepository implements SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new instance of subscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// Save upserts on the endpoint: a browser re-registering the same
// endpoint updates keys and owner in place.
func (r *subscriptionRepository) Save(sub *pushdomain.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
}

func (r *subscriptionRepository) FindByUserIDs(userIDs []string) ([]pushdomain.PushSubscription, error) {
	var subs []pushdomain.PushSubscription
	err := r.db.Where("user_id IN ?", userIDs).Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *subscriptionRepository) DeleteByEndpoints(endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}
	return r.db.Where("endpoint IN ?", endpoints).Delete(&pushdomain.PushSubscription{}).Error
}

func (r *subscriptionRepository) DeleteByUserIDAndEndpoint(userID, endpoint string) error {
	return r.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&pushdomain.PushSubscription{}).Error
}
