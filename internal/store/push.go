package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
)

// ReplacePushSubscription stores sub as the user's only subscription.
func (s *Store) ReplacePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", sub.UserID).Delete(&models.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("delete old push subscriptions: %w", err)
		}
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("create push subscription: %w", err)
		}
		return nil
	})
}

func (s *Store) PushSubscriptions(ctx context.Context, userID uint) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list push subscriptions of %d: %w", userID, err)
	}
	return subs, nil
}

func (s *Store) DeletePushSubscription(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("delete push subscription %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeletePushSubscriptionByEndpoint(ctx context.Context, userID uint, endpoint string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{})
	if res.Error != nil {
		return fmt.Errorf("delete push subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Subscription not found")
	}
	return nil
}
