package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tariel-x/eventease/internal/models"
)

type userRepo struct {
	db *gorm.DB
}

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	return insert(ctx, r.db, u, "user")
}

func (r userRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	return byID[models.User](ctx, r.db, id, "user")
}

func (r userRepo) ByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := findOne[models.User](ctx, r.db, "LOWER(email) = LOWER(?)", email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r userRepo) FindByCalendarToken(ctx context.Context, token string) (*models.User, error) {
	u, err := findOne[models.User](ctx, r.db, "calendar_token = ?", token)
	if err != nil {
		return nil, fmt.Errorf("find user by calendar token: %w", err)
	}
	return u, nil
}

func (r userRepo) Save(ctx context.Context, u *models.User) error {
	return save(ctx, r.db, u, "user")
}

func (r userRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("user_id = ? OR contact_id = ?", id, id).Delete(&models.Contact{}).Error; err != nil {
		return fmt.Errorf("delete contacts of user %d: %w", id, err)
	}

	var teamIDs []uint
	if err := db.Model(&models.Team{}).Where("owner_id = ?", id).Pluck("id", &teamIDs).Error; err != nil {
		return fmt.Errorf("list teams of user %d: %w", id, err)
	}
	teams := teamRepo{db: r.db}
	for _, teamID := range teamIDs {
		if err := teams.Delete(ctx, teamID); err != nil {
			return err
		}
	}
	if err := db.Where("user_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
		return fmt.Errorf("delete memberships of user %d: %w", id, err)
	}

	var eventIDs []uint
	if err := db.Model(&models.Event{}).Where("owner_id = ?", id).Pluck("id", &eventIDs).Error; err != nil {
		return fmt.Errorf("list events of user %d: %w", id, err)
	}
	events := eventRepo{db: r.db}
	for _, eventID := range eventIDs {
		if err := events.Delete(ctx, eventID); err != nil {
			return err
		}
	}
	if err := db.Where("user_id = ?", id).Delete(&models.EventInvitation{}).Error; err != nil {
		return fmt.Errorf("delete invitations of user %d: %w", id, err)
	}
	if err := db.Where("user_id = ?", id).Delete(&models.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("delete push subscriptions of user %d: %w", id, err)
	}

	if err := db.Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
