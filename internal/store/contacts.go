package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tariel-x/eventease/internal/models"
)

type contactRepo struct {
	db *gorm.DB
}

func (r contactRepo) Create(ctx context.Context, c *models.Contact) error {
	return insert(ctx, r.db, c, "contact")
}

func (r contactRepo) Find(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	c, err := findOne[models.Contact](ctx, r.db, "user_id = ? AND contact_id = ?", userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("find contact %d->%d: %w", userID, contactID, err)
	}
	return c, nil
}

func (r contactRepo) ByID(ctx context.Context, id uint) (*models.Contact, error) {
	return byID[models.Contact](ctx, r.db, id, "contact request")
}

func (r contactRepo) Save(ctx context.Context, c *models.Contact) error {
	return save(ctx, r.db, c, "contact")
}

func (r contactRepo) DeletePair(ctx context.Context, a, b uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(user_id = ? AND contact_id = ?) OR (user_id = ? AND contact_id = ?)", a, b, b, a).
		Delete(&models.Contact{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete contacts %d<->%d: %w", a, b, res.Error)
	}
	return res.RowsAffected, nil
}

func (r contactRepo) Accepted(ctx context.Context, userID uint) ([]models.Contact, error) {
	var out []models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ContactAccepted).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list contacts of %d: %w", userID, err)
	}
	return out, nil
}

func (r contactRepo) PendingReceived(ctx context.Context, userID uint) ([]models.Contact, error) {
	var out []models.Contact
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND status = ?", userID, models.ContactPending).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list pending requests of %d: %w", userID, err)
	}
	return out, nil
}

func (r contactRepo) SearchAccepted(ctx context.Context, userID uint, query string, limit int) ([]models.User, error) {
	pattern := likePattern(query)
	var out []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*").
		Joins("JOIN contacts ON contacts.contact_id = users.id").
		Where("contacts.user_id = ? AND contacts.status = ?", userID, models.ContactAccepted).
		Where(`(LOWER(users.name) LIKE ? ESCAPE '\' OR LOWER(users.email) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("users.name").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search contacts of %d: %w", userID, err)
	}
	return out, nil
}
