package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
)

type eventRepo struct {
	db *gorm.DB
}

func (r eventRepo) Create(ctx context.Context, e *models.Event) error {
	return insert(ctx, r.db, e, "event")
}

func (r eventRepo) ByID(ctx context.Context, id uint) (*models.Event, error) {
	return byID[models.Event](ctx, r.db, id, "event")
}

func (r eventRepo) FindByInviteURL(ctx context.Context, path string) (*models.Event, error) {
	e, err := findOne[models.Event](ctx, r.db, "event_url = ?", path)
	if err != nil {
		return nil, fmt.Errorf("find event by invite link: %w", err)
	}
	return e, nil
}

func (r eventRepo) Save(ctx context.Context, e *models.Event) error {
	return save(ctx, r.db, e, "event")
}

func (r eventRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("event_id = ?", id).Delete(&models.EventInvitation{}).Error; err != nil {
		return fmt.Errorf("delete invitations of event %d: %w", id, err)
	}
	if err := db.Where("event_id = ?", id).Delete(&models.EventTeamInvite{}).Error; err != nil {
		return fmt.Errorf("delete team invites of event %d: %w", id, err)
	}
	res := db.Delete(&models.Event{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete event %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "event not found")
	}
	return nil
}

func (r eventRepo) Owned(ctx context.Context, ownerID uint) ([]models.Event, error) {
	var out []models.Event
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date, start_time, id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list events of %d: %w", ownerID, err)
	}
	return out, nil
}

func (r eventRepo) AcceptedBy(ctx context.Context, userID uint) ([]models.Event, error) {
	var out []models.Event
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Select("events.*").
		Joins("JOIN event_invitations ON event_invitations.event_id = events.id").
		Where("event_invitations.user_id = ? AND event_invitations.status = ?", userID, models.InvitationAccepted).
		Order("events.date, events.start_time, events.id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list accepted events of %d: %w", userID, err)
	}
	return out, nil
}

type invitationRepo struct {
	db *gorm.DB
}

func (r invitationRepo) Create(ctx context.Context, inv *models.EventInvitation) error {
	return insert(ctx, r.db, inv, "invitation")
}

func (r invitationRepo) Find(ctx context.Context, eventID, userID uint) (*models.EventInvitation, error) {
	inv, err := findOne[models.EventInvitation](ctx, r.db, "event_id = ? AND user_id = ?", eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("find invitation of %d to event %d: %w", userID, eventID, err)
	}
	return inv, nil
}

func (r invitationRepo) ByID(ctx context.Context, id uint) (*models.EventInvitation, error) {
	return byID[models.EventInvitation](ctx, r.db, id, "invitation")
}

func (r invitationRepo) Save(ctx context.Context, inv *models.EventInvitation) error {
	return save(ctx, r.db, inv, "invitation")
}

func (r invitationRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.EventInvitation{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete invitation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "invitation not found")
	}
	return nil
}

func (r invitationRepo) ForEvent(ctx context.Context, eventID uint) ([]models.EventInvitation, error) {
	var out []models.EventInvitation
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list invitations of event %d: %w", eventID, err)
	}
	return out, nil
}

func (r invitationRepo) ForUser(ctx context.Context, userID uint) ([]models.EventInvitation, error) {
	var out []models.EventInvitation
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list invitations of user %d: %w", userID, err)
	}
	return out, nil
}

type teamInviteRepo struct {
	db *gorm.DB
}

func (r teamInviteRepo) Create(ctx context.Context, ti *models.EventTeamInvite) error {
	return insert(ctx, r.db, ti, "team invite")
}

func (r teamInviteRepo) Find(ctx context.Context, eventID, teamID uint) (*models.EventTeamInvite, error) {
	ti, err := findOne[models.EventTeamInvite](ctx, r.db, "event_id = ? AND team_id = ?", eventID, teamID)
	if err != nil {
		return nil, fmt.Errorf("find invite of team %d to event %d: %w", teamID, eventID, err)
	}
	return ti, nil
}

func (r teamInviteRepo) Save(ctx context.Context, ti *models.EventTeamInvite) error {
	return save(ctx, r.db, ti, "team invite")
}

func (r teamInviteRepo) Delete(ctx context.Context, eventID, teamID uint) error {
	res := r.db.WithContext(ctx).Where("event_id = ? AND team_id = ?", eventID, teamID).Delete(&models.EventTeamInvite{})
	if res.Error != nil {
		return fmt.Errorf("delete invite of team %d to event %d: %w", teamID, eventID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "team invite not found")
	}
	return nil
}

func (r teamInviteRepo) ForEvent(ctx context.Context, eventID uint) ([]models.EventTeamInvite, error) {
	var out []models.EventTeamInvite
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list team invites of event %d: %w", eventID, err)
	}
	return out, nil
}
