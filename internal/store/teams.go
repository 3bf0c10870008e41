package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
)

type teamRepo struct {
	db *gorm.DB
}

func (r teamRepo) Create(ctx context.Context, t *models.Team) error {
	return insert(ctx, r.db, t, "team")
}

func (r teamRepo) ByID(ctx context.Context, id uint) (*models.Team, error) {
	return byID[models.Team](ctx, r.db, id, "team")
}

func (r teamRepo) FindByOwnerAndName(ctx context.Context, ownerID uint, name string) (*models.Team, error) {
	t, err := findOne[models.Team](ctx, r.db, "owner_id = ? AND name = ?", ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("find team %q of %d: %w", name, ownerID, err)
	}
	return t, nil
}

func (r teamRepo) Save(ctx context.Context, t *models.Team) error {
	return save(ctx, r.db, t, "team")
}

func (r teamRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
		return fmt.Errorf("delete members of team %d: %w", id, err)
	}
	if err := db.Where("team_id = ?", id).Delete(&models.EventTeamInvite{}).Error; err != nil {
		return fmt.Errorf("delete event invites of team %d: %w", id, err)
	}
	res := db.Delete(&models.Team{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete team %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "team not found")
	}
	return nil
}

func (r teamRepo) Owned(ctx context.Context, ownerID uint) ([]models.Team, error) {
	var out []models.Team
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list teams owned by %d: %w", ownerID, err)
	}
	return out, nil
}

func (r teamRepo) MemberOf(ctx context.Context, userID uint) ([]models.Team, error) {
	var out []models.Team
	err := r.db.WithContext(ctx).
		Model(&models.Team{}).
		Select("teams.*").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? AND team_members.status = ?", userID, models.MembershipAccepted).
		Order("teams.name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list teams of member %d: %w", userID, err)
	}
	return out, nil
}

// Search matches teams the user owns or belongs to by name.
func (r teamRepo) Search(ctx context.Context, userID uint, query string, limit int) ([]models.Team, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&models.TeamMember{}).
		Select("team_id").
		Where("user_id = ? AND status = ?", userID, models.MembershipAccepted)

	var out []models.Team
	err := db.
		Where("(owner_id = ? OR id IN (?))", userID, memberOf).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(query)).
		Order("name").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search teams of %d: %w", userID, err)
	}
	return out, nil
}

type memberRepo struct {
	db *gorm.DB
}

func (r memberRepo) Create(ctx context.Context, m *models.TeamMember) error {
	return insert(ctx, r.db, m, "team membership")
}

func (r memberRepo) Find(ctx context.Context, teamID, userID uint) (*models.TeamMember, error) {
	m, err := findOne[models.TeamMember](ctx, r.db, "team_id = ? AND user_id = ?", teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("find member %d of team %d: %w", userID, teamID, err)
	}
	return m, nil
}

func (r memberRepo) Save(ctx context.Context, m *models.TeamMember) error {
	return save(ctx, r.db, m, "team membership")
}

func (r memberRepo) Delete(ctx context.Context, teamID, userID uint) error {
	res := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})
	if res.Error != nil {
		return fmt.Errorf("delete member %d of team %d: %w", userID, teamID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "member not found")
	}
	return nil
}

func (r memberRepo) Accepted(ctx context.Context, teamID uint) ([]models.TeamMember, error) {
	var out []models.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND status = ?", teamID, models.MembershipAccepted).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list members of team %d: %w", teamID, err)
	}
	return out, nil
}

func (r memberRepo) PendingFor(ctx context.Context, userID uint) ([]models.TeamMember, error) {
	var out []models.TeamMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.MembershipPending).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list team invitations of %d: %w", userID, err)
	}
	return out, nil
}
