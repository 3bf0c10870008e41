package social

import (
	"context"
	"strings"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
)

type MemberView struct {
	ID     uint                    `json:"id"`
	TeamID uint                    `json:"team_id"`
	Role   string                  `json:"role"`
	Status models.MembershipStatus `json:"status"`
	User   UserSummary             `json:"user"`
}

// TeamInviteView is a pending team membership offered to the caller.
type TeamInviteView struct {
	TeamID uint                    `json:"team_id"`
	Role   string                  `json:"role"`
	Status models.MembershipStatus `json:"status"`
	Team   models.Team             `json:"team"`
}

// CreateTeam inserts the team and an accepted "owner" membership row.
func (s *Service) CreateTeam(ctx context.Context, uow UnitOfWork, ownerID uint, name, description string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Invalid, "Team name is required")
	}
	if _, err := uow.Users().ByID(ctx, ownerID); err != nil {
		return nil, err
	}

	existing, err := uow.Teams().FindByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTeamNameTaken
	}

	team := &models.Team{OwnerID: ownerID, Name: name, Description: strings.TrimSpace(description)}
	if err := uow.Teams().Create(ctx, team); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrTeamNameTaken
		}
		return nil, err
	}

	owner := &models.TeamMember{
		TeamID: team.ID,
		UserID: ownerID,
		Role:   models.RoleOwner,
		Status: models.MembershipAccepted,
	}
	if err := uow.Members().Create(ctx, owner); err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam applies the non-nil fields. Only the owner may update.
func (s *Service) UpdateTeam(ctx context.Context, uow UnitOfWork, actor, teamID uint, name, description *string) (*models.Team, error) {
	team, err := s.ownedTeam(ctx, uow, actor, teamID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperr.New(apperr.Invalid, "Team name is required")
		}
		if n != team.Name {
			existing, err := uow.Teams().FindByOwnerAndName(ctx, team.OwnerID, n)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != team.ID {
				return nil, ErrTeamNameTaken
			}
			team.Name = n
		}
	}
	if description != nil {
		team.Description = strings.TrimSpace(*description)
	}

	if err := uow.Teams().Save(ctx, team); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrTeamNameTaken
		}
		return nil, err
	}
	return team, nil
}

// DeleteTeam removes the team with its memberships and event invites.
func (s *Service) DeleteTeam(ctx context.Context, uow UnitOfWork, actor, teamID uint) error {
	if _, err := s.ownedTeam(ctx, uow, actor, teamID); err != nil {
		return err
	}
	return uow.Teams().Delete(ctx, teamID)
}

func (s *Service) ownedTeam(ctx context.Context, uow UnitOfWork, actor, teamID uint) (*models.Team, error) {
	team, err := uow.Teams().ByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != actor {
		return nil, ErrNotTeamOwner
	}
	return team, nil
}

// InviteToTeam offers membership to userID. An existing row for the pair,
// whatever its status, is a conflict.
func (s *Service) InviteToTeam(ctx context.Context, uow UnitOfWork, actor, teamID, userID uint, role string) (*models.TeamMember, error) {
	team, err := s.ownedTeam(ctx, uow, actor, teamID)
	if err != nil {
		return nil, err
	}
	if userID == team.OwnerID {
		return nil, ErrInviteTeamOwner
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = models.RoleMember
	}
	if role == models.RoleOwner {
		return nil, ErrOwnerRole
	}
	if _, err := uow.Users().ByID(ctx, userID); err != nil {
		return nil, err
	}

	members := uow.Members()
	existing, err := members.Find(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyInTeam
	}

	m := &models.TeamMember{TeamID: teamID, UserID: userID, Role: role, Status: models.MembershipPending}
	if err := members.Create(ctx, m); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrAlreadyInTeam
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) AcceptTeamInvite(ctx context.Context, uow UnitOfWork, userID, teamID uint) (*models.TeamMember, error) {
	return s.resolveTeamInvite(ctx, uow, userID, teamID, models.MembershipAccepted)
}

func (s *Service) RejectTeamInvite(ctx context.Context, uow UnitOfWork, userID, teamID uint) (*models.TeamMember, error) {
	return s.resolveTeamInvite(ctx, uow, userID, teamID, models.MembershipRejected)
}

func (s *Service) resolveTeamInvite(ctx context.Context, uow UnitOfWork, userID, teamID uint, next models.MembershipStatus) (*models.TeamMember, error) {
	m, err := uow.Members().Find(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNoTeamInvite
	}
	if !m.Status.CanBecome(next) {
		return nil, ErrTeamInviteResolved
	}
	m.Status = next
	if err := uow.Members().Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember hard-deletes a membership. The owner can remove anyone but
// itself; other members can only remove themselves.
func (s *Service) RemoveMember(ctx context.Context, uow UnitOfWork, actor, teamID, userID uint) error {
	team, err := uow.Teams().ByID(ctx, teamID)
	if err != nil {
		return err
	}
	if userID == team.OwnerID {
		return ErrOwnerCannotLeave
	}
	if actor != team.OwnerID && actor != userID {
		return ErrRemoveNotAllowed
	}
	if err := uow.Members().Delete(ctx, teamID, userID); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return ErrNotInTeam
		}
		return err
	}
	return nil
}

// Members lists accepted members. The caller must be one of them.
func (s *Service) Members(ctx context.Context, uow UnitOfWork, actor, teamID uint) ([]MemberView, error) {
	if _, err := uow.Teams().ByID(ctx, teamID); err != nil {
		return nil, err
	}
	rows, err := uow.Members().Accepted(ctx, teamID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	visible := false
	for _, m := range rows {
		ids = append(ids, m.UserID)
		if m.UserID == actor {
			visible = true
		}
	}
	if !visible {
		return nil, ErrNotTeamMember
	}

	users, err := uow.Users().ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]MemberView, 0, len(rows))
	for _, m := range rows {
		u, ok := users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, MemberView{ID: m.ID, TeamID: m.TeamID, Role: m.Role, Status: m.Status, User: summarize(u)})
	}
	return out, nil
}

func (s *Service) OwnedTeams(ctx context.Context, uow UnitOfWork, userID uint) ([]models.Team, error) {
	return uow.Teams().Owned(ctx, userID)
}

// MemberTeams lists teams where userID holds an accepted membership,
// owned teams included.
func (s *Service) MemberTeams(ctx context.Context, uow UnitOfWork, userID uint) ([]models.Team, error) {
	return uow.Teams().MemberOf(ctx, userID)
}

func (s *Service) PendingTeamInvites(ctx context.Context, uow UnitOfWork, userID uint) ([]TeamInviteView, error) {
	rows, err := uow.Members().PendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]TeamInviteView, 0, len(rows))
	for _, m := range rows {
		team, err := uow.Teams().ByID(ctx, m.TeamID)
		if apperr.Is(err, apperr.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, TeamInviteView{TeamID: m.TeamID, Role: m.Role, Status: m.Status, Team: *team})
	}
	return out, nil
}

// SearchTeams matches the user's owned or joined teams by name.
func (s *Service) SearchTeams(ctx context.Context, uow UnitOfWork, userID uint, query string) ([]models.Team, error) {
	return uow.Teams().Search(ctx, userID, query, searchLimit)
}
