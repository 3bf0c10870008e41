package social

import (
	"context"
	"strings"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/tokens"
)

// InviteUser invites userID to an event owned by actor.
func (s *Service) InviteUser(ctx context.Context, uow UnitOfWork, actor, eventID, userID uint) (*models.EventInvitation, error) {
	e, err := s.ownedEvent(ctx, uow, actor, eventID)
	if err != nil {
		return nil, err
	}
	if userID == e.OwnerID {
		return nil, ErrInviteEventOwner
	}
	if _, err := uow.Users().ByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.inviteUser(ctx, uow, eventID, userID)
}

// inviteUser creates a pending invitation without any ownership checks.
func (s *Service) inviteUser(ctx context.Context, uow UnitOfWork, eventID, userID uint) (*models.EventInvitation, error) {
	invitations := uow.Invitations()
	existing, err := invitations.Find(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyInvited
	}

	inv := &models.EventInvitation{EventID: eventID, UserID: userID, Status: models.InvitationPending}
	if err := invitations.Create(ctx, inv); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrAlreadyInvited
		}
		return nil, err
	}
	return inv, nil
}

func (s *Service) AcceptInvitation(ctx context.Context, uow UnitOfWork, userID, eventID uint) (*models.EventInvitation, error) {
	return s.resolveInvitation(ctx, uow, userID, eventID, models.InvitationAccepted)
}

func (s *Service) RejectInvitation(ctx context.Context, uow UnitOfWork, userID, eventID uint) (*models.EventInvitation, error) {
	return s.resolveInvitation(ctx, uow, userID, eventID, models.InvitationRejected)
}

func (s *Service) resolveInvitation(ctx context.Context, uow UnitOfWork, userID, eventID uint, next models.InvitationStatus) (*models.EventInvitation, error) {
	inv, err := uow.Invitations().Find(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNoInvitation
	}
	if !inv.Status.CanBecome(next) {
		return nil, ErrInvitationResolved
	}
	inv.Status = next
	if err := uow.Invitations().Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) AcceptInvitationByID(ctx context.Context, uow UnitOfWork, userID, invitationID uint) (*models.EventInvitation, error) {
	inv, err := s.ownInvitation(ctx, uow, userID, invitationID)
	if err != nil {
		return nil, err
	}
	return s.resolveInvitation(ctx, uow, userID, inv.EventID, models.InvitationAccepted)
}

func (s *Service) RejectInvitationByID(ctx context.Context, uow UnitOfWork, userID, invitationID uint) (*models.EventInvitation, error) {
	inv, err := s.ownInvitation(ctx, uow, userID, invitationID)
	if err != nil {
		return nil, err
	}
	return s.resolveInvitation(ctx, uow, userID, inv.EventID, models.InvitationRejected)
}

// DeleteInvitationByID lets the invitee drop an invitation from their list.
func (s *Service) DeleteInvitationByID(ctx context.Context, uow UnitOfWork, userID, invitationID uint) error {
	if _, err := s.ownInvitation(ctx, uow, userID, invitationID); err != nil {
		return err
	}
	return uow.Invitations().Delete(ctx, invitationID)
}

// ownInvitation hides invitations of other users behind NotFound.
func (s *Service) ownInvitation(ctx context.Context, uow UnitOfWork, userID, invitationID uint) (*models.EventInvitation, error) {
	inv, err := uow.Invitations().ByID(ctx, invitationID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, ErrNoInvitation
		}
		return nil, err
	}
	if inv.UserID != userID {
		return nil, ErrNoInvitation
	}
	return inv, nil
}

// InviteTeam records that a team is invited to an event. The actor must own
// the event and belong to the team.
func (s *Service) InviteTeam(ctx context.Context, uow UnitOfWork, actor, eventID, teamID uint) (*models.EventTeamInvite, error) {
	if _, err := s.ownedEvent(ctx, uow, actor, eventID); err != nil {
		return nil, err
	}
	team, err := uow.Teams().ByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != actor {
		m, err := uow.Members().Find(ctx, teamID, actor)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Status != models.MembershipAccepted {
			return nil, ErrNotTeamMember
		}
	}

	invites := uow.TeamInvites()
	existing, err := invites.Find(ctx, eventID, teamID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTeamAlreadyInvited
	}

	ti := &models.EventTeamInvite{EventID: eventID, TeamID: teamID, Status: models.TeamInvitePending}
	if err := invites.Create(ctx, ti); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrTeamAlreadyInvited
		}
		return nil, err
	}
	return ti, nil
}

// AutoInviteTeamMembers invites every accepted member of the team except the
// event owner. Members already invited are skipped; the result holds only
// the invitations created by this call.
func (s *Service) AutoInviteTeamMembers(ctx context.Context, uow UnitOfWork, eventID, teamID uint) ([]models.EventInvitation, error) {
	e, err := uow.Events().ByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	members, err := uow.Members().Accepted(ctx, teamID)
	if err != nil {
		return nil, err
	}

	created := make([]models.EventInvitation, 0, len(members))
	for _, m := range members {
		if m.UserID == e.OwnerID {
			continue
		}
		inv, err := s.inviteUser(ctx, uow, eventID, m.UserID)
		if apperr.Is(err, apperr.Conflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		created = append(created, *inv)
	}
	return created, nil
}

// InviteTeamAndMembers runs InviteTeam followed by AutoInviteTeamMembers.
func (s *Service) InviteTeamAndMembers(ctx context.Context, uow UnitOfWork, actor, eventID, teamID uint) (*models.EventTeamInvite, []models.EventInvitation, error) {
	ti, err := s.InviteTeam(ctx, uow, actor, eventID, teamID)
	if err != nil {
		return nil, nil, err
	}
	created, err := s.AutoInviteTeamMembers(ctx, uow, eventID, teamID)
	if err != nil {
		return nil, nil, err
	}
	return ti, created, nil
}

// JoinByInviteLink gives userID a pending invitation to the event behind
// the public link, or returns the one it already has.
func (s *Service) JoinByInviteLink(ctx context.Context, uow UnitOfWork, userID uint, token string) (*InvitationView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteLinkNotFound
	}
	e, err := uow.Events().FindByInviteURL(ctx, tokens.InvitePath(token))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrInviteLinkNotFound
	}
	if e.OwnerID == userID {
		return nil, ErrOwnInviteLink
	}

	inv, err := uow.Invitations().Find(ctx, e.ID, userID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		if inv, err = s.inviteUser(ctx, uow, e.ID, userID); err != nil {
			return nil, err
		}
	}

	host := ""
	if u, err := uow.Users().ByID(ctx, e.OwnerID); err == nil {
		host = u.Name
	} else if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}
	view := invitationView(*inv, e, host)
	return &view, nil
}

// AcceptTeamEventInvite is answered by the owner of the invited team.
func (s *Service) AcceptTeamEventInvite(ctx context.Context, uow UnitOfWork, actor, eventID, teamID uint) (*models.EventTeamInvite, error) {
	return s.resolveTeamEventInvite(ctx, uow, actor, eventID, teamID, models.TeamInviteAccepted)
}

func (s *Service) RejectTeamEventInvite(ctx context.Context, uow UnitOfWork, actor, eventID, teamID uint) (*models.EventTeamInvite, error) {
	return s.resolveTeamEventInvite(ctx, uow, actor, eventID, teamID, models.TeamInviteRejected)
}

func (s *Service) resolveTeamEventInvite(ctx context.Context, uow UnitOfWork, actor, eventID, teamID uint, next models.TeamInviteStatus) (*models.EventTeamInvite, error) {
	if _, err := s.ownedTeam(ctx, uow, actor, teamID); err != nil {
		return nil, err
	}
	ti, err := uow.TeamInvites().Find(ctx, eventID, teamID)
	if err != nil {
		return nil, err
	}
	if ti == nil {
		return nil, ErrTeamNotInvited
	}
	if !ti.Status.CanBecome(next) {
		return nil, ErrTeamEventResolved
	}
	ti.Status = next
	if err := uow.TeamInvites().Save(ctx, ti); err != nil {
		return nil, err
	}
	return ti, nil
}

// CancelTeamEventInvite deletes the team invite record. Member invitations
// already created by the fan-out stay.
func (s *Service) CancelTeamEventInvite(ctx context.Context, uow UnitOfWork, actor, eventID, teamID uint) error {
	if _, err := s.ownedEvent(ctx, uow, actor, eventID); err != nil {
		return err
	}
	if err := uow.TeamInvites().Delete(ctx, eventID, teamID); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return ErrTeamNotInvited
		}
		return err
	}
	return nil
}

func (s *Service) TeamsInvitedTo(ctx context.Context, uow UnitOfWork, actor, eventID uint) ([]models.EventTeamInvite, error) {
	if _, err := s.ownedEvent(ctx, uow, actor, eventID); err != nil {
		return nil, err
	}
	return uow.TeamInvites().ForEvent(ctx, eventID)
}
