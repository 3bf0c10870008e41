package social

import (
	"context"

	"github.com/tariel-x/eventease/internal/models"
)

// UnitOfWork is a transactional handle over every entity the service
// touches. Everything done through one UnitOfWork commits or rolls back
// together.
//
// Repository conventions: Find* returns (nil, nil) when the row is absent,
// ByID returns an apperr.NotFound error, Create returns apperr.Conflict on a
// unique violation.
type UnitOfWork interface {
	Users() UserRepository
	Contacts() ContactRepository
	Teams() TeamRepository
	Members() MemberRepository
	Events() EventRepository
	Invitations() InvitationRepository
	TeamInvites() TeamInviteRepository
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByCalendarToken(ctx context.Context, token string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	// Delete removes the user and every row that references it.
	Delete(ctx context.Context, id uint) error
}

type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	Find(ctx context.Context, userID, contactID uint) (*models.Contact, error)
	ByID(ctx context.Context, id uint) (*models.Contact, error)
	Save(ctx context.Context, c *models.Contact) error
	// DeletePair removes both directed edges between a and b and reports how
	// many rows were deleted.
	DeletePair(ctx context.Context, a, b uint) (int64, error)
	Accepted(ctx context.Context, userID uint) ([]models.Contact, error)
	PendingReceived(ctx context.Context, userID uint) ([]models.Contact, error)
	SearchAccepted(ctx context.Context, userID uint, query string, limit int) ([]models.User, error)
}

type TeamRepository interface {
	Create(ctx context.Context, t *models.Team) error
	ByID(ctx context.Context, id uint) (*models.Team, error)
	FindByOwnerAndName(ctx context.Context, ownerID uint, name string) (*models.Team, error)
	Save(ctx context.Context, t *models.Team) error
	// Delete removes the team, its memberships and its event invites.
	Delete(ctx context.Context, id uint) error
	Owned(ctx context.Context, ownerID uint) ([]models.Team, error)
	MemberOf(ctx context.Context, userID uint) ([]models.Team, error)
	Search(ctx context.Context, userID uint, query string, limit int) ([]models.Team, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m *models.TeamMember) error
	Find(ctx context.Context, teamID, userID uint) (*models.TeamMember, error)
	Save(ctx context.Context, m *models.TeamMember) error
	Delete(ctx context.Context, teamID, userID uint) error
	Accepted(ctx context.Context, teamID uint) ([]models.TeamMember, error)
	PendingFor(ctx context.Context, userID uint) ([]models.TeamMember, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	ByID(ctx context.Context, id uint) (*models.Event, error)
	FindByInviteURL(ctx context.Context, path string) (*models.Event, error)
	Save(ctx context.Context, e *models.Event) error
	// Delete removes the event, its invitations and its team invites.
	Delete(ctx context.Context, id uint) error
	// Owned and AcceptedBy are ordered by date then start time.
	Owned(ctx context.Context, ownerID uint) ([]models.Event, error)
	AcceptedBy(ctx context.Context, userID uint) ([]models.Event, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *models.EventInvitation) error
	Find(ctx context.Context, eventID, userID uint) (*models.EventInvitation, error)
	ByID(ctx context.Context, id uint) (*models.EventInvitation, error)
	Save(ctx context.Context, inv *models.EventInvitation) error
	Delete(ctx context.Context, id uint) error
	ForEvent(ctx context.Context, eventID uint) ([]models.EventInvitation, error)
	ForUser(ctx context.Context, userID uint) ([]models.EventInvitation, error)
}

type TeamInviteRepository interface {
	Create(ctx context.Context, ti *models.EventTeamInvite) error
	Find(ctx context.Context, eventID, teamID uint) (*models.EventTeamInvite, error)
	Save(ctx context.Context, ti *models.EventTeamInvite) error
	Delete(ctx context.Context, eventID, teamID uint) error
	ForEvent(ctx context.Context, eventID uint) ([]models.EventTeamInvite, error)
}

// TokenSource produces URL-safe random strings.
type TokenSource interface {
	CalendarToken() (string, error)
	InviteToken() (string, error)
}
