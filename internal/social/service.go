// Package social holds the contact, team, event and invitation state
// machines. Every operation works on an explicitly passed UnitOfWork; the
// caller owns commit and rollback.
package social

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tariel-x/eventease/internal/apperr"
)

var (
	ErrEmailTaken      = apperr.New(apperr.Conflict, "Email is already registered")
	ErrBadCredentials  = apperr.New(apperr.Unauthenticated, "Invalid email or password")
	ErrWrongPassword   = apperr.New(apperr.Forbidden, "Current password is incorrect")
	ErrUserNotFound    = apperr.New(apperr.NotFound, "User not found")
	ErrCalendarMissing = apperr.New(apperr.NotFound, "Calendar not found")

	ErrSelfContact       = apperr.New(apperr.SelfReference, "Cannot add yourself as a contact")
	ErrContactExists     = apperr.New(apperr.Conflict, "Contact request already exists")
	ErrNoContactRequest  = apperr.New(apperr.NotFound, "No pending request found")
	ErrContactNotPending = apperr.New(apperr.InvalidState, "Contact request is not pending")
	ErrContactNotFound   = apperr.New(apperr.NotFound, "Contact relationship does not exist")

	ErrTeamNameTaken      = apperr.New(apperr.Conflict, "Team name already exists")
	ErrNotTeamOwner       = apperr.New(apperr.Forbidden, "Only team owner can do this")
	ErrInviteTeamOwner    = apperr.New(apperr.SelfReference, "Cannot invite the team owner")
	ErrOwnerRole          = apperr.New(apperr.Invalid, "Role owner is reserved for the team creator")
	ErrAlreadyInTeam      = apperr.New(apperr.Conflict, "User already invited or already in the team")
	ErrNoTeamInvite       = apperr.New(apperr.NotFound, "No pending invitation found")
	ErrTeamInviteResolved = apperr.New(apperr.InvalidState, "Team invitation is not pending")
	ErrOwnerCannotLeave   = apperr.New(apperr.Forbidden, "Owner must delete the team instead")
	ErrRemoveNotAllowed   = apperr.New(apperr.Forbidden, "Not allowed to remove this member")
	ErrNotInTeam          = apperr.New(apperr.NotFound, "User is not in this team")
	ErrNotTeamMember      = apperr.New(apperr.Forbidden, "You are not a member of this team")

	ErrNotEventOwner      = apperr.New(apperr.Forbidden, "Only event owner can do this")
	ErrInviteEventOwner   = apperr.New(apperr.SelfReference, "Owner is already part of the event")
	ErrAlreadyInvited     = apperr.New(apperr.Conflict, "User already invited to this event")
	ErrNoInvitation       = apperr.New(apperr.NotFound, "Invitation not found")
	ErrInvitationResolved = apperr.New(apperr.InvalidState, "Invitation is not pending")
	ErrTeamAlreadyInvited = apperr.New(apperr.Conflict, "Team already invited to this event")
	ErrTeamNotInvited     = apperr.New(apperr.NotFound, "Team is not invited to this event")
	ErrTeamEventResolved  = apperr.New(apperr.InvalidState, "Team event invite is not pending")
	ErrInviteLinkNotFound = apperr.New(apperr.NotFound, "Invite link not found")
	ErrOwnInviteLink      = apperr.New(apperr.SelfReference, "Owner cannot use their own invite link")
)

const (
	minPasswordLen = 8
	searchLimit    = 20
)

type Service struct {
	tokens     TokenSource
	now        func() time.Time
	bcryptCost int
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(tokens TokenSource, opts ...Option) *Service {
	s := &Service{
		tokens:     tokens,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
