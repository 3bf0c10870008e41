package models

// Status values are stored as text and are part of the public API.
// Each entity gets its own type because their transition tables differ.

type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactAccepted ContactStatus = "accepted"
	ContactRejected ContactStatus = "rejected"
)

// CanBecome reports whether a contact edge may move from s to next.
func (s ContactStatus) CanBecome(next ContactStatus) bool {
	return s == ContactPending && (next == ContactAccepted || next == ContactRejected)
}

type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
	MembershipRejected MembershipStatus = "rejected"
)

func (s MembershipStatus) CanBecome(next MembershipStatus) bool {
	return s == MembershipPending && (next == MembershipAccepted || next == MembershipRejected)
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

func (s InvitationStatus) CanBecome(next InvitationStatus) bool {
	return s == InvitationPending && (next == InvitationAccepted || next == InvitationRejected)
}

type TeamInviteStatus string

const (
	TeamInvitePending  TeamInviteStatus = "pending"
	TeamInviteAccepted TeamInviteStatus = "accepted"
	TeamInviteRejected TeamInviteStatus = "rejected"
)

func (s TeamInviteStatus) CanBecome(next TeamInviteStatus) bool {
	return s == TeamInvitePending && (next == TeamInviteAccepted || next == TeamInviteRejected)
}

// Team roles. Any other string is accepted as a custom member role.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)
