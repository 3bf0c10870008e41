package social_test

import (
	"testing"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/social"
)

func TestCreateTeamAddsOwnerMember(t *testing.T) {
	h := newHarness(t)
	owner := h.user("Owner")
	team := h.team(owner.ID, "X")

	h.must(func(uow social.UnitOfWork) error {
		members, err := h.svc.Members(h.ctx, uow, owner.ID, team.ID)
		if err != nil {
			return err
		}
		if len(members) != 1 {
			t.Fatalf("expected 1 member, got %d", len(members))
		}
		m := members[0]
		if m.User.ID != owner.ID || m.Role != models.RoleOwner || m.Status != models.MembershipAccepted {
			t.Fatalf("expected accepted owner row, got %+v", m)
		}
		return nil
	})
}

func TestTeamNameUniquePerOwner(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")
	h.team(alice.ID, "Climbing")

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.CreateTeam(h.ctx, uow, alice.ID, "Climbing", "")
		return err
	})
	expectKind(t, err, apperr.Conflict)

	// Another owner may reuse the name.
	h.team(bob.ID, "Climbing")

	other := h.team(alice.ID, "Hiking")
	err = h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.UpdateTeam(h.ctx, uow, alice.ID, other.ID, strPtr("Climbing"), nil)
		return err
	})
	expectKind(t, err, apperr.Conflict)

	h.must(func(uow social.UnitOfWork) error {
		updated, err := h.svc.UpdateTeam(h.ctx, uow, alice.ID, other.ID, strPtr("Trail running"), strPtr("weekends"))
		if err != nil {
			return err
		}
		if updated.Name != "Trail running" || updated.Description != "weekends" {
			t.Fatalf("unexpected team after update: %+v", updated)
		}
		return nil
	})

	err = h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.UpdateTeam(h.ctx, uow, bob.ID, other.ID, nil, strPtr("hijack"))
		return err
	})
	expectKind(t, err, apperr.Forbidden)
}

func TestInviteTwiceConflicts(t *testing.T) {
	h := newHarness(t)
	owner := h.user("Owner")
	bob := h.user("Bob")
	team := h.team(owner.ID, "X")

	h.must(func(uow social.UnitOfWork) error {
		if _, err := h.svc.InviteToTeam(h.ctx, uow, owner.ID, team.ID, bob.ID, ""); err != nil {
			return err
		}
		_, err := h.svc.RejectTeamInvite(h.ctx, uow, bob.ID, team.ID)
		return err
	})

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.InviteToTeam(h.ctx, uow, owner.ID, team.ID, bob.ID, "")
		return err
	})
	expectKind(t, err, apperr.Conflict)

	err = h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptTeamInvite(h.ctx, uow, bob.ID, team.ID)
		return err
	})
	expectKind(t, err, apperr.InvalidState)
}

func TestInviteToTeamValidation(t *testing.T) {
	h := newHarness(t)
	owner := h.user("Owner")
	bob := h.user("Bob")
	carol := h.user("Carol")
	team := h.team(owner.ID, "X")

	cases := []struct {
		name  string
		actor uint
		user  uint
		role  string
		kind  apperr.Kind
	}{
		{"non-owner", bob.ID, carol.ID, "", apperr.Forbidden},
		{"owner invites self", owner.ID, owner.ID, "", apperr.SelfReference},
		{"owner role", owner.ID, carol.ID, models.RoleOwner, apperr.Invalid},
		{"unknown user", owner.ID, carol.ID + 50, "", apperr.NotFound},
	}
	for _, tc := range cases {
		err := h.tx(func(uow social.UnitOfWork) error {
			_, err := h.svc.InviteToTeam(h.ctx, uow, tc.actor, team.ID, tc.user, tc.role)
			return err
		})
		if apperr.KindOf(err) != tc.kind {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.kind, err)
		}
	}

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptTeamInvite(h.ctx, uow, carol.ID, team.ID)
		return err
	})
	expectKind(t, err, apperr.NotFound)
}

func TestRemoveMemberRules(t *testing.T) {
	h := newHarness(t)
	owner := h.user("Owner")
	bob := h.user("Bob")
	carol := h.user("Carol")
	team := h.team(owner.ID, "X", bob.ID, carol.ID)

	for _, actor := range []uint{owner.ID, bob.ID} {
		err := h.tx(func(uow social.UnitOfWork) error {
			return h.svc.RemoveMember(h.ctx, uow, actor, team.ID, owner.ID)
		})
		expectKind(t, err, apperr.Forbidden)
	}

	err := h.tx(func(uow social.UnitOfWork) error {
		return h.svc.RemoveMember(h.ctx, uow, bob.ID, team.ID, carol.ID)
	})
	expectKind(t, err, apperr.Forbidden)

	h.must(func(uow social.UnitOfWork) error {
		if err := h.svc.RemoveMember(h.ctx, uow, bob.ID, team.ID, bob.ID); err != nil {
			return err
		}
		return h.svc.RemoveMember(h.ctx, uow, owner.ID, team.ID, carol.ID)
	})

	err = h.tx(func(uow social.UnitOfWork) error {
		return h.svc.RemoveMember(h.ctx, uow, owner.ID, team.ID, carol.ID)
	})
	expectKind(t, err, apperr.NotFound)

	h.must(func(uow social.UnitOfWork) error {
		members, err := h.svc.Members(h.ctx, uow, owner.ID, team.ID)
		if err != nil {
			return err
		}
		if len(members) != 1 {
			t.Fatalf("expected only the owner left, got %d members", len(members))
		}
		return nil
	})
}

func TestMembersListsAcceptedOnly(t *testing.T) {
	h := newHarness(t)
	owner := h.user("Owner")
	bob := h.user("Bob")
	carol := h.user("Carol")
	dave := h.user("Dave")
	team := h.team(owner.ID, "X", bob.ID)

	h.must(func(uow social.UnitOfWork) error {
		if _, err := h.svc.InviteToTeam(h.ctx, uow, owner.ID, team.ID, carol.ID, "coach"); err != nil {
			return err
		}
		if _, err := h.svc.InviteToTeam(h.ctx, uow, owner.ID, team.ID, dave.ID, ""); err != nil {
			return err
		}
		_, err := h.svc.RejectTeamInvite(h.ctx, uow, dave.ID, team.ID)
		return err
	})

	h.must(func(uow social.UnitOfWork) error {
		members, err := h.svc.Members(h.ctx, uow, bob.ID, team.ID)
		if err != nil {
			return err
		}
		if len(members) != 2 {
			t.Fatalf("expected 2 accepted members, got %d", len(members))
		}

		pending, err := h.svc.PendingTeamInvites(h.ctx, uow, carol.ID)
		if err != nil {
			return err
		}
		if len(pending) != 1 || pending[0].Role != "coach" || pending[0].Team.ID != team.ID {
			t.Fatalf("unexpected pending invites: %+v", pending)
		}
		return nil
	})

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.Members(h.ctx, uow, carol.ID, team.ID)
		return err
	})
	expectKind(t, err, apperr.Forbidden)
}

func TestDeleteTeamCascades(t *testing.T) {
	h := newHarness(t)
	owner := h.user("Owner")
	bob := h.user("Bob")
	carol := h.user("Carol")
	team := h.team(owner.ID, "X", bob.ID)
	event := h.event(owner.ID, "Party", "2025-05-01", "18:00", nil)

	h.must(func(uow social.UnitOfWork) error {
		if _, err := h.svc.InviteToTeam(h.ctx, uow, owner.ID, team.ID, carol.ID, ""); err != nil {
			return err
		}
		_, err := h.svc.InviteTeam(h.ctx, uow, owner.ID, event.ID, team.ID)
		return err
	})

	err := h.tx(func(uow social.UnitOfWork) error {
		return h.svc.DeleteTeam(h.ctx, uow, bob.ID, team.ID)
	})
	expectKind(t, err, apperr.Forbidden)

	h.must(func(uow social.UnitOfWork) error {
		return h.svc.DeleteTeam(h.ctx, uow, owner.ID, team.ID)
	})

	h.must(func(uow social.UnitOfWork) error {
		for _, u := range []uint{owner.ID, bob.ID, carol.ID} {
			m, err := uow.Members().Find(h.ctx, team.ID, u)
			if err != nil {
				return err
			}
			if m != nil {
				t.Fatalf("expected membership of %d to be deleted", u)
			}
		}
		ti, err := uow.TeamInvites().Find(h.ctx, event.ID, team.ID)
		if err != nil {
			return err
		}
		if ti != nil {
			t.Fatalf("expected event team invite to be deleted")
		}
		teams, err := h.svc.MemberTeams(h.ctx, uow, bob.ID)
		if err != nil {
			return err
		}
		if len(teams) != 0 {
			t.Fatalf("expected no teams for bob, got %d", len(teams))
		}
		return nil
	})
}

func TestTeamListsAndSearch(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")
	h.team(alice.ID, "Book club")
	h.team(bob.ID, "Board games", alice.ID)
	h.team(bob.ID, "Bowling")

	h.must(func(uow social.UnitOfWork) error {
		owned, err := h.svc.OwnedTeams(h.ctx, uow, alice.ID)
		if err != nil {
			return err
		}
		if len(owned) != 1 {
			t.Fatalf("expected 1 owned team, got %d", len(owned))
		}

		mine, err := h.svc.MemberTeams(h.ctx, uow, alice.ID)
		if err != nil {
			return err
		}
		if len(mine) != 2 {
			t.Fatalf("expected 2 teams, got %d", len(mine))
		}

		found, err := h.svc.SearchTeams(h.ctx, uow, alice.ID, "bo")
		if err != nil {
			return err
		}
		if len(found) != 2 {
			t.Fatalf("expected 2 matches, got %+v", found)
		}
		for _, team := range found {
			if team.Name == "Bowling" {
				t.Fatalf("search must not return teams the user is not in")
			}
		}
		return nil
	})
}
