package social_test

import (
	"testing"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/social"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	h := newHarness(t)

	var u *models.User
	h.must(func(uow social.UnitOfWork) error {
		var err error
		u, err = h.svc.Register(h.ctx, uow, " Ana ", "Ana@Example.com", "s3cretpass")
		return err
	})
	if u.Name != "Ana" || u.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if string(u.PasswordHash) == "s3cretpass" {
		t.Fatalf("password must be hashed")
	}

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.Register(h.ctx, uow, "Other", "ana@example.com", "anotherpass")
		return err
	})
	expectKind(t, err, apperr.Conflict)

	h.must(func(uow social.UnitOfWork) error {
		got, err := h.svc.Authenticate(h.ctx, uow, "ana@example.com", "s3cretpass")
		if err != nil {
			return err
		}
		if got.ID != u.ID {
			t.Fatalf("expected user %d, got %d", u.ID, got.ID)
		}
		return nil
	})

	for _, creds := range [][2]string{{"ana@example.com", "wrong-pass"}, {"nobody@example.com", "s3cretpass"}} {
		err := h.tx(func(uow social.UnitOfWork) error {
			_, err := h.svc.Authenticate(h.ctx, uow, creds[0], creds[1])
			return err
		})
		expectKind(t, err, apperr.Unauthenticated)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	cases := [][3]string{
		{"", "a@example.com", "password123"},
		{"A", "not-an-email", "password123"},
		{"A", "a@example.com", "short"},
	}
	for _, c := range cases {
		err := h.tx(func(uow social.UnitOfWork) error {
			_, err := h.svc.Register(h.ctx, uow, c[0], c[1], c[2])
			return err
		})
		expectKind(t, err, apperr.Invalid)
	}
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	u := h.user("Ana")

	err := h.tx(func(uow social.UnitOfWork) error {
		return h.svc.ChangePassword(h.ctx, uow, u.ID, "bad", "newpassword")
	})
	expectKind(t, err, apperr.Forbidden)

	h.must(func(uow social.UnitOfWork) error {
		if err := h.svc.ChangePassword(h.ctx, uow, u.ID, "password123", "newpassword"); err != nil {
			return err
		}
		_, err := h.svc.Authenticate(h.ctx, uow, u.Email, "newpassword")
		return err
	})
}

func TestCalendarTokenLifecycle(t *testing.T) {
	h := newHarness(t)
	u := h.user("Ana")

	var first, second, rotated string
	h.must(func(uow social.UnitOfWork) error {
		var err error
		if first, err = h.svc.CalendarToken(h.ctx, uow, u.ID); err != nil {
			return err
		}
		if second, err = h.svc.CalendarToken(h.ctx, uow, u.ID); err != nil {
			return err
		}
		rotated, err = h.svc.RotateCalendarToken(h.ctx, uow, u.ID)
		return err
	})
	if first == "" || first != second {
		t.Fatalf("expected a stable token, got %q and %q", first, second)
	}
	if rotated == first {
		t.Fatalf("expected rotation to issue a new token")
	}

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.UserByCalendarToken(h.ctx, uow, first)
		return err
	})
	expectKind(t, err, apperr.NotFound)

	h.must(func(uow social.UnitOfWork) error {
		got, err := h.svc.UserByCalendarToken(h.ctx, uow, rotated)
		if err != nil {
			return err
		}
		if got.ID != u.ID {
			t.Fatalf("expected user %d, got %d", u.ID, got.ID)
		}
		return nil
	})
}

func TestSetTimezone(t *testing.T) {
	h := newHarness(t)
	u := h.user("Ana")

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.SetTimezone(h.ctx, uow, u.ID, "Mars/Olympus")
		return err
	})
	expectKind(t, err, apperr.Invalid)

	for _, tz := range []string{"Local", " Local "} {
		err = h.tx(func(uow social.UnitOfWork) error {
			_, err := h.svc.SetTimezone(h.ctx, uow, u.ID, tz)
			return err
		})
		expectKind(t, err, apperr.Invalid)
	}

	h.must(func(uow social.UnitOfWork) error {
		got, err := h.svc.SetTimezone(h.ctx, uow, u.ID, "Europe/Berlin")
		if err != nil {
			return err
		}
		if social.Location(got).String() != "Europe/Berlin" {
			t.Fatalf("expected Europe/Berlin, got %s", social.Location(got))
		}
		got, err = h.svc.SetTimezone(h.ctx, uow, u.ID, "")
		if err != nil {
			return err
		}
		if got.Timezone != nil {
			t.Fatalf("expected timezone to be cleared")
		}
		return nil
	})
}

func TestDeleteAccountCascades(t *testing.T) {
	h := newHarness(t)
	ana := h.user("Ana")
	bob := h.user("Bob")
	h.friends(ana.ID, bob.ID)
	team := h.team(ana.ID, "Ana's", bob.ID)
	e := h.event(ana.ID, "Party", "2025-08-08", "20:00", nil)
	h.must(func(uow social.UnitOfWork) error {
		_, err := h.svc.InviteUser(h.ctx, uow, ana.ID, e.ID, bob.ID)
		return err
	})

	h.must(func(uow social.UnitOfWork) error {
		return h.svc.DeleteAccount(h.ctx, uow, ana.ID)
	})

	h.must(func(uow social.UnitOfWork) error {
		contacts, err := h.svc.Contacts(h.ctx, uow, bob.ID)
		if err != nil {
			return err
		}
		if len(contacts) != 0 {
			t.Fatalf("expected contacts to be gone, got %d", len(contacts))
		}
		if m, err := uow.Members().Find(h.ctx, team.ID, bob.ID); err != nil || m != nil {
			t.Fatalf("expected team membership to be gone, got %+v (%v)", m, err)
		}
		invs, err := h.svc.InvitationsFor(h.ctx, uow, bob.ID)
		if err != nil {
			return err
		}
		if len(invs) != 0 {
			t.Fatalf("expected invitations to be gone, got %d", len(invs))
		}
		_, err = h.svc.GetUser(h.ctx, uow, ana.ID)
		if !apperr.Is(err, apperr.NotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		return nil
	})
}
