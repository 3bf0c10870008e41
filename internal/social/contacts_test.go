package social_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/social"
)

func TestAcceptMakesContactMutual(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")

	h.friends(alice.ID, bob.ID)

	h.must(func(uow social.UnitOfWork) error {
		for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
			ok, err := h.svc.IsContact(h.ctx, uow, pair[0], pair[1])
			if err != nil {
				return err
			}
			if !ok {
				t.Fatalf("expected %d -> %d to be a contact", pair[0], pair[1])
			}
			edge, err := uow.Contacts().Find(h.ctx, pair[0], pair[1])
			if err != nil {
				return err
			}
			if edge.Status != models.ContactAccepted {
				t.Fatalf("expected accepted, got %s", edge.Status)
			}
		}
		return nil
	})
}

func TestSelfContactRequest(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.SendContactRequest(h.ctx, uow, alice.ID, alice.ID)
		return err
	})
	expectKind(t, err, apperr.SelfReference)
	if !errors.Is(err, social.ErrSelfContact) {
		t.Fatalf("expected ErrSelfContact, got %v", err)
	}
}

func TestContactRequestToUnknownUser(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.SendContactRequest(h.ctx, uow, alice.ID, alice.ID+100)
		return err
	})
	expectKind(t, err, apperr.NotFound)
}

func TestResendAfterRejectConflicts(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")

	h.must(func(uow social.UnitOfWork) error {
		if _, err := h.svc.SendContactRequest(h.ctx, uow, alice.ID, bob.ID); err != nil {
			return err
		}
		c, err := h.svc.RejectContactRequest(h.ctx, uow, alice.ID, bob.ID)
		if err != nil {
			return err
		}
		if c.Status != models.ContactRejected {
			t.Fatalf("expected rejected, got %s", c.Status)
		}
		return nil
	})

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		err := h.tx(func(uow social.UnitOfWork) error {
			_, err := h.svc.SendContactRequest(h.ctx, uow, pair[0], pair[1])
			return err
		})
		expectKind(t, err, apperr.Conflict)
	}

	// Rejection creates no reverse edge.
	h.must(func(uow social.UnitOfWork) error {
		edge, err := uow.Contacts().Find(h.ctx, bob.ID, alice.ID)
		if err != nil {
			return err
		}
		if edge != nil {
			t.Fatalf("expected no reverse edge, got %+v", edge)
		}
		return nil
	})
}

func TestAcceptRequiresPending(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptContactRequest(h.ctx, uow, alice.ID, bob.ID)
		return err
	})
	expectKind(t, err, apperr.NotFound)

	h.friends(alice.ID, bob.ID)

	err = h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptContactRequest(h.ctx, uow, alice.ID, bob.ID)
		return err
	})
	expectKind(t, err, apperr.InvalidState)

	err = h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.RejectContactRequest(h.ctx, uow, alice.ID, bob.ID)
		return err
	})
	expectKind(t, err, apperr.InvalidState)
}

func TestAcceptPromotesRejectedReverseEdge(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")

	h.must(func(uow social.UnitOfWork) error {
		if err := uow.Contacts().Create(h.ctx, &models.Contact{UserID: alice.ID, ContactID: bob.ID, Status: models.ContactPending}); err != nil {
			return err
		}
		return uow.Contacts().Create(h.ctx, &models.Contact{UserID: bob.ID, ContactID: alice.ID, Status: models.ContactRejected})
	})

	h.must(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptContactRequest(h.ctx, uow, alice.ID, bob.ID)
		return err
	})

	h.must(func(uow social.UnitOfWork) error {
		ok, err := h.svc.IsContact(h.ctx, uow, bob.ID, alice.ID)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatalf("expected reverse edge to be promoted to accepted")
		}
		return nil
	})
}

func TestAcceptByIDOnlyForRecipient(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")
	carol := h.user("Carol")

	var req *models.Contact
	h.must(func(uow social.UnitOfWork) error {
		var err error
		req, err = h.svc.SendContactRequest(h.ctx, uow, alice.ID, bob.ID)
		return err
	})

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptContactRequestByID(h.ctx, uow, carol.ID, req.ID)
		return err
	})
	expectKind(t, err, apperr.NotFound)

	h.must(func(uow social.UnitOfWork) error {
		pending, err := h.svc.PendingRequests(h.ctx, uow, bob.ID)
		if err != nil {
			return err
		}
		if len(pending) != 1 || pending[0].FromUser.ID != alice.ID {
			t.Fatalf("expected one request from alice, got %+v", pending)
		}
		c, err := h.svc.AcceptContactRequestByID(h.ctx, uow, bob.ID, req.ID)
		if err != nil {
			return err
		}
		if c.Status != models.ContactAccepted {
			t.Fatalf("expected accepted, got %s", c.Status)
		}
		return nil
	})
}

func TestRemoveContact(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")
	h.friends(alice.ID, bob.ID)

	h.must(func(uow social.UnitOfWork) error {
		return h.svc.RemoveContact(h.ctx, uow, bob.ID, alice.ID)
	})

	h.must(func(uow social.UnitOfWork) error {
		for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
			edge, err := uow.Contacts().Find(h.ctx, pair[0], pair[1])
			if err != nil {
				return err
			}
			if edge != nil {
				t.Fatalf("expected edge %d -> %d to be deleted", pair[0], pair[1])
			}
		}
		return nil
	})

	err := h.tx(func(uow social.UnitOfWork) error {
		return h.svc.RemoveContact(h.ctx, uow, alice.ID, bob.ID)
	})
	expectKind(t, err, apperr.NotFound)

	// Once removed, a new request is allowed again.
	h.friends(bob.ID, alice.ID)
}

func TestContactListsAndSearch(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob Marley")
	carol := h.user("Carol")
	dave := h.user("Dave")
	h.friends(alice.ID, bob.ID)
	h.friends(carol.ID, alice.ID)
	h.must(func(uow social.UnitOfWork) error {
		_, err := h.svc.SendContactRequest(h.ctx, uow, alice.ID, dave.ID)
		return err
	})

	h.must(func(uow social.UnitOfWork) error {
		contacts, err := h.svc.Contacts(h.ctx, uow, alice.ID)
		if err != nil {
			return err
		}
		if len(contacts) != 2 {
			t.Fatalf("expected 2 contacts, got %d", len(contacts))
		}

		found, err := h.svc.SearchContacts(h.ctx, uow, alice.ID, "MARL")
		if err != nil {
			return err
		}
		if len(found) != 1 || found[0].ID != bob.ID {
			t.Fatalf("expected bob, got %+v", found)
		}

		found, err = h.svc.SearchContacts(h.ctx, uow, alice.ID, "example.com")
		if err != nil {
			return err
		}
		if len(found) != 2 {
			t.Fatalf("expected 2 email matches, got %d", len(found))
		}

		found, err = h.svc.SearchContacts(h.ctx, uow, alice.ID, "dave")
		if err != nil {
			return err
		}
		if len(found) != 0 {
			t.Fatalf("pending contacts must not match, got %+v", found)
		}
		return nil
	})
}

// vanishingReverse hides the reverse edge: its insert conflicts and it can
// never be read back.
type vanishingReverse struct {
	social.ContactRepository
	from, to uint
}

func (r vanishingReverse) Create(ctx context.Context, c *models.Contact) error {
	if c.UserID == r.from && c.ContactID == r.to {
		return apperr.New(apperr.Conflict, "contact already exists")
	}
	return r.ContactRepository.Create(ctx, c)
}

func (r vanishingReverse) Find(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	if userID == r.from && contactID == r.to {
		return nil, nil
	}
	return r.ContactRepository.Find(ctx, userID, contactID)
}

type vanishingReverseUoW struct {
	social.UnitOfWork
	from, to uint
}

func (u vanishingReverseUoW) Contacts() social.ContactRepository {
	return vanishingReverse{ContactRepository: u.UnitOfWork.Contacts(), from: u.from, to: u.to}
}

func TestAcceptFailsWhenReverseEdgeCannotBeResolved(t *testing.T) {
	h := newHarness(t)
	alice := h.user("Alice")
	bob := h.user("Bob")

	h.must(func(uow social.UnitOfWork) error {
		_, err := h.svc.SendContactRequest(h.ctx, uow, alice.ID, bob.ID)
		return err
	})

	err := h.tx(func(uow social.UnitOfWork) error {
		_, err := h.svc.AcceptContactRequest(h.ctx, vanishingReverseUoW{UnitOfWork: uow, from: bob.ID, to: alice.ID}, alice.ID, bob.ID)
		return err
	})
	if err == nil {
		t.Fatalf("expected accept to fail without a reverse edge")
	}

	h.must(func(uow social.UnitOfWork) error {
		edge, err := uow.Contacts().Find(h.ctx, alice.ID, bob.ID)
		if err != nil {
			return err
		}
		if edge == nil || edge.Status != models.ContactPending {
			t.Fatalf("expected the request to stay pending after rollback, got %+v", edge)
		}
		return nil
	})
}
