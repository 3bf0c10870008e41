package social

import (
	"context"
	"fmt"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
)

// ContactView is an accepted contact as seen by its owner.
type ContactView struct {
	ID     uint                 `json:"id"`
	Status models.ContactStatus `json:"status"`
	Friend UserSummary          `json:"friend"`
}

// ContactRequestView is a pending request received by the caller.
type ContactRequestView struct {
	ID       uint                 `json:"id"`
	Status   models.ContactStatus `json:"status"`
	FromUser UserSummary          `json:"from_user"`
}

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func summarize(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// SendContactRequest creates a pending edge from -> to. Any existing edge
// between the two users, in either direction and with any status, blocks it.
func (s *Service) SendContactRequest(ctx context.Context, uow UnitOfWork, from, to uint) (*models.Contact, error) {
	if from == to {
		return nil, ErrSelfContact
	}
	if _, err := uow.Users().ByID(ctx, to); err != nil {
		return nil, err
	}

	contacts := uow.Contacts()
	for _, pair := range [][2]uint{{from, to}, {to, from}} {
		existing, err := contacts.Find(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrContactExists
		}
	}

	c := &models.Contact{UserID: from, ContactID: to, Status: models.ContactPending}
	if err := contacts.Create(ctx, c); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return nil, ErrContactExists
		}
		return nil, err
	}
	return c, nil
}

// AcceptContactRequest accepts the pending edge from -> to and makes sure the
// reverse edge exists and reads accepted.
func (s *Service) AcceptContactRequest(ctx context.Context, uow UnitOfWork, from, to uint) (*models.Contact, error) {
	c, err := s.pendingContact(ctx, uow, from, to, models.ContactAccepted)
	if err != nil {
		return nil, err
	}
	c.Status = models.ContactAccepted
	if err := uow.Contacts().Save(ctx, c); err != nil {
		return nil, err
	}
	if err := s.ensureAcceptedEdge(ctx, uow, to, from); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ensureAcceptedEdge(ctx context.Context, uow UnitOfWork, from, to uint) error {
	contacts := uow.Contacts()
	reverse, err := contacts.Find(ctx, from, to)
	if err != nil {
		return err
	}
	if reverse == nil {
		reverse = &models.Contact{UserID: from, ContactID: to, Status: models.ContactAccepted}
		err = contacts.Create(ctx, reverse)
		if !apperr.Is(err, apperr.Conflict) {
			return err
		}
		// Lost a race with a concurrent insert; fall through and promote it.
		if reverse, err = contacts.Find(ctx, from, to); err != nil {
			return err
		}
		if reverse == nil {
			return fmt.Errorf("contact %d -> %d conflicted on insert but cannot be found", from, to)
		}
	}
	if reverse.Status == models.ContactAccepted {
		return nil
	}
	reverse.Status = models.ContactAccepted
	return contacts.Save(ctx, reverse)
}

func (s *Service) RejectContactRequest(ctx context.Context, uow UnitOfWork, from, to uint) (*models.Contact, error) {
	c, err := s.pendingContact(ctx, uow, from, to, models.ContactRejected)
	if err != nil {
		return nil, err
	}
	c.Status = models.ContactRejected
	if err := uow.Contacts().Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) pendingContact(ctx context.Context, uow UnitOfWork, from, to uint, next models.ContactStatus) (*models.Contact, error) {
	c, err := uow.Contacts().Find(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNoContactRequest
	}
	if !c.Status.CanBecome(next) {
		return nil, ErrContactNotPending
	}
	return c, nil
}

// AcceptContactRequestByID accepts a request addressed to me.
func (s *Service) AcceptContactRequestByID(ctx context.Context, uow UnitOfWork, me, requestID uint) (*models.Contact, error) {
	c, err := s.receivedRequest(ctx, uow, me, requestID)
	if err != nil {
		return nil, err
	}
	return s.AcceptContactRequest(ctx, uow, c.UserID, me)
}

func (s *Service) RejectContactRequestByID(ctx context.Context, uow UnitOfWork, me, requestID uint) (*models.Contact, error) {
	c, err := s.receivedRequest(ctx, uow, me, requestID)
	if err != nil {
		return nil, err
	}
	return s.RejectContactRequest(ctx, uow, c.UserID, me)
}

func (s *Service) receivedRequest(ctx context.Context, uow UnitOfWork, me, requestID uint) (*models.Contact, error) {
	c, err := uow.Contacts().ByID(ctx, requestID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, ErrNoContactRequest
		}
		return nil, err
	}
	if c.ContactID != me {
		return nil, ErrNoContactRequest
	}
	return c, nil
}

// RemoveContact deletes both directed edges between a and b.
func (s *Service) RemoveContact(ctx context.Context, uow UnitOfWork, a, b uint) error {
	n, err := uow.Contacts().DeletePair(ctx, a, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// IsContact reports whether a holds an accepted edge to b.
func (s *Service) IsContact(ctx context.Context, uow UnitOfWork, a, b uint) (bool, error) {
	c, err := uow.Contacts().Find(ctx, a, b)
	if err != nil {
		return false, err
	}
	return c != nil && c.Status == models.ContactAccepted, nil
}

func (s *Service) Contacts(ctx context.Context, uow UnitOfWork, userID uint) ([]ContactView, error) {
	edges, err := uow.Contacts().Accepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ContactID)
	}
	users, err := uow.Users().ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ContactView, 0, len(edges))
	for _, e := range edges {
		u, ok := users[e.ContactID]
		if !ok {
			continue
		}
		out = append(out, ContactView{ID: e.ID, Status: e.Status, Friend: summarize(u)})
	}
	return out, nil
}

func (s *Service) PendingRequests(ctx context.Context, uow UnitOfWork, userID uint) ([]ContactRequestView, error) {
	edges, err := uow.Contacts().PendingReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.UserID)
	}
	users, err := uow.Users().ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ContactRequestView, 0, len(edges))
	for _, e := range edges {
		u, ok := users[e.UserID]
		if !ok {
			continue
		}
		out = append(out, ContactRequestView{ID: e.ID, Status: e.Status, FromUser: summarize(u)})
	}
	return out, nil
}

// SearchContacts matches accepted contacts by name or email substring,
// ignoring case.
func (s *Service) SearchContacts(ctx context.Context, uow UnitOfWork, userID uint, query string) ([]UserSummary, error) {
	users, err := uow.Contacts().SearchAccepted(ctx, userID, query, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, summarize(u))
	}
	return out, nil
}
