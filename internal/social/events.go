package social

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/tokens"
)

// inviteURLAttempts bounds retries on an invite-link collision.
const inviteURLAttempts = 3

type EventInput struct {
	Title       string
	Description string
	Location    string
	Date        string
	Time        string
	EndTime     *string
}

// EventPatch holds optional changes. An empty EndTime clears the end time.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	Date        *string
	Time        *string
	EndTime     *string
}

type Invitee struct {
	UserID uint                    `json:"user_id"`
	Name   string                  `json:"name"`
	Email  string                  `json:"email"`
	RSVP   models.InvitationStatus `json:"rsvp"`
}

type EventView struct {
	models.Event
	Invitees []Invitee                `json:"invitees"`
	Teams    []models.EventTeamInvite `json:"teams,omitempty"`
}

// InvitationView is an invitation as listed for the invitee.
type InvitationView struct {
	ID       uint                    `json:"id"`
	EventID  uint                    `json:"event_id"`
	Title    string                  `json:"title"`
	Date     string                  `json:"date"`
	Time     string                  `json:"time"`
	EndTime  *string                 `json:"endtime,omitempty"`
	Location string                  `json:"location"`
	Host     string                  `json:"host"`
	RSVP     models.InvitationStatus `json:"rsvp"`
}

func (in EventInput) normalize() (EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if in.Title == "" {
		return in, apperr.New(apperr.Invalid, "Title is required")
	}
	date, err := models.NormalizeDate(in.Date)
	if err != nil {
		return in, apperr.New(apperr.Invalid, err.Error())
	}
	in.Date = date
	clock, err := models.NormalizeClock(in.Time)
	if err != nil {
		return in, apperr.New(apperr.Invalid, err.Error())
	}
	in.Time = clock
	if in.EndTime != nil {
		if strings.TrimSpace(*in.EndTime) == "" {
			in.EndTime = nil
		} else {
			end, err := models.NormalizeClock(*in.EndTime)
			if err != nil {
				return in, apperr.New(apperr.Invalid, "endtime: "+err.Error())
			}
			in.EndTime = &end
		}
	}
	return in, nil
}

// CreateEvent stores a new event with a fresh invite link.
func (s *Service) CreateEvent(ctx context.Context, uow UnitOfWork, ownerID uint, in EventInput) (*models.Event, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if _, err := uow.Users().ByID(ctx, ownerID); err != nil {
		return nil, err
	}

	e := &models.Event{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Date:        in.Date,
		StartTime:   in.Time,
		EndTime:     in.EndTime,
	}
	for attempt := 1; ; attempt++ {
		token, err := s.tokens.InviteToken()
		if err != nil {
			return nil, fmt.Errorf("generate invite token: %w", err)
		}
		e.InviteURL = tokens.InvitePath(token)
		err = uow.Events().Create(ctx, e)
		if err == nil {
			return e, nil
		}
		if !apperr.Is(err, apperr.Conflict) || attempt == inviteURLAttempts {
			return nil, err
		}
	}
}

// CreateEventWithInvites creates the event, then invites the given contacts
// and teams. Individual invites that fail validation are skipped.
func (s *Service) CreateEventWithInvites(ctx context.Context, uow UnitOfWork, ownerID uint, in EventInput, contactIDs, teamIDs []uint) (*EventView, error) {
	e, err := s.CreateEvent(ctx, uow, ownerID, in)
	if err != nil {
		return nil, err
	}

	var created []models.EventInvitation
	for _, uid := range contactIDs {
		inv, err := s.InviteUser(ctx, uow, ownerID, e.ID, uid)
		if err != nil {
			if apperr.KindOf(err) != "" {
				continue
			}
			return nil, err
		}
		created = append(created, *inv)
	}
	for _, tid := range teamIDs {
		_, invs, err := s.InviteTeamAndMembers(ctx, uow, ownerID, e.ID, tid)
		if err != nil {
			if apperr.KindOf(err) != "" {
				continue
			}
			return nil, err
		}
		created = append(created, invs...)
	}

	invitees, err := s.invitees(ctx, uow, e, created)
	if err != nil {
		return nil, err
	}
	teams, err := uow.TeamInvites().ForEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return &EventView{Event: *e, Invitees: invitees, Teams: teams}, nil
}

func (s *Service) UpdateEvent(ctx context.Context, uow UnitOfWork, actor, eventID uint, p EventPatch) (*models.Event, error) {
	e, err := s.ownedEvent(ctx, uow, actor, eventID)
	if err != nil {
		return nil, err
	}

	in := EventInput{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.StartTime,
		EndTime:     e.EndTime,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Location != nil {
		in.Location = *p.Location
	}
	if p.Date != nil {
		in.Date = *p.Date
	}
	if p.Time != nil {
		in.Time = *p.Time
	}
	if p.EndTime != nil {
		in.EndTime = p.EndTime
	}
	if in, err = in.normalize(); err != nil {
		return nil, err
	}

	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.Date = in.Date
	e.StartTime = in.Time
	e.EndTime = in.EndTime
	if err := uow.Events().Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEvent removes the event with its invitations and team invites.
func (s *Service) DeleteEvent(ctx context.Context, uow UnitOfWork, actor, eventID uint) error {
	if _, err := s.ownedEvent(ctx, uow, actor, eventID); err != nil {
		return err
	}
	return uow.Events().Delete(ctx, eventID)
}

func (s *Service) ownedEvent(ctx context.Context, uow UnitOfWork, actor, eventID uint) (*models.Event, error) {
	e, err := uow.Events().ByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.OwnerID != actor {
		return nil, ErrNotEventOwner
	}
	return e, nil
}

// GetEvent returns the event to its owner, with invitees and teams, or to
// an invited user without them.
func (s *Service) GetEvent(ctx context.Context, uow UnitOfWork, actor, eventID uint) (*EventView, error) {
	e, err := uow.Events().ByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.OwnerID != actor {
		inv, err := uow.Invitations().Find(ctx, eventID, actor)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, ErrNotEventOwner
		}
		return &EventView{Event: *e, Invitees: []Invitee{}}, nil
	}

	invs, err := uow.Invitations().ForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	invitees, err := s.invitees(ctx, uow, e, invs)
	if err != nil {
		return nil, err
	}
	teams, err := uow.TeamInvites().ForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &EventView{Event: *e, Invitees: invitees, Teams: teams}, nil
}

// OwnedEvents lists the user's events by date and time, each with its
// invitees. The owner never appears as an invitee.
func (s *Service) OwnedEvents(ctx context.Context, uow UnitOfWork, ownerID uint) ([]EventView, error) {
	events, err := uow.Events().Owned(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, len(events))
	for i := range events {
		e := &events[i]
		invs, err := uow.Invitations().ForEvent(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		invitees, err := s.invitees(ctx, uow, e, invs)
		if err != nil {
			return nil, err
		}
		out = append(out, EventView{Event: *e, Invitees: invitees})
	}
	return out, nil
}

func (s *Service) invitees(ctx context.Context, uow UnitOfWork, e *models.Event, invs []models.EventInvitation) ([]Invitee, error) {
	ids := make([]uint, 0, len(invs))
	for _, inv := range invs {
		ids = append(ids, inv.UserID)
	}
	users, err := uow.Users().ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Invitee, 0, len(invs))
	for _, inv := range invs {
		if inv.UserID == e.OwnerID {
			continue
		}
		u, ok := users[inv.UserID]
		if !ok {
			continue
		}
		out = append(out, Invitee{UserID: u.ID, Name: u.Name, Email: u.Email, RSVP: inv.Status})
	}
	return out, nil
}

// InvitationsFor lists every invitation the user holds, with event details
// and host name, ordered by event date and time.
func (s *Service) InvitationsFor(ctx context.Context, uow UnitOfWork, userID uint) ([]InvitationView, error) {
	invs, err := uow.Invitations().ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]InvitationView, 0, len(invs))
	hosts := map[uint]string{}
	for _, inv := range invs {
		e, err := uow.Events().ByID(ctx, inv.EventID)
		if apperr.Is(err, apperr.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		host, ok := hosts[e.OwnerID]
		if !ok {
			if u, err := uow.Users().ByID(ctx, e.OwnerID); err == nil {
				host = u.Name
			} else if !apperr.Is(err, apperr.NotFound) {
				return nil, err
			}
			hosts[e.OwnerID] = host
		}
		out = append(out, invitationView(inv, e, host))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func invitationView(inv models.EventInvitation, e *models.Event, host string) InvitationView {
	return InvitationView{
		ID:       inv.ID,
		EventID:  e.ID,
		Title:    e.Title,
		Date:     e.Date,
		Time:     e.StartTime,
		EndTime:  e.EndTime,
		Location: e.Location,
		Host:     host,
		RSVP:     inv.Status,
	}
}
