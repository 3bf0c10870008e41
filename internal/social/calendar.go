package social

import (
	"context"

	"github.com/tariel-x/eventease/internal/ical"
	"github.com/tariel-x/eventease/internal/models"
)

// EventsVisibleToUser returns owned events followed by events the user
// accepted an invitation to, each event once.
func (s *Service) EventsVisibleToUser(ctx context.Context, uow UnitOfWork, userID uint) ([]models.Event, error) {
	owned, err := uow.Events().Owned(ctx, userID)
	if err != nil {
		return nil, err
	}
	accepted, err := uow.Events().AcceptedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(owned)+len(accepted))
	out := make([]models.Event, 0, len(owned)+len(accepted))
	for _, list := range [][]models.Event{owned, accepted} {
		for _, e := range list {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out, nil
}

// CalendarFeed renders the ICS document behind a calendar token, using the
// owner's timezone.
func (s *Service) CalendarFeed(ctx context.Context, uow UnitOfWork, token string) (string, error) {
	u, err := s.UserByCalendarToken(ctx, uow, token)
	if err != nil {
		return "", err
	}
	return s.UserCalendar(ctx, uow, u)
}

func (s *Service) UserCalendar(ctx context.Context, uow UnitOfWork, u *models.User) (string, error) {
	events, err := s.EventsVisibleToUser(ctx, uow, u.ID)
	if err != nil {
		return "", err
	}
	return ical.Render(events, Location(u), s.now())
}
