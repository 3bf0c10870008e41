package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/notify"
	"github.com/tariel-x/eventease/internal/social"
)

type eventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	Time        string  `json:"time" binding:"required"`
	EndTime     *string `json:"endtime"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	ContactIDs  []uint  `json:"contact_ids"`
	TeamIDs     []uint  `json:"team_ids"`
}

type eventPatchRequest struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	EndTime     *string `json:"endtime"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func eventInvite(e *models.Event, host string, userID uint) notify.Notification {
	return notify.Notification{
		Type:   notify.TypeEventInvite,
		UserID: userID,
		Title:  "Event invitation",
		Body:   host + " invited you to " + e.Title,
		Data:   map[string]any{"event_id": e.ID, "date": e.Date, "time": e.StartTime},
	}
}

func (h *Handlers) CreateEvent(c *gin.Context) {
	var req eventRequest
	if !bindJSON(c, &req) {
		return
	}
	me := auth.UserID(c)

	var (
		view *social.EventView
		host *models.User
	)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		view, err = h.svc.CreateEventWithInvites(c.Request.Context(), uow, me, social.EventInput{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Date:        req.Date,
			Time:        req.Time,
			EndTime:     req.EndTime,
		}, req.ContactIDs, req.TeamIDs)
		if err != nil {
			return err
		}
		host, err = h.svc.GetUser(c.Request.Context(), uow, me)
		return err
	}) {
		return
	}

	notes := make([]notify.Notification, 0, len(view.Invitees))
	for _, inv := range view.Invitees {
		notes = append(notes, eventInvite(&view.Event, host.Name, inv.UserID))
	}
	h.notify(c, notes...)
	c.JSON(http.StatusCreated, view)
}

func (h *Handlers) GetEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var view *social.EventView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		view, err = h.svc.GetEvent(c.Request.Context(), uow, auth.UserID(c), eventID)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) UpdateEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req eventPatchRequest
	if !bindJSON(c, &req) {
		return
	}

	var event *models.Event
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		event, err = h.svc.UpdateEvent(c.Request.Context(), uow, auth.UserID(c), eventID, social.EventPatch{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Date:        req.Date,
			Time:        req.Time,
			EndTime:     req.EndTime,
		})
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handlers) DeleteEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.DeleteEvent(c.Request.Context(), uow, auth.UserID(c), eventID)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) MyEvents(c *gin.Context) {
	var events []social.EventView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		events, err = h.svc.OwnedEvents(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	if events == nil {
		events = []social.EventView{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handlers) InviteUserToEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	me := auth.UserID(c)

	var (
		inv   *models.EventInvitation
		event *models.Event
		host  *models.User
	)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		if inv, err = h.svc.InviteUser(c.Request.Context(), uow, me, eventID, req.UserID); err != nil {
			return err
		}
		if event, err = uow.Events().ByID(c.Request.Context(), eventID); err != nil {
			return err
		}
		host, err = h.svc.GetUser(c.Request.Context(), uow, me)
		return err
	}) {
		return
	}

	h.notify(c, eventInvite(event, host.Name, inv.UserID))
	c.JSON(http.StatusCreated, inv)
}

func (h *Handlers) InviteTeamToEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TeamID uint `json:"team_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	me := auth.UserID(c)

	var (
		teamInvite *models.EventTeamInvite
		created    []models.EventInvitation
		event      *models.Event
		host       *models.User
	)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		if teamInvite, created, err = h.svc.InviteTeamAndMembers(c.Request.Context(), uow, me, eventID, req.TeamID); err != nil {
			return err
		}
		if event, err = uow.Events().ByID(c.Request.Context(), eventID); err != nil {
			return err
		}
		host, err = h.svc.GetUser(c.Request.Context(), uow, me)
		return err
	}) {
		return
	}

	notes := make([]notify.Notification, 0, len(created))
	for _, inv := range created {
		notes = append(notes, eventInvite(event, host.Name, inv.UserID))
	}
	h.notify(c, notes...)

	if created == nil {
		created = []models.EventInvitation{}
	}
	c.JSON(http.StatusCreated, gin.H{"team_invite": teamInvite, "invitations": created})
}

func (h *Handlers) EventTeams(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var teams []models.EventTeamInvite
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		teams, err = h.svc.TeamsInvitedTo(c.Request.Context(), uow, auth.UserID(c), eventID)
		return err
	}) {
		return
	}
	if teams == nil {
		teams = []models.EventTeamInvite{}
	}
	c.JSON(http.StatusOK, teams)
}

type teamEventResolver func(ctx context.Context, uow social.UnitOfWork, actor, eventID, teamID uint) (*models.EventTeamInvite, error)

func (h *Handlers) resolveTeamEventInvite(c *gin.Context, resolve teamEventResolver) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	teamID, ok := paramID(c, "team_id")
	if !ok {
		return
	}

	var invite *models.EventTeamInvite
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		invite, err = resolve(c.Request.Context(), uow, auth.UserID(c), eventID, teamID)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, invite)
}

func (h *Handlers) AcceptTeamEventInvite(c *gin.Context) {
	h.resolveTeamEventInvite(c, h.svc.AcceptTeamEventInvite)
}

func (h *Handlers) RejectTeamEventInvite(c *gin.Context) {
	h.resolveTeamEventInvite(c, h.svc.RejectTeamEventInvite)
}

func (h *Handlers) CancelTeamEventInvite(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	teamID, ok := paramID(c, "team_id")
	if !ok {
		return
	}
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.CancelTeamEventInvite(c.Request.Context(), uow, auth.UserID(c), eventID, teamID)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}
