package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tariel-x/eventease/internal/apperr"
	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/config"
	"github.com/tariel-x/eventease/internal/notify"
	"github.com/tariel-x/eventease/internal/social"
	"github.com/tariel-x/eventease/internal/store"
)

type Handlers struct {
	config     *config.Config
	store      *store.Store
	svc        *social.Service
	auth       *auth.Issuer
	hub        *notify.Hub
	notifier   *notify.Notifier
	wsUpgrader websocket.Upgrader
	log        *slog.Logger
}

func New(
	config *config.Config,
	store *store.Store,
	svc *social.Service,
	issuer *auth.Issuer,
	hub *notify.Hub,
	notifier *notify.Notifier,
	wsUpgrader websocket.Upgrader,
	log *slog.Logger,
) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		config:     config,
		store:      store,
		svc:        svc,
		auth:       issuer,
		hub:        hub,
		notifier:   notifier,
		wsUpgrader: wsUpgrader,
		log:        log,
	}
}

// Register mounts the API on r. Routes under the auth middleware expect a
// bearer token.
func (h *Handlers) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.POST("/auth/register", h.RegisterUser)
		api.POST("/auth/login", h.Login)
		api.GET("/calendar/:file", h.CalendarFeed)
		api.GET("/push/vapid-public-key", h.GetVAPIDPublicKey)
		api.GET("/ws", h.HandleWebSocket)
	}

	protected := api.Group("")
	protected.Use(h.auth.Middleware())
	{
		protected.GET("/auth/me", h.GetMe)
		protected.GET("/users/search", h.SearchUser)
		protected.PUT("/me/timezone", h.SetTimezone)
		protected.PUT("/me/password", h.ChangePassword)
		protected.DELETE("/me", h.DeleteAccount)

		protected.POST("/friend-requests", h.SendFriendRequest)
		protected.GET("/friend-requests/received", h.ReceivedFriendRequests)
		protected.POST("/friend-requests/:id/accept", h.AcceptFriendRequest)
		protected.POST("/friend-requests/:id/reject", h.RejectFriendRequest)
		protected.GET("/contacts", h.ListContacts)
		protected.GET("/contacts/search", h.SearchContacts)
		protected.DELETE("/contacts/:id", h.RemoveContact)

		protected.POST("/teams", h.CreateTeam)
		protected.GET("/teams/owned", h.OwnedTeams)
		protected.GET("/teams/mine", h.MyTeams)
		protected.GET("/teams/invitations", h.TeamInvitations)
		protected.GET("/teams/search", h.SearchTeams)
		protected.PATCH("/teams/:id", h.UpdateTeam)
		protected.DELETE("/teams/:id", h.DeleteTeam)
		protected.POST("/teams/:id/invite", h.InviteToTeam)
		protected.POST("/teams/:id/accept-invite", h.AcceptTeamInvite)
		protected.POST("/teams/:id/reject-invite", h.RejectTeamInvite)
		protected.GET("/teams/:id/members", h.TeamMembers)
		protected.DELETE("/teams/:id/members/me", h.LeaveTeam)
		protected.DELETE("/teams/:id/members/:user_id", h.RemoveTeamMember)

		protected.POST("/events", h.CreateEvent)
		protected.GET("/events/:id", h.GetEvent)
		protected.PATCH("/events/:id", h.UpdateEvent)
		protected.DELETE("/events/:id", h.DeleteEvent)
		protected.POST("/events/:id/invite-user", h.InviteUserToEvent)
		protected.POST("/events/:id/invite-team", h.InviteTeamToEvent)
		protected.GET("/events/:id/teams", h.EventTeams)
		protected.POST("/events/:id/teams/:team_id/accept", h.AcceptTeamEventInvite)
		protected.POST("/events/:id/teams/:team_id/reject", h.RejectTeamEventInvite)
		protected.DELETE("/events/:id/teams/:team_id", h.CancelTeamEventInvite)
		protected.GET("/my-events", h.MyEvents)
		protected.GET("/my-invitations", h.MyInvitations)
		protected.POST("/invitations/:id/accept", h.AcceptInvitation)
		protected.POST("/invitations/:id/reject", h.RejectInvitation)
		protected.DELETE("/invitations/:id", h.DeleteInvitation)
		protected.POST("/invite-links/:token/accept", h.AcceptInviteLink)

		protected.GET("/calendar/ics-url", h.CalendarURL)
		protected.POST("/calendar/rotate", h.RotateCalendarURL)

		protected.POST("/push/subscribe", h.SubscribePush)
		protected.DELETE("/push/subscribe", h.UnsubscribePush)
	}
}

// inTx runs fn in one transaction and answers the error when it fails. The
// caller writes the success response only when inTx reports true.
func (h *Handlers) inTx(c *gin.Context, fn func(uow social.UnitOfWork) error) bool {
	err := h.store.InTx(c.Request.Context(), func(tx *store.Tx) error {
		return fn(tx)
	})
	if err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Kind.HTTPStatus(), gin.H{"error": appErr.Message})
		return
	}
	_ = c.Error(err)
	h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// notify hands notes to the notifier once the request's transaction has
// committed. Delivery continues after the response is written.
func (h *Handlers) notify(c *gin.Context, notes ...notify.Notification) {
	if h.notifier == nil || len(notes) == 0 {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	go h.notifier.Notify(ctx, notes...)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
