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

type teamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type teamPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type teamInviteRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

func (h *Handlers) CreateTeam(c *gin.Context) {
	var req teamRequest
	if !bindJSON(c, &req) {
		return
	}

	var team *models.Team
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		team, err = h.svc.CreateTeam(c.Request.Context(), uow, auth.UserID(c), req.Name, req.Description)
		return err
	}) {
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (h *Handlers) UpdateTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req teamPatch
	if !bindJSON(c, &req) {
		return
	}

	var team *models.Team
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		team, err = h.svc.UpdateTeam(c.Request.Context(), uow, auth.UserID(c), teamID, req.Name, req.Description)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *Handlers) DeleteTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.DeleteTeam(c.Request.Context(), uow, auth.UserID(c), teamID)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) listTeams(c *gin.Context, list func(uow social.UnitOfWork) ([]models.Team, error)) {
	var teams []models.Team
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		teams, err = list(uow)
		return err
	}) {
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}
	c.JSON(http.StatusOK, teams)
}

func (h *Handlers) OwnedTeams(c *gin.Context) {
	h.listTeams(c, func(uow social.UnitOfWork) ([]models.Team, error) {
		return h.svc.OwnedTeams(c.Request.Context(), uow, auth.UserID(c))
	})
}

func (h *Handlers) MyTeams(c *gin.Context) {
	h.listTeams(c, func(uow social.UnitOfWork) ([]models.Team, error) {
		return h.svc.MemberTeams(c.Request.Context(), uow, auth.UserID(c))
	})
}

func (h *Handlers) SearchTeams(c *gin.Context) {
	h.listTeams(c, func(uow social.UnitOfWork) ([]models.Team, error) {
		return h.svc.SearchTeams(c.Request.Context(), uow, auth.UserID(c), c.Query("q"))
	})
}

func (h *Handlers) TeamInvitations(c *gin.Context) {
	var invites []social.TeamInviteView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		invites, err = h.svc.PendingTeamInvites(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	if invites == nil {
		invites = []social.TeamInviteView{}
	}
	c.JSON(http.StatusOK, invites)
}

func (h *Handlers) InviteToTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req teamInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		member *models.TeamMember
		team   *models.Team
	)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		if member, err = h.svc.InviteToTeam(c.Request.Context(), uow, auth.UserID(c), teamID, req.UserID, req.Role); err != nil {
			return err
		}
		team, err = uow.Teams().ByID(c.Request.Context(), teamID)
		return err
	}) {
		return
	}

	h.notify(c, notify.Notification{
		Type:   notify.TypeTeamInvite,
		UserID: member.UserID,
		Title:  "Team invitation",
		Body:   "You were invited to join " + team.Name,
		Data:   map[string]any{"team_id": team.ID, "role": member.Role},
	})
	c.JSON(http.StatusCreated, member)
}

func (h *Handlers) AcceptTeamInvite(c *gin.Context) {
	h.resolveTeamInvite(c, h.svc.AcceptTeamInvite)
}

func (h *Handlers) RejectTeamInvite(c *gin.Context) {
	h.resolveTeamInvite(c, h.svc.RejectTeamInvite)
}

type teamInviteResolver func(ctx context.Context, uow social.UnitOfWork, userID, teamID uint) (*models.TeamMember, error)

func (h *Handlers) resolveTeamInvite(c *gin.Context, resolve teamInviteResolver) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var member *models.TeamMember
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		member, err = resolve(c.Request.Context(), uow, auth.UserID(c), teamID)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handlers) TeamMembers(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var members []social.MemberView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		members, err = h.svc.Members(c.Request.Context(), uow, auth.UserID(c), teamID)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handlers) LeaveTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	me := auth.UserID(c)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.RemoveMember(c.Request.Context(), uow, me, teamID, me)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) RemoveTeamMember(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.RemoveMember(c.Request.Context(), uow, auth.UserID(c), teamID, userID)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}
