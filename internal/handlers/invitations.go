package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/social"
)

func (h *Handlers) MyInvitations(c *gin.Context) {
	var invitations []social.InvitationView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		invitations, err = h.svc.InvitationsFor(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	if invitations == nil {
		invitations = []social.InvitationView{}
	}
	c.JSON(http.StatusOK, invitations)
}

type invitationResolver func(ctx context.Context, uow social.UnitOfWork, userID, invitationID uint) (*models.EventInvitation, error)

func (h *Handlers) resolveInvitation(c *gin.Context, resolve invitationResolver) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var inv *models.EventInvitation
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		inv, err = resolve(c.Request.Context(), uow, auth.UserID(c), id)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handlers) AcceptInvitation(c *gin.Context) {
	h.resolveInvitation(c, h.svc.AcceptInvitationByID)
}

func (h *Handlers) RejectInvitation(c *gin.Context) {
	h.resolveInvitation(c, h.svc.RejectInvitationByID)
}

func (h *Handlers) DeleteInvitation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.DeleteInvitationByID(c.Request.Context(), uow, auth.UserID(c), id)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}

// AcceptInviteLink joins the caller to the event behind a public invite link.
// The invitation stays pending until the caller answers it.
func (h *Handlers) AcceptInviteLink(c *gin.Context) {
	token := c.Param("token")

	var view *social.InvitationView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		view, err = h.svc.JoinByInviteLink(c.Request.Context(), uow, auth.UserID(c), token)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, view)
}
