package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/notify"
	"github.com/tariel-x/eventease/internal/social"
)

func (h *Handlers) SendFriendRequest(c *gin.Context) {
	var req struct {
		TargetUserID uint `json:"target_user_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	me := auth.UserID(c)

	var (
		contact *models.Contact
		sender  *models.User
	)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		if contact, err = h.svc.SendContactRequest(c.Request.Context(), uow, me, req.TargetUserID); err != nil {
			return err
		}
		sender, err = h.svc.GetUser(c.Request.Context(), uow, me)
		return err
	}) {
		return
	}

	h.notify(c, notify.Notification{
		Type:   notify.TypeContactRequest,
		UserID: contact.ContactID,
		Title:  "New contact request",
		Body:   sender.Name + " wants to add you as a contact",
		Data:   map[string]any{"request_id": contact.ID, "from_user_id": me},
	})
	c.JSON(http.StatusCreated, contact)
}

func (h *Handlers) ReceivedFriendRequests(c *gin.Context) {
	var requests []social.ContactRequestView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		requests, err = h.svc.PendingRequests(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *Handlers) AcceptFriendRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	me := auth.UserID(c)

	var (
		contact  *models.Contact
		accepter *models.User
	)
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		if contact, err = h.svc.AcceptContactRequestByID(c.Request.Context(), uow, me, id); err != nil {
			return err
		}
		accepter, err = h.svc.GetUser(c.Request.Context(), uow, me)
		return err
	}) {
		return
	}

	h.notify(c, notify.Notification{
		Type:   notify.TypeContactAccepted,
		UserID: contact.UserID,
		Title:  "Contact request accepted",
		Body:   accepter.Name + " accepted your contact request",
		Data:   map[string]any{"user_id": me},
	})
	c.JSON(http.StatusOK, contact)
}

func (h *Handlers) RejectFriendRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var contact *models.Contact
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		contact, err = h.svc.RejectContactRequestByID(c.Request.Context(), uow, auth.UserID(c), id)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *Handlers) ListContacts(c *gin.Context) {
	var contacts []social.ContactView
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		contacts, err = h.svc.Contacts(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *Handlers) SearchContacts(c *gin.Context) {
	var users []social.UserSummary
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		users, err = h.svc.SearchContacts(c.Request.Context(), uow, auth.UserID(c), c.Query("q"))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, users)
}

// RemoveContact deletes the contact relation with the user named in the path.
func (h *Handlers) RemoveContact(c *gin.Context) {
	other, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.RemoveContact(c.Request.Context(), uow, auth.UserID(c), other)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}
