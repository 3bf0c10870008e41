package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/models"
	"github.com/tariel-x/eventease/internal/social"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handlers) RegisterUser(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	var user *models.User
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		user, err = h.svc.Register(c.Request.Context(), uow, req.Name, req.Email, req.Password)
		return err
	}) {
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user *models.User
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		user, err = h.svc.Authenticate(c.Request.Context(), uow, req.Email, req.Password)
		return err
	}) {
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handlers) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.auth.Issue(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, loginResponse{Token: token, User: user})
}

func (h *Handlers) GetMe(c *gin.Context) {
	var user *models.User
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		user, err = h.svc.GetUser(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) SearchUser(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	var user *models.User
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		user, err = h.svc.FindUserByEmail(c.Request.Context(), uow, email)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, social.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *Handlers) SetTimezone(c *gin.Context) {
	var req struct {
		Timezone string `json:"timezone"`
	}
	if !bindJSON(c, &req) {
		return
	}

	var user *models.User
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		user, err = h.svc.SetTimezone(c.Request.Context(), uow, auth.UserID(c), req.Timezone)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handlers) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.ChangePassword(c.Request.Context(), uow, auth.UserID(c), req.CurrentPassword, req.NewPassword)
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) DeleteAccount(c *gin.Context) {
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		return h.svc.DeleteAccount(c.Request.Context(), uow, auth.UserID(c))
	}) {
		return
	}
	c.Status(http.StatusNoContent)
}
