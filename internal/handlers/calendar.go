package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/social"
)

const icsSuffix = ".ics"

// CalendarFeed serves /api/calendar/{token}.ics. The token is the only
// credential, so no bearer token is required.
func (h *Handlers) CalendarFeed(c *gin.Context) {
	token, ok := strings.CutSuffix(c.Param("file"), icsSuffix)
	if !ok || token == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Calendar not found"})
		return
	}

	var feed string
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		feed, err = h.svc.CalendarFeed(c.Request.Context(), uow, token)
		return err
	}) {
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *Handlers) CalendarURL(c *gin.Context) {
	var token string
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		token, err = h.svc.CalendarToken(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ics_url": h.calendarURL(c, token)})
}

func (h *Handlers) RotateCalendarURL(c *gin.Context) {
	var token string
	if !h.inTx(c, func(uow social.UnitOfWork) error {
		var err error
		token, err = h.svc.RotateCalendarToken(c.Request.Context(), uow, auth.UserID(c))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ics_url": h.calendarURL(c, token)})
}

// calendarURL prefers the configured public base URL and falls back to the
// host the request came in on.
func (h *Handlers) calendarURL(c *gin.Context, token string) string {
	base := ""
	if h.config != nil {
		base = h.config.PublicBaseURL
	}
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return strings.TrimRight(base, "/") + "/api/calendar/" + token + icsSuffix
}
