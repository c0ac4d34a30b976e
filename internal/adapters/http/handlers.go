package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkorolev/tandem/internal/adapters/feed"
	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

type handlers struct {
	svc    SessionService
	events *feed.Feed
}

type joinRequest struct {
	Code string `json:"code"`
}

type memberRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type inviteDecisionRequest struct {
	Code string `json:"code"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type storeURLRequest struct {
	URL string `json:"url"`
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) create(c *gin.Context) {
	code, err := h.svc.CreateSession(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h *handlers) join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid code"})
		return
	}
	if err := h.svc.JoinSession(c.Request.Context(), req.Code); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) leave(c *gin.Context) {
	if err := h.svc.LeaveSession(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) transfer(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid member id"})
		return
	}
	if err := h.svc.TransferHost(c.Request.Context(), domain.UserID(req.ID), req.Name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) kick(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid member id"})
		return
	}
	if err := h.svc.KickUser(c.Request.Context(), domain.UserID(req.ID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) invite(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid member id"})
		return
	}
	if err := h.svc.InviteUser(c.Request.Context(), domain.UserID(req.ID)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listInvites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"invites": h.svc.PendingInvites()})
}

func (h *handlers) acceptInvite(c *gin.Context) {
	var req inviteDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid code"})
		return
	}
	if err := h.svc.AcceptInvite(c.Request.Context(), domain.SessionCode(req.Code)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) ignoreInvite(c *gin.Context) {
	var req inviteDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid code"})
		return
	}
	if err := h.svc.IgnoreInvite(c.Request.Context(), domain.SessionCode(req.Code)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.events.Recent()})
}

func (h *handlers) recentUsers(c *gin.Context) {
	users, err := h.svc.RecentUsers()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *handlers) setName(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}
	if err := h.svc.SetName(req.Name); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Status())
}

func (h *handlers) setStoreURL(c *gin.Context) {
	var req storeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid url"})
		return
	}
	if err := h.svc.SetStoreURL(req.URL); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, core.ErrInviteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrSessionFull),
		errors.Is(err, core.ErrAlreadyInSession),
		errors.Is(err, core.ErrNotInSession),
		errors.Is(err, core.ErrNotHost):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNameEmpty),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrNameBlocked):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
