// Package http exposes the user-facing session actions on a local gin API.
// It replaces the original panel buttons one-to-one; no session state lives
// here.
package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/adapters/feed"
	"github.com/dkorolev/tandem/internal/config"
	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

// SessionService is the slice of the session service the API needs.
type SessionService interface {
	CreateSession(ctx context.Context) (domain.SessionCode, error)
	JoinSession(ctx context.Context, code string) error
	LeaveSession(ctx context.Context) error
	TransferHost(ctx context.Context, id domain.UserID, name string) error
	KickUser(ctx context.Context, id domain.UserID) error
	InviteUser(ctx context.Context, id domain.UserID) error
	AcceptInvite(ctx context.Context, code domain.SessionCode) error
	IgnoreInvite(ctx context.Context, code domain.SessionCode) error
	PendingInvites() []core.InviteView
	Status() core.SessionStatus
	SetName(name string) error
	SetStoreURL(url string) error
	RecentUsers() ([]domain.RecentUser, error)
}

func SetupRouter(cfg *config.Config, svc SessionService, events *feed.Feed) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	h := &handlers{svc: svc, events: events}

	api := r.Group("/api")
	api.GET("/session", h.status)
	api.POST("/session", h.create)
	api.POST("/session/join", h.join)
	api.POST("/session/leave", h.leave)
	api.POST("/session/transfer", h.transfer)
	api.POST("/session/kick", h.kick)
	api.POST("/session/invite", h.invite)
	api.GET("/invites", h.listInvites)
	api.POST("/invites/accept", h.acceptInvite)
	api.POST("/invites/ignore", h.ignoreInvite)
	api.GET("/events", h.listEvents)
	api.GET("/recent-users", h.recentUsers)
	api.POST("/name", h.setName)
	api.POST("/store-url", h.setStoreURL)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
