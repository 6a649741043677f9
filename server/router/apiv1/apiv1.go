// Package apiv1 exposes the conversation over a JSON HTTP API.
package apiv1

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/musubi-chat/musubi/internal/profile"
	"github.com/musubi-chat/musubi/plugin/ai"
	"github.com/musubi-chat/musubi/server/chat"
	"github.com/musubi-chat/musubi/server/middleware"
	"github.com/musubi-chat/musubi/store"
)

// APIV1Service holds the handlers for the v1 API.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Session *chat.Session

	limiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, session *chat.Session) *APIV1Service {
	return &APIV1Service{
		Profile: p,
		Store:   st,
		Session: session,
		limiter: middleware.NewRateLimiter(time.Second, 3),
	}
}

// RegisterRoutes mounts the API under /api/v1. Generation routes go through
// the rate limiter; everything else is unthrottled.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/chats", s.listChats)
	g.POST("/chats", s.createChat)
	g.POST("/chats/:id/open", s.openChat)
	g.DELETE("/chats/:id", s.deleteChat)
	g.GET("/chats/:id/export", s.exportChat)

	g.GET("/rooms", s.listRooms)
	g.POST("/rooms", s.createRoom)
	g.PATCH("/rooms/:id", s.updateRoom)
	g.DELETE("/rooms/:id", s.deleteRoom)
	g.POST("/rooms/:id/switch", s.switchRoom)

	g.GET("/messages", s.listMessages)

	throttled := g.Group("", s.limiter.Middleware())
	throttled.POST("/messages", s.sendMessage)
	throttled.PUT("/messages/:id", s.editMessage)
	throttled.POST("/messages/:id/regenerate", s.regenerateMessage)
	g.POST("/messages/:id/variant", s.navigateVariant)

	g.GET("/attachments", s.listAttachments)
	g.POST("/attachments", s.stageAttachment)
	g.DELETE("/attachments/:id", s.unstageAttachment)
	g.DELETE("/attachments", s.clearAttachments)

	g.GET("/knowledge", s.listKnowledge)
	g.POST("/knowledge", s.addKnowledge)
	g.DELETE("/knowledge/:id", s.removeKnowledge)

	g.GET("/memories", s.listMemories)
	g.POST("/memories", s.addMemory)
	g.PATCH("/memories/:id", s.updateMemory)
	g.DELETE("/memories/:id", s.deleteMemory)

	g.GET("/settings", s.getSettings)
	g.PUT("/settings", s.putSettings)
}

// httpError maps domain errors onto HTTP status codes.
func httpError(err error) error {
	var unsupported *store.UnsupportedAttachmentError
	var failure *ai.Failure
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrNotEditable),
		errors.Is(err, chat.ErrNoChat),
		errors.Is(err, store.ErrEmptyContent),
		errors.Is(err, store.ErrLastRoom):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &unsupported):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, unsupported.Error())
	case errors.As(err, &failure):
		return echo.NewHTTPError(http.StatusBadGateway, failure.UserMessage())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
