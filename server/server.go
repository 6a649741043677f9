// Package server assembles the HTTP server around one conversation session.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/musubi-chat/musubi/internal/profile"
	"github.com/musubi-chat/musubi/plugin/ai"
	aicontext "github.com/musubi-chat/musubi/plugin/ai/context"
	"github.com/musubi-chat/musubi/server/chat"
	apiv1 "github.com/musubi-chat/musubi/server/router/apiv1"
	"github.com/musubi-chat/musubi/store"
)

// Server is the composed application: store, session, and HTTP surface.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Session *chat.Session

	echoServer *echo.Echo
	logger     *slog.Logger
}

// NewServer wires the application together: runs the startup migrations,
// seeds the default rooms, opens the home chat, and mounts the API.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store, logger *slog.Logger) (*Server, error) {
	if err := st.MigrateLegacyHistory(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate legacy history: %w", err)
	}
	if _, err := st.EnsureDefaultRooms(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed default rooms: %w", err)
	}

	settings, err := st.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	llm, err := ai.NewLLMServiceFromSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	builder := aicontext.NewBuilder(aicontext.Config{
		MaxHistoryMessages:   store.MaxHistoryMessages,
		IncludeSystemNotices: p.IncludeSystemNotices,
	})
	session := chat.NewSession(st, llm, builder, logger)
	if _, err := session.Home(ctx); err != nil {
		return nil, fmt.Errorf("failed to open home chat: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	apiv1.NewAPIV1Service(p, st, session).RegisterRoutes(e)

	return &Server{
		Profile:    p,
		Store:      st,
		Session:    session,
		echoServer: e,
		logger:     logger,
	}, nil
}

// Start serves HTTP until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server started", "address", address, "mode", s.Profile.Mode)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echoServer.Start(address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		s.logger.Error("failed to close store", "error", err)
	}
	s.logger.Info("server stopped")
}
