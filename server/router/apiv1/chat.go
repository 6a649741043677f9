package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *APIV1Service) listChats(c echo.Context) error {
	chats, err := s.Store.Chats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, chats)
}

func (s *APIV1Service) createChat(c echo.Context) error {
	chat, err := s.Session.NewChat(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, chat)
}

func (s *APIV1Service) openChat(c echo.Context) error {
	chat, err := s.Session.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, chat)
}

func (s *APIV1Service) deleteChat(c echo.Context) error {
	if err := s.Session.DeleteChat(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) exportChat(c echo.Context) error {
	markdown, err := s.Session.ExportMarkdown(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}
