package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type navigateVariantRequest struct {
	Delta int `json:"delta"`
}

func (s *APIV1Service) listMessages(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Session.Messages())
}

func (s *APIV1Service) sendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reply, err := s.Session.Send(c.Request().Context(), req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *APIV1Service) editMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reply, err := s.Session.Edit(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *APIV1Service) regenerateMessage(c echo.Context) error {
	msg, err := s.Session.Regenerate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (s *APIV1Service) navigateVariant(c echo.Context) error {
	var req navigateVariantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg, err := s.Session.NavigateVariant(c.Request().Context(), c.Param("id"), req.Delta)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, msg)
}
