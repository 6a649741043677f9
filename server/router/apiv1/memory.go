package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type memoryRequest struct {
	Content string `json:"content"`
}

func (s *APIV1Service) listMemories(c echo.Context) error {
	memories, err := s.Store.CoreMemories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, memories)
}

func (s *APIV1Service) addMemory(c echo.Context) error {
	var req memoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	memory, err := s.Store.AddCoreMemory(c.Request().Context(), req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, memory)
}

func (s *APIV1Service) updateMemory(c echo.Context) error {
	var req memoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.UpdateCoreMemory(c.Request().Context(), c.Param("id"), req.Content); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) deleteMemory(c echo.Context) error {
	if err := s.Store.DeleteCoreMemory(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
