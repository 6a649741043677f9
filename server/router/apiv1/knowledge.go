package apiv1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *APIV1Service) listKnowledge(c echo.Context) error {
	items, err := s.Store.Knowledge(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// addKnowledge accepts a markdown or plain-text upload into the knowledge base.
func (s *APIV1Service) addKnowledge(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httpError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return httpError(err)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	item, err := s.Store.AddKnowledge(c.Request().Context(), fileHeader.Filename, mimeType, string(data))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *APIV1Service) removeKnowledge(c echo.Context) error {
	if err := s.Store.RemoveKnowledge(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
