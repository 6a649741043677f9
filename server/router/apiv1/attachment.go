package apiv1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// stageAttachment accepts a multipart upload and stages it for the next turn.
func (s *APIV1Service) stageAttachment(c echo.Context) error {
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
	att, err := s.Session.Attach(c.Request().Context(), fileHeader.Filename, mimeType, data)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, att)
}

func (s *APIV1Service) listAttachments(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Session.Pending())
}

func (s *APIV1Service) unstageAttachment(c echo.Context) error {
	if err := s.Session.RemoveAttachment(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) clearAttachments(c echo.Context) error {
	s.Session.ClearAttachments()
	return c.NoContent(http.StatusNoContent)
}
