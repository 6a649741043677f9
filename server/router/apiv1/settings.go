package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/musubi-chat/musubi/plugin/ai"
	"github.com/musubi-chat/musubi/store"
)

// getSettings returns the provider configuration with the API key masked.
func (s *APIV1Service) getSettings(c echo.Context) error {
	settings, err := s.Store.Settings(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if settings.APIKey != "" {
		settings.APIKey = maskKey(settings.APIKey)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *APIV1Service) putSettings(c echo.Context) error {
	ctx := c.Request().Context()

	var req store.Settings
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A masked key echoed back means "leave the stored key alone".
	current, err := s.Store.Settings(ctx)
	if err != nil {
		return httpError(err)
	}
	if req.APIKey == maskKey(current.APIKey) {
		req.APIKey = current.APIKey
	}

	if err := s.Store.SaveSettings(ctx, req); err != nil {
		return httpError(err)
	}

	// The inference client binds its provider at construction, so a settings
	// change swaps in a fresh one.
	saved, err := s.Store.Settings(ctx)
	if err != nil {
		return httpError(err)
	}
	llm, err := ai.NewLLMServiceFromSettings(saved)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.Session.SetLLM(llm)
	return c.NoContent(http.StatusNoContent)
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
