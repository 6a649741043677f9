package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 2)

	assert.True(t, rl.Allow("client-a"))
	assert.True(t, rl.Allow("client-a"))
	assert.False(t, rl.Allow("client-a"))

	// Independent buckets per client.
	assert.True(t, rl.Allow("client-b"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	handler := NewRateLimiter(time.Hour, 1).Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() (int, error) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
		req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))
		return rec.Code, err
	}

	code, err := do()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	_, err = do()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
}
