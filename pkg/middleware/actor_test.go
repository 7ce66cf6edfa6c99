package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etcsc/warehouse/pkg/middleware"
)

func callActor(t *testing.T, method, userID string) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/api/v1/inventory", strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.Context()(middleware.RequireActor()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	return handler(c)
}

func TestRequireActorRejectsAnonymousWrites(t *testing.T) {
	err := callActor(t, http.MethodPost, "")
	require.Error(t, err)

	assert.Equal(t, http.StatusUnauthorized, httperror.GetStatusCode(err))
}

func TestRequireActorAllowsIdentifiedWrites(t *testing.T) {
	assert.NoError(t, callActor(t, http.MethodPost, "jortiz"))
}

func TestRequireActorAllowsAnonymousReads(t *testing.T) {
	assert.NoError(t, callActor(t, http.MethodGet, ""))
}
