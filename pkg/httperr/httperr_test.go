package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMap_RequestError(t *testing.T) {
	status, body := Map(NotFound("User not Found"))
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, Envelope{Error: "Request Error", Message: "User not Found"}, body)
}

func TestMap_PersistenceError(t *testing.T) {
	status, body := Map(Persistence(errors.New("connection refused to db-host:27017")))
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "Database Error", body.Error)
	// internals must never leak
	require.Equal(t, "Service temporarily unavailable", body.Message)
	require.NotContains(t, body.Message, "db-host")
}

func TestMap_ValidationError(t *testing.T) {
	status, body := Map(Validation(errors.New("subscribed is required")))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, Envelope{Error: "Invalid Input", Message: "subscribed is required"}, body)
}

func TestMap_UnclassifiedError(t *testing.T) {
	status, body := Map(errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal Server Error", body.Error)
	require.Equal(t, "An unexpected error occurred", body.Message)
}

func TestMap_WrappedKindsStillMatch(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), Persistence(errors.New("inner")))
	status, body := Map(wrapped)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "Database Error", body.Error)
}

func TestMiddleware_WritesEnvelope(t *testing.T) {
	g := gin.New()
	g.Use(Middleware())
	g.GET("/notfound", func(c *gin.Context) { _ = c.Error(NotFound("User not Found")) })
	g.GET("/db", func(c *gin.Context) { _ = c.Error(Persistence(errors.New("write conflict"))) })
	g.GET("/bad", func(c *gin.Context) { _ = c.Error(Validation(errors.New("nope"))) })
	g.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	cases := []struct {
		path    string
		status  int
		label   string
		message string
	}{
		{"/notfound", 404, "Request Error", "User not Found"},
		{"/db", 503, "Database Error", "Service temporarily unavailable"},
		{"/bad", 400, "Invalid Input", "nope"},
		{"/boom", 500, "Internal Server Error", "An unexpected error occurred"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		g.ServeHTTP(w, req)
		require.Equal(t, tc.status, w.Code, tc.path)

		var env Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), tc.path)
		require.Equal(t, tc.label, env.Error, tc.path)
		require.Equal(t, tc.message, env.Message, tc.path)
	}
}

func TestMiddleware_NoErrorPassesThrough(t *testing.T) {
	g := gin.New()
	g.Use(Middleware())
	g.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}

func TestMiddleware_DoesNotOverwriteWrittenResponse(t *testing.T) {
	g := gin.New()
	g.Use(Middleware())
	g.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"partial": true})
		_ = c.Error(errors.New("after write"))
	})

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, w.Code)
	require.Contains(t, w.Body.String(), "partial")
}
