package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"techmarks/internal/handlers"
	"techmarks/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// newEngine registers routes with handlers that have no services; only
// routing and middleware are exercised.
func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Handlers{
		Bookmark: handlers.NewBookmarkHandler(nil, logger.NewNop()),
		Auth:     handlers.NewAuthHandler(nil, logger.NewNop()),
		User:     handlers.NewUserHandler(nil),
		SEO:      handlers.NewSEOHandler(nil, logger.NewNop()),
	})
	return r
}

func TestRegisterRoutes(t *testing.T) {
	r := newEngine()

	got := make(map[string]bool)
	for _, route := range r.Routes() {
		got[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /",
		"GET /bookmarks",
		"GET /bookmarks/category/:category_id",
		"GET /bookmark-create",
		"POST /bookmarks",
		"GET /bookmark-edit/:id",
		"PUT /bookmarks/:id",
		"POST /bookmarks/:id",
		"DELETE /bookmarks/:id",
		"POST /bookmarks/:id/delete",
		"GET /user/profile",
		"GET /login",
		"POST /login",
		"GET /signup",
		"POST /signup",
		"GET /logout",
		"GET /robots.txt",
		"GET /sitemap.xml",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestRootRedirectsToList(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookmarks", w.Header().Get("Location"))
}

func TestGuestsAreSentToLogin(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookmark-create", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
