package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"techmarks/internal/logger"
	"techmarks/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeUsers map[uint]*models.User

func (f fakeUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newEngine(users UserFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.Use(LoadUser(users))

	r.GET("/login-as/:id", func(c *gin.Context) {
		s := sessions.Default(c)
		switch c.Param("id") {
		case "1":
			s.Set(SessionUserKey, uint(1))
		case "9":
			s.Set(SessionUserKey, uint(9))
		}
		_ = s.Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Name)
			return
		}
		c.String(http.StatusOK, "guest")
	})
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "secret stuff")
	})
	return r
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoadUser(t *testing.T) {
	r := newEngine(fakeUsers{1: {ID: 1, Name: "alice"}})

	w := get(r, "/whoami", nil)
	assert.Equal(t, "guest", w.Body.String())

	login := get(r, "/login-as/1", nil)
	require.NotEmpty(t, login.Result().Cookies())

	w = get(r, "/whoami", login.Result().Cookies())
	assert.Equal(t, "alice", w.Body.String())
}

func TestLoadUser_StaleSession(t *testing.T) {
	r := newEngine(fakeUsers{1: {ID: 1, Name: "alice"}})

	login := get(r, "/login-as/9", nil)
	w := get(r, "/whoami", login.Result().Cookies())
	assert.Equal(t, "guest", w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(fakeUsers{1: {ID: 1, Name: "alice"}})

	w := get(r, "/private", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "secret stuff")

	login := get(r, "/login-as/1", nil)
	w = get(r, "/private", login.Result().Cookies())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret stuff", w.Body.String())
}

func TestSessionUserID(t *testing.T) {
	tests := []struct {
		in   interface{}
		want uint
		ok   bool
	}{
		{uint(3), 3, true},
		{int(4), 4, true},
		{int64(5), 5, true},
		{float64(6), 6, true},
		{uint(0), 0, false},
		{"7", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := sessionUserID(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(logger.FromZap(zap.New(core))))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	get(r, "/ok", nil)
	get(r, "/boom", nil)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)

	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}
