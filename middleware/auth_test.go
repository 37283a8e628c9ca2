package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-dashboard/identity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistry struct {
	seen []string
	err  error
}

func (r *recordingRegistry) Touch(_ context.Context, userID string) error {
	r.seen = append(r.seen, userID)
	return r.err
}

func newRouter(iss *identity.Issuer, reg identity.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UserToken(iss, reg))
	r.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	return r
}

func TestUserTokenIssuesCookie(t *testing.T) {
	iss := identity.NewIssuer("k", time.Hour)
	reg := &recordingRegistry{}
	r := newRouter(iss, reg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == TokenCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	userID, err := iss.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, userID, w.Body.String())
	assert.Equal(t, []string{userID}, reg.seen)

	// the cookie is honoured on the next request
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, userID, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestUserTokenBearer(t *testing.T) {
	iss := identity.NewIssuer("k", time.Hour)
	userID, token, err := iss.Issue()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newRouter(iss, identity.NopRegistry{}).ServeHTTP(w, req)
	assert.Equal(t, userID, w.Body.String())
}

func TestUserTokenReplacesInvalid(t *testing.T) {
	iss := identity.NewIssuer("k", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "garbage"})
	w := httptest.NewRecorder()
	newRouter(iss, identity.NopRegistry{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-User-Token"))
	assert.NotEmpty(t, w.Body.String())
}

func TestUserTokenRegistryFailureIsNotFatal(t *testing.T) {
	reg := &recordingRegistry{err: errors.New("redis down")}
	w := httptest.NewRecorder()
	newRouter(identity.NewIssuer("k", time.Hour), reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, reg.seen, 1)
}
