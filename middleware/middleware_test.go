package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/lifeos/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "middleware-test-secret")
	gin.SetMode(gin.TestMode)
	utils.SetRedis(nil)
	os.Exit(m.Run())
}

func newAuthedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		utils.Success(c, gin.H{"user_id": c.GetUint(ContextUserIDKey), "email": c.GetString(ContextEmailKey)})
	})
	return r
}

func doGet(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newAuthedEngine()

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"missing", "", `"code":40101`},
		{"bad scheme", "Token abc", `"code":40102`},
		{"empty token", "Bearer   ", `"code":40103`},
		{"garbage", "Bearer not-a-jwt", `"code":40105`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doGet(r, "/me", c.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), c.code)
		})
	}

	token, err := utils.GenerateToken(7, "ada@example.com", time.Hour)
	require.NoError(t, err)
	w := doGet(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","data":{"user_id":7,"email":"ada@example.com"}}`, w.Body.String())

	require.NoError(t, utils.RevokeToken(context.Background(), token, time.Now().Add(time.Hour)))
	w = doGet(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40104`)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	// 2 per minute gives a burst of 1
	r.GET("/ping", rateLimitWith(newLimiterSet(2)), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, doGet(r, "/ping", "").Code)
	w := doGet(r, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":42901`)
}

func TestRateLimitKeysByUser(t *testing.T) {
	set := newLimiterSet(2)
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		c.Set(ContextUserIDKey, uint(len(c.Query("u"))))
		c.Next()
	}, rateLimitWith(set), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, doGet(r, "/ping?u=a", "").Code)
	assert.Equal(t, http.StatusNoContent, doGet(r, "/ping?u=bb", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "/ping?u=a", "").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestIDKey)) })

	w := doGet(r, "/", "")
	id := w.Header().Get(utils.RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(utils.RequestIDHeader, inbound)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Header().Get(utils.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(utils.RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(utils.RequestIDHeader))
}
