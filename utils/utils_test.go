package utils

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "utils-test-secret")
	os.Setenv("JWT_TTL_HOURS", "2")
	gin.SetMode(gin.TestMode)
	SetRedis(nil)
	os.Exit(m.Run())
}

func TestPasswordHashing(t *testing.T) {
	require.Error(t, ValidatePassword("short"))
	require.Error(t, ValidatePassword(string(make([]byte, 73))))
	require.NoError(t, ValidatePassword("correct horse"))

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  <b>hello</b><script>alert(1)</script> "))
	assert.Equal(t, "rock & roll", SanitizeText("rock & roll"))
	assert.Equal(t, "<p>note <strong>body</strong></p>", SanitizeRich(`<p onclick="x()">note <strong>body</strong></p><script>bad()</script>`))
}

func TestTokenRoundTrip(t *testing.T) {
	assert.Equal(t, 2*time.Hour, TokenTTL())

	token, err := GenerateToken(42, "ada@example.com", TokenTTL())
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)

	expired, err := GenerateToken(42, "ada@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)
}

func TestTokenRevocationMemoryFallback(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsTokenRevoked(ctx, "tok-a"))

	require.NoError(t, RevokeToken(ctx, "tok-a", time.Now().Add(time.Hour)))
	assert.True(t, IsTokenRevoked(ctx, "tok-a"))

	// already expired tokens are not stored
	require.NoError(t, RevokeToken(ctx, "tok-b", time.Now().Add(-time.Second)))
	assert.False(t, IsTokenRevoked(ctx, "tok-b"))
}

func TestResponseEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, http.StatusNotFound, 40401, "task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":40401,"message":"task not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Created(c, gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"created","data":{"id":1}}`, w.Body.String())
}

func TestRollingFileLogger(t *testing.T) {
	_, err := NewRollingFileLogger("", "info", 1, 1, 1, false)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "logs", "gin.log")
	logger, err := NewRollingFileLogger(path, "info", 1, 1, 1, false)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestGraceServerStop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ln.Addr().String(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), time.Second, time.Second)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	srv.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, Unique([]uint{3, 1, 3, 2, 1}))
	assert.Equal(t, []string{}, Unique([]string{}))
}
