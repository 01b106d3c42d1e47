package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"blog-api/internal/auth"
	"blog-api/internal/config"
)

func loginRouter(t *testing.T) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	signer := auth.NewSigner(config.AuthConfig{
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "blog-api",
		Audience: "blog-editors",
		TokenTTL: time.Hour,
	})
	users := []config.UserEntry{{Username: "alice", PasswordHash: hash}}

	r := gin.New()
	r.POST("/login", Login(signer, users, zaptest.NewLogger(t)))
	return r, signer
}

func postLogin(r *gin.Engine, payload map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	r, signer := loginRouter(t)

	w := postLogin(r, map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := signer.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := loginRouter(t)
	w := postLogin(r, map[string]string{"username": "alice", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := loginRouter(t)
	w := postLogin(r, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
