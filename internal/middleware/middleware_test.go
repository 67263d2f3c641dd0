package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/utils"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(t *testing.T) (*gin.Engine, *utils.JWTManager) {
	t.Helper()
	jwtm, err := utils.NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	mw := NewJWTMiddleware(jwtm)

	r := gin.New()
	whoami := func(c *gin.Context) { c.JSON(http.StatusOK, GetAdmin(c)) }
	r.GET("/admin", mw.Handle(), whoami)
	r.GET("/stream", mw.HandleQuery(), whoami)
	return r, jwtm
}

func doRequest(r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTMiddleware_AcceptsAdminRolesAnyCase(t *testing.T) {
	r, jwtm := newGuardedRouter(t)

	for _, role := range []string{"ADMIN", "admin", "Super_Admin"} {
		token, err := jwtm.Generate(7, "ops@toys.test", role)
		require.NoError(t, err)

		w := doRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, w.Code, role)

		var id AdminIdentity
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
		assert.Equal(t, 7, id.UserID)
		assert.Equal(t, "ops@toys.test", id.Email)
	}
}

func TestJWTMiddleware_CustomerRoleForbidden(t *testing.T) {
	r, jwtm := newGuardedRouter(t)
	token, err := jwtm.Generate(9, "buyer@toys.test", "CUSTOMER")
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestJWTMiddleware_Unauthorized(t *testing.T) {
	r, jwtm := newGuardedRouter(t)
	valid, err := jwtm.Generate(1, "a@toys.test", "ADMIN")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.AdminClaims{
		UserID: 1,
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.AdminClaims{
		UserID: 1,
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"missing":   "",
		"no bearer": valid,
		"basic":     "Basic " + valid,
		"empty":     "Bearer ",
		"tampered":  "Bearer " + valid[:len(valid)-2] + "xx",
		"expired":   "Bearer " + expired,
		"wrong key": "Bearer " + otherKey,
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			h := map[string]string{}
			if header != "" {
				h["Authorization"] = header
			}
			w := doRequest(r, http.MethodGet, "/admin", h)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTMiddleware_QueryToken(t *testing.T) {
	r, jwtm := newGuardedRouter(t)
	token, err := jwtm.Generate(3, "a@toys.test", "ADMIN")
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/stream?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Only the stream route accepts query tokens.
	w = doRequest(r, http.MethodGet, "/admin?token="+token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/stream?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	rl := NewInvalidAuthRateLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", LoginRateLimit(rl), func(c *gin.Context) {
		if c.Query("ok") == "1" {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusUnauthorized)
	})

	for i := 0; i < invalidAuthLimit; i++ {
		w := doRequest(r, http.MethodPost, "/login", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doRequest(r, http.MethodPost, "/login?ok=1", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", errorCode(t, w))

	now = now.Add(invalidAuthWindow + time.Second)
	w = doRequest(r, http.MethodPost, "/login?ok=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"shop.toys.test", "localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, http.MethodGet, "/x", map[string]string{"Origin": "https://shop.toys.test:443"})
	assert.Equal(t, "https://shop.toys.test:443", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Cart-Id")

	w = doRequest(r, http.MethodGet, "/x", map[string]string{"Referer": "http://localhost:3000/cart"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.test"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://shop.toys.test"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
