package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ewaste-marketplace-api-server/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func newAuthenticatedRouter(t *testing.T, handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(testSecret)}, extra...)
	chain = append(chain, handler)
	router.GET("/protected", chain...)
	return router
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	router := newAuthenticatedRouter(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID": c.GetString("user_id"),
			"email":  c.GetString("user_email"),
			"role":   c.GetString("user_role"),
		})
	})

	token, err := auth.GenerateJWT(testSecret, "USR-ABCD", "thu@example.com", "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "USR-ABCD")
	assert.Contains(t, w.Body.String(), "thu@example.com")
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	router := newAuthenticatedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsNonBearerHeader(t *testing.T) {
	router := newAuthenticatedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	router := newAuthenticatedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorizeAllowsMatchingRole(t *testing.T) {
	router := newAuthenticatedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, Authorize("admin"))

	token, err := auth.GenerateJWT(testSecret, "USR-ADM1", "admin@example.com", "admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeRejectsOtherRole(t *testing.T) {
	router := newAuthenticatedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, Authorize("admin"))

	token, err := auth.GenerateJWT(testSecret, "USR-USER", "user@example.com", "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
