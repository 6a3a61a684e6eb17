package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, service *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	admin := router.Group("/admin")
	RegisterRoutes(admin, service, zap.NewNop())
	admin.GET("/whoami", RequireAdmin(service), func(c *gin.Context) {
		who, _ := CurrentAdmin(c)
		c.JSON(http.StatusOK, gin.H{"email": who.Email})
	})
	return router
}

func TestLoginRouteIssuesUsableToken(t *testing.T) {
	service := newTestService(t)
	router := newTestRouter(t, service)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": testPassword})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/auth/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"admin@example.com"}`, rec.Body.String())
}

func TestLoginRouteRejectsWrongPassword(t *testing.T) {
	router := newTestRouter(t, newTestService(t))

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "nope"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	service := newTestService(t)
	router := newTestRouter(t, service)

	nonAdmin := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "viewer@example.com",
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      time.Now().Add(time.Minute).Unix(),
		"is_admin": false,
	})
	nonAdminToken, err := nonAdmin.SignedString([]byte("access-secret"))
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
		{name: "not admin", header: "Bearer " + nonAdminToken, status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
