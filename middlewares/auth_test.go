package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/pos-backend/config"
	"github.com/cafedesk/pos-backend/middlewares"
	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/utils"
)

func TestMain(m *testing.M) {
	config.SecretKey = []byte("test-secret")
	m.Run()
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := utils.GenerateAccessToken(userID, models.RoleStaff)
	require.NoError(t, err)

	var seen *middlewares.Claims
	handler := middlewares.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := middlewares.GetAuthenticatedUser(r)
		require.NoError(t, err)
		seen = claims
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/orders/active", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, userID, seen.UserID)
	assert.Equal(t, models.RoleStaff, seen.Role)
}

func TestAuthMiddleware_MissingOrBadToken(t *testing.T) {
	handler := middlewares.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	_, refreshToken, err := utils.GenerateTokens(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)

	cases := map[string]string{
		"no header":                 "",
		"not bearer":                "Basic abc123",
		"garbage jwt":               "Bearer not.a.token",
		"refresh token as a bearer": "Bearer " + refreshToken,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/orders/active", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRoleBasedMiddleware(t *testing.T) {
	gate := middlewares.RoleBasedMiddleware(models.RoleAdmin)
	handler := middlewares.AuthMiddleware(gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	adminToken, err := utils.GenerateAccessToken(uuid.New(), models.RoleAdmin)
	require.NoError(t, err)
	staffToken, err := utils.GenerateAccessToken(uuid.New(), models.RoleStaff)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r.Header.Set("Authorization", "Bearer "+staffToken)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
