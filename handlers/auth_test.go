package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/pos-backend/config"
	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/utils"
)

func TestMain(m *testing.M) {
	config.SecretKey = []byte("test-secret")
	m.Run()
}

func refreshReq(token string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	r.AddCookie(&http.Cookie{Name: "refresh_token", Value: token})
	return r
}

func TestRefresh_AcceptsRefreshToken(t *testing.T) {
	_, refreshToken, err := utils.GenerateTokens(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)

	h := &AuthHandler{}
	w := httptest.NewRecorder()
	h.Refresh(w, refreshReq(refreshToken))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	accessToken, err := utils.GenerateAccessToken(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)

	h := &AuthHandler{}
	w := httptest.NewRecorder()
	h.Refresh(w, refreshReq(accessToken))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_MissingCookie(t *testing.T) {
	h := &AuthHandler{}
	w := httptest.NewRecorder()
	h.Refresh(w, httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
