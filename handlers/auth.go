package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cafedesk/pos-backend/config"
	"github.com/cafedesk/pos-backend/database/dbhelper"
	"github.com/cafedesk/pos-backend/middlewares"
	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/utils"
)

// UserDirectory is the account surface the auth handler needs.
type UserDirectory interface {
	CreateUser(ctx context.Context, name, email, passwordHash string, role models.Role, language string) (*models.User, error)
	GetUserByPassword(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error)
}

type AuthHandler struct {
	Users UserDirectory
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Language string `json:"language"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "all fields are required")
		return
	}
	if len(req.Password) < 6 {
		respondMessage(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.Users.CreateUser(r.Context(), req.Name, req.Email, hashedPassword, models.RoleCustomer, req.Language)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":         user,
		"access_token": accessToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.Users.GetUserByPassword(r.Context(), req.Email, req.Password)
	if errors.Is(err, dbhelper.ErrUserNotFound) || errors.Is(err, dbhelper.ErrInvalidPassword) {
		respondMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"access_token": accessToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondMessage(w, http.StatusUnauthorized, "refresh token missing")
		return
	}

	claims := &middlewares.Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		respondMessage(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	// an access token presented here must not mint a fresh pair
	if claims.TokenType != middlewares.TokenTypeRefresh {
		respondMessage(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(claims.UserID, claims.Role)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	respondMessage(w, http.StatusOK, "successfully logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile applies the customer's own patch (name, language, avatar,
// password).
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), claims.UserID, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(utils.RefreshTokenTTL),
	})
}
