package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"inventory/internal/auth"
	"inventory/internal/db"
	"inventory/internal/store"
)

const sessionCookie = "session"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Hasher       auth.Hasher
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	ctx := r.Context()
	c := connFrom(r)

	user, err := store.GetUserByName(ctx, c, req.Username)
	if errors.Is(err, db.ErrNotFound) {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		storeError(w, r, err, "user")
		return
	}

	if err := h.Hasher.Verify(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			slog.Error("verifying password", "user", user.Username, "error", err)
		}
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if h.Hasher.NeedsRehash(user.PasswordHash) {
		if err := store.UpdateUserPassword(ctx, c, h.Hasher, user.ID, req.Password); err != nil {
			slog.Warn("rehashing password", "user", user.Username, "error", err)
		}
	}

	token, err := auth.GenerateToken(h.Secret, user.ID, user.Username, user.LastLogin, h.TTL)
	if err != nil {
		slog.Error("generating session", "user", user.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if err := store.UpdateUserLastLogin(ctx, c, user.ID); err != nil {
		storeError(w, r, err, "user")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.TTL),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	slog.Info("user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, user)
}

// Logout handles POST and DELETE /api/auth/logout. It succeeds whether or not
// the caller had a valid session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if claims, err := auth.ValidateToken(h.Secret, cookie.Value); err == nil {
			if err := store.RevokeSession(r.Context(), connFrom(r), claims.ID, claims.ExpiresAt.Time); err != nil {
				storeError(w, r, err, "session")
				return
			}
			slog.Info("user logged out", "user", claims.Username)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles POST /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OldPassword == req.NewPassword {
		jsonError(w, http.StatusBadRequest, "new password must differ from the old one")
		return
	}

	ctx := r.Context()
	c := connFrom(r)

	user, err := store.GetUserByID(ctx, c, claims.UserID)
	if err != nil {
		storeError(w, r, err, "user")
		return
	}

	if err := h.Hasher.Verify(user.PasswordHash, req.OldPassword); err != nil {
		jsonError(w, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	err = c.Transaction(ctx, func() error {
		if err := store.UpdateUserPassword(ctx, c, h.Hasher, user.ID, req.NewPassword); err != nil {
			return err
		}
		return store.ClearPasswordResetRequired(ctx, c, user.ID)
	})
	if err != nil {
		storeError(w, r, err, "user")
		return
	}

	slog.Info("user changed own password", "user", user.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := store.GetUserByID(r.Context(), connFrom(r), claims.UserID)
	if err != nil {
		storeError(w, r, err, "user")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}
