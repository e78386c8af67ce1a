package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"moderation/internal/domain"
	"moderation/internal/dto"
	"moderation/internal/httpx"
)

const (
	CookieName = "access_token"
	// SessionMaxAge is the cookie lifetime in seconds (3 hours).
	SessionMaxAge = 10800
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(*domain.User)
	return u, ok && u != nil
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, sessionCookie(res.AccessToken, SessionMaxAge))
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged in successfully"})
}

// logout only drops the cookie; the token itself stays valid until it expires.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessionCookie("", -1))
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

func (h *handlers) promoteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := h.auth.PromoteUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("user %d admitted to the system", u.ID)})
}

// requireSession resolves the access_token cookie to a user or answers 401.
func (h *handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			writeServiceError(w, r, domain.ErrUnauthorized)
			return
		}
		u, err := h.auth.Verify(r.Context(), c.Value)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, u)))
	})
}

func (h *handlers) requireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := UserFromContext(r.Context())
			if _, err := h.auth.RequireRole(u, role); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}
