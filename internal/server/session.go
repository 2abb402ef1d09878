package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
)

const (
	sessionCookie = "user_id"
	sessionMaxAge = 7 * 24 * time.Hour
)

// Session identifies the signed-in user of one request.
type Session struct {
	UserID string
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}

func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s Session
		if c, err := r.Cookie(sessionCookie); err == nil {
			s.UserID = c.Value
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

// requireSession answers 401 before the handler reads the body. The cookie
// must name an existing user.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := sessionFrom(r.Context()).UserID
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, err := s.svc.Auth.Me(r.Context(), userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			s.fail(w, r, err, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSession(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    userID,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
