package auth

import (
	"log/slog"
	"net/http"

	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/ui/client"
	"github.com/constella-app/constella-web/internal/ui/config"
)

// LoadSession puts the session token (used by the API client) and the user in the request context.
// Requests without a session pass through unchanged.
func (s *SessionService) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if s.CheckTokenStatus(r) == TokenValid {
			cookie, _ := r.Cookie(config.TokenCookieName)
			ctx = client.ContextWithAccessToken(ctx, cookie.Value)
		}

		if _, err := r.Cookie(config.UserCookieName); err == nil {
			user, err := s.UserFromRequest(r)
			if err != nil {
				logger.ContextRequestLogger(ctx).Warn("ignoring unreadable user cookie",
					slog.String("component", "ui.LoadSession"),
					slog.String("error", err.Error()),
				)
			} else {
				ctx = ContextWithUser(ctx, user)
				logger.ContextWithLogAttrs(ctx, slog.String("user_id", user.ID))
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects to the login page unless the request has a valid token.
// The API does not always issue a token, so a user cookie without any token also counts as logged in.
// The session cookies are removed when the token has expired.
func (s *SessionService) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.ContextRequestLogger(r.Context())
		tokenStatus := s.CheckTokenStatus(r)

		// the user cookie is not signed, so routes behind a token-less session must only show what the cookie itself holds
		if tokenStatus == TokenMissing {
			if _, err := s.UserFromRequest(r); err == nil {
				tokenStatus = TokenValid
			}
		}

		switch tokenStatus {
		case TokenValid:
			reqLogger.Debug("Authentication check successful",
				slog.String("component", "ui.RequireAuth"),
			)
			next.ServeHTTP(w, r)
		case TokenExpired:
			reqLogger.Debug("Session expired - redirecting to login",
				slog.String("component", "ui.RequireAuth"),
			)
			s.ClearSession(w)
			redirectToLogin(w, r)
		default:
			reqLogger.Debug("Authentication failed - redirecting to login",
				slog.String("component", "ui.RequireAuth"),
				slog.String("status", tokenStatus.String()),
			)
			redirectToLogin(w, r)
		}
	})
}

// redirectToLogin redirects to the login page for both HTMX and direct requests
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
	} else {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
