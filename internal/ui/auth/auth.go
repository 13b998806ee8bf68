package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/constella-app/constella-web/internal/ui/config"
	"github.com/constella-app/constella-web/internal/ui/types"
	"github.com/golang-jwt/jwt/v5"
)

// SessionService keeps the logged in user's token and profile in cookies
type SessionService struct {
	environment string
	now         func() time.Time
}

func NewSessionService(environment string) *SessionService {
	return &SessionService{
		environment: environment,
		now:         time.Now,
	}
}

// TokenStatus represents the status of the bearer token sent with a UI request
type TokenStatus int

const (
	TokenMissing TokenStatus = iota
	TokenExpired
	TokenValid
)

var tokenStatusNames = []string{"TokenMissing", "TokenExpired", "TokenValid"}

func (t TokenStatus) String() string {
	if t < 0 || int(t) >= len(tokenStatusNames) {
		return fmt.Sprintf("TokenStatus(%d)", int(t))
	}
	return tokenStatusNames[t]
}

func (s *SessionService) isProd() bool {
	return s.environment == "prod" || s.environment == "staging"
}

// tokenExpiry returns the exp claim when the token is a JWT that has one.
// The API may also issue opaque tokens, these have no known expiry.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &jwt.RegisteredClaims{}

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// CheckTokenStatus reports whether the request carries a usable token.
// The signature is not checked here, that is the API's job.
func (s *SessionService) CheckTokenStatus(r *http.Request) TokenStatus {
	cookie, err := r.Cookie(config.TokenCookieName)
	if err != nil || cookie.Value == "" {
		return TokenMissing
	}

	if exp, ok := tokenExpiry(cookie.Value); ok && !exp.After(s.now()) {
		return TokenExpired
	}
	return TokenValid
}

// SetSession writes the token and user cookies after a successful login or signup.
// The cookies expire with the token when it is a JWT, otherwise they last for the browser session.
func (s *SessionService) SetSession(w http.ResponseWriter, token string, user types.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	// Base64 encode to avoid cookie encoding issues
	encodedUser := base64.URLEncoding.EncodeToString(userJSON)

	maxAge := 0
	if exp, ok := tokenExpiry(token); ok {
		maxAge = int(exp.Sub(s.now()).Seconds())
		if maxAge <= 0 {
			return errors.New("token has already expired")
		}
	}

	if token != "" {
		http.SetCookie(w, s.cookie(config.TokenCookieName, token, maxAge))
	}
	http.SetCookie(w, s.cookie(config.UserCookieName, encodedUser, maxAge))
	return nil
}

// ClearSession removes the token and user cookies
func (s *SessionService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(config.TokenCookieName, "", -1))
	http.SetCookie(w, s.cookie(config.UserCookieName, "", -1))
}

func (s *SessionService) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.isProd(),
		SameSite: http.SameSiteLaxMode,
	}
}

// UserFromRequest decodes the user cookie
func (s *SessionService) UserFromRequest(r *http.Request) (*types.User, error) {
	cookie, err := r.Cookie(config.UserCookieName)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user cookie: %w", err)
	}

	var user types.User
	if err := json.Unmarshal(decoded, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user cookie: %w", err)
	}
	return &user, nil
}
