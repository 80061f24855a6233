package transport

import (
	"context"
	"net/http"

	"github.com/vertexhq/vertex/internal/domain/account"
)

// SessionCookie is the client-held correlate of the server-side session
// token.
const SessionCookie = "vertex_session"

// AccountService is the slice of the account service the transport needs.
type AccountService interface {
	Signup(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(token string)
	Session(token string) account.Session
}

type identityKey struct{}

// IdentityFromContext returns the authenticated email from context, if
// present.
func IdentityFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(identityKey{}).(string)
	return email, ok
}

// RequireSession rejects requests without a valid session cookie.
func RequireSession(accounts AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := accounts.Session(sessionToken(r))
			if !sess.Authenticated {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, sess.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
