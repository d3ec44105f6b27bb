package middleware

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/response"
	"github.com/shashiranjanraj/heartscript/pkg/session"
)

// UserExists reports whether the user row behind a session still exists.
type UserExists func(ctx context.Context, id uint) (bool, error)

// Identify resolves the request Identity from the session once, after
// session.Middleware. A user_id whose row is gone invalidates the session.
func Identify(exists UserExists) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromCtx(r)
			id := auth.Identity{Admin: sess.GetBool(auth.SessionAdmin)}

			if uid, ok := sess.GetUint(auth.SessionUserID); ok {
				found, err := exists(r.Context(), uid)
				switch {
				case err != nil:
					logger.WithCtx(r.Context()).Error("identity: user lookup failed", "user_id", uid, "error", err)
				case found:
					id.UserID = uid
				default:
					logger.WithCtx(r.Context()).Warn("identity: stale session", "user_id", uid)
					sess.Invalidate()
					id = auth.Identity{}
					if err := sess.Save(r.Context(), w); err != nil {
						logger.WithCtx(r.Context()).Error("session: save failed", "error", err)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireUser lets logged-in customers through. Anonymous GETs are sent to
// loginPath; other methods get 403.
func RequireUser(loginPath string) func(http.Handler) http.Handler {
	return guard(loginPath, func(id auth.Identity) bool { return id.Authenticated() })
}

// RequireAdmin is RequireUser for the admin flag.
func RequireAdmin(loginPath string) func(http.Handler) http.Handler {
	return guard(loginPath, func(id auth.Identity) bool { return id.Admin })
}

func guard(loginPath string, allowed func(auth.Identity) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed(auth.FromContext(r.Context())) {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			response.Forbidden(w)
		})
	}
}
