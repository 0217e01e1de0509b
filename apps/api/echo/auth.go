package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/session"
	"github.com/trezcool/codestock/core/user"
)

const (
	sessionCookieName = "sessionid"
	contextUserKey    = "user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// secureCookie reports whether session cookies carry the Secure attribute.
// DEV runs on plain HTTP; a Secure cookie there never makes it back.
func secureCookie() bool {
	return core.Conf.Env != "DEV"
}

// setSessionCookie attaches the opaque session token to the response. The
// cookie is HttpOnly; Secure is set outside DEV so local plain-HTTP still works.
func setSessionCookie(ctx echo.Context, sess session.Session) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(time.Until(sess.ExpiresAt) / time.Second),
		HttpOnly: true,
		Secure:   secureCookie(),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookie(),
		SameSite: http.SameSiteLaxMode,
	})
}

func getSessionToken(ctx echo.Context) string {
	cookie, err := ctx.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// sessionMiddleware resolves the session cookie into a user.User stored in the
// echo.Context. An absent, expired or revoked session is a 401; the stale
// cookie is cleared on the way out.
func sessionMiddleware(sessionSvc *session.Service, userSvc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := getSessionToken(ctx)
			if token == "" {
				return errUnauthorized
			}

			userID, err := sessionSvc.Resolve(token)
			if err != nil {
				if errors.Cause(err) == session.ErrSessionInvalid {
					clearSessionCookie(ctx)
					return errUnauthorized
				}
				return errors.Wrap(err, "resolving session")
			}

			usr, err := userSvc.GetByID(userID)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					// the account went away under a live session
					_ = sessionSvc.Revoke(token)
					clearSessionCookie(ctx)
					return errUnauthorized
				}
				return errors.Wrap(err, "finding session user")
			}

			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}
