package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/presence"
	"github.com/trezcool/codestock/core/session"
	"github.com/trezcool/codestock/core/user"
)

type authApi struct {
	userSvc     *user.Service
	sessionSvc  *session.Service
	presenceSvc *presence.Service
}

func registerAuthAPI(
	g *echo.Group,
	authed echo.MiddlewareFunc,
	userSvc *user.Service,
	sessionSvc *session.Service,
	presenceSvc *presence.Service,
) {
	api := authApi{
		userSvc:     userSvc,
		sessionSvc:  sessionSvc,
		presenceSvc: presenceSvc,
	}

	// un-authed endpoints
	// TODO: rate limit `/login`, `/password-reset` & `/password-reset-confirm`
	g.POST("/login", api.login)
	g.POST("/register", api.register)
	g.POST("/users/password-reset", api.resetPassword)
	g.POST("/users/password-reset-confirm", api.confirmPasswordReset)
	g.POST("/logout", api.logout) // always a 200, cookie or not

	// authed endpoints
	g.GET("/session/current", api.currentSession, authed)
	g.GET("/users", api.query, authed, adminMiddleware())
}

// openSession mints a session for usr, sets the cookie and records a first
// presence heartbeat.
func (api *authApi) openSession(ctx echo.Context, usr user.User) error {
	sess, err := api.sessionSvc.Create(usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	setSessionCookie(ctx, sess)

	if _, err = api.presenceSvc.Heartbeat(usr.ID, ""); err != nil {
		return errors.Wrap(err, "recording login heartbeat")
	}
	return nil
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.userSvc.Authenticate(data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = api.openSession(ctx, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, UserResponse{User: usr})
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(core.Validate, api.userSvc); err != nil {
		return err
	}

	usr, err := api.userSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	// registration doubles as login
	if err = api.openSession(ctx, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, UserResponse{User: usr})
}

// logout revokes whatever session the cookie carries. Revoke is idempotent,
// so an absent or dead cookie still logs out cleanly.
func (api *authApi) logout(ctx echo.Context) error {
	if token := getSessionToken(ctx); token != "" {
		if err := api.sessionSvc.Revoke(token); err != nil {
			return errors.Wrap(err, "revoking session")
		}
	}
	clearSessionCookie(ctx)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

func (api *authApi) currentSession(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, UserResponse{User: usr})
}

func (api *authApi) query(ctx echo.Context) error {
	users, err := api.userSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.userSvc.RequestPasswordReset(data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	if err := api.userSvc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	UserResponse struct {
		User user.User `json:"user"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}
