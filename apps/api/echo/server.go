package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/assignment"
	"github.com/trezcool/codestock/core/award"
	"github.com/trezcool/codestock/core/material"
	"github.com/trezcool/codestock/core/presence"
	"github.com/trezcool/codestock/core/session"
	"github.com/trezcool/codestock/core/user"
	"github.com/trezcool/codestock/core/visit"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		SignalShutdown func()

		UserSvc       *user.Service
		SessionSvc    *session.Service
		PresenceSvc   *presence.Service
		MaterialSvc   *material.Service
		AssignmentSvc *assignment.Service
		AwardSvc      *award.Service
		VisitSvc      *visit.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	authed := sessionMiddleware(s.opts.SessionSvc, s.opts.UserSvc)

	registerAuthAPI(v1, authed, s.opts.UserSvc, s.opts.SessionSvc, s.opts.PresenceSvc)
	registerPresenceAPI(v1, authed, s.opts.PresenceSvc)
	registerMaterialAPI(v1, authed, s.opts.MaterialSvc)
	registerAssignmentAPI(v1, authed, s.opts.AssignmentSvc)
	registerAwardAPI(v1, authed, s.opts.AwardSvc)
	registerVisitAPI(v1, authed, s.opts.VisitSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CodeStock API!")
}
