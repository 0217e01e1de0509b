package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/presence"
)

type presenceApi struct {
	svc *presence.Service
}

func registerPresenceAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *presence.Service) {
	api := presenceApi{svc: svc}

	pg := g.Group("/presence", authed)
	pg.POST("/heartbeat", api.heartbeat)
	pg.GET("/active", api.listActive, adminMiddleware())
}

func (api *presenceApi) heartbeat(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data HeartbeatRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HeartbeatRequest")
	}

	entry, err := api.svc.Heartbeat(usr.ID, core.CleanString(data.Page))
	if err != nil {
		return errors.Wrap(err, "recording heartbeat")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *presenceApi) listActive(ctx echo.Context) error {
	threshold := core.Conf.Server.PresenceThreshold
	if raw := ctx.QueryParam("thresholdMs"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "thresholdMs", Error: "must be a positive integer"})
		}
		threshold = time.Duration(ms) * time.Millisecond
	}

	entries, err := api.svc.ListActive(threshold)
	if err != nil {
		return errors.Wrap(err, "listing active users")
	}
	if entries == nil {
		entries = []presence.ActiveEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

type HeartbeatRequest struct {
	Page string `json:"page"`
}
