package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/visit"
)

type visitApi struct {
	svc *visit.Service
}

func registerVisitAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *visit.Service) {
	api := visitApi{svc: svc}

	vg := g.Group("/page-visits", authed)
	vg.POST("", api.record)
	vg.GET("", api.mine)
	vg.GET("/stats", api.stats, adminMiddleware())
}

func (api *visitApi) record(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data visit.NewVisit
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVisit")
	}
	if err = data.Validate(core.Validate); err != nil {
		return err
	}

	v, err := api.svc.Record(data.Page, usr.ID)
	if err != nil {
		return errors.Wrap(err, "recording visit")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *visitApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	visits, err := api.svc.QueryByUser(usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying visits")
	}
	if visits == nil {
		visits = []visit.Visit{}
	}
	return ctx.JSON(http.StatusOK, visits)
}

func (api *visitApi) stats(ctx echo.Context) error {
	limit := visit.DefaultStatsLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "limit", Error: "must be a positive integer"})
		}
		limit = n
	}

	counts, err := api.svc.MostVisited(limit)
	if err != nil {
		return errors.Wrap(err, "aggregating visits")
	}
	if counts == nil {
		counts = []visit.PageCount{}
	}
	return ctx.JSON(http.StatusOK, counts)
}
