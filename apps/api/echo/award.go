package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/award"
)

type awardApi struct {
	svc *award.Service
}

func registerAwardAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *award.Service) {
	api := awardApi{svc: svc}

	ag := g.Group("/awards", authed)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.POST("", api.create, adminMiddleware())
	ag.PUT("/:id", api.update, adminMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())

	ug := g.Group("/user-awards", authed)
	ug.GET("", api.mine)
	ug.POST("", api.assign, adminMiddleware())
}

func (api *awardApi) create(ctx echo.Context) error {
	var data award.NewAward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAward")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	a, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating award")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *awardApi) query(ctx echo.Context) error {
	awards, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying awards")
	}
	if awards == nil {
		awards = []award.Award{}
	}
	return ctx.JSON(http.StatusOK, awards)
}

func (api *awardApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	a, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == award.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting award")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *awardApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data award.UpdateAward
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAward")
	}
	if err = data.Validate(core.Validate); err != nil {
		return err
	}

	a, err := api.svc.Update(id, data)
	if err != nil {
		if errors.Cause(err) == award.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating award")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *awardApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(id); err != nil {
		if errors.Cause(err) == award.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting award")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *awardApi) assign(ctx echo.Context) error {
	var data award.AssignAward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignAward")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	ua, err := api.svc.Assign(data)
	if err != nil {
		return errors.Wrap(err, "assigning award")
	}
	return ctx.JSON(http.StatusCreated, ua)
}

func (api *awardApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	details, err := api.svc.UserAwards(usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying user awards")
	}
	if details == nil {
		details = []award.UserAwardDetail{}
	}
	return ctx.JSON(http.StatusOK, details)
}
