package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/material"
)

type materialApi struct {
	svc *material.Service
}

func registerMaterialAPI(g *echo.Group, authed echo.MiddlewareFunc, svc *material.Service) {
	api := materialApi{svc: svc}

	mg := g.Group("/materials", authed)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.POST("", api.create, adminMiddleware())
	mg.PUT("/:id", api.update, adminMiddleware())
	mg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *materialApi) create(ctx echo.Context) error {
	var data material.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(core.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	m, err := api.svc.Create(data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating material")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *materialApi) query(ctx echo.Context) error {
	mats, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if mats == nil {
		mats = []material.Material{}
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *materialApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	m, err := api.svc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting material")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *materialApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data material.UpdateMaterial
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaterial")
	}
	if err = data.Validate(core.Validate); err != nil {
		return err
	}

	m, err := api.svc.Update(id, data)
	if err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating material")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *materialApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(id); err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}
