package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/services"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/middleware"
	"okr-console/pkg/utils"
)

// Коллекции орг-страниц и их маршруты.
var orgRoutes = map[entities.EntityKind]string{
	entities.KindCompany:    authz.RouteCompany,
	entities.KindDepartment: authz.RouteDepartments,
	entities.KindTeam:       authz.RouteTeams,
	entities.KindPerson:     authz.RouteEmployees,
}

func orgKind(c echo.Context) (entities.EntityKind, error) {
	kind := entities.EntityKind(c.Param("kind"))
	if _, ok := orgRoutes[kind]; !ok {
		return "", apperrors.ErrUnknownPage
	}
	return kind, nil
}

// OrgRoute: маршрут коллекции из параметра :kind, для проверки доступа.
func OrgRoute(c echo.Context) (string, error) {
	kind, err := orgKind(c)
	if err != nil {
		return "", err
	}
	return orgRoutes[kind], nil
}

type OrgController struct {
	orgService services.OrgServiceInterface
	sync       services.SynchronizerInterface
	logger     *zap.Logger
}

func NewOrgController(orgService services.OrgServiceInterface, sync services.SynchronizerInterface, logger *zap.Logger) *OrgController {
	return &OrgController{orgService: orgService, sync: sync, logger: logger}
}

func (ctrl *OrgController) table(ctx context.Context, kind entities.EntityKind, search string) (dto.TableViewDTO, error) {
	records, err := ctrl.orgService.List(ctx, kind, search)
	if err != nil {
		return dto.TableViewDTO{}, err
	}
	return services.RecordTable(kind, records), nil
}

func (ctrl *OrgController) List(c echo.Context) error {
	kind, err := orgKind(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	view, err := ctrl.table(c.Request().Context(), kind, c.QueryParam("search"))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if wantsXLSX(c) {
		if err := respondWithXLSX(c, kind.Label(), string(kind), view); err != nil {
			return utils.ErrorResponse(c, err, ctrl.logger)
		}
		return nil
	}
	return utils.SuccessResponse(c, view, "Список получен", http.StatusOK)
}

// Children: например, сотрудники команды или команды департамента.
func (ctrl *OrgController) Children(c echo.Context) error {
	kind, err := orgKind(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	child, ok := entities.ParseKind(c.Param("child"))
	if !ok {
		return utils.ErrorResponse(c, apperrors.NewValidationFailure("child", "неизвестная коллекция"), ctrl.logger)
	}
	records, err := ctrl.orgService.Children(c.Request().Context(), kind, c.Param("id"), child)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, services.RecordTable(child, records), "Список получен", http.StatusOK)
}

// refresher перечитывает плоский список; результат попадает в ответ мутации.
func (ctrl *OrgController) refresher(kind entities.EntityKind, view *dto.TableViewDTO) services.Refresher {
	return services.RefresherFunc(func(ctx context.Context) error {
		fresh, err := ctrl.table(ctx, kind, "")
		if err != nil {
			view.Error = "не удалось обновить список"
			return err
		}
		*view = fresh
		return nil
	})
}

func actor(c echo.Context) string {
	if sc := middleware.SessionFrom(c); sc != nil {
		if u, ok := sc.User(); ok {
			return u.ID
		}
	}
	return ""
}

func (ctrl *OrgController) Create(c echo.Context) error {
	kind, err := orgKind(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	values, err := formValues(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var view dto.TableViewDTO
	created, err := ctrl.sync.Create(c.Request().Context(), kind, values, services.Scope{ActorID: actor(c)}, ctrl.refresher(kind, &view))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, dto.MutationResultDTO{ID: created.ID, Table: &view}, kind.Label()+" создан(а)", http.StatusCreated)
}

func (ctrl *OrgController) Delete(c echo.Context) error {
	kind, err := orgKind(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var view dto.TableViewDTO
	err = ctrl.sync.Delete(c.Request().Context(), kind, c.Param("id"), confirmed(c), services.Scope{ActorID: actor(c)}, ctrl.refresher(kind, &view))
	if errors.Is(err, apperrors.ErrConfirmationRequired) {
		return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusConflict, services.DeleteConfirmation(kind), err, nil), ctrl.logger)
	}
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, dto.MutationResultDTO{ID: c.Param("id"), Table: &view}, kind.Label()+" удален(а)", http.StatusOK)
}
