package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/services"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/utils"
)

// GoalController: создание и удаление целей со страницы каскада.
// После мутации перечитывается каскад этой же страницы.
type GoalController struct {
	cascades *CascadeController
	sync     services.SynchronizerInterface
	logger   *zap.Logger
}

func NewGoalController(cascades *CascadeController, sync services.SynchronizerInterface, logger *zap.Logger) *GoalController {
	return &GoalController{cascades: cascades, sync: sync, logger: logger}
}

func goalKind(c echo.Context) (entities.EntityKind, error) {
	dataType := entities.DataType(c.Param("type"))
	if !dataType.Valid() {
		return "", apperrors.NewValidationFailure("data_type", "неизвестный тип данных")
	}
	return dataType.Kind(), nil
}

func (ctrl *GoalController) scope(c echo.Context, state services.CascadeState) services.Scope {
	scope := services.Scope{ActorID: actor(c)}
	if state.GroupType != "" && state.GroupID != "" {
		group := state.Group()
		scope.Group = &group
	}
	return scope
}

func (ctrl *GoalController) Create(c echo.Context) error {
	kind, err := goalKind(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	values, err := formValues(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	cascade, err := ctrl.cascades.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	created, err := ctrl.sync.Create(c.Request().Context(), kind, values, ctrl.scope(c, cascade.Snapshot()), cascade)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	view := ctrl.cascades.view(c, cascade.Snapshot())
	return utils.SuccessResponse(c, dto.MutationResultDTO{ID: created.ID, Cascade: &view}, kind.Label()+" создан(а)", http.StatusCreated)
}

// Delete без ?confirm=true возвращает 409 и текст подтверждения.
func (ctrl *GoalController) Delete(c echo.Context) error {
	kind, err := goalKind(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	cascade, err := ctrl.cascades.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	err = ctrl.sync.Delete(c.Request().Context(), kind, c.Param("id"), confirmed(c), ctrl.scope(c, cascade.Snapshot()), cascade)
	if errors.Is(err, apperrors.ErrConfirmationRequired) {
		return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusConflict, services.DeleteConfirmation(kind), err, nil), ctrl.logger)
	}
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	view := ctrl.cascades.view(c, cascade.Snapshot())
	return utils.SuccessResponse(c, dto.MutationResultDTO{ID: c.Param("id"), Cascade: &view}, kind.Label()+" удален(а)", http.StatusOK)
}
