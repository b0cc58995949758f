package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/services"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/middleware"
	"okr-console/pkg/utils"
)

type ProfileController struct {
	orgService services.OrgServiceInterface
	logger     *zap.Logger
}

func NewProfileController(orgService services.OrgServiceInterface, logger *zap.Logger) *ProfileController {
	return &ProfileController{orgService: orgService, logger: logger}
}

// Profile: текущий пользователь. Хранилище перечитывается, чтобы
// показать актуальные команду и департамент; при его недоступности
// отдаются данные сессии.
func (ctrl *ProfileController) Profile(c echo.Context) error {
	sc := middleware.SessionFrom(c)
	if sc == nil {
		return utils.ErrorResponse(c, apperrors.ErrUnauthorized, ctrl.logger)
	}
	user, ok := sc.User()
	if !ok {
		return utils.ErrorResponse(c, apperrors.ErrUnauthorized, ctrl.logger)
	}

	person := entities.Person{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		CompanyID:    user.CompanyID,
		DepartmentID: user.DepartmentID,
		TeamID:       user.TeamID,
	}
	rec, err := ctrl.orgService.Get(c.Request().Context(), entities.KindPerson, user.ID)
	if err != nil {
		ctrl.logger.Warn("Профиль: хранилище недоступно, используются данные сессии", zap.String("userID", user.ID), zap.Error(err))
	} else {
		fresh := rec.ToPerson()
		// роль остаётся той, с которой открыта сессия
		fresh.Role = user.Role
		person = fresh
	}
	return utils.SuccessResponse(c, services.PublicUser(person), "Профиль получен", http.StatusOK)
}
