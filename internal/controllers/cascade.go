package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/services"
	"okr-console/internal/session"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/middleware"
	"okr-console/pkg/utils"
)

type CascadeController struct {
	cascades *services.CascadeRegistry
	resolver services.ResolverInterface
	gate     *authz.Gate
	logger   *zap.Logger
}

func NewCascadeController(
	cascades *services.CascadeRegistry,
	resolver services.ResolverInterface,
	gate *authz.Gate,
	logger *zap.Logger,
) *CascadeController {
	return &CascadeController{
		cascades: cascades,
		resolver: resolver,
		gate:     gate,
		logger:   logger,
	}
}

// PageRoute: маршрут страницы из параметра :page, для проверки доступа.
func PageRoute(c echo.Context) (string, error) {
	return services.PageRoute(c.Param("page"))
}

func (ctrl *CascadeController) cascade(c echo.Context) (*services.Cascade, error) {
	sc := middleware.SessionFrom(c)
	if sc == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return ctrl.cascades.Get(sc.ID(), c.Param("page"), scopeOf(sc))
}

func scopeOf(sc *session.Context) services.GroupScope {
	user, ok := sc.User()
	if !ok {
		return nil
	}
	return services.ScopeOf(user)
}

// view собирает снимок каскада вместе с кнопками, доступными роли на странице.
func (ctrl *CascadeController) view(c echo.Context, state services.CascadeState) dto.CascadeDTO {
	page := c.Param("page")
	route, _ := services.PageRoute(page)
	actions := ctrl.gate.AllowedActions(middleware.SessionFrom(c).Role(), route)

	options := state.GroupOptions
	if options == nil {
		options = []dto.OptionDTO{}
	}
	return dto.CascadeDTO{
		Page:         page,
		GroupType:    string(state.GroupType),
		GroupID:      state.GroupID,
		DataType:     string(state.DataType),
		GroupOptions: options,
		GroupsReady:  state.GroupsReady,
		Table:        services.CascadeTable(state),
		Actions: dto.ActionsDTO{
			CanCreate: actions.CanCreate,
			CanEdit:   actions.CanEdit,
			CanDelete: actions.CanDelete,
		},
	}
}

// respond: ошибка сети уже записана в состояние, поэтому фронтенд получает
// и код ошибки, и актуальный снимок.
func (ctrl *CascadeController) respond(c echo.Context, state services.CascadeState, err error, message string) error {
	if err != nil {
		if apperrors.IsRemoteFailure(err) {
			return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadGateway, "не удалось загрузить данные", err, ctrl.view(c, state)), ctrl.logger)
		}
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, ctrl.view(c, state), message, http.StatusOK)
}

// Visit обрабатывает заход на страницу, каскад начинается заново.
func (ctrl *CascadeController) Visit(c echo.Context) error {
	sc := middleware.SessionFrom(c)
	if sc == nil {
		return utils.ErrorResponse(c, apperrors.ErrUnauthorized, ctrl.logger)
	}
	state, err := ctrl.cascades.Visit(c.Request().Context(), sc.ID(), c.Param("page"), scopeOf(sc))
	return ctrl.respond(c, state, err, "Страница открыта")
}

func (ctrl *CascadeController) Get(c echo.Context) error {
	cascade, err := ctrl.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return ctrl.respond(c, cascade.Snapshot(), nil, "Состояние получено")
}

func (ctrl *CascadeController) SelectGroupType(c echo.Context) error {
	var payload dto.SelectGroupTypeDTO
	if err := ctrl.bind(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return ctrl.dispatch(c, services.SelectGroupType{GroupType: entities.GroupType(payload.GroupType)}, "Тип группы выбран")
}

func (ctrl *CascadeController) SelectGroup(c echo.Context) error {
	var payload dto.SelectGroupDTO
	if err := ctrl.bind(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return ctrl.dispatch(c, services.SelectGroup{GroupID: payload.GroupID}, "Группа выбрана")
}

func (ctrl *CascadeController) SelectDataType(c echo.Context) error {
	var payload dto.SelectDataTypeDTO
	if err := ctrl.bind(c, &payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return ctrl.dispatch(c, services.SelectDataType{DataType: entities.DataType(payload.DataType)}, "Тип данных выбран")
}

func (ctrl *CascadeController) bind(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
	}
	return c.Validate(payload)
}

func (ctrl *CascadeController) dispatch(c echo.Context, event services.CascadeEvent, message string) error {
	cascade, err := ctrl.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	state, err := cascade.Dispatch(c.Request().Context(), event)
	return ctrl.respond(c, state, err, message)
}

// Members: сотрудники выбранной группы, для поля «ответственный».
func (ctrl *CascadeController) Members(c echo.Context) error {
	cascade, err := ctrl.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	state := cascade.Snapshot()
	people, err := ctrl.resolver.Members(c.Request().Context(), state.GroupType, state.GroupID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	options := make([]dto.OptionDTO, 0, len(people))
	for _, p := range people {
		label := p.Name
		if label == "" {
			label = p.Email
		}
		options = append(options, dto.OptionDTO{ID: p.ID, Label: label})
	}
	return utils.SuccessResponse(c, options, "Сотрудники группы получены", http.StatusOK)
}

// Parents: варианты поля «родитель» для формы создания уровня ?data_type=.
// Родители берутся из той же группы, что и каскад.
func (ctrl *CascadeController) Parents(c echo.Context) error {
	cascade, err := ctrl.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	dataType := entities.DataType(c.QueryParam("data_type"))
	if !dataType.Valid() {
		return utils.ErrorResponse(c, apperrors.NewValidationFailure("data_type", "неизвестный тип данных"), ctrl.logger)
	}
	parentType := dataType.Parent()
	if parentType == "" {
		return utils.SuccessResponse(c, []dto.OptionDTO{}, "У уровня нет родителя", http.StatusOK)
	}

	state := cascade.Snapshot()
	nodes, err := ctrl.resolver.GoalNodes(c.Request().Context(), parentType, state.Group())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	options := make([]dto.OptionDTO, 0, len(nodes))
	for _, n := range nodes {
		options = append(options, dto.OptionDTO{ID: n.ID, Label: n.Label()})
	}
	return utils.SuccessResponse(c, options, "Варианты родителя получены", http.StatusOK)
}

// GoalChildren: прямые потомки узла дерева целей.
func (ctrl *CascadeController) GoalChildren(c echo.Context) error {
	parentType := entities.DataType(c.Param("type"))
	if !parentType.Valid() {
		return utils.ErrorResponse(c, apperrors.NewValidationFailure("data_type", "неизвестный тип данных"), ctrl.logger)
	}
	cascade, err := ctrl.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if !cascade.Visible(c.Param("id")) {
		return utils.ErrorResponse(c, apperrors.ErrForbidden, ctrl.logger)
	}
	nodes, err := ctrl.resolver.GoalChildren(c.Request().Context(), parentType, c.Param("id"))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, services.GoalRows(nodes), "Дочерние цели получены", http.StatusOK)
}

func (ctrl *CascadeController) Export(c echo.Context) error {
	cascade, err := ctrl.cascade(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	state := cascade.Snapshot()
	if err := respondWithXLSX(c, state.DataType.Kind().Label(), "okr_"+c.Param("page"), services.CascadeTable(state)); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return nil
}
