package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"okr-console/internal/authz"
	"okr-console/internal/dto"
	"okr-console/internal/integrations/mock"
	"okr-console/internal/repositories"
	"okr-console/internal/services"
	"okr-console/internal/session"
	"okr-console/pkg/eventbus"
	"okr-console/pkg/service"
	"okr-console/pkg/utils"
	appwebsocket "okr-console/pkg/websocket"
	"okr-console/seeders"
)

const demoPassword = "demo12345"

// ConsoleTestSuite поднимает консоль целиком поверх хранилища в памяти,
// наполненного демо-организацией.
type ConsoleTestSuite struct {
	suite.Suite
	Echo   *echo.Echo
	Store  *mock.MockProvider
	IDs    map[string]string
	cancel context.CancelFunc
	bus    *eventbus.Bus
}

func (suite *ConsoleTestSuite) SetupTest() {
	nopLogger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel

	store := mock.NewMockProvider()
	seeder := seeders.New(services.NewSynchronizer(store, nil, nopLogger), demoPassword, nopLogger)
	require.NoError(suite.T(), seeder.SeedOrg(ctx))
	require.NoError(suite.T(), seeder.SeedGoals(ctx))
	suite.Store = store
	suite.IDs = seeder.IDs()

	e := echo.New()
	e.Validator = utils.NewValidator(validator.New())

	gate, err := authz.NewGate(nopLogger)
	require.NoError(suite.T(), err)

	hub := appwebsocket.NewHub(nopLogger)
	go hub.Run(ctx)
	suite.bus = eventbus.New(nopLogger)

	resolver := services.NewResolver(store, nopLogger)
	cascades := services.NewCascadeRegistry(resolver, nopLogger)
	sessions := session.NewStore(repositories.NewMemoryCacheRepository(), time.Hour, nopLogger)
	jwtSvc := service.NewJWTService("test-secret", time.Hour)

	InitRouter(e, Deps{
		Auth:     services.NewAuthService(store, sessions, cascades, jwtSvc, gate, nopLogger),
		Resolver: resolver,
		Cascades: cascades,
		Org:      services.NewOrgService(store, nopLogger),
		Sync:     services.NewSynchronizer(store, suite.bus, nopLogger),
		Gate:     gate,
		Sessions: sessions,
		JWT:      jwtSvc,
		Hub:      hub,
	}, &Loggers{
		Main:    nopLogger,
		Auth:    nopLogger,
		Cascade: nopLogger,
		Org:     nopLogger,
	})
	suite.Echo = e
}

func (suite *ConsoleTestSuite) TearDownTest() {
	suite.bus.Wait()
	suite.cancel()
}

type envelope struct {
	Status  bool            `json:"status"`
	Body    json.RawMessage `json:"body"`
	Message string          `json:"message"`
}

func (suite *ConsoleTestSuite) do(method, target, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	if payload != nil {
		require.NoError(suite.T(), json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (suite *ConsoleTestSuite) login(email string) string {
	rec, env := suite.do(http.MethodPost, "/api/auth/login", "", dto.LoginDTO{Email: email, Password: demoPassword})
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	var auth dto.AuthResponseDTO
	require.NoError(suite.T(), json.Unmarshal(env.Body, &auth))
	require.NotEmpty(suite.T(), auth.AccessToken)
	return auth.AccessToken
}

func cascadeOf(t *testing.T, env envelope) dto.CascadeDTO {
	t.Helper()
	var view dto.CascadeDTO
	require.NoError(t, json.Unmarshal(env.Body, &view))
	return view
}

func (suite *ConsoleTestSuite) TestLogin() {
	suite.T().Run("директор получает меню со всеми маршрутами", func(t *testing.T) {
		rec, env := suite.do(http.MethodPost, "/api/auth/login", "", dto.LoginDTO{Email: "director@vector.example", Password: demoPassword})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var auth dto.AuthResponseDTO
		require.NoError(t, json.Unmarshal(env.Body, &auth))
		assert.Equal(t, "Director", auth.User.Role)
		assert.Equal(t, suite.IDs["director"], auth.User.ID)
		assert.Len(t, auth.Navigation.Routes, len(authz.Routes))
	})

	suite.T().Run("неверный пароль", func(t *testing.T) {
		rec, env := suite.do(http.MethodPost, "/api/auth/login", "", dto.LoginDTO{Email: "director@vector.example", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, env.Status)
	})

	suite.T().Run("пустая форма", func(t *testing.T) {
		rec, _ := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func (suite *ConsoleTestSuite) TestLogoutEndsSession() {
	token := suite.login("manager@vector.example")

	rec, _ := suite.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = suite.do(http.MethodGet, "/api/profile", token, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *ConsoleTestSuite) TestNavigation() {
	suite.T().Run("аноним видит только вход", func(t *testing.T) {
		rec, env := suite.do(http.MethodGet, "/api/navigation", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var nav dto.NavigationDTO
		require.NoError(t, json.Unmarshal(env.Body, &nav))
		require.Len(t, nav.Routes, 1)
		assert.Equal(t, authz.RouteLogin, nav.Routes[0].Path)
		assert.Equal(t, authz.RouteLogin, nav.Default)
	})

	suite.T().Run("сотрудник на департаменты попадает в профиль", func(t *testing.T) {
		token := suite.login("employee@vector.example")
		rec, env := suite.do(http.MethodGet, "/api/navigation/resolve?route="+url.QueryEscape(authz.RouteDepartments), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resolved dto.ResolvedRouteDTO
		require.NoError(t, json.Unmarshal(env.Body, &resolved))
		assert.Equal(t, authz.RouteProfile, resolved.Route)
		assert.True(t, resolved.Redirected)
	})
}

func (suite *ConsoleTestSuite) TestAccessControl() {
	employee := suite.login("employee@vector.example")
	manager := suite.login("manager@vector.example")

	cases := []struct {
		name   string
		method string
		target string
		token  string
		code   int
	}{
		{"без токена", http.MethodGet, "/api/org/team", "", http.StatusUnauthorized},
		{"неизвестный путь без токена", http.MethodGet, "/api/reports", "", http.StatusNotFound},
		{"неизвестный путь с токеном", http.MethodGet, "/api/reports", manager, http.StatusNotFound},
		{"сотрудник и компании", http.MethodGet, "/api/org/company", employee, http.StatusForbidden},
		{"сотрудник и страница RPE", http.MethodGet, "/api/pages/rpe/cascade", employee, http.StatusForbidden},
		{"сотрудник создаёт цель", http.MethodPost, "/api/pages/home/goals/objective", employee, http.StatusForbidden},
		{"менеджер создаёт цель на главной", http.MethodPost, "/api/pages/home/goals/kr", manager, http.StatusForbidden},
		{"менеджер и департаменты", http.MethodGet, "/api/org/department", manager, http.StatusForbidden},
		{"менеджер и команды", http.MethodGet, "/api/org/team", manager, http.StatusOK},
		{"неизвестная страница", http.MethodGet, "/api/pages/reports/cascade", manager, http.StatusNotFound},
		{"неизвестная коллекция", http.MethodGet, "/api/org/galaxy", manager, http.StatusNotFound},
	}

	for _, tc := range cases {
		suite.T().Run(tc.name, func(t *testing.T) {
			var payload interface{}
			if tc.method == http.MethodPost {
				payload = map[string]string{"description": "x"}
			}
			rec, _ := suite.do(tc.method, tc.target, tc.token, payload)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func (suite *ConsoleTestSuite) TestProfile() {
	token := suite.login("employee@vector.example")

	rec, env := suite.do(http.MethodGet, "/api/profile", token, nil)

	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	var user dto.UserPublicDTO
	require.NoError(suite.T(), json.Unmarshal(env.Body, &user))
	assert.Equal(suite.T(), "employee@vector.example", user.Email)
	assert.Equal(suite.T(), suite.IDs["platform"], user.TeamID)
}

func (suite *ConsoleTestSuite) TestCascadeFlow() {
	token := suite.login("manager@vector.example")
	base := "/api/pages/rpe"

	suite.T().Run("новая страница показывает подсказку", func(t *testing.T) {
		rec, env := suite.do(http.MethodPost, base+"/visit", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := cascadeOf(t, env)
		assert.Equal(t, services.PromptFillAll, view.Table.Prompt)
		assert.Empty(t, view.Table.Rows)
	})

	suite.T().Run("тип группы загружает варианты", func(t *testing.T) {
		rec, env := suite.do(http.MethodPut, base+"/cascade/group-type", token, dto.SelectGroupTypeDTO{GroupType: "team"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := cascadeOf(t, env)
		assert.True(t, view.GroupsReady)
		assert.Len(t, view.GroupOptions, 3)
		assert.Equal(t, services.PromptFillAll, view.Table.Prompt)
	})

	suite.T().Run("группа вне вариантов отклоняется", func(t *testing.T) {
		rec, _ := suite.do(http.MethodPut, base+"/cascade/group", token, dto.SelectGroupDTO{GroupID: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	suite.T().Run("полный выбор показывает таблицу", func(t *testing.T) {
		rec, _ := suite.do(http.MethodPut, base+"/cascade/group", token, dto.SelectGroupDTO{GroupID: suite.IDs["platform"]})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec, env := suite.do(http.MethodPut, base+"/cascade/data-type", token, dto.SelectDataTypeDTO{DataType: "kr"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := cascadeOf(t, env)
		assert.Empty(t, view.Table.Prompt)
		require.Len(t, view.Table.Rows, 1)
		assert.Equal(t, suite.IDs["kr_release"], view.Table.Rows[0].ID)
		assert.True(t, view.Actions.CanCreate)
	})

	suite.T().Run("варианты родителя и ответственного", func(t *testing.T) {
		rec, env := suite.do(http.MethodGet, base+"/cascade/parents?data_type=kr", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var parents []dto.OptionDTO
		require.NoError(t, json.Unmarshal(env.Body, &parents))
		require.Len(t, parents, 1)
		assert.Equal(t, suite.IDs["obj_release"], parents[0].ID)

		rec, env = suite.do(http.MethodGet, base+"/cascade/members", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var members []dto.OptionDTO
		require.NoError(t, json.Unmarshal(env.Body, &members))
		assert.Len(t, members, 2)
	})

	var createdID string
	suite.T().Run("создание перечитывает таблицу", func(t *testing.T) {
		rec, env := suite.do(http.MethodPost, base+"/goals/kr", token, map[string]interface{}{
			"name":        "Время сборки",
			"description": "Сборка быстрее 10 минут",
			"parent_id":   suite.IDs["obj_release"],
			"goal":        10,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var result dto.MutationResultDTO
		require.NoError(t, json.Unmarshal(env.Body, &result))
		createdID = result.ID
		require.NotEmpty(t, createdID)
		require.NotNil(t, result.Cascade)
		assert.Len(t, result.Cascade.Table.Rows, 2)
	})

	suite.T().Run("создание без описания", func(t *testing.T) {
		rec, env := suite.do(http.MethodPost, base+"/goals/kr", token, map[string]interface{}{"parent_id": suite.IDs["obj_release"]})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		require.NoError(t, json.Unmarshal(env.Body, &fields))
		assert.Contains(t, fields, "description")
	})

	suite.T().Run("удаление без подтверждения", func(t *testing.T) {
		rec, env := suite.do(http.MethodDelete, base+"/goals/kr/"+createdID, token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, services.DeleteConfirmation("kr"), env.Message)

		_, err := suite.Store.GetOne(context.Background(), "kr", createdID)
		assert.NoError(t, err)
	})

	suite.T().Run("удаление с подтверждением", func(t *testing.T) {
		rec, env := suite.do(http.MethodDelete, fmt.Sprintf("%s/goals/kr/%s?confirm=true", base, createdID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var result dto.MutationResultDTO
		require.NoError(t, json.Unmarshal(env.Body, &result))
		assert.Len(t, result.Cascade.Table.Rows, 1)
	})

	suite.T().Run("смена типа группы сбрасывает таблицу", func(t *testing.T) {
		rec, env := suite.do(http.MethodPut, base+"/cascade/group-type", token, dto.SelectGroupTypeDTO{GroupType: "company"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := cascadeOf(t, env)
		assert.Empty(t, view.GroupID)
		assert.Equal(t, services.PromptFillAll, view.Table.Prompt)
	})
}

func (suite *ConsoleTestSuite) TestEmployeeSeesOnlyOwnGroups() {
	token := suite.login("ios@vector.example")
	base := "/api/pages/home"

	rec, _ := suite.do(http.MethodPost, base+"/visit", token, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	suite.T().Run("из команд доступна только своя", func(t *testing.T) {
		rec, env := suite.do(http.MethodPut, base+"/cascade/group-type", token, dto.SelectGroupTypeDTO{GroupType: "team"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := cascadeOf(t, env)
		require.Len(t, view.GroupOptions, 1)
		assert.Equal(t, suite.IDs["mobile"], view.GroupOptions[0].ID)
		assert.False(t, view.Actions.CanCreate)
	})

	suite.T().Run("чужая команда отклоняется", func(t *testing.T) {
		rec, _ := suite.do(http.MethodPut, base+"/cascade/group", token, dto.SelectGroupDTO{GroupID: suite.IDs["platform"]})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, env := suite.do(http.MethodGet, base+"/cascade", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := cascadeOf(t, env)
		assert.Empty(t, view.GroupID)
		assert.Empty(t, view.Table.Rows)
	})

	suite.T().Run("цели своего департамента", func(t *testing.T) {
		rec, env := suite.do(http.MethodPut, base+"/cascade/group-type", token, dto.SelectGroupTypeDTO{GroupType: "department"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := cascadeOf(t, env)
		require.Len(t, view.GroupOptions, 1)
		assert.Equal(t, suite.IDs["dev"], view.GroupOptions[0].ID)

		rec, _ = suite.do(http.MethodPut, base+"/cascade/group", token, dto.SelectGroupDTO{GroupID: suite.IDs["dev"]})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec, env = suite.do(http.MethodPut, base+"/cascade/data-type", token, dto.SelectDataTypeDTO{DataType: "rpe"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		ids := []string{}
		for _, row := range cascadeOf(t, env).Table.Rows {
			ids = append(ids, row.ID)
		}
		assert.Contains(t, ids, suite.IDs["rpe_dev"])
		assert.NotContains(t, ids, suite.IDs["rpe_platform"])
	})

	suite.T().Run("раскрыть можно только строки своей таблицы", func(t *testing.T) {
		rec, _ := suite.do(http.MethodGet, base+"/goals/rpe/"+suite.IDs["rpe_platform"]+"/children", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec, _ = suite.do(http.MethodGet, base+"/goals/rpe/"+suite.IDs["rpe_dev"]+"/children", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func (suite *ConsoleTestSuite) TestCascadeIsPerPage() {
	token := suite.login("manager@vector.example")

	rec, _ := suite.do(http.MethodPut, "/api/pages/home/cascade/group-type", token, dto.SelectGroupTypeDTO{GroupType: "team"})
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	rec, env := suite.do(http.MethodGet, "/api/pages/rpe/cascade", token, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Empty(suite.T(), cascadeOf(suite.T(), env).GroupType)
}

func (suite *ConsoleTestSuite) TestRemoteFailureKeepsSnapshot() {
	token := suite.login("manager@vector.example")
	suite.Store.FailOn("list_all")
	defer suite.Store.Recover("list_all")

	rec, env := suite.do(http.MethodPut, "/api/pages/home/cascade/group-type", token, dto.SelectGroupTypeDTO{GroupType: "team"})

	assert.Equal(suite.T(), http.StatusBadGateway, rec.Code)
	view := cascadeOf(suite.T(), env)
	assert.Equal(suite.T(), "team", view.GroupType)
	assert.False(suite.T(), view.GroupsReady)
}

func (suite *ConsoleTestSuite) TestOrgPages() {
	director := suite.login("director@vector.example")

	suite.T().Run("список команд", func(t *testing.T) {
		rec, env := suite.do(http.MethodGet, "/api/org/team", director, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var view dto.TableViewDTO
		require.NoError(t, json.Unmarshal(env.Body, &view))
		assert.Len(t, view.Rows, 3)
	})

	suite.T().Run("команды департамента", func(t *testing.T) {
		rec, env := suite.do(http.MethodGet, "/api/org/department/"+suite.IDs["dev"]+"/team", director, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var view dto.TableViewDTO
		require.NoError(t, json.Unmarshal(env.Body, &view))
		assert.Len(t, view.Rows, 2)
	})

	suite.T().Run("создание команды без департамента", func(t *testing.T) {
		rec, _ := suite.do(http.MethodPost, "/api/org/team", director, map[string]string{"name": "Аналитика"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	suite.T().Run("создание и удаление департамента", func(t *testing.T) {
		rec, env := suite.do(http.MethodPost, "/api/org/department", director, map[string]string{
			"name":       "Маркетинг",
			"company_id": suite.IDs["vector"],
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created dto.MutationResultDTO
		require.NoError(t, json.Unmarshal(env.Body, &created))
		require.NotNil(t, created.Table)
		assert.Len(t, created.Table.Rows, 3)

		rec, _ = suite.do(http.MethodDelete, "/api/org/department/"+created.ID, director, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec, env = suite.do(http.MethodDelete, "/api/org/department/"+created.ID+"?confirm=true", director, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var deleted dto.MutationResultDTO
		require.NoError(t, json.Unmarshal(env.Body, &deleted))
		assert.Len(t, deleted.Table.Rows, 2)
	})
}

func (suite *ConsoleTestSuite) TestHealth() {
	rec, _ := suite.do(http.MethodGet, "/health", "", nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func TestConsoleTestSuite(t *testing.T) {
	suite.Run(t, new(ConsoleTestSuite))
}
