package mock

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"okr-console/internal/entities"
	apperrors "okr-console/pkg/errors"
)

// Handler отдаёт REST-контракт хранилища поверх тех же данных. Используется
// в тестах клиента через httptest и для локального запуска без хранилища.
func (m *MockProvider) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	for _, kind := range entities.Kinds {
		kind := kind
		e.GET(kind.ListPath(), func(c echo.Context) error {
			rows, err := m.listAll(kind)
			return respond(c, rows, err)
		})
	}
	for _, rel := range relations {
		rel := rel
		e.GET(rel.route, func(c echo.Context) error {
			rows, err := m.listChildren(rel, c.Param("id"))
			return respond(c, rows, err)
		})
	}

	e.GET("/data/:groupType/:groupId/:dataType", func(c echo.Context) error {
		group := entities.GroupRef{Type: entities.GroupType(c.Param("groupType")), ID: c.Param("groupId")}
		rows, err := m.goalNodes(group, entities.DataType(c.Param("dataType")))
		return respond(c, rows, err)
	})

	for gt, name := range attachNames {
		gt := gt
		e.PUT("/add"+name+"RPE/:groupId/:rpeId", func(c echo.Context) error {
			err := m.attach(entities.GroupRef{Type: gt, ID: c.Param("groupId")}, c.Param("rpeId"))
			return ack(c, err)
		})
	}
	e.PUT("/user_team/:userId/:teamId", func(c echo.Context) error {
		return ack(c, m.assign(c.Param("userId"), c.Param("teamId")))
	})

	e.POST("/login", func(c echo.Context) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		user, err := m.login(req.Email, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "success", "message": user})
	})

	e.POST("/:segment", func(c echo.Context) error {
		kind, ok := entities.KindBySegment(c.Param("segment"))
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		fields := row{}
		if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		created, err := m.create(kind, fields)
		return respond(c, created, err)
	})
	e.GET("/:segment/:id", func(c echo.Context) error {
		kind, ok := entities.KindBySegment(c.Param("segment"))
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		r, err := m.getOne(kind, c.Param("id"))
		return respond(c, r, err)
	})
	e.DELETE("/:segment/:id", func(c echo.Context) error {
		kind, ok := entities.KindBySegment(c.Param("segment"))
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		return ack(c, m.delete(kind, c.Param("id")))
	})

	return e
}

func respond(c echo.Context, data interface{}, err error) error {
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func ack(c echo.Context, err error) error {
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var rf *apperrors.RemoteFailure
	if errors.As(err, &rf) && rf.Status != 0 {
		status = rf.Status
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
