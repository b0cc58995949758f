package controllers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "okr-console/pkg/errors"
)

// formValues: значения формы создания. Принимается и обычная форма,
// и плоский JSON-объект; числа и булевы приводятся к строкам.
func formValues(c echo.Context) (url.Values, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		values, err := c.FormParams()
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат формы", err, nil)
		}
		return values, nil
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат JSON", err, nil)
	}
	values := make(url.Values, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			values.Set(key, val)
		case float64:
			values.Set(key, strconv.FormatFloat(val, 'f', -1, 64))
		case bool:
			values.Set(key, strconv.FormatBool(val))
		default:
			return nil, apperrors.NewValidationFailure(key, "неверный формат")
		}
	}
	return values, nil
}

func confirmed(c echo.Context) bool {
	ok, _ := strconv.ParseBool(c.QueryParam("confirm"))
	return ok
}
