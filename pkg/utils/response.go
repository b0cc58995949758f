package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "okr-console/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// ErrorResponse переводит ошибку в код и тело ответа. Технические детали
// RemoteFailure в ответ не попадают, только в лог.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code, message, body := classify(err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("method", ctx.Request().Method),
			zap.String("uri", ctx.Request().RequestURI),
			zap.Int("code", code),
			zap.Error(err),
		}
		if code >= http.StatusInternalServerError {
			logger.Error("Ошибка обработки запроса", fields...)
		} else {
			logger.Debug("Запрос отклонён", fields...)
		}
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    body,
		Message: message,
	})
}

func classify(err error) (int, string, interface{}) {
	var (
		httpErr    *apperrors.HttpError
		echoErr    *echo.HTTPError
		validation *apperrors.ValidationFailure
		partial    *apperrors.PartialCreateFailure
		remote     *apperrors.RemoteFailure
		fieldErrs  validator.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, httpErr.Message, httpErr.Details
	case errors.As(err, &echoErr):
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, msg, nil
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error(), validation.Fields
	case errors.As(err, &fieldErrs):
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, "заполните все обязательные поля", fields
	case errors.As(err, &partial):
		return http.StatusBadGateway, partial.Error(), map[string]string{
			"created_id": partial.CreatedID,
			"kind":       partial.Kind,
		}
	case errors.As(err, &remote):
		if remote.NotFound() {
			return http.StatusNotFound, apperrors.ErrNotFound.Error(), nil
		}
		return http.StatusBadGateway, "не удалось загрузить или сохранить данные", nil
	case errors.Is(err, apperrors.ErrConfirmationRequired):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrUnknownPage):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error(), nil
	}
	return http.StatusInternalServerError, "Внутренняя ошибка сервера", nil
}
