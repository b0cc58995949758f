package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrSessionNotFound    = fmt.Errorf("сессия не найдена или истекла")

	// Каскад и мутации
	ErrStaleResolution      = fmt.Errorf("результат устарел и отброшен")
	ErrConfirmationRequired = fmt.Errorf("удаление требует явного подтверждения")
	ErrUnknownPage          = fmt.Errorf("страница не поддерживает каскад")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// HttpError: ошибка с готовым HTTP-кодом и пользовательским сообщением.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// RemoteFailure: сетевая ошибка или не-2xx ответ удалённого хранилища.
// Никогда не повторяется автоматически.
type RemoteFailure struct {
	Op     string
	Method string
	Path   string
	Status int // 0, ответа не было
	Err    error
}

func (e *RemoteFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("удалённое хранилище: %s %s %s вернул статус %d", e.Op, e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("удалённое хранилище: %s %s %s: %v", e.Op, e.Method, e.Path, e.Err)
}

func (e *RemoteFailure) Unwrap() error { return e.Err }

// NotFound: хранилище ответило 404.
func (e *RemoteFailure) NotFound() bool { return e.Status == http.StatusNotFound }

// PartialCreateFailure: сущность создана, но привязка к группе/команде не удалась.
// CreatedID нужен оператору для ручной сверки.
type PartialCreateFailure struct {
	Kind      string
	CreatedID string
	Target    string
	Err       error
}

func (e *PartialCreateFailure) Error() string {
	return fmt.Sprintf("%s %s создан, но не привязан к %s: %v", e.Kind, e.CreatedID, e.Target, e.Err)
}

func (e *PartialCreateFailure) Unwrap() error { return e.Err }

// ValidationFailure: локальная ошибка формы, до обращения к сети.
type ValidationFailure struct {
	Fields map[string]string
}

func (e *ValidationFailure) Error() string {
	if len(e.Fields) == 0 {
		return "заполните все обязательные поля"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "заполните все обязательные поля: " + strings.Join(names, ", ")
}

func NewValidationFailure(field, reason string) *ValidationFailure {
	return &ValidationFailure{Fields: map[string]string{field: reason}}
}

func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure
	return errors.As(err, &rf)
}

func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var rf *RemoteFailure
	return errors.As(err, &rf) && rf.NotFound()
}

func IsValidation(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}

func IsPartialCreate(err error) bool {
	var pf *PartialCreateFailure
	return errors.As(err, &pf)
}
