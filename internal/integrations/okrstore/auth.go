package okrstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"okr-console/internal/integrations/dto"
	apperrors "okr-console/pkg/errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse разбирает ответ /login, хранилище отвечает либо {status, message: <user>}, либо {data: <user>}.
type loginResponse struct {
	Status  json.RawMessage `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Login проверяет учётные данные на стороне хранилища. Пароль дальше не хранится.
func (p *Provider) Login(ctx context.Context, email, password string) (*dto.Record, error) {
	const op, path = "login", "/login"

	raw, err := p.do(ctx, op, http.MethodPost, path, loginRequest{Email: email, Password: password})
	if err != nil {
		var rf *apperrors.RemoteFailure
		if errors.As(err, &rf) && (rf.Status == http.StatusUnauthorized || rf.Status == http.StatusForbidden || rf.Status == http.StatusNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &apperrors.RemoteFailure{Op: op, Method: http.MethodPost, Path: path, Err: fmt.Errorf("ошибка парсинга ответа: %w", err)}
	}

	userJSON := resp.Data
	if isNullJSON(userJSON) && bytes.HasPrefix(bytes.TrimSpace(resp.Message), []byte("{")) {
		userJSON = resp.Message
	}
	if isNullJSON(userJSON) {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user dto.Record
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, &apperrors.RemoteFailure{Op: op, Method: http.MethodPost, Path: path, Err: fmt.Errorf("ошибка парсинга пользователя: %w", err)}
	}
	if user.ID == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

func isNullJSON(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
