package okrstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/metrics"
)

var (
	errMissingData = errors.New("в ответе нет поля data")
	errMissingID   = errors.New("хранилище не вернуло id созданной записи")
)

// envelope: общий конверт ответов хранилища.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Status  json.RawMessage `json:"status,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// do выполняет запрос и возвращает сырое тело. Не-2xx и сетевые ошибки
// превращаются в *apperrors.RemoteFailure.
func (p *Provider) do(ctx context.Context, op, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания %s-запроса: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemote(op, 0, started)
		p.logger.Warn("Хранилище недоступно",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveRemote(op, resp.StatusCode, started)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("Хранилище вернуло ошибку",
			zap.String("op", op),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return nil, &apperrors.RemoteFailure{
			Op: op, Method: method, Path: path, Status: resp.StatusCode,
			Err: fmt.Errorf("статус %s", resp.Status),
		}
	}
	return raw, nil
}

// fetchData: do плюс обязательный конверт {data}. Отсутствие data, RemoteFailure.
func (p *Provider) fetchData(ctx context.Context, op, method, path string, body interface{}) (json.RawMessage, error) {
	raw, err := p.do(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Err: fmt.Errorf("ошибка парсинга конверта: %w", err)}
	}
	if len(bytes.TrimSpace(env.Data)) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Err: errMissingData}
	}
	return env.Data, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
