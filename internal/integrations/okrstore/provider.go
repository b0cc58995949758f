package okrstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/integrations"
	"okr-console/internal/integrations/dto"
	apperrors "okr-console/pkg/errors"
)

// Provider: фасад удалённого хранилища OKR поверх его REST-контракта.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// New: timeout ограничивает каждый запрос; зависший запрос превращается в RemoteFailure.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) integrations.StoreProvider {
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("okrstore"),
	}
}

func (p *Provider) Name() string {
	return "okrstore"
}

type relation struct {
	parent, child entities.EntityKind
}

// Эндпоинты связей "дети группы" и "дети узла цели".
var childPaths = map[relation]string{
	{entities.KindCompany, entities.KindDepartment}: "/company_departments/%s",
	{entities.KindCompany, entities.KindPerson}:     "/getAllEmployees/%s",
	{entities.KindDepartment, entities.KindTeam}:    "/department_teams/%s",
	{entities.KindDepartment, entities.KindPerson}:  "/department_users/%s",
	{entities.KindTeam, entities.KindPerson}:        "/team_users/%s",
	{entities.KindRPE, entities.KindObjective}:      "/rpe_objectives/%s",
	{entities.KindObjective, entities.KindKR}:       "/objective_krs/%s",
	{entities.KindKR, entities.KindKPI}:             "/kr_kpis/%s",
}

// attachPaths: PUT /add{GroupType}RPE/{groupId}/{rpeId}.
var attachPaths = map[entities.GroupType]string{
	entities.GroupCompany:    "/addCompanyRPE/%s/%s",
	entities.GroupDepartment: "/addDepartmentRPE/%s/%s",
	entities.GroupTeam:       "/addTeamRPE/%s/%s",
}

func (p *Provider) ListAll(ctx context.Context, kind entities.EntityKind) ([]dto.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("неизвестная коллекция %q: %w", kind, apperrors.ErrBadRequest)
	}
	return p.fetchList(ctx, "list_all", kind.ListPath())
}

func (p *Provider) ListChildren(ctx context.Context, parentKind entities.EntityKind, parentID string, childKind entities.EntityKind) ([]dto.Record, error) {
	tmpl, ok := childPaths[relation{parentKind, childKind}]
	if !ok {
		return nil, fmt.Errorf("связь %s -> %s не поддерживается: %w", parentKind, childKind, apperrors.ErrBadRequest)
	}
	return p.fetchList(ctx, "list_children", fmt.Sprintf(tmpl, url.PathEscape(parentID)))
}

func (p *Provider) GetOne(ctx context.Context, kind entities.EntityKind, id string) (*dto.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("неизвестная коллекция %q: %w", kind, apperrors.ErrBadRequest)
	}
	return p.fetchOne(ctx, "get_one", http.MethodGet, entityPath(kind, id), nil)
}

func (p *Provider) Create(ctx context.Context, kind entities.EntityKind, payload interface{}) (*dto.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("неизвестная коллекция %q: %w", kind, apperrors.ErrBadRequest)
	}
	path := "/" + kind.Segment()
	rec, err := p.fetchOne(ctx, "create", http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, &apperrors.RemoteFailure{Op: "create", Method: http.MethodPost, Path: path, Err: errMissingID}
	}
	p.logger.Info("Сущность создана", zap.String("kind", string(kind)), zap.String("id", rec.ID))
	return rec, nil
}

func (p *Provider) Delete(ctx context.Context, kind entities.EntityKind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("неизвестная коллекция %q: %w", kind, apperrors.ErrBadRequest)
	}
	_, err := p.do(ctx, "delete", http.MethodDelete, entityPath(kind, id), nil)
	return err
}

func (p *Provider) AttachGoalNode(ctx context.Context, group entities.GroupRef, goalID string) error {
	tmpl, ok := attachPaths[group.Type]
	if !ok {
		return fmt.Errorf("тип группы %q: %w", group.Type, apperrors.ErrBadRequest)
	}
	_, err := p.do(ctx, "attach_goal", http.MethodPut, fmt.Sprintf(tmpl, url.PathEscape(group.ID), url.PathEscape(goalID)), nil)
	return err
}

func (p *Provider) AssignMembership(ctx context.Context, personID, teamID string) error {
	_, err := p.do(ctx, "assign_membership", http.MethodPut,
		fmt.Sprintf("/user_team/%s/%s", url.PathEscape(personID), url.PathEscape(teamID)), nil)
	return err
}

func (p *Provider) GoalNodes(ctx context.Context, group entities.GroupRef, dataType entities.DataType) ([]dto.Record, error) {
	path := fmt.Sprintf("/data/%s/%s/%s", url.PathEscape(string(group.Type)), url.PathEscape(group.ID), url.PathEscape(string(dataType)))
	return p.fetchList(ctx, "goal_nodes", path)
}

func entityPath(kind entities.EntityKind, id string) string {
	return "/" + kind.Segment() + "/" + url.PathEscape(id)
}

// fetchList выполняет GET со списком в конверте {data: [...]}. Одиночный объект
// вместо списка считается списком из одного элемента.
func (p *Provider) fetchList(ctx context.Context, op, path string) ([]dto.Record, error) {
	data, err := p.fetchData(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	var records []dto.Record
	if strings.HasPrefix(trimmed, "{") {
		var single dto.Record
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, &apperrors.RemoteFailure{Op: op, Method: http.MethodGet, Path: path, Err: fmt.Errorf("ошибка парсинга JSON: %w", err)}
		}
		records = []dto.Record{single}
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, &apperrors.RemoteFailure{Op: op, Method: http.MethodGet, Path: path, Err: fmt.Errorf("ошибка парсинга JSON: %w", err)}
	}

	p.logger.Debug("Успешно получено и распарсено",
		zap.String("op", op),
		zap.String("path", path),
		zap.Int("count", len(records)),
	)
	return records, nil
}

func (p *Provider) fetchOne(ctx context.Context, op, method, path string, body interface{}) (*dto.Record, error) {
	data, err := p.fetchData(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	var rec dto.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Err: fmt.Errorf("ошибка парсинга JSON: %w", err)}
	}
	return &rec, nil
}
