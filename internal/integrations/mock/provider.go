package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"okr-console/internal/entities"
	"okr-console/internal/integrations/dto"
	apperrors "okr-console/pkg/errors"
)

type row map[string]interface{}

type collection struct {
	order []string
	rows  map[string]row
}

// relation: дочерняя коллекция и поле, которым ребёнок ссылается на родителя.
type relation struct {
	parent    entities.EntityKind
	child     entities.EntityKind
	route     string
	parentKey string
}

var relations = []relation{
	{entities.KindCompany, entities.KindDepartment, "/company_departments/:id", "companyID"},
	{entities.KindCompany, entities.KindPerson, "/getAllEmployees/:id", "companyID"},
	{entities.KindDepartment, entities.KindTeam, "/department_teams/:id", "departmentID"},
	{entities.KindDepartment, entities.KindPerson, "/department_users/:id", "departmentID"},
	{entities.KindTeam, entities.KindPerson, "/team_users/:id", "teamID"},
	{entities.KindRPE, entities.KindObjective, "/rpe_objectives/:id", "rpeID"},
	{entities.KindObjective, entities.KindKR, "/objective_krs/:id", "objectiveID"},
	{entities.KindKR, entities.KindKPI, "/kr_kpis/:id", "krID"},
}

// MockProvider: хранилище OKR в памяти процесса. Реализует StoreProvider
// напрямую и тот же REST-контракт через Handler().
type MockProvider struct {
	mu          sync.RWMutex
	collections map[entities.EntityKind]*collection
	passwords   map[string]string
	seq         int
	failing     map[string]int
}

func NewMockProvider() *MockProvider {
	m := &MockProvider{
		collections: make(map[entities.EntityKind]*collection, len(entities.Kinds)),
		passwords:   make(map[string]string),
		failing:     make(map[string]int),
	}
	for _, k := range entities.Kinds {
		m.collections[k] = &collection{rows: make(map[string]row)}
	}
	return m
}

func (m *MockProvider) Name() string {
	return "memory"
}

// FailOn заставляет операцию op (list_all, create, attach_goal, ...) отвечать 500.
func (m *MockProvider) FailOn(op string) {
	m.FailWith(op, http.StatusInternalServerError)
}

func (m *MockProvider) FailWith(op string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[op] = status
}

func (m *MockProvider) Recover(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failing, op)
}

// Put кладёт запись как есть; id обязателен.
func (m *MockProvider) Put(kind entities.EntityKind, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(kind, row(fields).clone())
}

func (m *MockProvider) SetPassword(email, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords[strings.ToLower(email)] = password
}

func (m *MockProvider) put(kind entities.EntityKind, r row) {
	col := m.collections[kind]
	id := str(r["id"])
	if _, exists := col.rows[id]; !exists {
		col.order = append(col.order, id)
	}
	col.rows[id] = r
}

func (m *MockProvider) failure(op, method, path string) error {
	if status, ok := m.failing[op]; ok {
		return &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Status: status, Err: fmt.Errorf("статус %d", status)}
	}
	return nil
}

func notFound(op, method, path string) error {
	return &apperrors.RemoteFailure{Op: op, Method: method, Path: path, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
}

func (m *MockProvider) all(kind entities.EntityKind) []row {
	col := m.collections[kind]
	out := make([]row, 0, len(col.order))
	for _, id := range col.order {
		out = append(out, col.rows[id].clone())
	}
	return out
}

// clone: наружу уходят копии, хранимые строки меняются только под m.mu.
func (r row) clone() row {
	c := make(row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func (m *MockProvider) where(kind entities.EntityKind, key string, ids map[string]bool) []row {
	out := []row{}
	for _, r := range m.all(kind) {
		if ids[str(r[key])] {
			out = append(out, r)
		}
	}
	return out
}

func findRelation(parent, child entities.EntityKind) (relation, bool) {
	for _, rel := range relations {
		if rel.parent == parent && rel.child == child {
			return rel, true
		}
	}
	return relation{}, false
}

func (m *MockProvider) listAll(kind entities.EntityKind) ([]row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure("list_all", http.MethodGet, kind.ListPath()); err != nil {
		return nil, err
	}
	return m.all(kind), nil
}

func (m *MockProvider) listChildren(rel relation, parentID string) ([]row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure("list_children", http.MethodGet, rel.route); err != nil {
		return nil, err
	}
	return m.where(rel.child, rel.parentKey, map[string]bool{parentID: true}), nil
}

func (m *MockProvider) getOne(kind entities.EntityKind, id string) (row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path := "/" + kind.Segment() + "/" + id
	if err := m.failure("get_one", http.MethodGet, path); err != nil {
		return nil, err
	}
	r, ok := m.collections[kind].rows[id]
	if !ok {
		return nil, notFound("get_one", http.MethodGet, path)
	}
	return r.clone(), nil
}

func (m *MockProvider) create(kind entities.EntityKind, fields row) (row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("create", http.MethodPost, "/"+kind.Segment()); err != nil {
		return nil, err
	}
	m.seq++
	created := make(row, len(fields)+1)
	for k, v := range fields {
		if k == "password" {
			continue
		}
		created[k] = v
	}
	created["id"] = fmt.Sprintf("%s-%d", strings.ToLower(kind.Segment()), m.seq)
	if kind == entities.KindPerson {
		if pw, ok := fields["password"]; ok {
			m.passwords[strings.ToLower(str(created["email"]))] = str(pw)
		}
	}
	m.put(kind, created)
	return created.clone(), nil
}

// remove удаляет запись вместе с поддеревом: департамент уносит команды,
// RPE уносит цели и так далее. Сотрудники остаются без привязки.
func (m *MockProvider) remove(kind entities.EntityKind, id string) {
	col := m.collections[kind]
	if _, ok := col.rows[id]; !ok {
		return
	}
	delete(col.rows, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	for _, rel := range relations {
		if rel.parent != kind {
			continue
		}
		for _, child := range m.where(rel.child, rel.parentKey, map[string]bool{id: true}) {
			if rel.child == entities.KindPerson {
				delete(m.collections[entities.KindPerson].rows[str(child["id"])], rel.parentKey)
				continue
			}
			m.remove(rel.child, str(child["id"]))
		}
	}
	if gt := groupTypeOf(kind); gt != "" {
		for _, rpe := range m.all(entities.KindRPE) {
			if str(rpe["groupType"]) == string(gt) && str(rpe["groupID"]) == id {
				m.remove(entities.KindRPE, str(rpe["id"]))
			}
		}
	}
}

var attachNames = map[entities.GroupType]string{
	entities.GroupCompany:    "Company",
	entities.GroupDepartment: "Department",
	entities.GroupTeam:       "Team",
}

func groupTypeOf(kind entities.EntityKind) entities.GroupType {
	for _, gt := range entities.GroupTypes {
		if gt.Kind() == kind {
			return gt
		}
	}
	return ""
}

func (m *MockProvider) delete(kind entities.EntityKind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "/" + kind.Segment() + "/" + id
	if err := m.failure("delete", http.MethodDelete, path); err != nil {
		return err
	}
	if _, ok := m.collections[kind].rows[id]; !ok {
		return notFound("delete", http.MethodDelete, path)
	}
	m.remove(kind, id)
	return nil
}

func (m *MockProvider) attach(group entities.GroupRef, rpeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/add%sRPE/%s/%s", attachNames[group.Type], group.ID, rpeID)
	if err := m.failure("attach_goal", http.MethodPut, path); err != nil {
		return err
	}
	rpe, ok := m.collections[entities.KindRPE].rows[rpeID]
	if !ok {
		return notFound("attach_goal", http.MethodPut, path)
	}
	if _, ok := m.collections[group.Type.Kind()].rows[group.ID]; !ok {
		return notFound("attach_goal", http.MethodPut, path)
	}
	rpe["groupType"] = string(group.Type)
	rpe["groupID"] = group.ID
	return nil
}

func (m *MockProvider) assign(personID, teamID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "/user_team/" + personID + "/" + teamID
	if err := m.failure("assign_membership", http.MethodPut, path); err != nil {
		return err
	}
	person, ok := m.collections[entities.KindPerson].rows[personID]
	if !ok {
		return notFound("assign_membership", http.MethodPut, path)
	}
	team, ok := m.collections[entities.KindTeam].rows[teamID]
	if !ok {
		return notFound("assign_membership", http.MethodPut, path)
	}
	person["teamID"] = teamID
	if dep := str(team["departmentID"]); dep != "" {
		person["departmentID"] = dep
		if d, ok := m.collections[entities.KindDepartment].rows[dep]; ok && str(d["companyID"]) != "" {
			person["companyID"] = str(d["companyID"])
		}
	}
	return nil
}

// goalNodes: RPE, привязанные к группе, и их потомки нужного уровня.
func (m *MockProvider) goalNodes(group entities.GroupRef, dataType entities.DataType) ([]row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path := fmt.Sprintf("/data/%s/%s/%s", group.Type, group.ID, dataType)
	if err := m.failure("goal_nodes", http.MethodGet, path); err != nil {
		return nil, err
	}
	if !dataType.Valid() {
		return nil, &apperrors.RemoteFailure{Op: "goal_nodes", Method: http.MethodGet, Path: path, Status: http.StatusBadRequest, Err: apperrors.ErrBadRequest}
	}

	level := entities.DataRPE
	nodes := []row{}
	for _, rpe := range m.all(entities.KindRPE) {
		if str(rpe["groupType"]) == string(group.Type) && str(rpe["groupID"]) == group.ID {
			nodes = append(nodes, rpe)
		}
	}
	for level != dataType {
		parent := level.Kind()
		level = level.Child()
		rel, _ := findRelation(parent, level.Kind())
		ids := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			ids[str(n["id"])] = true
		}
		nodes = m.where(level.Kind(), rel.parentKey, ids)
	}
	return nodes, nil
}

func (m *MockProvider) login(email, password string) (row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure("login", http.MethodPost, "/login"); err != nil {
		return nil, err
	}
	stored, ok := m.passwords[strings.ToLower(email)]
	if !ok || stored != password {
		return nil, &apperrors.RemoteFailure{Op: "login", Method: http.MethodPost, Path: "/login", Status: http.StatusUnauthorized, Err: apperrors.ErrInvalidCredentials}
	}
	for _, p := range m.all(entities.KindPerson) {
		if strings.EqualFold(str(p["email"]), email) {
			return p, nil
		}
	}
	return nil, &apperrors.RemoteFailure{Op: "login", Method: http.MethodPost, Path: "/login", Status: http.StatusUnauthorized, Err: apperrors.ErrInvalidCredentials}
}

// StoreProvider

func (m *MockProvider) ListAll(ctx context.Context, kind entities.EntityKind) ([]dto.Record, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrBadRequest
	}
	rows, err := m.listAll(kind)
	if err != nil {
		return nil, err
	}
	return toRecords(rows)
}

func (m *MockProvider) ListChildren(ctx context.Context, parentKind entities.EntityKind, parentID string, childKind entities.EntityKind) ([]dto.Record, error) {
	rel, ok := findRelation(parentKind, childKind)
	if !ok {
		return nil, fmt.Errorf("связь %s -> %s не поддерживается: %w", parentKind, childKind, apperrors.ErrBadRequest)
	}
	rows, err := m.listChildren(rel, parentID)
	if err != nil {
		return nil, err
	}
	return toRecords(rows)
}

func (m *MockProvider) GetOne(ctx context.Context, kind entities.EntityKind, id string) (*dto.Record, error) {
	r, err := m.getOne(kind, id)
	if err != nil {
		return nil, err
	}
	return toRecord(r)
}

func (m *MockProvider) Create(ctx context.Context, kind entities.EntityKind, payload interface{}) (*dto.Record, error) {
	fields, err := toRow(payload)
	if err != nil {
		return nil, err
	}
	created, err := m.create(kind, fields)
	if err != nil {
		return nil, err
	}
	return toRecord(created)
}

func (m *MockProvider) Delete(ctx context.Context, kind entities.EntityKind, id string) error {
	return m.delete(kind, id)
}

func (m *MockProvider) AttachGoalNode(ctx context.Context, group entities.GroupRef, goalID string) error {
	return m.attach(group, goalID)
}

func (m *MockProvider) AssignMembership(ctx context.Context, personID, teamID string) error {
	return m.assign(personID, teamID)
}

func (m *MockProvider) GoalNodes(ctx context.Context, group entities.GroupRef, dataType entities.DataType) ([]dto.Record, error) {
	rows, err := m.goalNodes(group, dataType)
	if err != nil {
		return nil, err
	}
	return toRecords(rows)
}

func (m *MockProvider) Login(ctx context.Context, email, password string) (*dto.Record, error) {
	user, err := m.login(email, password)
	if err != nil {
		var rf *apperrors.RemoteFailure
		if errors.As(err, &rf) && rf.Status == http.StatusUnauthorized {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	return toRecord(user)
}

// Записи проходят через JSON, чтобы ключи разбирались тем же кодом, что и ответы по сети.
func toRecords(rows []row) ([]dto.Record, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	records := make([]dto.Record, 0, len(rows))
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func toRecord(r row) (*dto.Record, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var rec dto.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func toRow(payload interface{}) (row, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
	}
	fields := row{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("тело запроса должно быть объектом: %w", err)
	}
	return fields, nil
}

func str(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
