package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/integrations"
	"okr-console/internal/integrations/dto"
	"okr-console/internal/integrations/mock"
	apperrors "okr-console/pkg/errors"
)

// countingStore считает обращения к хранилищу.
type countingStore struct {
	integrations.StoreProvider
	calls int32
}

func (s *countingStore) ListAll(ctx context.Context, kind entities.EntityKind) ([]dto.Record, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.StoreProvider.ListAll(ctx, kind)
}

func (s *countingStore) ListChildren(ctx context.Context, parent entities.EntityKind, id string, child entities.EntityKind) ([]dto.Record, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.StoreProvider.ListChildren(ctx, parent, id, child)
}

func (s *countingStore) GoalNodes(ctx context.Context, group entities.GroupRef, dataType entities.DataType) ([]dto.Record, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.StoreProvider.GoalNodes(ctx, group, dataType)
}

func (s *countingStore) Calls() int { return int(atomic.LoadInt32(&s.calls)) }

// orgFixture: компания c1, департаменты d1/d2, команды t1 (d1) и t2 (d2).
func orgFixture() *mock.MockProvider {
	store := mock.NewMockProvider()
	store.Put(entities.KindCompany, map[string]interface{}{"id": "c1", "name": "Вектор"})
	store.Put(entities.KindDepartment, map[string]interface{}{"id": "d1", "name": "Разработка", "companyID": "c1"})
	store.Put(entities.KindDepartment, map[string]interface{}{"id": "d2", "name": "Продажи", "companyID": "c1"})
	store.Put(entities.KindTeam, map[string]interface{}{"id": "t1", "name": "Платформа", "departmentID": "d1"})
	store.Put(entities.KindTeam, map[string]interface{}{"id": "t2", "name": "Корпоративные продажи", "departmentID": "d2"})
	store.Put(entities.KindPerson, map[string]interface{}{"id": "p1", "name": "Олег", "teamID": "t1", "departmentID": "d1", "companyID": "c1"})
	store.Put(entities.KindPerson, map[string]interface{}{"id": "p2", "name": "Мария", "teamID": "t2", "departmentID": "d2", "companyID": "c1"})
	return store
}

func TestResolver_Groups(t *testing.T) {
	r := NewResolver(orgFixture(), zap.NewNop())

	options, err := r.Groups(context.Background(), entities.GroupDepartment)

	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "d1", options[0].ID)
	assert.Equal(t, "Разработка", options[0].Label)
}

func TestResolver_EmptyInputsDoNotHitStore(t *testing.T) {
	store := &countingStore{StoreProvider: orgFixture()}
	r := NewResolver(store, zap.NewNop())
	ctx := context.Background()

	groups, err := r.Groups(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, groups)

	children, err := r.Children(ctx, entities.GroupCompany, "")
	require.NoError(t, err)
	assert.Empty(t, children)

	members, err := r.Members(ctx, "", "t1")
	require.NoError(t, err)
	assert.Empty(t, members)

	nodes, err := r.GoalNodes(ctx, "", entities.GroupRef{Type: entities.GroupTeam, ID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, nodes)

	assert.Zero(t, store.Calls())
}

func TestResolver_ChildrenOfCompany(t *testing.T) {
	r := NewResolver(orgFixture(), zap.NewNop())

	options, err := r.Children(context.Background(), entities.GroupCompany, "c1")

	require.NoError(t, err)
	ids := []string{}
	for _, o := range options {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"d1", "d2"}, ids)
}

func TestResolver_MembersOfTeam(t *testing.T) {
	r := NewResolver(orgFixture(), zap.NewNop())

	people, err := r.Members(context.Background(), entities.GroupTeam, "t1")

	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "p1", people[0].ID)
}

func TestResolver_GoalNodesFollowTree(t *testing.T) {
	store := orgFixture()
	store.Put(entities.KindRPE, map[string]interface{}{"id": "rpe1", "description": "Скорость", "groupType": "team", "groupID": "t1"})
	store.Put(entities.KindRPE, map[string]interface{}{"id": "rpe2", "description": "Продажи", "groupType": "team", "groupID": "t2"})
	store.Put(entities.KindObjective, map[string]interface{}{"id": "o1", "description": "Релизы", "rpeID": "rpe1"})
	store.Put(entities.KindObjective, map[string]interface{}{"id": "o2", "description": "Клиенты", "rpeID": "rpe2"})
	store.Put(entities.KindKR, map[string]interface{}{"id": "kr1", "description": "Релизов за квартал", "objectiveID": "o1", "goal": 12, "value": 14})
	r := NewResolver(store, zap.NewNop())
	group := entities.GroupRef{Type: entities.GroupTeam, ID: "t1"}

	rpes, err := r.GoalNodes(context.Background(), entities.DataRPE, group)
	require.NoError(t, err)
	require.Len(t, rpes, 1)
	assert.Equal(t, "rpe1", rpes[0].ID)
	assert.Equal(t, &group, rpes[0].Group)

	krs, err := r.GoalNodes(context.Background(), entities.DataKR, group)
	require.NoError(t, err)
	require.Len(t, krs, 1)
	assert.Equal(t, "o1", krs[0].ParentID)
	assert.True(t, krs[0].OnTarget())
}

func TestResolver_GoalChildren(t *testing.T) {
	store := orgFixture()
	store.Put(entities.KindObjective, map[string]interface{}{"id": "o1", "description": "Релизы", "rpeID": "rpe1"})
	store.Put(entities.KindObjective, map[string]interface{}{"id": "o2", "description": "Чужая", "rpeID": "rpe9"})
	r := NewResolver(store, zap.NewNop())

	nodes, err := r.GoalChildren(context.Background(), entities.DataRPE, "rpe1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "o1", nodes[0].ID)
	assert.Equal(t, entities.DataObjective, nodes[0].Type)

	_, err = r.GoalChildren(context.Background(), entities.DataKPI, "kpi1")
	assert.True(t, apperrors.IsValidation(err))
}

func TestResolver_RemoteFailurePropagates(t *testing.T) {
	store := orgFixture()
	store.FailOn("list_all")
	r := NewResolver(store, zap.NewNop())

	_, err := r.Groups(context.Background(), entities.GroupCompany)

	assert.True(t, apperrors.IsRemoteFailure(err))
}
