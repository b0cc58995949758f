package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/session"
	apperrors "okr-console/pkg/errors"
)

// fakeResolver отвечает заранее заданными данными. Запросы уровня из
// block и типа группы из blockType ждут release.
type fakeResolver struct {
	mu        sync.Mutex
	groups    map[entities.GroupType][]dto.OptionDTO
	nodes     map[entities.DataType][]entities.GoalNode
	groupsErr error
	nodesErr  error
	block     entities.DataType
	blockType entities.GroupType
	started   chan struct{}
	release   chan struct{}
	calls     int
}

func (f *fakeResolver) Groups(ctx context.Context, groupType entities.GroupType) ([]dto.OptionDTO, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if groupType == f.blockType && f.release != nil {
		close(f.started)
		<-f.release
	}
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return f.groups[groupType], nil
}

func (f *fakeResolver) Children(ctx context.Context, groupType entities.GroupType, groupID string) ([]dto.OptionDTO, error) {
	return nil, nil
}

func (f *fakeResolver) Members(ctx context.Context, groupType entities.GroupType, groupID string) ([]entities.Person, error) {
	return nil, nil
}

func (f *fakeResolver) GoalNodes(ctx context.Context, dataType entities.DataType, group entities.GroupRef) ([]entities.GoalNode, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if dataType == f.block && f.release != nil {
		close(f.started)
		<-f.release
	}
	if f.nodesErr != nil {
		return nil, f.nodesErr
	}
	return f.nodes[dataType], nil
}

func (f *fakeResolver) GoalChildren(ctx context.Context, parentType entities.DataType, parentID string) ([]entities.GoalNode, error) {
	return nil, nil
}

func (f *fakeResolver) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		groups: map[entities.GroupType][]dto.OptionDTO{
			entities.GroupTeam:    {{ID: "t1", Label: "Платформа"}, {ID: "t2", Label: "Мобильная"}},
			entities.GroupCompany: {{ID: "c1", Label: "Вектор"}},
		},
		nodes: map[entities.DataType][]entities.GoalNode{
			entities.DataObjective: {{ID: "o1", Type: entities.DataObjective, ParentID: "rpe1"}},
			entities.DataKR:        {{ID: "kr1", Type: entities.DataKR, ParentID: "o1"}},
		},
	}
}

func TestReduce_SelectGroupTypeClearsEverythingBelow(t *testing.T) {
	state := CascadeState{
		GroupType:    entities.GroupTeam,
		GroupID:      "t1",
		DataType:     entities.DataKR,
		GroupOptions: []dto.OptionDTO{{ID: "t1"}},
		GroupsReady:  true,
		Items:        []entities.GoalNode{{ID: "kr1"}},
		ItemsReady:   true,
	}

	next, res, err := Reduce(state, SelectGroupType{GroupType: entities.GroupCompany})

	require.NoError(t, err)
	assert.Equal(t, entities.GroupCompany, next.GroupType)
	assert.Empty(t, next.GroupID)
	assert.Empty(t, next.DataType)
	assert.Empty(t, next.GroupOptions)
	assert.Nil(t, next.Items)
	assert.False(t, next.Complete())
	require.NotNil(t, res)
	assert.Equal(t, LevelGroups, res.Level)
	assert.Equal(t, entities.GroupCompany, res.GroupType)
}

func TestReduce_InvalidEventsLeaveStateUntouched(t *testing.T) {
	empty := CascadeState{}
	withType := CascadeState{GroupType: entities.GroupTeam, GroupOptions: []dto.OptionDTO{{ID: "t1"}}, GroupsReady: true}

	cases := []struct {
		name  string
		state CascadeState
		event CascadeEvent
		field string
	}{
		{"неизвестный тип группы", empty, SelectGroupType{GroupType: "galaxy"}, "group_type"},
		{"группа без типа", empty, SelectGroup{GroupID: "t1"}, "group_type"},
		{"пустая группа", withType, SelectGroup{GroupID: ""}, "group_id"},
		{"группы нет среди вариантов", withType, SelectGroup{GroupID: "t9"}, "group_id"},
		{"тип данных без группы", withType, SelectDataType{DataType: entities.DataKR}, "group_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, res, err := Reduce(tc.state, tc.event)

			var vf *apperrors.ValidationFailure
			require.True(t, errors.As(err, &vf))
			assert.Contains(t, vf.Fields, tc.field)
			assert.Nil(t, res)
			assert.Equal(t, tc.state, next)
		})
	}
}

func TestReduce_SelectGroupClearsDataType(t *testing.T) {
	state := CascadeState{
		GroupType:    entities.GroupTeam,
		GroupID:      "t1",
		DataType:     entities.DataKR,
		GroupOptions: []dto.OptionDTO{{ID: "t1"}, {ID: "t2"}},
		GroupsReady:  true,
		Items:        []entities.GoalNode{{ID: "kr1"}},
		ItemsReady:   true,
	}

	next, res, err := Reduce(state, SelectGroup{GroupID: "t2"})

	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "t2", next.GroupID)
	assert.Empty(t, next.DataType)
	assert.Nil(t, next.Items)
	assert.False(t, next.ItemsReady)
	assert.Len(t, next.GroupOptions, 2)
}

func TestReduce_StaleResultIsRejected(t *testing.T) {
	state := CascadeState{GroupType: entities.GroupTeam, GroupOptions: []dto.OptionDTO{{ID: "t1"}}, GroupsReady: true}
	state, _, err := Reduce(state, SelectGroup{GroupID: "t1"})
	require.NoError(t, err)

	withObjective, first, err := Reduce(state, SelectDataType{DataType: entities.DataObjective})
	require.NoError(t, err)
	withKR, second, err := Reduce(withObjective, SelectDataType{DataType: entities.DataKR})
	require.NoError(t, err)
	require.NotEqual(t, first.Gen, second.Gen)

	next, _, err := Reduce(withKR, ItemsResolved{Gen: first.Gen, Items: []entities.GoalNode{{ID: "o1"}}})

	assert.ErrorIs(t, err, apperrors.ErrStaleResolution)
	assert.Equal(t, withKR, next)
}

func TestReduce_GroupsRefreshDropsVanishedSelection(t *testing.T) {
	state := CascadeState{GroupType: entities.GroupTeam, GroupOptions: []dto.OptionDTO{{ID: "t1"}}, GroupsReady: true}
	state, _, err := Reduce(state, SelectGroup{GroupID: "t1"})
	require.NoError(t, err)

	refreshed, res, err := Reduce(state, RefreshCascade{})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, LevelGroups, res.Level)

	next, _, err := Reduce(refreshed, GroupsResolved{Gen: res.Gen, Options: []dto.OptionDTO{{ID: "t2"}}})

	require.NoError(t, err)
	assert.Empty(t, next.GroupID)
	assert.True(t, next.GroupsReady)
	assert.Equal(t, []dto.OptionDTO{{ID: "t2"}}, next.GroupOptions)
}

func TestReduce_ResolutionErrorIsRemembered(t *testing.T) {
	state, res, err := Reduce(CascadeState{}, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)

	next, _, err := Reduce(state, GroupsResolved{Gen: res.Gen, Err: errors.New("хранилище недоступно")})

	require.NoError(t, err)
	assert.Equal(t, "хранилище недоступно", next.Failure)
	assert.False(t, next.GroupsReady)
}

func TestCascade_FullChain(t *testing.T) {
	resolver := newFakeResolver()
	c := NewCascade(resolver, zap.NewNop())
	ctx := context.Background()

	state, err := c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)
	assert.True(t, state.GroupsReady)
	assert.Len(t, state.GroupOptions, 2)

	state, err = c.Dispatch(ctx, SelectGroup{GroupID: "t1"})
	require.NoError(t, err)
	assert.False(t, state.Complete())

	state, err = c.Dispatch(ctx, SelectDataType{DataType: entities.DataKR})
	require.NoError(t, err)
	assert.True(t, state.Complete())
	require.Len(t, state.Items, 1)
	assert.Equal(t, "kr1", state.Items[0].ID)

	state, err = c.Dispatch(ctx, ResetCascade{})
	require.NoError(t, err)
	assert.Empty(t, state.GroupType)
	assert.False(t, state.Complete())
}

func TestCascade_RemoteFailureIsReturnedAndRemembered(t *testing.T) {
	resolver := newFakeResolver()
	resolver.groupsErr = &apperrors.RemoteFailure{Op: "list_all", Method: "GET", Path: "/getAllTeams", Status: 500, Err: errors.New("статус 500")}
	c := NewCascade(resolver, zap.NewNop())

	state, err := c.Dispatch(context.Background(), SelectGroupType{GroupType: entities.GroupTeam})

	assert.True(t, apperrors.IsRemoteFailure(err))
	assert.NotEmpty(t, state.Failure)
	assert.Equal(t, entities.GroupTeam, state.GroupType)
}

func TestCascade_LaterSelectionWins(t *testing.T) {
	resolver := newFakeResolver()
	resolver.block = entities.DataObjective
	resolver.started = make(chan struct{})
	resolver.release = make(chan struct{})
	c := NewCascade(resolver, zap.NewNop())
	ctx := context.Background()

	_, err := c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, SelectGroup{GroupID: "t1"})
	require.NoError(t, err)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Dispatch(ctx, SelectDataType{DataType: entities.DataObjective})
		firstDone <- err
	}()
	<-resolver.started

	state, err := c.Dispatch(ctx, SelectDataType{DataType: entities.DataKR})
	require.NoError(t, err)
	assert.Equal(t, entities.DataKR, state.DataType)

	close(resolver.release)
	require.NoError(t, <-firstDone)

	final := c.Snapshot()
	assert.Equal(t, entities.DataKR, final.DataType)
	require.Len(t, final.Items, 1)
	assert.Equal(t, "kr1", final.Items[0].ID)
	assert.True(t, final.Complete())
}

func TestCascade_LaterGroupTypeWins(t *testing.T) {
	resolver := newFakeResolver()
	resolver.blockType = entities.GroupTeam
	resolver.started = make(chan struct{})
	resolver.release = make(chan struct{})
	c := NewCascade(resolver, zap.NewNop())
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
		firstDone <- err
	}()
	<-resolver.started

	state, err := c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupCompany})
	require.NoError(t, err)
	assert.Equal(t, entities.GroupCompany, state.GroupType)
	assert.True(t, state.GroupsReady)

	close(resolver.release)
	require.NoError(t, <-firstDone)

	final := c.Snapshot()
	assert.Equal(t, entities.GroupCompany, final.GroupType)
	assert.True(t, final.GroupsReady)
	assert.Equal(t, []dto.OptionDTO{{ID: "c1", Label: "Вектор"}}, final.GroupOptions)
	assert.Empty(t, final.Failure)
}

func TestScopeOf(t *testing.T) {
	user := session.User{ID: "p1", Role: entities.RoleEmployee, CompanyID: "c1", DepartmentID: "d1", TeamID: "t2"}

	assert.Equal(t, GroupScope{
		entities.GroupCompany:    "c1",
		entities.GroupDepartment: "d1",
		entities.GroupTeam:       "t2",
	}, ScopeOf(user))

	user.Role = entities.RoleManager
	assert.Nil(t, ScopeOf(user))
}

func TestCascade_ScopedGroups(t *testing.T) {
	resolver := newFakeResolver()
	c := NewCascade(resolver, zap.NewNop())
	c.Restrict(GroupScope{entities.GroupTeam: "t2", entities.GroupCompany: ""})
	ctx := context.Background()

	state, err := c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)
	assert.Equal(t, []dto.OptionDTO{{ID: "t2", Label: "Мобильная"}}, state.GroupOptions)

	_, err = c.Dispatch(ctx, SelectGroup{GroupID: "t1"})
	var vf *apperrors.ValidationFailure
	require.True(t, errors.As(err, &vf))
	assert.Contains(t, vf.Fields, "group_id")

	state, err = c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupCompany})
	require.NoError(t, err)
	assert.True(t, state.GroupsReady)
	assert.Empty(t, state.GroupOptions)
}

func TestCascade_VisibleFollowsTableWhenScoped(t *testing.T) {
	resolver := newFakeResolver()
	c := NewCascade(resolver, zap.NewNop())
	ctx := context.Background()

	assert.True(t, c.Visible("kr9"))

	c.Restrict(GroupScope{entities.GroupTeam: "t1"})
	_, err := c.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, SelectGroup{GroupID: "t1"})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, SelectDataType{DataType: entities.DataKR})
	require.NoError(t, err)

	assert.True(t, c.Visible("kr1"))
	assert.False(t, c.Visible("kr9"))
}

func TestCascade_RefreshWithoutSelectionIsNoop(t *testing.T) {
	resolver := newFakeResolver()
	c := NewCascade(resolver, zap.NewNop())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Zero(t, resolver.Calls())
}

func TestCascadeRegistry(t *testing.T) {
	registry := NewCascadeRegistry(newFakeResolver(), zap.NewNop())
	ctx := context.Background()

	_, err := registry.Get("s1", "reports", nil)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPage)

	home, err := registry.Get("s1", "home", nil)
	require.NoError(t, err)
	_, err = home.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)

	rpe, err := registry.Get("s1", "rpe", nil)
	require.NoError(t, err)
	assert.Empty(t, rpe.Snapshot().GroupType)

	state, err := registry.Visit(ctx, "s1", "home", nil)
	require.NoError(t, err)
	assert.Empty(t, state.GroupType)

	scoped, err := registry.Get("s1", "home", GroupScope{entities.GroupTeam: "t2"})
	require.NoError(t, err)
	assert.Same(t, home, scoped)
	_, err = registry.Visit(ctx, "s1", "home", GroupScope{entities.GroupTeam: "t2"})
	require.NoError(t, err)
	state, err = scoped.Dispatch(ctx, SelectGroupType{GroupType: entities.GroupTeam})
	require.NoError(t, err)
	assert.Len(t, state.GroupOptions, 1)

	registry.Drop("s1")
	fresh, err := registry.Get("s1", "home", nil)
	require.NoError(t, err)
	assert.NotSame(t, home, fresh)
}
