package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/integrations/mock"
)

func TestCascadeTable(t *testing.T) {
	full := CascadeState{GroupType: entities.GroupTeam, GroupID: "t1", DataType: entities.DataKR}

	prompt := CascadeTable(CascadeState{GroupType: entities.GroupTeam, GroupID: "t1"})
	assert.Equal(t, PromptFillAll, prompt.Prompt)
	assert.NotNil(t, prompt.Rows)

	loading := CascadeTable(full)
	assert.True(t, loading.Loading)
	assert.Empty(t, loading.Prompt)

	failed := full
	failed.Failure = "хранилище недоступно"
	assert.Equal(t, "хранилище недоступно", CascadeTable(failed).Error)

	ready := full
	ready.ItemsReady = true
	ready.Items = []entities.GoalNode{
		{ID: "kr1", Type: entities.DataKR, Goal: null.Float64From(12), Value: null.Float64From(14)},
		{ID: "kr2", Type: entities.DataKR, Goal: null.Float64From(99.9), Value: null.Float64From(98.5), PrevValue: null.Float64From(97)},
		{ID: "kr3", Type: entities.DataKR},
	}
	view := CascadeTable(ready)
	require.Len(t, view.Rows, 3)
	assert.Len(t, view.Columns, 7)

	require.NotNil(t, view.Rows[0].OnTarget)
	assert.True(t, *view.Rows[0].OnTarget)
	require.NotNil(t, view.Rows[1].OnTarget)
	assert.False(t, *view.Rows[1].OnTarget)
	assert.Equal(t, "99.9", view.Rows[1].Cells["goal"])
	assert.Equal(t, "97", view.Rows[1].Cells["prev_value"])
	assert.Nil(t, view.Rows[2].OnTarget)
	assert.Empty(t, view.Rows[2].Cells["value"])
}

func TestOrgService_ListSearch(t *testing.T) {
	store := orgFixture()
	org := NewOrgService(store, zap.NewNop())

	all, err := org.List(context.Background(), entities.KindTeam, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := org.List(context.Background(), entities.KindTeam, "  ПЛАТ ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "t1", found[0].ID)

	table := RecordTable(entities.KindTeam, found)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "d1", table.Rows[0].Cells["department"])
}

func TestOrgService_ChildrenOwnedByParent(t *testing.T) {
	store := mock.NewMockProvider()
	store.Put(entities.KindTeam, map[string]interface{}{"id": "t1", "name": "Платформа", "departmentID": "d1"})
	store.Put(entities.KindTeam, map[string]interface{}{"id": "t2", "name": "Продажи", "departmentID": "d2"})
	org := NewOrgService(store, zap.NewNop())

	teams, err := org.Children(context.Background(), entities.KindDepartment, "d1", entities.KindTeam)

	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "t1", teams[0].ID)
}
