package entities

import (
	"github.com/aarondl/null/v8"
)

// GroupType: уровень оргструктуры, к которому можно привязать цели.
type GroupType string

const (
	GroupCompany    GroupType = "company"
	GroupDepartment GroupType = "department"
	GroupTeam       GroupType = "team"
)

var GroupTypes = []GroupType{GroupCompany, GroupDepartment, GroupTeam}

func (g GroupType) Valid() bool {
	switch g {
	case GroupCompany, GroupDepartment, GroupTeam:
		return true
	}
	return false
}

// Kind: коллекция, в которой живут группы этого типа.
func (g GroupType) Kind() EntityKind {
	switch g {
	case GroupCompany:
		return KindCompany
	case GroupDepartment:
		return KindDepartment
	case GroupTeam:
		return KindTeam
	}
	return ""
}

// GroupRef указывает ровно одну группу-родителя RPE: компания, департамент или команда.
type GroupRef struct {
	Type GroupType `json:"type"`
	ID   string    `json:"id"`
}

func (r GroupRef) IsZero() bool { return r.Type == "" && r.ID == "" }

func (r GroupRef) Valid() bool { return r.Type.Valid() && r.ID != "" }

func (r GroupRef) String() string { return string(r.Type) + "/" + r.ID }

// DataType: уровень иерархии целей.
type DataType string

const (
	DataRPE       DataType = "rpe"
	DataObjective DataType = "objective"
	DataKR        DataType = "kr"
	DataKPI       DataType = "kpi"
)

var DataTypes = []DataType{DataRPE, DataObjective, DataKR, DataKPI}

func (d DataType) Valid() bool {
	switch d {
	case DataRPE, DataObjective, DataKR, DataKPI:
		return true
	}
	return false
}

func (d DataType) Kind() EntityKind {
	switch d {
	case DataRPE:
		return KindRPE
	case DataObjective:
		return KindObjective
	case DataKR:
		return KindKR
	case DataKPI:
		return KindKPI
	}
	return ""
}

// Measured: у KR и KPI есть цель и текущее/предыдущее значения.
func (d DataType) Measured() bool { return d == DataKR || d == DataKPI }

// Child возвращает следующий уровень: RPE → Objective → KR → KPI.
func (d DataType) Child() DataType {
	switch d {
	case DataRPE:
		return DataObjective
	case DataObjective:
		return DataKR
	case DataKR:
		return DataKPI
	}
	return ""
}

// Parent: предыдущий уровень; у RPE родителя нет.
func (d DataType) Parent() DataType {
	switch d {
	case DataObjective:
		return DataRPE
	case DataKR:
		return DataObjective
	case DataKPI:
		return DataKR
	}
	return ""
}

// GoalNode: RPE, Objective, KR или KPI. ParentID пуст только у RPE,
// у которого вместо него Group.
type GoalNode struct {
	ID            string       `json:"id"`
	Type          DataType     `json:"type"`
	Name          string       `json:"name,omitempty"`
	Description   string       `json:"description,omitempty"`
	ParentID      string       `json:"parent_id,omitempty"`
	Group         *GroupRef    `json:"group,omitempty"`
	ResponsibleID string       `json:"responsible_id,omitempty"`
	Goal          null.Float64 `json:"goal"`
	Value         null.Float64 `json:"value"`
	PrevValue     null.Float64 `json:"prev_value"`
}

// OnTarget: текущее значение не ниже цели. Только для отображения.
func (n GoalNode) OnTarget() bool {
	if !n.Goal.Valid {
		return false
	}
	return n.Value.Float64 >= n.Goal.Float64
}

// Label: имя узла, а если его нет, описание.
func (n GoalNode) Label() string {
	if n.Name != "" {
		return n.Name
	}
	if n.Description != "" {
		return n.Description
	}
	return n.ID
}
