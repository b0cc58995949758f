package dto

import (
	"okr-console/internal/entities"
)

func (r Record) ToCompany() entities.Company {
	return entities.Company{ID: r.ID, Name: r.Name, TaxID: r.TaxID}
}

func (r Record) ToDepartment() entities.Department {
	return entities.Department{ID: r.ID, Name: r.Name, CompanyID: r.CompanyID, ResponsibleID: r.ResponsibleID}
}

func (r Record) ToTeam() entities.Team {
	return entities.Team{ID: r.ID, Name: r.Name, DepartmentID: r.DepartmentID, ResponsibleID: r.ResponsibleID}
}

func (r Record) ToPerson() entities.Person {
	return entities.Person{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		TaxID:        r.TaxID,
		Role:         entities.Role(r.Role),
		CompanyID:    r.CompanyID,
		DepartmentID: r.DepartmentID,
		TeamID:       r.TeamID,
	}
}

// ToGoalNode: для RPE группа берётся из явной пары groupType/groupID,
// иначе из самой узкой орг-ссылки (team > department > company).
func (r Record) ToGoalNode(t entities.DataType) entities.GoalNode {
	node := entities.GoalNode{
		ID:            r.ID,
		Type:          t,
		Name:          r.Name,
		Description:   r.Description,
		ParentID:      r.ParentID,
		ResponsibleID: r.ResponsibleID,
		Goal:          r.Goal,
		Value:         r.Value,
		PrevValue:     r.PrevValue,
	}
	if t == entities.DataRPE {
		node.ParentID = ""
		if g := r.Group(); g != nil {
			node.Group = g
		}
	}
	return node
}

// Group: орг-привязка записи, если она есть.
func (r Record) Group() *entities.GroupRef {
	if gt := entities.GroupType(r.GroupType); gt.Valid() && r.GroupID != "" {
		return &entities.GroupRef{Type: gt, ID: r.GroupID}
	}
	switch {
	case r.TeamID != "":
		return &entities.GroupRef{Type: entities.GroupTeam, ID: r.TeamID}
	case r.DepartmentID != "":
		return &entities.GroupRef{Type: entities.GroupDepartment, ID: r.DepartmentID}
	case r.CompanyID != "":
		return &entities.GroupRef{Type: entities.GroupCompany, ID: r.CompanyID}
	}
	return nil
}

// ParentRef: ссылка записи на родителя заданного вида; пусто, если поля нет.
func (r Record) ParentRef(parent entities.EntityKind) string {
	switch parent {
	case entities.KindCompany:
		return r.CompanyID
	case entities.KindDepartment:
		return r.DepartmentID
	case entities.KindTeam:
		return r.TeamID
	case entities.KindRPE, entities.KindObjective, entities.KindKR:
		return r.ParentID
	}
	return ""
}

// Label возвращает подпись опции: имя, затем описание, затем email/ИНН, затем id.
func (r Record) Label() string {
	for _, candidate := range []string{r.Name, r.Description, r.Email, r.TaxID} {
		if candidate != "" {
			return candidate
		}
	}
	return r.ID
}
