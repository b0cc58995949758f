package services

import (
	"strconv"

	"github.com/aarondl/null/v8"

	"okr-console/internal/dto"
	"okr-console/internal/entities"
	intdto "okr-console/internal/integrations/dto"
)

var (
	colName        = dto.ColumnDTO{Key: "name", Title: "Название"}
	colDescription = dto.ColumnDTO{Key: "description", Title: "Описание"}
	colGroup       = dto.ColumnDTO{Key: "group", Title: "Группа"}
	colParent      = dto.ColumnDTO{Key: "parent", Title: "Родитель"}
	colResponsible = dto.ColumnDTO{Key: "responsible", Title: "Ответственный"}
	colGoal        = dto.ColumnDTO{Key: "goal", Title: "Цель"}
	colValue       = dto.ColumnDTO{Key: "value", Title: "Текущее значение"}
	colPrevValue   = dto.ColumnDTO{Key: "prev_value", Title: "Предыдущее значение"}
	colTaxID       = dto.ColumnDTO{Key: "tax_id", Title: "ИНН"}
	colEmail       = dto.ColumnDTO{Key: "email", Title: "Email"}
	colRole        = dto.ColumnDTO{Key: "role", Title: "Роль"}
	colCompany     = dto.ColumnDTO{Key: "company", Title: "Компания"}
	colDepartment  = dto.ColumnDTO{Key: "department", Title: "Департамент"}
	colTeam        = dto.ColumnDTO{Key: "team", Title: "Команда"}
)

func goalColumns(t entities.DataType) []dto.ColumnDTO {
	switch t {
	case entities.DataRPE:
		return []dto.ColumnDTO{colName, colDescription, colGroup, colResponsible}
	case entities.DataObjective:
		return []dto.ColumnDTO{colName, colDescription, colParent, colResponsible}
	default:
		return []dto.ColumnDTO{colName, colDescription, colParent, colResponsible, colGoal, colValue, colPrevValue}
	}
}

// CascadeTable: подсказка, пока каскад не заполнен; загрузка, пока
// результат текущего поколения не пришёл; иначе строки.
func CascadeTable(state CascadeState) dto.TableViewDTO {
	if state.GroupType == "" || state.GroupID == "" || state.DataType == "" {
		return dto.TableViewDTO{Prompt: PromptFillAll, Rows: []dto.RowDTO{}}
	}
	view := dto.TableViewDTO{Columns: goalColumns(state.DataType), Rows: []dto.RowDTO{}}
	switch {
	case state.Failure != "":
		view.Error = state.Failure
	case !state.ItemsReady:
		view.Loading = true
	default:
		view.Rows = GoalRows(state.Items)
	}
	return view
}

func GoalRows(nodes []entities.GoalNode) []dto.RowDTO {
	rows := make([]dto.RowDTO, 0, len(nodes))
	for _, n := range nodes {
		row := dto.RowDTO{
			ID: n.ID,
			Cells: map[string]string{
				"name":        n.Name,
				"description": n.Description,
				"parent":      n.ParentID,
				"responsible": n.ResponsibleID,
			},
		}
		if n.Group != nil {
			row.Cells["group"] = n.Group.String()
		}
		if n.Type.Measured() {
			row.Cells["goal"] = formatFloat(n.Goal)
			row.Cells["value"] = formatFloat(n.Value)
			row.Cells["prev_value"] = formatFloat(n.PrevValue)
			if n.Goal.Valid {
				onTarget := n.OnTarget()
				row.OnTarget = &onTarget
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func formatFloat(v null.Float64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func orgColumns(kind entities.EntityKind) []dto.ColumnDTO {
	switch kind {
	case entities.KindCompany:
		return []dto.ColumnDTO{colName, colTaxID}
	case entities.KindDepartment:
		return []dto.ColumnDTO{colName, colCompany, colResponsible}
	case entities.KindTeam:
		return []dto.ColumnDTO{colName, colDepartment, colResponsible}
	case entities.KindPerson:
		return []dto.ColumnDTO{colName, colEmail, colRole, colDepartment, colTeam}
	}
	return goalColumns(kind.DataType())
}

// RecordTable: плоская таблица коллекции для орг-страниц.
func RecordTable(kind entities.EntityKind, records []intdto.Record) dto.TableViewDTO {
	view := dto.TableViewDTO{Columns: orgColumns(kind), Rows: make([]dto.RowDTO, 0, len(records))}
	if kind.IsGoal() {
		nodes := make([]entities.GoalNode, 0, len(records))
		for _, rec := range records {
			nodes = append(nodes, rec.ToGoalNode(kind.DataType()))
		}
		view.Rows = GoalRows(nodes)
		return view
	}
	for _, rec := range records {
		view.Rows = append(view.Rows, dto.RowDTO{
			ID: rec.ID,
			Cells: map[string]string{
				"name":        rec.Label(),
				"tax_id":      rec.TaxID,
				"email":       rec.Email,
				"role":        rec.Role,
				"company":     rec.CompanyID,
				"department":  rec.DepartmentID,
				"team":        rec.TeamID,
				"responsible": rec.ResponsibleID,
			},
		})
	}
	return view
}
