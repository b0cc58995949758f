package entities

// EntityKind: удалённая коллекция.
type EntityKind string

const (
	KindCompany    EntityKind = "company"
	KindDepartment EntityKind = "department"
	KindTeam       EntityKind = "team"
	KindPerson     EntityKind = "person"
	KindRPE        EntityKind = "rpe"
	KindObjective  EntityKind = "objective"
	KindKR         EntityKind = "kr"
	KindKPI        EntityKind = "kpi"
)

var Kinds = []EntityKind{KindCompany, KindDepartment, KindTeam, KindPerson, KindRPE, KindObjective, KindKR, KindKPI}

type kindInfo struct {
	segment  string // POST /{segment}, GET|DELETE /{segment}/{id}
	listPath string
	label    string
}

var kindTable = map[EntityKind]kindInfo{
	KindCompany:    {segment: "company", listPath: "/getAllCompanies", label: "Компания"},
	KindDepartment: {segment: "department", listPath: "/getAllDepartments", label: "Департамент"},
	KindTeam:       {segment: "team", listPath: "/getAllTeams", label: "Команда"},
	KindPerson:     {segment: "user", listPath: "/getAllEmployees", label: "Сотрудник"},
	KindRPE:        {segment: "RPE", listPath: "/getAllRPEs", label: "RPE"},
	KindObjective:  {segment: "objective", listPath: "/getAllObjectives", label: "Цель"},
	KindKR:         {segment: "KR", listPath: "/getAllKRs", label: "KR"},
	KindKPI:        {segment: "KPI", listPath: "/getAllKPIs", label: "KPI"},
}

func ParseKind(raw string) (EntityKind, bool) {
	k := EntityKind(raw)
	_, ok := kindTable[k]
	return k, ok
}

func (k EntityKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

func (k EntityKind) Segment() string { return kindTable[k].segment }

func (k EntityKind) ListPath() string { return kindTable[k].listPath }

func (k EntityKind) Label() string {
	if info, ok := kindTable[k]; ok {
		return info.label
	}
	return string(k)
}

// DataType: уровень целей для коллекций целей, иначе пусто.
func (k EntityKind) DataType() DataType {
	switch k {
	case KindRPE:
		return DataRPE
	case KindObjective:
		return DataObjective
	case KindKR:
		return DataKR
	case KindKPI:
		return DataKPI
	}
	return ""
}

func (k EntityKind) IsGoal() bool { return k.DataType() != "" }

// KindBySegment: обратный поиск по сегменту пути хранилища.
func KindBySegment(segment string) (EntityKind, bool) {
	for k, info := range kindTable {
		if info.segment == segment {
			return k, true
		}
	}
	return "", false
}
