package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aarondl/null/v8"
)

// Record: единая форма сущности на границе с удалённым хранилищем.
// Хранилище в разных ревизиях отдаёт то id, то _id, то name, то _name,
// а поля классов вида _Team__departmentID; всё это сводится здесь.
type Record struct {
	ID            string
	Name          string
	Description   string
	Email         string
	TaxID         string
	Role          string
	CompanyID     string
	DepartmentID  string
	TeamID        string
	ResponsibleID string
	ParentID      string
	GroupType     string
	GroupID       string
	Goal          null.Float64
	Value         null.Float64
	PrevValue     null.Float64
}

// Алиасы в нормализованном виде (см. normalizeKey). Порядок, приоритет.
var (
	aliasID          = []string{"id"}
	aliasName        = []string{"name", "fullname", "fio"}
	aliasDescription = []string{"description", "desc"}
	aliasEmail       = []string{"email"}
	aliasTaxID       = []string{"taxid", "cpf", "cnpj"}
	aliasRole        = []string{"role"}
	aliasCompany     = []string{"companyid"}
	aliasDepartment  = []string{"departmentid"}
	aliasTeam        = []string{"teamid"}
	aliasResponsible = []string{"responsibleid", "managerid", "directorid"}
	aliasParent      = []string{"parentid", "rpeid", "objectiveid", "krid"}
	aliasGroupType   = []string{"grouptype"}
	aliasGroupID     = []string{"groupid"}
	aliasGoal        = []string{"goal", "meta", "target"}
	aliasValue       = []string{"value", "currentvalue", "lastvalue"}
	aliasPrevValue   = []string{"prevvalue", "previousvalue"}
)

// normalizeKey: "_Team__departmentID" -> "departmentid", "department_id" -> "departmentid".
func normalizeKey(key string) string {
	if i := strings.LastIndex(key, "__"); i >= 0 {
		key = key[i+2:]
	}
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return strings.ToLower(key)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		nk := normalizeKey(k)
		// при коллизии побеждает первое непустое значение
		if existing, ok := fields[nk]; ok && !isEmptyJSON(existing) {
			continue
		}
		fields[nk] = v
	}

	r.ID = pickString(fields, aliasID)
	r.Name = pickString(fields, aliasName)
	r.Description = pickString(fields, aliasDescription)
	r.Email = pickString(fields, aliasEmail)
	r.TaxID = pickString(fields, aliasTaxID)
	r.Role = pickString(fields, aliasRole)
	r.CompanyID = pickString(fields, aliasCompany)
	r.DepartmentID = pickString(fields, aliasDepartment)
	r.TeamID = pickString(fields, aliasTeam)
	r.ResponsibleID = pickString(fields, aliasResponsible)
	r.ParentID = pickString(fields, aliasParent)
	r.GroupType = strings.ToLower(pickString(fields, aliasGroupType))
	r.GroupID = pickString(fields, aliasGroupID)
	r.Goal = pickFloat(fields, aliasGoal)
	r.Value = pickFloat(fields, aliasValue)
	r.PrevValue = pickFloat(fields, aliasPrevValue)
	return nil
}

func isEmptyJSON(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`))
}

func pickString(fields map[string]json.RawMessage, aliases []string) string {
	for _, a := range aliases {
		v, ok := fields[a]
		if !ok || isEmptyJSON(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return strings.TrimSpace(s)
		}
		// числовые id из старых ревизий
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&n); err == nil {
			return n.String()
		}
	}
	return ""
}

func pickFloat(fields map[string]json.RawMessage, aliases []string) null.Float64 {
	for _, a := range aliases {
		v, ok := fields[a]
		if !ok || isEmptyJSON(v) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return null.Float64From(f)
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return null.Float64From(parsed)
			}
		}
	}
	return null.Float64{}
}
