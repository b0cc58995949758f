package services

import (
	"fmt"

	"okr-console/internal/entities"
)

// Формы создания. Теги form, имена полей консоли, теги json, имена
// полей хранилища; одна структура и разбирает форму, и становится телом POST.

type CompanyForm struct {
	Name  string `form:"name" json:"name" validate:"required"`
	TaxID string `form:"tax_id" json:"cnpj" validate:"required"`
}

type DepartmentForm struct {
	Name          string `form:"name" json:"name" validate:"required"`
	CompanyID     string `form:"company_id" json:"companyID" validate:"required"`
	ResponsibleID string `form:"responsible_id" json:"responsibleID,omitempty"`
}

type TeamForm struct {
	Name          string `form:"name" json:"name" validate:"required"`
	DepartmentID  string `form:"department_id" json:"departmentID" validate:"required"`
	ResponsibleID string `form:"responsible_id" json:"responsibleID,omitempty"`
}

type PersonForm struct {
	Name         string `form:"name" json:"name" validate:"required"`
	TaxID        string `form:"tax_id" json:"cpf,omitempty"`
	Email        string `form:"email" json:"email" validate:"required,email"`
	Password     string `form:"password" json:"password" validate:"required"`
	Role         string `form:"role" json:"role" validate:"required,oneof=Director Manager Employee"`
	CompanyID    string `form:"company_id" json:"companyID,omitempty"`
	DepartmentID string `form:"department_id" json:"departmentID,omitempty"`
	TeamID       string `form:"team_id" json:"teamID,omitempty"`
}

type RPEForm struct {
	Name          string `form:"name" json:"name,omitempty"`
	Description   string `form:"description" json:"description" validate:"required"`
	ResponsibleID string `form:"responsible_id" json:"responsibleID,omitempty"`
}

type ObjectiveForm struct {
	Name          string `form:"name" json:"name,omitempty"`
	Description   string `form:"description" json:"description" validate:"required"`
	ResponsibleID string `form:"responsible_id" json:"responsibleID,omitempty"`
	RPEID         string `form:"parent_id" json:"rpeID" validate:"required"`
}

type KRForm struct {
	Name          string   `form:"name" json:"name,omitempty"`
	Description   string   `form:"description" json:"description" validate:"required"`
	ResponsibleID string   `form:"responsible_id" json:"responsibleID,omitempty"`
	ObjectiveID   string   `form:"parent_id" json:"objectiveID" validate:"required"`
	Goal          *float64 `form:"goal" json:"goal,omitempty"`
}

type KPIForm struct {
	Name          string   `form:"name" json:"name,omitempty"`
	Description   string   `form:"description" json:"description" validate:"required"`
	ResponsibleID string   `form:"responsible_id" json:"responsibleID,omitempty"`
	KRID          string   `form:"parent_id" json:"krID" validate:"required"`
	Goal          *float64 `form:"goal" json:"goal,omitempty"`
}

func newForm(kind entities.EntityKind) (interface{}, error) {
	switch kind {
	case entities.KindCompany:
		return &CompanyForm{}, nil
	case entities.KindDepartment:
		return &DepartmentForm{}, nil
	case entities.KindTeam:
		return &TeamForm{}, nil
	case entities.KindPerson:
		return &PersonForm{}, nil
	case entities.KindRPE:
		return &RPEForm{}, nil
	case entities.KindObjective:
		return &ObjectiveForm{}, nil
	case entities.KindKR:
		return &KRForm{}, nil
	case entities.KindKPI:
		return &KPIForm{}, nil
	}
	return nil, fmt.Errorf("нет формы создания для %q", kind)
}

// DeleteConfirmation: текст модального окна перед удалением.
func DeleteConfirmation(kind entities.EntityKind) string {
	return fmt.Sprintf("Вы уверены, что хотите удалить запись «%s»? Это действие необратимо.", kind.Label())
}
