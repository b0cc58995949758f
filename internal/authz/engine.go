package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// RBAC с наследованием ролей: director → manager → employee → anonymous.
// Наследование и даёт монотонность наборов маршрутов.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var crud = []string{ActionView, ActionCreate, ActionEdit, ActionDelete}

func policies() [][]string {
	var rules [][]string
	add := func(sub, route string, actions ...string) {
		for _, act := range actions {
			rules = append(rules, []string{sub, route, act})
		}
	}

	add(subjectAnonymous, RouteLogin, ActionView)

	// сотрудник видит свой профиль и цели на главной, но ничего не меняет
	add(subjectEmployee, RouteProfile, ActionView)
	add(subjectEmployee, RouteHome, ActionView)

	add(subjectManager, RouteTeams, crud...)
	add(subjectManager, RouteEmployees, crud...)
	add(subjectManager, RouteRPE, crud...)

	add(subjectDirector, RouteCompany, crud...)
	add(subjectDirector, RouteDepartments, crud...)
	return rules
}

var inheritance = [][]string{
	{subjectDirector, subjectManager},
	{subjectManager, subjectEmployee},
	{subjectEmployee, subjectAnonymous},
}

func newEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: не удалось разобрать модель: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: не удалось создать enforcer: %w", err)
	}
	if _, err := enf.AddPolicies(policies()); err != nil {
		return nil, fmt.Errorf("authz: не удалось загрузить политики: %w", err)
	}
	if _, err := enf.AddGroupingPolicies(inheritance); err != nil {
		return nil, fmt.Errorf("authz: не удалось загрузить иерархию ролей: %w", err)
	}
	return enf, nil
}
