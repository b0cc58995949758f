package seeders

import "okr-console/internal/entities"

// Демо-организация. Ссылки между записями, локальные ключи (key),
// которые при наполнении заменяются на id, выданные хранилищем.

type orgSeed struct {
	key    string
	kind   entities.EntityKind
	fields map[string]string
	// refs: поле формы → ключ ранее созданной записи
	refs map[string]string
}

type personSeed struct {
	key   string
	name  string
	email string
	role  entities.Role
	refs  map[string]string
}

type goalSeed struct {
	key         string
	kind        entities.EntityKind
	name        string
	description string
	goal        string
	// group: ключ орг-записи для RPE, parent, ключ цели для остальных
	group       string
	groupType   entities.GroupType
	parent      string
	responsible string
}

var orgData = []orgSeed{
	{key: "vector", kind: entities.KindCompany, fields: map[string]string{"name": "ООО Вектор", "tax_id": "7701234567"}},

	{key: "sales", kind: entities.KindDepartment, fields: map[string]string{"name": "Продажи"}, refs: map[string]string{"company_id": "vector"}},
	{key: "dev", kind: entities.KindDepartment, fields: map[string]string{"name": "Разработка"}, refs: map[string]string{"company_id": "vector"}},

	{key: "platform", kind: entities.KindTeam, fields: map[string]string{"name": "Платформа"}, refs: map[string]string{"department_id": "dev"}},
	{key: "mobile", kind: entities.KindTeam, fields: map[string]string{"name": "Мобильная разработка"}, refs: map[string]string{"department_id": "dev"}},
	{key: "corporate", kind: entities.KindTeam, fields: map[string]string{"name": "Корпоративные продажи"}, refs: map[string]string{"department_id": "sales"}},
}

var peopleData = []personSeed{
	{key: "director", name: "Анна Соколова", email: "director@vector.example", role: entities.RoleDirector,
		refs: map[string]string{"company_id": "vector"}},
	{key: "dev_manager", name: "Игорь Петров", email: "manager@vector.example", role: entities.RoleManager,
		refs: map[string]string{"company_id": "vector", "department_id": "dev", "team_id": "platform"}},
	{key: "sales_manager", name: "Мария Кузнецова", email: "sales@vector.example", role: entities.RoleManager,
		refs: map[string]string{"company_id": "vector", "department_id": "sales", "team_id": "corporate"}},
	{key: "backend", name: "Олег Смирнов", email: "employee@vector.example", role: entities.RoleEmployee,
		refs: map[string]string{"company_id": "vector", "department_id": "dev", "team_id": "platform"}},
	{key: "ios", name: "Дина Волкова", email: "ios@vector.example", role: entities.RoleEmployee,
		refs: map[string]string{"company_id": "vector", "department_id": "dev", "team_id": "mobile"}},
}

var goalData = []goalSeed{
	{key: "rpe_company", kind: entities.KindRPE, name: "Рост выручки", description: "Увеличить выручку компании за год",
		group: "vector", groupType: entities.GroupCompany, responsible: "director"},
	{key: "obj_market", kind: entities.KindObjective, name: "Новые рынки", description: "Выйти на два новых региона",
		parent: "rpe_company", responsible: "sales_manager"},
	{key: "kr_clients", kind: entities.KindKR, name: "Новые клиенты", description: "Количество новых корпоративных клиентов",
		parent: "obj_market", goal: "40", responsible: "sales_manager"},
	{key: "kpi_meetings", kind: entities.KindKPI, name: "Встречи", description: "Проведённые встречи с клиентами в месяц",
		parent: "kr_clients", goal: "120", responsible: "sales_manager"},

	{key: "rpe_dev", kind: entities.KindRPE, name: "Надёжность продукта", description: "Сделать продукт стабильным для крупных клиентов",
		group: "dev", groupType: entities.GroupDepartment, responsible: "dev_manager"},
	{key: "obj_uptime", kind: entities.KindObjective, name: "Доступность", description: "Снизить число инцидентов",
		parent: "rpe_dev", responsible: "dev_manager"},
	{key: "kr_uptime", kind: entities.KindKR, name: "SLA", description: "Доступность сервиса, %",
		parent: "obj_uptime", goal: "99.9", responsible: "backend"},
	{key: "kpi_incidents", kind: entities.KindKPI, name: "Инциденты", description: "Закрытые инциденты за квартал",
		parent: "kr_uptime", goal: "30", responsible: "backend"},

	{key: "rpe_platform", kind: entities.KindRPE, name: "Скорость поставки", description: "Ускорить выпуск изменений",
		group: "platform", groupType: entities.GroupTeam, responsible: "dev_manager"},
	{key: "obj_release", kind: entities.KindObjective, name: "Частые релизы", description: "Выпускать релиз каждую неделю",
		parent: "rpe_platform", responsible: "backend"},
	{key: "kr_release", kind: entities.KindKR, name: "Релизы", description: "Релизов за квартал",
		parent: "obj_release", goal: "12", responsible: "backend"},
}
