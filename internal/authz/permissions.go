package authz

// Маршруты консоли.
const (
	RouteLogin       = "/login"
	RouteHome        = "/"
	RouteProfile     = "/profile"
	RouteCompany     = "/company"
	RouteDepartments = "/departments"
	RouteTeams       = "/teams"
	RouteEmployees   = "/employees"
	RouteRPE         = "/rpe"
)

// Routes: все маршруты в порядке меню.
var Routes = []string{
	RouteHome,
	RouteCompany,
	RouteDepartments,
	RouteTeams,
	RouteEmployees,
	RouteRPE,
	RouteProfile,
	RouteLogin,
}

var routeLabels = map[string]string{
	RouteLogin:       "Вход",
	RouteHome:        "Главная",
	RouteProfile:     "Профиль",
	RouteCompany:     "Компании",
	RouteDepartments: "Департаменты",
	RouteTeams:       "Команды",
	RouteEmployees:   "Сотрудники",
	RouteRPE:         "RPE",
}

func RouteLabel(route string) string { return routeLabels[route] }

// Действия над маршрутом.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Субъекты политики; роль вне домена становится anonymous.
const (
	subjectAnonymous = "anonymous"
	subjectEmployee  = "employee"
	subjectManager   = "manager"
	subjectDirector  = "director"
)
