package dto

type SelectGroupTypeDTO struct {
	GroupType string `json:"group_type" validate:"required,oneof=company department team"`
}

type SelectGroupDTO struct {
	GroupID string `json:"group_id" validate:"required"`
}

type SelectDataTypeDTO struct {
	DataType string `json:"data_type" validate:"required,oneof=rpe objective kr kpi"`
}

// CascadeDTO: снимок каскада страницы для фронтенда.
type CascadeDTO struct {
	Page         string       `json:"page"`
	GroupType    string       `json:"group_type,omitempty"`
	GroupID      string       `json:"group_id,omitempty"`
	DataType     string       `json:"data_type,omitempty"`
	GroupOptions []OptionDTO  `json:"group_options"`
	GroupsReady  bool         `json:"groups_ready"`
	Table        TableViewDTO `json:"table"`
	Actions      ActionsDTO   `json:"actions"`
}

type MutationResultDTO struct {
	ID      string        `json:"id,omitempty"`
	Cascade *CascadeDTO   `json:"cascade,omitempty"`
	Table   *TableViewDTO `json:"table,omitempty"`
}
