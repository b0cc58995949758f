package dto

type ColumnDTO struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

type RowDTO struct {
	ID       string            `json:"id"`
	Cells    map[string]string `json:"cells"`
	OnTarget *bool             `json:"on_target,omitempty"`
}

// TableViewDTO: либо подсказка (Prompt), либо загрузка, либо строки.
type TableViewDTO struct {
	Prompt  string      `json:"prompt,omitempty"`
	Loading bool        `json:"loading"`
	Error   string      `json:"error,omitempty"`
	Columns []ColumnDTO `json:"columns,omitempty"`
	Rows    []RowDTO    `json:"rows"`
}
