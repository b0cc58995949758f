package dto

// OptionDTO: пункт выпадающего списка каскада. Label никогда не пуст.
type OptionDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
