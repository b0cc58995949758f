package events

import (
	"time"

	"okr-console/internal/entities"
)

const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// EntityMutatedEvent: создание или удаление прошло в хранилище успешно
// и видимый список уже перечитан.
type EntityMutatedEvent struct {
	Kind    entities.EntityKind
	Action  string
	ID      string
	Group   *entities.GroupRef
	ActorID string
	At      time.Time
}

func (e EntityMutatedEvent) Name() string {
	return "entity.mutated"
}
