package integrations

import (
	"context"

	"okr-console/internal/entities"
	"okr-console/internal/integrations/dto"
)

// StoreProvider: клиент удалённого хранилища OKR. Все методы возвращают
// *apperrors.RemoteFailure при сетевой ошибке или не-2xx статусе; повторов нет.
type StoreProvider interface {
	Name() string
	ListAll(ctx context.Context, kind entities.EntityKind) ([]dto.Record, error)
	ListChildren(ctx context.Context, parentKind entities.EntityKind, parentID string, childKind entities.EntityKind) ([]dto.Record, error)
	GetOne(ctx context.Context, kind entities.EntityKind, id string) (*dto.Record, error)
	Create(ctx context.Context, kind entities.EntityKind, payload interface{}) (*dto.Record, error)
	Delete(ctx context.Context, kind entities.EntityKind, id string) error
	AttachGoalNode(ctx context.Context, group entities.GroupRef, goalID string) error
	AssignMembership(ctx context.Context, personID, teamID string) error
	GoalNodes(ctx context.Context, group entities.GroupRef, dataType entities.DataType) ([]dto.Record, error)
	Login(ctx context.Context, email, password string) (*dto.Record, error)
}
