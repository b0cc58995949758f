package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/integrations"
	intdto "okr-console/internal/integrations/dto"
	apperrors "okr-console/pkg/errors"
)

// ResolverInterface вычисляет допустимые варианты следующего уровня каскада.
// Ничего не кэширует; при пустом обязательном входе не ходит в сеть.
type ResolverInterface interface {
	Groups(ctx context.Context, groupType entities.GroupType) ([]dto.OptionDTO, error)
	Children(ctx context.Context, groupType entities.GroupType, groupID string) ([]dto.OptionDTO, error)
	Members(ctx context.Context, groupType entities.GroupType, groupID string) ([]entities.Person, error)
	GoalNodes(ctx context.Context, dataType entities.DataType, group entities.GroupRef) ([]entities.GoalNode, error)
	GoalChildren(ctx context.Context, parentType entities.DataType, parentID string) ([]entities.GoalNode, error)
}

type Resolver struct {
	store  integrations.StoreProvider
	logger *zap.Logger
}

func NewResolver(store integrations.StoreProvider, logger *zap.Logger) ResolverInterface {
	return &Resolver{
		store:  store,
		logger: logger.Named("resolver"),
	}
}

// Следующий орг-уровень: компания → департаменты → команды → сотрудники.
var childKinds = map[entities.GroupType]entities.EntityKind{
	entities.GroupCompany:    entities.KindDepartment,
	entities.GroupDepartment: entities.KindTeam,
	entities.GroupTeam:       entities.KindPerson,
}

func (r *Resolver) Groups(ctx context.Context, groupType entities.GroupType) ([]dto.OptionDTO, error) {
	if groupType == "" {
		return []dto.OptionDTO{}, nil
	}
	if !groupType.Valid() {
		return nil, apperrors.NewValidationFailure("group_type", "неизвестный тип группы")
	}
	records, err := r.store.ListAll(ctx, groupType.Kind())
	if err != nil {
		r.logger.Error("Не удалось загрузить группы", zap.String("group_type", string(groupType)), zap.Error(err))
		return nil, err
	}
	return toOptions(records), nil
}

func (r *Resolver) Children(ctx context.Context, groupType entities.GroupType, groupID string) ([]dto.OptionDTO, error) {
	if groupType == "" || groupID == "" {
		return []dto.OptionDTO{}, nil
	}
	childKind, ok := childKinds[groupType]
	if !ok {
		return nil, apperrors.NewValidationFailure("group_type", "неизвестный тип группы")
	}
	records, err := r.store.ListChildren(ctx, groupType.Kind(), groupID, childKind)
	if err != nil {
		r.logger.Error("Не удалось загрузить дочерние группы",
			zap.String("group_type", string(groupType)),
			zap.String("group_id", groupID),
			zap.Error(err),
		)
		return nil, err
	}
	return toOptions(ownedBy(records, groupType.Kind(), groupID)), nil
}

func (r *Resolver) Members(ctx context.Context, groupType entities.GroupType, groupID string) ([]entities.Person, error) {
	if groupType == "" || groupID == "" {
		return []entities.Person{}, nil
	}
	if !groupType.Valid() {
		return nil, apperrors.NewValidationFailure("group_type", "неизвестный тип группы")
	}
	records, err := r.store.ListChildren(ctx, groupType.Kind(), groupID, entities.KindPerson)
	if err != nil {
		r.logger.Error("Не удалось загрузить сотрудников группы", zap.String("group", groupType.Kind().Label()), zap.Error(err))
		return nil, err
	}
	records = dedupe(ownedBy(records, groupType.Kind(), groupID))
	people := make([]entities.Person, 0, len(records))
	for _, rec := range records {
		people = append(people, rec.ToPerson())
	}
	return people, nil
}

// GoalNodes: узлы уровня dataType, привязанные к группе. RPE с явной
// привязкой к другой группе отбрасываются.
func (r *Resolver) GoalNodes(ctx context.Context, dataType entities.DataType, group entities.GroupRef) ([]entities.GoalNode, error) {
	if dataType == "" || group.Type == "" || group.ID == "" {
		return []entities.GoalNode{}, nil
	}
	if !dataType.Valid() {
		return nil, apperrors.NewValidationFailure("data_type", "неизвестный тип данных")
	}
	if !group.Type.Valid() {
		return nil, apperrors.NewValidationFailure("group_type", "неизвестный тип группы")
	}
	records, err := r.store.GoalNodes(ctx, group, dataType)
	if err != nil {
		r.logger.Error("Не удалось загрузить цели группы",
			zap.String("group", group.String()),
			zap.String("data_type", string(dataType)),
			zap.Error(err),
		)
		return nil, err
	}

	nodes := make([]entities.GoalNode, 0, len(records))
	for _, rec := range dedupe(records) {
		node := rec.ToGoalNode(dataType)
		if dataType == entities.DataRPE && node.Group != nil && *node.Group != group {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (r *Resolver) GoalChildren(ctx context.Context, parentType entities.DataType, parentID string) ([]entities.GoalNode, error) {
	if parentType == "" || parentID == "" {
		return []entities.GoalNode{}, nil
	}
	childType := parentType.Child()
	if childType == "" {
		return nil, apperrors.NewValidationFailure("data_type", fmt.Sprintf("у уровня %s нет дочерних целей", parentType))
	}
	records, err := r.store.ListChildren(ctx, parentType.Kind(), parentID, childType.Kind())
	if err != nil {
		r.logger.Error("Не удалось загрузить дочерние цели",
			zap.String("parent_type", string(parentType)),
			zap.String("parent_id", parentID),
			zap.Error(err),
		)
		return nil, err
	}

	records = dedupe(ownedBy(records, parentType.Kind(), parentID))
	nodes := make([]entities.GoalNode, 0, len(records))
	for _, rec := range records {
		node := rec.ToGoalNode(childType)
		if node.ParentID == "" {
			node.ParentID = parentID
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// ownedBy оставляет записи, чья ссылка на родителя равна parentID.
// Запись без поля-ссылки доверяется эндпоинту связи.
func ownedBy(records []intdto.Record, parentKind entities.EntityKind, parentID string) []intdto.Record {
	out := make([]intdto.Record, 0, len(records))
	for _, rec := range records {
		if ref := rec.ParentRef(parentKind); ref != "" && ref != parentID {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// dedupe убирает записи без id и повторы, сохраняя порядок хранилища.
func dedupe(records []intdto.Record) []intdto.Record {
	seen := make(map[string]bool, len(records))
	out := make([]intdto.Record, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		out = append(out, rec)
	}
	return out
}

func toOptions(records []intdto.Record) []dto.OptionDTO {
	records = dedupe(records)
	options := make([]dto.OptionDTO, 0, len(records))
	for _, rec := range records {
		options = append(options, dto.OptionDTO{ID: rec.ID, Label: rec.Label()})
	}
	return options
}
