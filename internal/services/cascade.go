package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"okr-console/internal/dto"
	"okr-console/internal/entities"
	"okr-console/internal/session"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/metrics"
)

// PromptFillAll показывается вместо таблицы, пока каскад не заполнен.
const PromptFillAll = "заполните все поля, чтобы увидеть таблицу"

// CascadeState: цепочка зависимых выборов groupType → groupID → dataType → items.
type CascadeState struct {
	GroupType    entities.GroupType
	GroupID      string
	DataType     entities.DataType
	GroupOptions []dto.OptionDTO
	GroupsReady  bool
	Items        []entities.GoalNode
	ItemsReady   bool
	Failure      string

	groupsGen uint64
	itemsGen  uint64
}

// Complete: все слоты заданы и результат применён.
func (s CascadeState) Complete() bool {
	return s.GroupType != "" && s.GroupID != "" && s.DataType != "" && s.ItemsReady
}

func (s CascadeState) Group() entities.GroupRef {
	return entities.GroupRef{Type: s.GroupType, ID: s.GroupID}
}

func (s CascadeState) hasGroupOption(id string) bool {
	for _, o := range s.GroupOptions {
		if o.ID == id {
			return true
		}
	}
	return false
}

type ResolutionLevel string

const (
	LevelGroups ResolutionLevel = "groups"
	LevelItems  ResolutionLevel = "items"
)

// Resolution: запрос к резолверу, порождённый переходом. Gen, поколение
// состояния, результат для другого поколения будет отброшен.
type Resolution struct {
	Level     ResolutionLevel
	Gen       uint64
	GroupType entities.GroupType
	Group     entities.GroupRef
	DataType  entities.DataType
}

// CascadeEvent: вход редьюсера.
type CascadeEvent interface {
	cascadeEvent()
}

type (
	ResetCascade    struct{}
	SelectGroupType struct{ GroupType entities.GroupType }
	SelectGroup     struct{ GroupID string }
	SelectDataType  struct{ DataType entities.DataType }
	RefreshCascade  struct{}
	GroupsResolved  struct {
		Gen     uint64
		Options []dto.OptionDTO
		Err     error
	}
	ItemsResolved struct {
		Gen   uint64
		Items []entities.GoalNode
		Err   error
	}
)

func (ResetCascade) cascadeEvent()    {}
func (SelectGroupType) cascadeEvent() {}
func (SelectGroup) cascadeEvent()     {}
func (SelectDataType) cascadeEvent()  {}
func (RefreshCascade) cascadeEvent()  {}
func (GroupsResolved) cascadeEvent()  {}
func (ItemsResolved) cascadeEvent()   {}

// Reduce: единственное место, где меняется состояние каскада. Чистая
// функция: при ошибке возвращает исходное состояние без изменений.
func Reduce(state CascadeState, event CascadeEvent) (CascadeState, *Resolution, error) {
	switch ev := event.(type) {
	case ResetCascade:
		return CascadeState{groupsGen: state.groupsGen + 1, itemsGen: state.itemsGen + 1}, nil, nil

	case SelectGroupType:
		if !ev.GroupType.Valid() {
			return state, nil, apperrors.NewValidationFailure("group_type", "неизвестный тип группы")
		}
		next := CascadeState{
			GroupType: ev.GroupType,
			groupsGen: state.groupsGen + 1,
			itemsGen:  state.itemsGen + 1,
		}
		return next, &Resolution{Level: LevelGroups, Gen: next.groupsGen, GroupType: next.GroupType}, nil

	case SelectGroup:
		if state.GroupType == "" {
			return state, nil, apperrors.NewValidationFailure("group_type", "сначала выберите тип группы")
		}
		if ev.GroupID == "" {
			return state, nil, apperrors.NewValidationFailure("group_id", "обязательное поле")
		}
		if !state.hasGroupOption(ev.GroupID) {
			return state, nil, apperrors.NewValidationFailure("group_id", "нет среди доступных вариантов")
		}
		next := state
		next.GroupID = ev.GroupID
		next.DataType = ""
		next.Items = nil
		next.ItemsReady = false
		next.Failure = ""
		next.itemsGen++
		return next, nil, nil

	case SelectDataType:
		if state.GroupType == "" || state.GroupID == "" {
			return state, nil, apperrors.NewValidationFailure("group_id", "сначала выберите группу")
		}
		if !ev.DataType.Valid() {
			return state, nil, apperrors.NewValidationFailure("data_type", "неизвестный тип данных")
		}
		next := state
		next.DataType = ev.DataType
		next.Items = nil
		next.ItemsReady = false
		next.Failure = ""
		next.itemsGen++
		return next, itemsResolution(next), nil

	case RefreshCascade:
		next := state
		switch {
		case state.GroupType != "" && state.GroupID != "" && state.DataType != "":
			next.Items = nil
			next.ItemsReady = false
			next.Failure = ""
			next.itemsGen++
			return next, itemsResolution(next), nil
		case state.GroupType != "":
			next.GroupsReady = false
			next.Failure = ""
			next.groupsGen++
			return next, &Resolution{Level: LevelGroups, Gen: next.groupsGen, GroupType: next.GroupType}, nil
		}
		return state, nil, nil

	case GroupsResolved:
		if ev.Gen != state.groupsGen {
			return state, nil, apperrors.ErrStaleResolution
		}
		next := state
		if ev.Err != nil {
			next.Failure = ev.Err.Error()
			return next, nil, nil
		}
		next.GroupOptions = ev.Options
		next.GroupsReady = true
		// выбранная группа исчезла из вариантов: сбрасываем всё ниже
		if next.GroupID != "" && !next.hasGroupOption(next.GroupID) {
			next.GroupID = ""
			next.DataType = ""
			next.Items = nil
			next.ItemsReady = false
			next.itemsGen++
		}
		return next, nil, nil

	case ItemsResolved:
		if ev.Gen != state.itemsGen {
			return state, nil, apperrors.ErrStaleResolution
		}
		next := state
		if ev.Err != nil {
			next.Failure = ev.Err.Error()
			return next, nil, nil
		}
		next.Items = ev.Items
		next.ItemsReady = true
		return next, nil, nil
	}
	return state, nil, apperrors.ErrBadRequest
}

func itemsResolution(s CascadeState) *Resolution {
	return &Resolution{
		Level:     LevelItems,
		Gen:       s.itemsGen,
		GroupType: s.GroupType,
		Group:     s.Group(),
		DataType:  s.DataType,
	}
}

// GroupScope: единственная разрешённая группа для каждого типа.
// nil снимает ограничение; тип без записи не даёт ни одного варианта.
type GroupScope map[entities.GroupType]string

// ScopeOf: сотрудник работает только с группами своего прикрепления.
func ScopeOf(user session.User) GroupScope {
	if user.Role != entities.RoleEmployee {
		return nil
	}
	return GroupScope{
		entities.GroupCompany:    user.CompanyID,
		entities.GroupDepartment: user.DepartmentID,
		entities.GroupTeam:       user.TeamID,
	}
}

func (s GroupScope) filter(groupType entities.GroupType, options []dto.OptionDTO) []dto.OptionDTO {
	if s == nil {
		return options
	}
	allowed := s[groupType]
	out := []dto.OptionDTO{}
	for _, o := range options {
		if allowed != "" && o.ID == allowed {
			out = append(out, o)
		}
	}
	return out
}

// Cascade: каскад одной страницы одной сессии. Резолвер вызывается вне
// блокировки; результат применяется только к своему поколению.
type Cascade struct {
	mu       sync.Mutex
	state    CascadeState
	scope    GroupScope
	resolver ResolverInterface
	logger   *zap.Logger
}

func NewCascade(resolver ResolverInterface, logger *zap.Logger) *Cascade {
	return &Cascade{resolver: resolver, logger: logger}
}

// Restrict ограничивает варианты групп. Уже выбранная группа вне области
// отпадёт при следующей загрузке вариантов.
func (c *Cascade) Restrict(scope GroupScope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = scope
}

// Visible: узел можно раскрыть. В ограниченном каскаде только строки
// текущей таблицы.
func (c *Cascade) Visible(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scope == nil {
		return true
	}
	for _, item := range c.state.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (c *Cascade) Snapshot() CascadeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch применяет событие и, если нужно, дожидается порождённого им
// разрешения. Ошибка сети возвращается, даже если состояние её уже запомнило.
func (c *Cascade) Dispatch(ctx context.Context, event CascadeEvent) (CascadeState, error) {
	c.mu.Lock()
	next, res, err := Reduce(c.state, event)
	if err == nil {
		c.state = next
	}
	c.mu.Unlock()
	if err != nil {
		return c.Snapshot(), err
	}
	if res != nil {
		err = c.resolve(ctx, *res)
	}
	return c.Snapshot(), err
}

// Refresh перечитывает текущий выбор после мутации.
func (c *Cascade) Refresh(ctx context.Context) error {
	_, err := c.Dispatch(ctx, RefreshCascade{})
	return err
}

func (c *Cascade) resolve(ctx context.Context, res Resolution) error {
	var result CascadeEvent
	var remoteErr error
	switch res.Level {
	case LevelGroups:
		options, err := c.resolver.Groups(ctx, res.GroupType)
		if err == nil {
			c.mu.Lock()
			options = c.scope.filter(res.GroupType, options)
			c.mu.Unlock()
		}
		remoteErr = err
		result = GroupsResolved{Gen: res.Gen, Options: options, Err: err}
	case LevelItems:
		items, err := c.resolver.GoalNodes(ctx, res.DataType, res.Group)
		remoteErr = err
		result = ItemsResolved{Gen: res.Gen, Items: items, Err: err}
	}

	c.mu.Lock()
	next, _, err := Reduce(c.state, result)
	if err == nil {
		c.state = next
	}
	c.mu.Unlock()

	switch {
	case errors.Is(err, apperrors.ErrStaleResolution):
		metrics.RecordResolution(string(res.Level), "stale")
		c.logger.Debug("Результат разрешения устарел и отброшен",
			zap.String("level", string(res.Level)),
			zap.Uint64("gen", res.Gen),
		)
		return nil
	case err != nil:
		return err
	case remoteErr != nil:
		metrics.RecordResolution(string(res.Level), "failed")
		return remoteErr
	}
	metrics.RecordResolution(string(res.Level), "applied")
	return nil
}
