package services

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"okr-console/internal/entities"
	"okr-console/internal/events"
	"okr-console/internal/integrations"
	intdto "okr-console/internal/integrations/dto"
	apperrors "okr-console/pkg/errors"
	"okr-console/pkg/eventbus"
	"okr-console/pkg/metrics"
)

// Refresher перечитывает список, в котором была изменённая запись:
// каскад страницы или плоский список коллекции.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Scope: контекст мутации, который берётся не из формы.
type Scope struct {
	Group   *entities.GroupRef
	ActorID string
}

type SynchronizerInterface interface {
	Create(ctx context.Context, kind entities.EntityKind, values url.Values, scope Scope, refresher Refresher) (*intdto.Record, error)
	Delete(ctx context.Context, kind entities.EntityKind, id string, confirmed bool, scope Scope, refresher Refresher) error
}

type Synchronizer struct {
	store     integrations.StoreProvider
	bus       *eventbus.Bus
	decoder   *form.Decoder
	validator *validator.Validate
	logger    *zap.Logger
}

func NewSynchronizer(store integrations.StoreProvider, bus *eventbus.Bus, logger *zap.Logger) SynchronizerInterface {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	return &Synchronizer{
		store:     store,
		bus:       bus,
		decoder:   form.NewDecoder(),
		validator: v,
		logger:    logger.Named("sync"),
	}
}

// Create: форма → проверка обязательных полей → POST → привязка → перечитывание.
// Список не трогается, пока вся цепочка не завершилась успешно.
func (s *Synchronizer) Create(ctx context.Context, kind entities.EntityKind, values url.Values, scope Scope, refresher Refresher) (*intdto.Record, error) {
	payload, err := s.decode(kind, values)
	if err != nil {
		metrics.RecordMutation(string(kind), events.ActionCreate, "invalid")
		return nil, err
	}
	if kind == entities.KindRPE && (scope.Group == nil || !scope.Group.Valid()) {
		metrics.RecordMutation(string(kind), events.ActionCreate, "invalid")
		return nil, apperrors.NewValidationFailure("group_id", "RPE должен быть привязан к группе")
	}

	created, err := s.store.Create(ctx, kind, payload)
	if err != nil {
		metrics.RecordMutation(string(kind), events.ActionCreate, "failed")
		s.logger.Error("Не удалось создать запись", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	if err := s.link(ctx, kind, created.ID, payload, scope); err != nil {
		metrics.RecordMutation(string(kind), events.ActionCreate, "partial")
		s.logger.Error("Запись создана, но не привязана",
			zap.String("kind", string(kind)),
			zap.String("created_id", created.ID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordMutation(string(kind), events.ActionCreate, "ok")
	s.logger.Info("Запись создана", zap.String("kind", string(kind)), zap.String("id", created.ID))
	s.refresh(ctx, kind, refresher)
	s.publish(ctx, kind, events.ActionCreate, created.ID, scope)
	return created, nil
}

// link выполняет вторую половину создания: RPE привязывается к группе,
// сотрудник с командой получает членство.
func (s *Synchronizer) link(ctx context.Context, kind entities.EntityKind, createdID string, payload interface{}, scope Scope) error {
	switch kind {
	case entities.KindRPE:
		if err := s.store.AttachGoalNode(ctx, *scope.Group, createdID); err != nil {
			return &apperrors.PartialCreateFailure{Kind: string(kind), CreatedID: createdID, Target: scope.Group.String(), Err: err}
		}
	case entities.KindPerson:
		person := payload.(*PersonForm)
		if person.TeamID == "" {
			return nil
		}
		if err := s.store.AssignMembership(ctx, createdID, person.TeamID); err != nil {
			return &apperrors.PartialCreateFailure{Kind: string(kind), CreatedID: createdID, Target: "team/" + person.TeamID, Err: err}
		}
	}
	return nil
}

// Delete без подтверждения не уходит в сеть. Список перечитывается
// только после успешного удаления.
func (s *Synchronizer) Delete(ctx context.Context, kind entities.EntityKind, id string, confirmed bool, scope Scope, refresher Refresher) error {
	if !kind.Valid() {
		return apperrors.NewValidationFailure("kind", "неизвестная коллекция")
	}
	if id == "" {
		return apperrors.NewValidationFailure("id", "обязательное поле")
	}
	if !confirmed {
		return apperrors.ErrConfirmationRequired
	}

	if err := s.store.Delete(ctx, kind, id); err != nil {
		metrics.RecordMutation(string(kind), events.ActionDelete, "failed")
		s.logger.Error("Не удалось удалить запись", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		return err
	}

	metrics.RecordMutation(string(kind), events.ActionDelete, "ok")
	s.logger.Info("Запись удалена", zap.String("kind", string(kind)), zap.String("id", id))
	s.refresh(ctx, kind, refresher)
	s.publish(ctx, kind, events.ActionDelete, id, scope)
	return nil
}

// refresh: ошибка перечитывания не отменяет мутацию, она уже в хранилище.
// Вызывающий увидит её в состоянии списка.
func (s *Synchronizer) refresh(ctx context.Context, kind entities.EntityKind, refresher Refresher) {
	if refresher == nil {
		return
	}
	if err := refresher.Refresh(ctx); err != nil {
		s.logger.Warn("Не удалось перечитать список после мутации", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Synchronizer) publish(ctx context.Context, kind entities.EntityKind, action, id string, scope Scope) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.EntityMutatedEvent{
		Kind:    kind,
		Action:  action,
		ID:      id,
		Group:   scope.Group,
		ActorID: scope.ActorID,
		At:      time.Now(),
	})
}

// decode разбирает значения формы в типизированную форму и проверяет её
// до любого обращения к хранилищу.
func (s *Synchronizer) decode(kind entities.EntityKind, values url.Values) (interface{}, error) {
	target, err := newForm(kind)
	if err != nil {
		return nil, apperrors.NewValidationFailure("kind", err.Error())
	}

	trimmed := make(url.Values, len(values))
	for key, vs := range values {
		for _, v := range vs {
			trimmed.Add(key, strings.TrimSpace(v))
		}
	}

	if err := s.decoder.Decode(target, trimmed); err != nil {
		var decodeErrs form.DecodeErrors
		if errors.As(err, &decodeErrs) {
			failure := &apperrors.ValidationFailure{Fields: make(map[string]string, len(decodeErrs))}
			for field := range decodeErrs {
				failure.Fields[field] = "неверный формат"
			}
			return nil, failure
		}
		return nil, apperrors.NewValidationFailure("form", err.Error())
	}

	if err := s.validator.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			failure := &apperrors.ValidationFailure{Fields: make(map[string]string, len(verrs))}
			for _, fe := range verrs {
				failure.Fields[fe.Field()] = reasonFor(fe.Tag())
			}
			return nil, failure
		}
		return nil, err
	}
	return target, nil
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "обязательное поле"
	case "email":
		return "неверный email"
	case "oneof":
		return "недопустимое значение"
	}
	return "неверное значение"
}
